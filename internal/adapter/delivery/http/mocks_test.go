package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortly/internal/entity"
	"github.com/vadimbarashkov/shortly/pkg/ratelimit"
)

type MockURLUseCase struct {
	mock.Mock
}

func (uc *MockURLUseCase) ShortenURL(ctx context.Context, originalURL, createdBy string) (*entity.URL, bool, error) {
	args := uc.Called(ctx, originalURL, createdBy)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Bool(1), args.Error(2)
}

func (uc *MockURLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := uc.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (uc *MockURLUseCase) GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := uc.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

type MockAdminUseCase struct {
	mock.Mock
}

func (uc *MockAdminUseCase) ListURLs(ctx context.Context, params entity.ListParams) (*entity.URLPage, error) {
	args := uc.Called(ctx, params)
	page, _ := args.Get(0).(*entity.URLPage)
	return page, args.Error(1)
}

func (uc *MockAdminUseCase) GetStats(ctx context.Context) (*entity.Summary, error) {
	args := uc.Called(ctx)
	summary, _ := args.Get(0).(*entity.Summary)
	return summary, args.Error(1)
}

func (uc *MockAdminUseCase) DeactivateURL(ctx context.Context, id int64) error {
	args := uc.Called(ctx, id)
	return args.Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (l *MockLimiter) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	args := l.Called(ctx, key)
	res, _ := args.Get(0).(ratelimit.Result)
	return res, args.Error(1)
}
