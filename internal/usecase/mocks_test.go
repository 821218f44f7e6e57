package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortly/internal/entity"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	args := r.Called(ctx, url)
	u, _ := args.Get(0).(*entity.URL)
	return u, args.Error(1)
}

func (r *MockURLRepository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	args := r.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

func (r *MockURLRepository) RetrieveByOriginalURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	args := r.Called(ctx, originalURL)
	u, _ := args.Get(0).(*entity.URL)
	return u, args.Error(1)
}

func (r *MockURLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := r.Called(ctx, shortCode)
	u, _ := args.Get(0).(*entity.URL)
	return u, args.Error(1)
}

func (r *MockURLRepository) RetrieveAndUpdateStats(ctx context.Context, shortCode string, accessedAt time.Time) (*entity.URL, error) {
	args := r.Called(ctx, shortCode, accessedAt)
	u, _ := args.Get(0).(*entity.URL)
	return u, args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (r *MockAdminRepository) List(ctx context.Context, params entity.ListParams) ([]*entity.URL, error) {
	args := r.Called(ctx, params)
	urls, _ := args.Get(0).([]*entity.URL)
	return urls, args.Error(1)
}

func (r *MockAdminRepository) Totals(ctx context.Context, since time.Time) (entity.Totals, error) {
	args := r.Called(ctx, since)
	totals, _ := args.Get(0).(entity.Totals)
	return totals, args.Error(1)
}

func (r *MockAdminRepository) Deactivate(ctx context.Context, id int64) error {
	args := r.Called(ctx, id)
	return args.Error(0)
}
