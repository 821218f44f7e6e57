package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vadimbarashkov/shortly/internal/entity"
	"golang.org/x/sync/errgroup"
)

const summaryTopN = 5

type adminRepository interface {
	List(ctx context.Context, params entity.ListParams) ([]*entity.URL, error)
	Totals(ctx context.Context, since time.Time) (entity.Totals, error)
	Deactivate(ctx context.Context, id int64) error
}

type AdminUseCase struct {
	adminRepo adminRepository
	now       func() time.Time
}

func NewAdminUseCase(adminRepo adminRepository) *AdminUseCase {
	return &AdminUseCase{
		adminRepo: adminRepo,
		now:       time.Now,
	}
}

// ListURLs returns one page of active URLs along with paging totals.
func (uc *AdminUseCase) ListURLs(ctx context.Context, params entity.ListParams) (*entity.URLPage, error) {
	const op = "usecase.AdminUseCase.ListURLs"

	params = params.Normalize()

	var (
		urls   []*entity.URL
		totals entity.Totals
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		urls, err = uc.adminRepo.List(gCtx, params)
		return err
	})

	g.Go(func() error {
		var err error
		totals, err = uc.adminRepo.Totals(gCtx, uc.startOfDay())
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return &entity.URLPage{
		URLs:        urls,
		Page:        params.Page,
		Limit:       params.Limit,
		Total:       totals.URLs,
		TotalPages:  totalPages(totals.URLs, params.Limit),
		TotalClicks: totals.Clicks,
	}, nil
}

// GetStats returns the dashboard summary over active URLs.
func (uc *AdminUseCase) GetStats(ctx context.Context) (*entity.Summary, error) {
	const op = "usecase.AdminUseCase.GetStats"

	var (
		totals     entity.Totals
		topURLs    []*entity.URL
		recentURLs []*entity.URL
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		totals, err = uc.adminRepo.Totals(gCtx, uc.startOfDay())
		return err
	})

	g.Go(func() error {
		var err error
		topURLs, err = uc.adminRepo.List(gCtx, entity.ListParams{
			Page:      1,
			Limit:     summaryTopN,
			SortBy:    entity.SortByClicks,
			SortOrder: entity.SortDesc,
		})
		return err
	})

	g.Go(func() error {
		var err error
		recentURLs, err = uc.adminRepo.List(gCtx, entity.ListParams{
			Page:      1,
			Limit:     summaryTopN,
			SortBy:    entity.SortByCreatedAt,
			SortOrder: entity.SortDesc,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: failed to collect stats: %w", op, err)
	}

	return &entity.Summary{
		TotalURLs:   totals.URLs,
		TotalClicks: totals.Clicks,
		TodayURLs:   totals.CreatedSince,
		TopURLs:     topURLs,
		RecentURLs:  recentURLs,
	}, nil
}

// DeactivateURL soft-deletes the URL with the given id. Its short code stays reserved.
func (uc *AdminUseCase) DeactivateURL(ctx context.Context, id int64) error {
	const op = "usecase.AdminUseCase.DeactivateURL"

	if err := uc.adminRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return nil
}

func (uc *AdminUseCase) startOfDay() time.Time {
	now := uc.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
