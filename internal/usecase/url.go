package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vadimbarashkov/shortly/internal/entity"
)

type urlRepository interface {
	Save(ctx context.Context, url *entity.URL) (*entity.URL, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	RetrieveByOriginalURL(ctx context.Context, originalURL string) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string, accessedAt time.Time) (*entity.URL, error)
}

type URLUseCase struct {
	shortCodeLength int
	urlRepo         urlRepository
	newCode         func(length int) (string, error)
	now             func() time.Time
}

func NewURLUseCase(shortCodeLength int, urlRepo urlRepository) *URLUseCase {
	return &URLUseCase{
		shortCodeLength: shortCodeLength,
		urlRepo:         urlRepo,
		newCode:         newNanoID,
		now:             time.Now,
	}
}

// ShortenURL returns the active record for originalURL, creating one when none exists.
// The boolean result is true only if a new record was inserted.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL, createdBy string) (*entity.URL, bool, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	url, err := uc.urlRepo.RetrieveByOriginalURL(ctx, originalURL)
	if err == nil {
		return url, false, nil
	}
	if !errors.Is(err, entity.ErrURLNotFound) {
		return nil, false, fmt.Errorf("%s: failed to look up original url: %w", op, err)
	}

	if createdBy == "" {
		createdBy = entity.DefaultCreatedBy
	}

	for attempt := 0; attempt < maxShortCodeAttempts; attempt++ {
		shortCode, err := uc.generateShortCode(ctx, attempt)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, false, fmt.Errorf("%s: %w", op, err)
		}

		url, err := uc.urlRepo.Save(ctx, &entity.URL{
			ShortCode:   shortCode,
			OriginalURL: originalURL,
			CreatedBy:   createdBy,
			IsActive:    true,
			CreatedAt:   uc.now().UTC(),
		})
		switch {
		case err == nil:
			return url, true, nil
		case errors.Is(err, entity.ErrShortCodeExists):
			continue
		case errors.Is(err, entity.ErrOriginalURLExists):
			// A concurrent request stored the same original url first.
			url, err := uc.urlRepo.RetrieveByOriginalURL(ctx, originalURL)
			if err != nil {
				return nil, false, fmt.Errorf("%s: failed to look up original url: %w", op, err)
			}

			return url, false, nil
		default:
			return nil, false, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}
	}

	return nil, false, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode records a visit and returns the updated URL.
// Soft-deleted URLs are reported as entity.ErrURLNotFound.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.RetrieveAndUpdateStats(ctx, shortCode, uc.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}
