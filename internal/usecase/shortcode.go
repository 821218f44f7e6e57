package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortly/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrMaxRetriesExceeded is returned when no free short code was found within maxShortCodeAttempts.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

const (
	maxShortCodeAttempts = 5
	// Attempts from this index on generate codes one character longer.
	fallbackAttempt = 3
)

func newNanoID(length int) (string, error) {
	return gonanoid.New(length)
}

// generateShortCode draws a code from the URL-safe nanoid alphabet and checks the store for it.
// A taken code is reported as entity.ErrShortCodeExists.
func (uc *URLUseCase) generateShortCode(ctx context.Context, attempt int) (string, error) {
	const op = "usecase.URLUseCase.generateShortCode"

	length := uc.shortCodeLength
	if attempt >= fallbackAttempt {
		length++
	}

	shortCode, err := uc.newCode(length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	exists, err := uc.urlRepo.ShortCodeExists(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("%s: failed to check short code: %w", op, err)
	}
	if exists {
		return "", fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	return shortCode, nil
}
