// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the state of a key's window after a request was counted.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func newResult(limit int, count int64, resetIn time.Duration) Result {
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
	}

	if !res.Allowed {
		res.RetryAfter = resetIn
	}

	return res
}
