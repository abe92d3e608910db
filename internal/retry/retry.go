// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry wraps fallible operations with bounded exponential backoff.
//
// An operation is any func(ctx) (T, error); blocking and non-blocking work
// satisfy the same contract, so call sites need no separate paths. The last
// error is returned unchanged when the retry budget is exhausted.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/pdiddy/report-engine/pkg/types"
)

// Do invokes op, retrying on failure up to cfg.MaxRetries times with
// exponential backoff: the delay before retry n (zero-indexed) is
// min(BaseDelay * 2^n, MaxDelay). A success returns immediately with no
// backoff. After the initial try plus MaxRetries retries have all failed,
// the most recent error is returned verbatim. Context cancellation during
// a backoff wait returns ctx.Err().
func Do[T any](ctx context.Context, cfg types.RetryConfig, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := Backoff(cfg, attempt-1)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return zero, lastErr
}

// Backoff returns the delay before retry n (zero-indexed):
// min(BaseDelay * 2^n, MaxDelay).
func Backoff(cfg types.RetryConfig, n int) time.Duration {
	d := time.Duration(math.Pow(2, float64(n))) * cfg.BaseDelay
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}
