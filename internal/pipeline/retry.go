package pipeline

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dgallion1/wikiqa/internal/extract"
)

const (
	DefaultMaxRetries = 3
	maxBackoff        = 30 * time.Second
)

// Backoff builds the retry schedule for completion calls: exponential from
// base with 20% jitter, capped per wait, at most maxRetries retries.
func Backoff(base time.Duration, maxRetries uint64) retry.Backoff {
	b := retry.NewExponential(base)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(maxBackoff, b)
	return retry.WithMaxRetries(maxRetries, b)
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// the backoff is exhausted. onRetry is called before each wait.
func withRetry(ctx context.Context, b retry.Backoff, fn func(context.Context) error, onRetry func(attempt int, err error)) error {
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && extract.IsRetryable(err) {
			if onRetry != nil {
				onRetry(attempt, err)
			}
			attempt++
			return retry.RetryableError(err)
		}
		return err
	})
}
