package common

import (
	"context"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/sethvargo/go-retry"
)

const (
	retryAttempts = 3
	retryBase     = 50 * time.Millisecond
)

// WithRetry выполняет операцию движка и повторяет её при конфликте конкурентных изменений.
// Остальные ошибки возвращаются сразу.
func WithRetry[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		if apperr.Retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})

	return result, err
}
