package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy - ограниченные повторы с экспоненциальной задержкой.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialBackoff
	exp.MaxInterval = p.MaxBackoff
	if exp.MaxInterval < exp.InitialInterval {
		exp.MaxInterval = exp.InitialInterval
	}
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0 // ограничиваем только числом попыток
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do calls op until it succeeds, returns a non-retryable error, attempts run out or ctx ends.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, name string, retryable func(error) bool, op func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.WarnContext(ctx, "operation failed, retrying",
			slog.String("operation", name),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.Any("error", err),
		)
	}

	return backoff.RetryNotify(operation, p.backOff(ctx), notify)
}
