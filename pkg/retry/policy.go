package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds how an external call is retried: attempt count, backoff schedule,
// per-attempt timeout and which errors qualify for another try.
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsed      time.Duration
	PerCallTimeout  time.Duration

	// Retryable defaults to IsRetryable.
	Retryable func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(err error, wait time.Duration)
}

// DefaultPolicy returns the policy used for model and embedding calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
		MaxElapsed:      60 * time.Second,
		PerCallTimeout:  60 * time.Second,
	}
}

// Do runs op until it succeeds, fails permanently, the attempt budget runs out
// or ctx is done. Exhausted transient failures wrap ErrProviderUnavailable.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var (
		attempts      int
		lastErr       error
		lastRetryable bool
	)

	operation := func() (T, error) {
		attempts++

		callCtx := ctx
		if p.PerCallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.PerCallTimeout)
			defer cancel()
		}

		res, err := op(callCtx)
		if err == nil {
			return res, nil
		}

		lastErr = err
		lastRetryable = ctx.Err() == nil && retryable(err)
		if !lastRetryable {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	res, err := backoff.Retry(ctx, operation, p.options()...)
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if lastErr == nil {
		return res, err
	}
	if !lastRetryable {
		return res, lastErr
	}
	return res, fmt.Errorf("%w after %d attempts: %w", ErrProviderUnavailable, attempts, lastErr)
}

func (p Policy) options() []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxAttempts),
	}
	if p.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.MaxElapsed))
	}
	if p.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(backoff.Notify(p.OnRetry)))
	}
	return opts
}
