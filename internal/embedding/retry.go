package embedding

import (
	"context"
	"errors"
	"time"
)

// retryProvider decorates a Provider with a bounded retry on transient
// failures. Context errors are never retried.
type retryProvider struct {
	inner    Provider
	attempts int
	wait     time.Duration
}

// WithRetry wraps p so transient failures are retried up to attempts total
// tries. A stuck or cancelled context fails fast.
func WithRetry(p Provider, attempts int) Provider {
	if attempts < 1 {
		attempts = 1
	}
	return &retryProvider{inner: p, attempts: attempts, wait: 500 * time.Millisecond}
}

func (r *retryProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		vec, err := r.inner.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !retryable(err) || attempt == r.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait):
		}
	}
	return nil, lastErr
}

func (r *retryProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		vecs, err := r.inner.EmbedBatch(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if !retryable(err) || attempt == r.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait):
		}
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var unavailable *ErrUnavailable
	return errors.As(err, &unavailable)
}
