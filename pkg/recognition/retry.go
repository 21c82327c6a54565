package recognition

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type retrying struct {
	gateway    Gateway
	interval   time.Duration
	maxRetries uint64
}

// WithRetry retries failed calls to gateway at a constant interval. Cancellation of the
// caller's context is never retried.
func WithRetry(gateway Gateway, interval time.Duration, maxRetries uint64) Gateway {
	return &retrying{gateway: gateway, interval: interval, maxRetries: maxRetries}
}

func (r *retrying) Analyze(ctx context.Context, image Image) (*Result, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(r.interval), r.maxRetries), ctx)
	result, err := backoff.RetryWithData(func() (*Result, error) {
		result, err := r.gateway.Analyze(ctx, image)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}, policy)
	if err != nil {
		return nil, err
	}
	return result, nil
}
