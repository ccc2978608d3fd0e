package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Backoff is the retry policy for transient failures.
type Backoff struct {
	Attempts int           `validate:"gte=1"`
	Base     time.Duration `validate:"gte=0"`
	Max      time.Duration `validate:"gtefield=Base"`
}

// DefaultBackoff tries three times, waiting about 1s then 2s.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, Base: time.Second, Max: 8 * time.Second}
}

// delay is the wait before retry n (0-based): Base doubled n times, capped
// at Max, with the lower half randomized.
func (b Backoff) delay(n int) time.Duration {
	d := b.Base << n
	if d <= 0 || d > b.Max {
		d = b.Max
	}
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half+1)
}

type retrying struct {
	Provider
	policy  Backoff
	timeout time.Duration
	wait    func(context.Context, time.Duration) error
}

// WithRetry retries rate limits and unavailable backends per policy. An
// invalid reply is retried once. A positive timeout bounds the whole call.
func WithRetry(p Provider, policy Backoff, timeout time.Duration) Provider {
	return &retrying{Provider: p, policy: policy, timeout: timeout, wait: sleep}
}

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempts := max(r.policy.Attempts, 1)
	invalidSeen := false
	var err error
	for n := 0; n < attempts; n++ {
		if n > 0 {
			if werr := r.wait(ctx, r.pause(n-1, err)); werr != nil {
				return nil, werr
			}
		}
		var resp *Response
		resp, err = r.Provider.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var invalid *InvalidResponseError
		if errors.As(err, &invalid) {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
			continue
		}
		if !transient(err) {
			return nil, err
		}
	}
	return nil, err
}

func (r *retrying) pause(n int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return r.policy.delay(n)
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rl *RateLimitError
	var un *UnavailableError
	return errors.As(err, &rl) || errors.As(err, &un)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
