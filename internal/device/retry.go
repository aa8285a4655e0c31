package device

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/uidump/internal/uinode"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<uint(attempt))
	if d > 30*time.Second || d <= 0 {
		d = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2 + 1))
	return d + jitter
}

// Retrying wraps a ResolutionProvider with a per-attempt timeout and
// exponential backoff. Only retryable errors are retried.
type Retrying struct {
	Provider uinode.ResolutionProvider
	Attempts int           // total attempts, at least 1
	Base     time.Duration // first backoff
	Timeout  time.Duration // per attempt; 0 means none
	Stats    *Stats        // optional latency recorder
	Log      *slog.Logger
}

func (r *Retrying) Resolution(ctx context.Context) (string, error) {
	attempts := max(r.Attempts, 1)
	var lastErr error
	for attempt := range attempts {
		res, err := r.once(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == attempts-1 {
			break
		}
		if r.Log != nil {
			r.Log.Warn("retryable device error", "attempt", attempt, "error", err)
		}
		select {
		case <-time.After(Backoff(attempt, r.Base)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (r *Retrying) once(ctx context.Context) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := r.Provider.Resolution(ctx)
	if r.Stats != nil {
		r.Stats.Record(time.Since(start), err != nil)
	}
	return res, err
}
