package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Operation is one attempt of the work being retried.
type Operation = func() error

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it immediately instead of retrying.
// Do unwraps it on the way out, so callers never see the marker type.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Config shapes the backoff schedule. Delays grow by BackoffFactor per
// attempt, capped at MaxDelay, with up to Jitter added on top of each
// sleep.
type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    5,
		BackoffFactor: 2.15,
		InitialDelay:  300 * time.Millisecond,
		MaxDelay:      20 * time.Second,
		Jitter:        50 * time.Millisecond,
	}
}

type Retrier struct {
	config *Config
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{config: config}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// Do runs op up to MaxRetries+1 times, sleeping between attempts. It
// stops early on success, on a Permanent error, or when ctx ends while
// waiting.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	delay := r.config.InitialDelay

	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		if attempt == r.config.MaxRetries {
			return err
		}

		if waitErr := r.sleep(ctx, delay); waitErr != nil {
			return waitErr
		}
		delay = r.nextDelay(delay)
	}
}

func (r *Retrier) sleep(ctx context.Context, delay time.Duration) error {
	wait := delay + time.Duration(rand.Float64()*float64(r.config.Jitter))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (r *Retrier) nextDelay(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * r.config.BackoffFactor)
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	return delay
}
