// Package retry runs operations with capped exponential backoff. It backs
// the PostgreSQL connect loop and scan-analysis API calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
	// MaxTotalTimeout bounds all attempts together; zero means no bound.
	MaxTotalTimeout time.Duration
}

// DefaultConfig suits startup dependencies: about a minute of attempts.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		Jitter:          0.2,
		MaxTotalTimeout: time.Minute,
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type delayedError struct {
	err   error
	delay time.Duration
}

func (e *delayedError) Error() string { return e.err.Error() }
func (e *delayedError) Unwrap() error { return e.err }

// After asks Do to wait at least d before the next attempt, e.g. for a
// server-supplied Retry-After.
func After(d time.Duration, err error) error {
	if err == nil {
		return nil
	}
	return &delayedError{err: err, delay: d}
}

type options struct {
	name    string
	onRetry func(attempt int, err error, nextDelay time.Duration)
}

// Option customizes a single Do call.
type Option func(*options)

// Named prefixes returned errors with name.
func Named(name string) Option {
	return func(o *options) { o.name = name }
}

// OnRetry is called after each failed attempt that will be retried.
func OnRetry(fn func(attempt int, err error, nextDelay time.Duration)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Do calls fn until it succeeds, returns a Permanent error, runs out of
// attempts or ctx ends.
func Do(ctx context.Context, cfg Config, fn func() error, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return o.wrap(fmt.Errorf("retry aborted: %w", err))
	}

	delay := cfg.InitialDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= cfg.MaxAttempts {
			return o.wrap(fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err))
		}

		wait := cfg.jittered(delay)
		var delayed *delayedError
		if errors.As(err, &delayed) && delayed.delay > wait {
			wait = delayed.delay
		}
		if o.onRetry != nil {
			o.onRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return o.wrap(fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempt, ctx.Err(), err))
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

func (c Config) jittered(d time.Duration) time.Duration {
	if c.Jitter <= 0 || d <= 0 {
		return d
	}
	spread := (rand.Float64()*2 - 1) * c.Jitter
	return time.Duration(float64(d) * (1 + spread))
}

func (o options) wrap(err error) error {
	if o.name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", o.name, err)
}
