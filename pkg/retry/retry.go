// Package retry has utilities to retry operations.
package retry

import "time"

type config struct {
	interval          time.Duration
	backoff           bool
	backoffMultiplier int
	maxAttempts       int
}

// Option is the type to set options on the retry configuration.
type Option func(*config)

// WithInterval allows to specify a custom interval between attempts.
func WithInterval(i time.Duration) Option {
	return func(c *config) {
		c.interval = i
	}
}

// WithBackoff enables exponential backoff on the interval between attempts.
// The interval is capped at 5x the initial interval.
func WithBackoff(b bool) Option {
	return func(c *config) {
		c.backoff = b
	}
}

// WithBackoffMultiplier sets the growth factor of the interval between
// attempts, and implies WithBackoff. The interval is capped at 5x the
// initial interval.
func WithBackoffMultiplier(m int) Option {
	return func(c *config) {
		c.backoff = true
		c.backoffMultiplier = m
	}
}

// WithMaxAttempts allows to specify a maximum number of attempts before the
// doer gives up and returns the last error. Values <= 0 mean unlimited
// attempts.
func WithMaxAttempts(a int) Option {
	return func(c *config) {
		c.maxAttempts = a
	}
}

// Do executes the provided function, retrying on error with the configured
// interval until it succeeds or the maximum number of attempts is reached,
// in which case the last error is returned.
func Do(fn func() error, opts ...Option) error {
	cfg := &config{
		interval:          30 * time.Second,
		backoffMultiplier: 2,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	maxInterval := 5 * cfg.interval
	interval := cfg.interval
	attempts := 0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		attempts++
		err := fn()
		if err == nil {
			return nil
		}

		if cfg.maxAttempts > 0 && attempts >= cfg.maxAttempts {
			return err
		}

		if cfg.backoff {
			interval = interval * time.Duration(cfg.backoffMultiplier)
			if interval > maxInterval {
				interval = maxInterval
			}
			ticker.Reset(interval)
		}

		<-ticker.C
	}
}
