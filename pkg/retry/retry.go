// Package retry waits for the backing services to accept connections.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Config bounds how long a service is waited for
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
	// Jitter spreads each delay by up to this fraction of it
	Jitter float64
}

// DefaultConfig waits up to a minute over ten attempts
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: time.Minute,
		Jitter:          0.2,
	}
}

// Permanent wraps err so Until gives up without another attempt
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Until calls ping with exponential backoff until it succeeds. It gives up
// when attempts or MaxTotalTimeout run out, when ctx ends, or as soon as ping
// returns an error wrapped by Permanent. Failed attempts are logged as warnings.
func Until(ctx context.Context, cfg Config, logger *zerolog.Logger, service string, ping func(ctx context.Context) error) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialDelay
	exp.MaxInterval = cfg.MaxDelay
	exp.Multiplier = cfg.BackoffFactor
	exp.RandomizationFactor = cfg.Jitter
	exp.MaxElapsedTime = 0

	var policy backoff.BackOff = exp
	if cfg.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(cfg.MaxAttempts-1))
	}
	policy = backoff.WithContext(policy, ctx)

	attempts := 0
	var last error
	err := backoff.RetryNotify(
		func() error {
			attempts++
			err := ping(ctx)
			if err != nil {
				last = err
				var permanent *backoff.PermanentError
				if errors.As(err, &permanent) {
					last = permanent.Err
				}
			}
			return err
		},
		policy,
		func(err error, next time.Duration) {
			logger.Warn().Err(err).
				Str("service", service).
				Int("attempt", attempts).
				Dur("retry_in", next).
				Msg("connection attempt failed")
		},
	)
	if err == nil {
		return nil
	}
	if last != nil && !errors.Is(err, last) {
		return fmt.Errorf("%s: gave up after %d attempts: %w (last error: %v)", service, attempts, err, last)
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", service, attempts, err)
}
