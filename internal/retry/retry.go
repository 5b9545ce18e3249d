// Package retry wraps remote calls in bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"dionysia/internal/logging"
)

var (
	// ErrBlank marks a call that succeeded but produced nothing usable; it is retried like a failure.
	ErrBlank = errors.New("blank result")
	// ErrExhausted wraps the last failure once every attempt has been used.
	ErrExhausted = errors.New("retries exhausted")
)

// Policy describes the backoff schedule.
type Policy struct {
	MaxTries        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	Multiplier      float64
	Jitter          float64
}

// DefaultPolicy matches the schedule used for every remote call: four tries
// starting at one second and doubling with 50% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxTries:        4,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
		Jitter:          0.5,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxTries <= 0 {
		p.MaxTries = def.MaxTries
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = def.MaxInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.Jitter <= 0 || p.Jitter >= 1 {
		p.Jitter = def.Jitter
	}
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = p.Jitter
	exp.MaxElapsedTime = p.MaxElapsed
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxTries-1)), ctx)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a permanent error, the context ends,
// or the policy runs out of tries. Each backoff logs one warning. After the
// last try the zero value is returned with an error wrapping ErrExhausted.
func Do[T any](ctx context.Context, policy Policy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = logging.NewNop()
	}
	policy = policy.normalized()

	attempt := 0
	permanent := false
	operation := func() (T, error) {
		attempt++
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			permanent = true
			return zero, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			permanent = true
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}
	notify := func(err error, wait time.Duration) {
		logging.WarnWithContext(logger, "backing off after failed attempt", "retry_backoff",
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Int("max_tries", policy.MaxTries),
			logging.Duration("wait", wait),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "transient failures are retried automatically"),
			logging.String(logging.FieldImpact, "request delayed"),
		)
	}

	value, err := backoff.RetryNotifyWithData(operation, policy.backOff(ctx), notify)
	if err == nil {
		return value, nil
	}
	if permanent {
		return zero, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, fmt.Errorf("%s: %w", op, ctxErr)
	}
	return zero, fmt.Errorf("%s: %w after %d attempts: %w", op, ErrExhausted, attempt, err)
}
