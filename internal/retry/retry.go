// Package retry wraps one logical operation with bounded
// exponential-backoff retry. Failures classified as the caller's fault
// (classify.Fatal) short-circuit immediately; everything else is assumed
// transient until the attempt budget is exhausted.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/omnai-sh/omnai/internal/classify"
)

type Policy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration

	// Sleep replaces the inter-attempt sleep; nil sleeps for real but stays
	// cancellable through ctx. Tests observe delays here.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is called before each sleep with the failed attempt's error.
	OnRetry func(err error, attempt int, delay time.Duration)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      5 * time.Second,
		BackoffMultiplier: 2.0,
		MaxDelay:          60 * time.Second,
	}
}

// Run invokes op up to MaxAttempts times. kindOf classifies a failed
// attempt; fatal kinds return the error immediately with zero sleeps. The
// inter-attempt sleep is the only suspension point and honors ctx.
func Run(ctx context.Context, p Policy, op func() error, kindOf func(error) classify.Kind) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BackoffMultiplier <= 0 {
		p.BackoffMultiplier = 1.0
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	delay := p.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if kindOf != nil && classify.Fatal(kindOf(lastErr)) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(lastErr, attempt, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * p.BackoffMultiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
