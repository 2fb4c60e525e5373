// Package jobwait polls an asynchronous job until it reaches a terminal
// state, backing off while the job's state stays the same.
package jobwait

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	PollingInitialInterval   = 2 * time.Second
	PollingMaxBackoff        = 30 * time.Second
	PollingBackoffMultiplier = 1.5
	PollingJitterFactor      = 0.3
)

// CheckFunc fetches the job once. It reports the job's current state and
// whether that state is terminal.
type CheckFunc func(ctx context.Context) (state string, done bool, err error)

// Options tunes the polling cadence. Zero values take the package defaults.
type Options struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Jitter is the fraction of the interval added at random. Negative
	// disables jitter; zero means PollingJitterFactor.
	Jitter float64
	// Sleep waits between checks. Defaults to a timer honoring ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o Options) withDefaults() Options {
	if o.InitialInterval <= 0 {
		o.InitialInterval = PollingInitialInterval
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = PollingMaxBackoff
	}
	if o.MaxInterval < o.InitialInterval {
		o.MaxInterval = o.InitialInterval
	}
	if o.Multiplier < 1 {
		o.Multiplier = PollingBackoffMultiplier
	}
	if o.Jitter == 0 {
		o.Jitter = PollingJitterFactor
	} else if o.Jitter < 0 {
		o.Jitter = 0
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return o
}

// Poll calls check immediately and then repeatedly until it reports done,
// returns an error, or ctx is done. The interval grows by Multiplier while
// the state is unchanged and resets to InitialInterval when it changes.
func Poll(ctx context.Context, opts Options, check CheckFunc) error {
	opts = opts.withDefaults()

	interval := opts.InitialInterval
	lastState := ""

	for attempt := 0; ; attempt++ {
		state, done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if attempt > 0 {
			if state == lastState {
				interval = nextInterval(interval, opts)
			} else {
				interval = opts.InitialInterval
			}
		}
		lastState = state

		if err := opts.Sleep(ctx, withJitter(interval, opts.Jitter)); err != nil {
			return err
		}
	}
}

func nextInterval(current time.Duration, opts Options) time.Duration {
	next := time.Duration(float64(current) * opts.Multiplier)
	if next > opts.MaxInterval {
		next = opts.MaxInterval
	}
	return next
}

// withJitter spreads pollers apart to prevent thundering herd.
func withJitter(interval time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return interval
	}
	return interval + time.Duration(rand.Float64()*factor*float64(interval))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
