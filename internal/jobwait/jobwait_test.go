package jobwait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sleeps []time.Duration
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return ctx.Err()
}

func states(seq ...string) (CheckFunc, *int) {
	calls := 0
	return func(ctx context.Context) (string, bool, error) {
		s := seq[calls]
		calls++
		return s, s == "COMPLETED", nil
	}, &calls
}

func TestPoll_DoneImmediately(t *testing.T) {
	rec := &recorder{}
	check, calls := states("COMPLETED")

	require.NoError(t, Poll(context.Background(), Options{Sleep: rec.sleep}, check))
	assert.Equal(t, 1, *calls)
	assert.Empty(t, rec.sleeps)
}

func TestPoll_BacksOffWhileUnchanged(t *testing.T) {
	rec := &recorder{}
	check, calls := states("QUEUED", "QUEUED", "QUEUED", "PROCESSING", "PROCESSING", "COMPLETED")

	opts := Options{
		InitialInterval: time.Second,
		MaxInterval:     2 * time.Second,
		Multiplier:      1.5,
		Jitter:          -1,
		Sleep:           rec.sleep,
	}
	require.NoError(t, Poll(context.Background(), opts, check))

	assert.Equal(t, 6, *calls)
	assert.Equal(t, []time.Duration{
		time.Second,             // after first QUEUED
		1500 * time.Millisecond, // unchanged
		2 * time.Second,         // unchanged, capped
		time.Second,             // changed to PROCESSING, reset
		1500 * time.Millisecond, // unchanged
	}, rec.sleeps)
}

func TestPoll_CheckError(t *testing.T) {
	boom := errors.New("boom")
	err := Poll(context.Background(), Options{Sleep: (&recorder{}).sleep}, func(context.Context) (string, bool, error) {
		return "", false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPoll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Poll(ctx, Options{InitialInterval: time.Hour}, func(context.Context) (string, bool, error) {
		return "QUEUED", false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()

	assert.Equal(t, PollingInitialInterval, o.InitialInterval)
	assert.Equal(t, PollingMaxBackoff, o.MaxInterval)
	assert.Equal(t, PollingBackoffMultiplier, o.Multiplier)
	assert.Equal(t, PollingJitterFactor, o.Jitter)
	assert.NotNil(t, o.Sleep)
}

func TestWithJitter_Bounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := withJitter(time.Second, 0.3)
		if d < time.Second || d > 1300*time.Millisecond {
			t.Fatalf("withJitter() = %v, want within [1s, 1.3s]", d)
		}
	}
	assert.Equal(t, time.Second, withJitter(time.Second, 0))
}
