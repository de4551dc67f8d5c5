package session_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/certprep/internal/session"
)

// fakeTicks hands out an unbuffered channel so each send is one consumed tick.
type fakeTicks struct {
	ch      chan time.Time
	stopped atomic.Int32
}

func newFakeTicks() *fakeTicks { return &fakeTicks{ch: make(chan time.Time)} }

func (f *fakeTicks) source() (<-chan time.Time, func()) {
	return f.ch, func() { f.stopped.Add(1) }
}

func (f *fakeTicks) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case f.ch <- time.Time{}:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d was not consumed", i+1)
		}
	}
}

// refused reports whether nobody consumes a tick within a short window.
func (f *fakeTicks) refused() bool {
	select {
	case f.ch <- time.Time{}:
		return false
	case <-time.After(30 * time.Millisecond):
		return true
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown goroutine did not exit")
	}
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	ft := newFakeTicks()
	c := session.NewCountdown(ft.source)
	var ticks, expired atomic.Int32
	require.NoError(t, c.Start(5, func(int) { ticks.Add(1) }, func() { expired.Add(1) }))

	ft.tick(t, 5)
	waitDone(t, c.Done())

	assert.Equal(t, int32(1), expired.Load())
	assert.Equal(t, int32(5), ticks.Load())
	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Running())
	assert.True(t, ft.refused(), "ticked after reaching zero")
	assert.Equal(t, int32(1), ft.stopped.Load())
}

func TestCountdownStopFreezesRemaining(t *testing.T) {
	ft := newFakeTicks()
	c := session.NewCountdown(ft.source)
	var expired atomic.Int32
	require.NoError(t, c.Start(10, nil, func() { expired.Add(1) }))

	ft.tick(t, 3)
	require.Eventually(t, func() bool { return c.Remaining() == 7 }, time.Second, time.Millisecond)

	c.Stop()
	c.Stop()
	waitDone(t, c.Done())
	assert.True(t, ft.refused())
	assert.Equal(t, 7, c.Remaining())
	assert.Zero(t, expired.Load())

	require.NoError(t, c.Start(2, nil, func() { expired.Add(1) }))
	assert.ErrorIs(t, c.Start(2, nil, nil), session.ErrTimerRunning)
	ft.tick(t, 2)
	waitDone(t, c.Done())
	assert.Equal(t, int32(1), expired.Load())
}

func TestCountdownStopFromExpire(t *testing.T) {
	ft := newFakeTicks()
	c := session.NewCountdown(ft.source)
	require.NoError(t, c.Start(1, nil, c.Stop))
	ft.tick(t, 1)
	waitDone(t, c.Done())
	assert.False(t, c.Running())
}

func TestCountdownRejectsNonPositive(t *testing.T) {
	c := session.NewCountdown(newFakeTicks().source)
	assert.ErrorIs(t, c.Start(0, nil, nil), session.ErrNonPositiveTime)
	assert.False(t, c.Running())
}
