package services

import (
	"sync/atomic"
	"testing"
	"time"

	"transconnect/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsTasksWhenDue(t *testing.T) {
	c := clock.NewManual(epoch)
	s := NewScheduler(c)
	defer s.Close()

	var fired []string
	require.True(t, s.After(2*time.Second, func() { fired = append(fired, "b") }))
	require.True(t, s.After(time.Second, func() { fired = append(fired, "a") }))
	assert.Equal(t, 2, s.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a"}, fired)
	assert.Equal(t, 1, s.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Zero(t, s.Pending())
}

func TestScheduler_CloseCancelsPending(t *testing.T) {
	c := clock.NewManual(epoch)
	s := NewScheduler(c)

	var fired atomic.Int32
	s.After(time.Second, func() { fired.Add(1) })
	s.After(5*time.Second, func() { fired.Add(1) })

	s.Close()
	assert.Zero(t, s.Pending())
	assert.Zero(t, c.Pending())

	c.Advance(time.Minute)
	assert.Zero(t, fired.Load())

	assert.False(t, s.After(time.Second, func() { fired.Add(1) }))
	s.Close()
}

func TestScheduler_CallbackCanScheduleMore(t *testing.T) {
	c := clock.NewManual(epoch)
	s := NewScheduler(c)
	defer s.Close()

	var fired []int
	s.After(time.Second, func() {
		fired = append(fired, 1)
		s.After(time.Second, func() { fired = append(fired, 2) })
	})

	c.Advance(3 * time.Second)
	assert.Equal(t, []int{1, 2}, fired)
}

func TestScheduler_RealClockCloseWaitsForRunning(t *testing.T) {
	s := NewScheduler(clock.Real())

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	s.After(time.Millisecond, func() {
		close(started)
		<-release
		finished.Store(true)
	})

	<-started
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	s.Close()
	assert.True(t, finished.Load())
}
