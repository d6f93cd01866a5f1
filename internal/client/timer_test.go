package client

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnTimerExpiry(t *testing.T) {
	mockClock := quartz.NewMock(t)
	timer := NewTurnTimer(mockClock, testLogger())

	expired := make(chan int, 1)
	timer.Start(3, 15, func(seat int) { expired <- seat })
	assert.Equal(t, 3, timer.ActiveSeat())
	assert.Equal(t, 15*time.Second, timer.Remaining())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(15 * time.Second).MustWait(ctx)

	select {
	case seat := <-expired:
		assert.Equal(t, 3, seat)
	default:
		t.Fatal("expected expiry callback")
	}
	assert.Equal(t, -1, timer.ActiveSeat())
}

func TestTurnTimerCancelledByAction(t *testing.T) {
	mockClock := quartz.NewMock(t)
	timer := NewTurnTimer(mockClock, testLogger())

	expired := make(chan int, 1)
	timer.Start(3, 15, func(seat int) { expired <- seat })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// an action arrives five seconds in
	mockClock.Advance(5 * time.Second).MustWait(ctx)
	timer.Cancel(3)
	assert.Equal(t, -1, timer.ActiveSeat())

	// well past the original deadline, nothing fires
	mockClock.Advance(30 * time.Second).MustWait(ctx)
	select {
	case <-expired:
		t.Fatal("cancelled timer must not expire")
	default:
	}
}

func TestTurnTimerCancelWrongSeat(t *testing.T) {
	mockClock := quartz.NewMock(t)
	timer := NewTurnTimer(mockClock, testLogger())

	timer.Start(3, 15, func(int) {})
	timer.Cancel(5)
	assert.Equal(t, 3, timer.ActiveSeat())
}

func TestTurnTimerRestartReplaces(t *testing.T) {
	mockClock := quartz.NewMock(t)
	timer := NewTurnTimer(mockClock, testLogger())

	firstExpired := make(chan int, 1)
	timer.Start(1, 10, func(seat int) { firstExpired <- seat })
	timer.Start(2, 10, func(int) {})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(10 * time.Second).MustWait(ctx)

	select {
	case <-firstExpired:
		t.Fatal("replaced timer must not expire")
	default:
	}
}

func TestTurnTimerRemaining(t *testing.T) {
	mockClock := quartz.NewMock(t)
	timer := NewTurnTimer(mockClock, testLogger())

	require.Equal(t, time.Duration(0), timer.Remaining())

	timer.Start(0, 20, func(int) {})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(8 * time.Second).MustWait(ctx)

	assert.Equal(t, 12*time.Second, timer.Remaining())

	timer.Stop()
	assert.Equal(t, time.Duration(0), timer.Remaining())
}
