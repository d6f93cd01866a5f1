package client

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// TurnTimer runs the local countdown for the seat on turn. One timer is
// active per table at a time. Expiry is a cooperative signal: it never
// mutates table state itself, it only hands the seat back to the caller,
// which feeds a synthetic event through the dispatcher's stream.
type TurnTimer struct {
	logger *log.Logger
	clock  quartz.Clock

	mu       sync.Mutex
	seat     int
	deadline time.Time
	timer    *quartz.Timer
}

// NewTurnTimer creates a timer driven by the given clock. Tests inject a
// quartz mock to control time.
func NewTurnTimer(clock quartz.Clock, logger *log.Logger) *TurnTimer {
	return &TurnTimer{
		logger: logger.WithPrefix("timer"),
		clock:  clock,
		seat:   -1,
	}
}

// Start arms the countdown for a seat, replacing any previous timer.
// expire runs on the clock's goroutine once the deadline passes without a
// cancellation.
func (t *TurnTimer) Start(seat, seconds int, expire func(seat int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	d := time.Duration(seconds) * time.Second
	t.seat = seat
	t.deadline = t.clock.Now().Add(d)
	t.timer = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		if t.seat != seat {
			t.mu.Unlock()
			return
		}
		t.seat = -1
		t.timer = nil
		t.mu.Unlock()

		t.logger.Debug("turn timer expired", "seat", seat)
		expire(seat)
	})

	t.logger.Debug("turn timer started", "seat", seat, "seconds", seconds)
}

// Cancel stops the countdown if it is armed for the given seat. Any action
// event for the seat cancels it, whatever the source.
func (t *TurnTimer) Cancel(seat int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seat == seat {
		t.stopLocked()
	}
}

// Stop cancels whatever countdown is running
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *TurnTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seat = -1
}

// ActiveSeat returns the seat being timed, or -1
func (t *TurnTimer) ActiveSeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seat
}

// Remaining returns the time left for display, zero when idle or expired
func (t *TurnTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seat < 0 {
		return 0
	}
	if remaining := t.deadline.Sub(t.clock.Now()); remaining > 0 {
		return remaining
	}
	return 0
}
