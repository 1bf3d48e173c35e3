package reveal

import (
	"sync"
	"time"
)

// TickID identifies one scheduled tick. A controller only honours the tick it
// scheduled most recently.
type TickID uint64

// Scheduler is the host's periodic callback capability. Schedule asks the
// host to call Controller.Tick with id after roughly d has passed, on the
// same goroutine that drives the rest of the controller.
type Scheduler interface {
	Schedule(id TickID, d time.Duration)
}

// Request is a tick requested from a Queue.
type Request struct {
	ID    TickID
	Delay time.Duration
}

// Queue is a Scheduler that records requests for the host to pick up. It
// suits event loops that turn a request into their own timer message, such as
// a Bubble Tea program, and tests that drive time by hand.
type Queue struct {
	pending []Request
}

// Schedule implements Scheduler.
func (q *Queue) Schedule(id TickID, d time.Duration) {
	q.pending = append(q.pending, Request{ID: id, Delay: d})
}

// Take removes and returns the oldest pending request.
func (q *Queue) Take() (Request, bool) {
	if len(q.pending) == 0 {
		return Request{}, false
	}
	r := q.pending[0]
	q.pending = q.pending[1:]
	return r, true
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Tick is delivered on Timer.C when a scheduled tick fires.
type Tick struct {
	ID TickID
	At time.Time
}

// Timer is a Scheduler for hosts without a frame callback. Fired ticks are
// delivered on C and the host's loop passes them to Controller.Tick.
type Timer struct {
	C chan Tick

	mu     sync.Mutex
	timer  *time.Timer
	quit   chan struct{}
	closed bool
}

// NewTimer returns a ready Timer. Call Close to release it.
func NewTimer() *Timer {
	return &Timer{
		C:    make(chan Tick, 1),
		quit: make(chan struct{}),
	}
}

// Schedule implements Scheduler. Scheduling replaces any tick that has not
// fired yet.
func (t *Timer) Schedule(id TickID, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, func() {
		select {
		case t.C <- Tick{ID: id, At: time.Now()}:
		case <-t.quit:
		}
	})
}

// Close stops the pending tick and unblocks any tick still being delivered.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
	}
	close(t.quit)
}
