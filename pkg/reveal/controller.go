// Package reveal paces the display of a growing text so that it appears at a
// steady, readable speed no matter how irregularly the text arrives.
package reveal

import (
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// lastTickID issues tick ids. Ids are unique across controllers, so a tick
// scheduled by a discarded controller never matches a live one.
var lastTickID atomic.Uint64

func nextTickID() TickID {
	return TickID(lastTickID.Add(1))
}

// Sink receives every change to the revealed text or to the active flag.
type Sink interface {
	Render(revealed string, active bool)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(revealed string, active bool)

// Render implements Sink.
func (f SinkFunc) Render(revealed string, active bool) { f(revealed, active) }

// Controller reveals a target string to a Sink a few runes per tick.
//
// The revealed text is always a prefix of the current target, cut on a rune
// boundary. A Controller serves one generation attempt and must be driven
// from a single goroutine: PushText, StartAnimation, StopAnimation and Tick
// are never called concurrently.
type Controller struct {
	cfg   Config
	sched Scheduler
	sink  Sink

	target   string
	revealed int // byte offset into target

	// armed is set by StartAnimation and cleared by StopAnimation. running
	// is set while a tick is outstanding.
	armed   bool
	running bool
	seq     TickID // outstanding tick, zero when none

	lastTick time.Time
	carry    float64

	pending *Completion
}

// New returns an idle Controller. A nil sink discards updates.
func New(cfg Config, sched Scheduler, sink Sink) *Controller {
	if sink == nil {
		sink = SinkFunc(func(string, bool) {})
	}
	return &Controller{
		cfg:   cfg.withDefaults(),
		sched: sched,
		sink:  sink,
	}
}

// RevealedText returns the text shown so far.
func (c *Controller) RevealedText() string {
	return c.target[:c.revealed]
}

// TargetText returns the most recently pushed target.
func (c *Controller) TargetText() string {
	return c.target
}

// Backlog returns the number of runes still to reveal.
func (c *Controller) Backlog() int {
	return utf8.RuneCountInString(c.target[c.revealed:])
}

// IsAnimationActive reports whether the reveal loop is ticking.
func (c *Controller) IsAnimationActive() bool {
	return c.running
}

// PushText replaces the target. An extension of the current target keeps
// the reveal going. A diverging target clips the revealed text to the longest
// common prefix of the old revealed text and the new target. Pushing the
// current target or an empty string does nothing.
//
// If the animation has been started and the loop went idle after catching
// up, PushText resumes it.
func (c *Controller) PushText(target string) {
	if target == "" || target == c.target {
		return
	}

	clipped := false
	if len(target) < c.revealed || target[:c.revealed] != c.target[:c.revealed] {
		c.revealed = commonPrefix(c.target[:c.revealed], target)
		clipped = true
	}
	c.target = target

	if c.armed && !c.running {
		c.run()
		return
	}
	if clipped {
		c.notify()
	}
}

// StartAnimation starts or resumes the reveal loop and returns a Completion
// that resolves on the tick where the revealed text equals the target. Calls
// made while a completion is pending return that same completion.
func (c *Controller) StartAnimation() *Completion {
	c.armed = true
	if c.pending == nil {
		c.pending = newCompletion()
	}
	p := c.pending

	if !c.running {
		c.run()
	}
	return p
}

// StopAnimation halts the loop and keeps the revealed and target text. A
// pending completion stays unresolved.
func (c *Controller) StopAnimation() {
	c.armed = false
	if !c.running {
		return
	}
	c.running = false
	c.seq = 0
	c.lastTick = time.Time{}
	c.carry = 0
	c.notify()
}

// Tick advances the reveal. Ticks whose id is not the one most recently
// scheduled are ignored, so a tick that was in flight across a stop and a
// restart, or one left over from another controller, cannot double the pace.
func (c *Controller) Tick(id TickID, now time.Time) {
	if !c.running || id != c.seq {
		return
	}

	elapsed := c.cfg.FrameInterval
	if !c.lastTick.IsZero() {
		elapsed = min(max(now.Sub(c.lastTick), 0), c.cfg.maxFrameGap())
	}
	c.lastTick = now

	if backlog := c.Backlog(); backlog > 0 {
		c.carry += c.cfg.rate(backlog) * elapsed.Seconds()
		if n := int(c.carry); n > 0 {
			c.carry -= float64(n)
			c.advance(n)
		}
	}

	if c.revealed == len(c.target) {
		c.finish()
		return
	}

	c.notify()
	c.schedule()
}

func (c *Controller) run() {
	c.running = true
	c.lastTick = time.Time{}
	c.carry = 0
	c.notify()
	c.schedule()
}

func (c *Controller) schedule() {
	c.seq = nextTickID()
	c.sched.Schedule(c.seq, c.cfg.FrameInterval)
}

// finish stops the loop after catching up and resolves the pending
// completion.
func (c *Controller) finish() {
	c.running = false
	c.seq = 0
	c.lastTick = time.Time{}
	c.carry = 0
	c.notify()

	if p := c.pending; p != nil {
		c.pending = nil
		p.resolve()
	}
}

// advance reveals up to n more runes.
func (c *Controller) advance(n int) {
	for ; n > 0 && c.revealed < len(c.target); n-- {
		_, size := utf8.DecodeRuneInString(c.target[c.revealed:])
		c.revealed += size
	}
}

func (c *Controller) notify() {
	c.sink.Render(c.RevealedText(), c.running)
}

// commonPrefix returns the byte length of the longest common prefix of a and
// b, backed off to a rune boundary of b.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(b) && !utf8.RuneStart(b[i]) {
		i--
	}
	return i
}
