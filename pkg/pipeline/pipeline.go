// Package pipeline drives the incremental generation preview: it folds
// stream deltas into a preview record, hands the formatted preview to a
// reveal controller, and only declares a generation complete once the final
// paper has been fully revealed.
package pipeline

import (
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/preview"
	"github.com/papercomputeco/quizpaper/pkg/reveal"
)

// StatusComplete is the status line once a generation has finished.
const StatusComplete = "Generation complete"

// DisplaySink renders the revealed preview. It is the only place the
// pipeline writes display output to.
type DisplaySink interface {
	Render(revealed string, active bool)
}

// PersistenceSink receives the finalized paper of a completed attempt.
type PersistenceSink interface {
	Persist(p *paper.Paper)
}

// Config wires a Pipeline to its host.
type Config struct {
	// Reveal tunes the reveal rate.
	Reveal reveal.Config

	// Scheduler delivers ticks and is required. The host passes fired ticks
	// back through Tick.
	Scheduler reveal.Scheduler

	// Display is optional.
	Display DisplaySink

	// Persistence is optional.
	Persistence PersistenceSink

	Logger *slog.Logger
}

// Pipeline owns one generation attempt at a time.
//
// All methods must be called from the host's single event loop. The
// pipeline holds no locks.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger

	epoch uint64
	state State

	raw    strings.Builder
	record preview.Record
	ctrl   *reveal.Controller

	result *paper.Paper
	err    error
}

// New returns an Idle pipeline at epoch zero. It panics when cfg has no
// Scheduler.
func New(cfg Config) *Pipeline {
	if cfg.Scheduler == nil {
		panic("pipeline: Config.Scheduler is required")
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logger.OrNop(cfg.Logger),
	}
	p.ctrl = p.newController()
	return p
}

// Begin resets the pipeline for a new attempt and returns its epoch. Stream
// sources tag their events with it.
func (p *Pipeline) Begin() uint64 {
	p.Reset()
	return p.epoch
}

// Reset abandons the current attempt. The epoch advances so events still in
// flight for the old attempt are dropped, the animation stops, and the
// display is cleared.
func (p *Pipeline) Reset() {
	p.ctrl.StopAnimation()

	p.epoch++
	p.state = Idle
	p.raw.Reset()
	p.record = preview.Record{}
	p.result = nil
	p.err = nil
	p.ctrl = p.newController()

	p.logger.Debug("pipeline reset", "epoch", p.epoch)
	if p.cfg.Display != nil {
		p.cfg.Display.Render("", false)
	}
}

// Handle applies an event from the stream source. Events from an earlier
// epoch are dropped.
func (p *Pipeline) Handle(env Envelope) {
	if env.Epoch != p.epoch {
		p.logger.Debug("dropping stale stream event",
			"type", env.Event.Type,
			"event_epoch", env.Epoch,
			"epoch", p.epoch,
		)
		return
	}

	switch env.Event.Type {
	case EventDelta:
		p.PushRawChunk(env.Event.Text)
	case EventComplete:
		p.NotifyComplete(env.Event.Result)
	case EventError:
		p.NotifyError(env.Event.Message)
	default:
		p.logger.Warn("ignoring unknown stream event", "type", env.Event.Type)
	}
}

// PushRawChunk appends a raw chunk and refreshes the preview.
func (p *Pipeline) PushRawChunk(chunk string) {
	switch p.state {
	case Idle:
		p.setState(Streaming)
	case Streaming:
	default:
		p.logger.Debug("dropping delta", "state", p.state)
		return
	}

	p.raw.WriteString(chunk)
	p.record = preview.Extract(p.raw.String())
	p.ctrl.PushText(preview.Format(p.record))
	p.ctrl.StartAnimation()
}

// NotifyComplete reveals the authoritative paper. The attempt becomes
// Complete, and the paper is handed to the persistence sink, only once the
// reveal has caught up with it.
func (p *Pipeline) NotifyComplete(result *paper.Paper) {
	if p.state != Idle && p.state != Streaming {
		p.logger.Debug("dropping completion", "state", p.state)
		return
	}
	if result == nil {
		p.NotifyError("stream completed without a paper")
		return
	}

	p.setState(Finalizing)
	p.record = preview.FromPaper(result)
	p.ctrl.PushText(preview.Format(p.record))

	epoch := p.epoch
	p.ctrl.StartAnimation().Then(func() {
		p.finalize(epoch, result)
	})
}

// NotifyError fails the attempt. The revealed text is kept.
func (p *Pipeline) NotifyError(message string) {
	if p.state.Terminal() {
		p.logger.Debug("dropping error", "state", p.state, "message", message)
		return
	}

	p.ctrl.StopAnimation()
	p.err = &StreamError{Message: message}
	p.setState(Failed)
	p.logger.Error("generation failed", "epoch", p.epoch, "error", message)
}

// Tick forwards a scheduler tick to the reveal controller.
func (p *Pipeline) Tick(id reveal.TickID, now time.Time) {
	p.ctrl.Tick(id, now)
}

func (p *Pipeline) finalize(epoch uint64, result *paper.Paper) {
	if epoch != p.epoch || p.state != Finalizing {
		return
	}

	p.result = result
	p.setState(Complete)
	if p.cfg.Persistence != nil {
		p.cfg.Persistence.Persist(result)
	}
}

func (p *Pipeline) setState(s State) {
	p.logger.Debug("pipeline state", "epoch", p.epoch, "from", p.state, "to", s)
	p.state = s
}

func (p *Pipeline) newController() *reveal.Controller {
	var sink reveal.Sink
	if p.cfg.Display != nil {
		sink = p.cfg.Display
	}
	return reveal.New(p.cfg.Reveal, p.cfg.Scheduler, sink)
}

// Epoch returns the current attempt's epoch.
func (p *Pipeline) Epoch() uint64 { return p.epoch }

// State returns the lifecycle state.
func (p *Pipeline) State() State { return p.state }

// RevealedText returns the preview text shown so far.
func (p *Pipeline) RevealedText() string { return p.ctrl.RevealedText() }

// IsActive reports whether the reveal animation is running.
func (p *Pipeline) IsActive() bool { return p.ctrl.IsAnimationActive() }

// Record returns the latest preview record.
func (p *Pipeline) Record() preview.Record { return p.record }

// Err returns the StreamError of a Failed attempt.
func (p *Pipeline) Err() error { return p.err }

// Result returns the finalized paper. It is nil until the attempt is
// Complete.
func (p *Pipeline) Result() *paper.Paper { return p.result }

// Status returns a one-line progress summary.
func (p *Pipeline) Status() string {
	switch p.state {
	case Complete:
		return StatusComplete
	case Failed:
		return p.err.Error()
	default:
		return preview.Progress(p.record)
	}
}
