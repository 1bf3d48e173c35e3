package generatecmder

import (
	"log/slog"
	"time"

	"github.com/papercomputeco/quizpaper/pkg/eventstream"
	"github.com/papercomputeco/quizpaper/pkg/generate"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/reveal"
	"github.com/papercomputeco/quizpaper/pkg/worker"
)

// session holds what a host needs to run generation attempts.
type session struct {
	streamer generate.Streamer
	params   generate.Params
	reveal   reveal.Config

	// sink is nil when papers are not persisted.
	sink *attemptSink

	// saved receives the worker result of each persisted paper.
	saved <-chan worker.Result

	logger *slog.Logger
	now    func() time.Time
}

// attemptSink hands finalized papers to the worker pool tagged with the
// parameters and start time of the current attempt.
type attemptSink struct {
	pool    *worker.Pool
	source  eventstream.EventSource
	params  generate.Params
	current pipeline.PersistenceSink
}

func newAttemptSink(pool *worker.Pool, source eventstream.EventSource, params generate.Params) *attemptSink {
	return &attemptSink{pool: pool, source: source, params: params}
}

// begin starts tagging papers with a new attempt's start time.
func (s *attemptSink) begin(startedAt time.Time) {
	if s == nil {
		return
	}
	s.current = s.pool.Sink(s.source, eventstream.GenerationMeta{
		Theme:         s.params.Theme,
		Difficulty:    s.params.Difficulty,
		QuestionCount: s.params.QuestionCount,
		StartedAt:     startedAt.UTC(),
	})
}

// Persist implements pipeline.PersistenceSink.
func (s *attemptSink) Persist(p *paper.Paper) {
	if s.current != nil {
		s.current.Persist(p)
	}
}

// persistence returns the sink as a pipeline.PersistenceSink, keeping a nil
// sink a nil interface.
func (s *session) persistence() pipeline.PersistenceSink {
	if s.sink == nil {
		return nil
	}
	return s.sink
}
