// Package worker provides an asynchronous worker pool that persists finalized
// papers using the provided storage.Driver and announces them on the provided
// eventstream.Publisher.
//
// The pool decouples storage and publishing from the reveal loop so that a
// slow database or broker never stalls the preview.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/quizpaper/pkg/eventstream"
	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Paper  *paper.Paper
	Source eventstream.EventSource
	Meta   eventstream.GenerationMeta
}

// Result reports the outcome of a processed job.
type Result struct {
	Job Job

	// Inserted is false when a paper with the same ID was already stored.
	Inserted bool

	// Err is the storage error, if any. Publish failures are logged only.
	Err error
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting papers.
	Driver storage.Driver

	// Publisher optionally announces newly stored papers.
	Publisher eventstream.Publisher

	// OnDone, when set, is called from the worker goroutine after each job.
	OnDone func(Result)

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// Timeout bounds the storage and publish calls of one job. Zero means no
	// limit.
	Timeout time.Duration

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("storage driver is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger.OrNop(c.Logger).With("component", "worker"),
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Paper == nil {
		p.logger.Error("job not queued, nil paper")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"paper_id", job.Paper.ID,
			"provider", job.Source.Provider,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"paper_id", job.Paper.ID,
			"provider", job.Source.Provider,
		)
		return false
	}
}

// Sink returns a pipeline.PersistenceSink that enqueues finalized papers
// tagged with source and meta.
func (p *Pool) Sink(source eventstream.EventSource, meta eventstream.GenerationMeta) pipeline.PersistenceSink {
	return &sink{pool: p, source: source, meta: meta}
}

type sink struct {
	pool   *Pool
	source eventstream.EventSource
	meta   eventstream.GenerationMeta
}

func (s *sink) Persist(p *paper.Paper) {
	s.pool.Enqueue(Job{Paper: p, Source: s.source, Meta: s.meta})
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob stores the paper and, when it is new, publishes an event.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	inserted, err := p.config.Driver.Put(ctx, job.Paper)
	result := Result{Job: job, Inserted: inserted, Err: err}
	if err != nil {
		p.logger.Error("paper storage failed",
			"paper_id", job.Paper.ID,
			"error", err,
		)
		p.done(result)
		return
	}

	p.logger.Info("paper stored",
		"paper_id", job.Paper.ID,
		"title", job.Paper.Title,
		"questions", len(job.Paper.Questions),
		"inserted", inserted,
	)

	if inserted && p.config.Publisher != nil {
		p.publish(ctx, job)
	}
	p.done(result)
}

// publish announces a newly stored paper. Errors are logged but not returned
// to avoid failing the main storage operation.
func (p *Pool) publish(ctx context.Context, job Job) {
	event := eventstream.NewPaperGeneratedEvent(job.Paper, job.Source, job.Meta, p.config.Now())
	if err := p.config.Publisher.PublishPaper(ctx, event); err != nil {
		p.logger.Warn("failed to publish paper event",
			"paper_id", job.Paper.ID,
			"error", err,
		)
		return
	}

	p.logger.Debug("published paper event",
		"paper_id", job.Paper.ID,
		"event_id", event.EventID,
	)
}

func (p *Pool) done(r Result) {
	if p.config.OnDone != nil {
		p.config.OnDone(r)
	}
}
