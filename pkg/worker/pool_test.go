package worker

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/eventstream"
	"github.com/papercomputeco/quizpaper/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/quizpaper/pkg/utils/test"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.PaperGeneratedEvent
	err    error
}

func (r *recordingPublisher) PublishPaper(_ context.Context, event *eventstream.PaperGeneratedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) published() []*eventstream.PaperGeneratedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		driver    *inmemory.Driver
		publisher *recordingPublisher
		results   chan Result
		ctx       context.Context
		created   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		driver = inmemory.NewDriver()
		publisher = &recordingPublisher{}
		results = make(chan Result, 16)

		var err error
		wp, err = NewPool(&Config{
			Driver:    driver,
			Publisher: publisher,
			OnDone:    func(r Result) { results <- r },
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		wp.Close()
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{Paper: testutils.NewTestPaper("p1", created)})).To(BeTrue())
		})

		It("rejects jobs without a paper", func() {
			Expect(wp.Enqueue(Job{})).To(BeFalse())
		})
	})

	It("requires a storage driver", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	Context("after a paper is persisted", func() {
		BeforeEach(func() {
			sink := wp.Sink(
				eventstream.EventSource{Provider: "openai", Model: "gpt-4o-mini"},
				eventstream.GenerationMeta{Theme: "travel"},
			)
			sink.Persist(testutils.NewTestPaper("p1", created))

			// Drain the worker pool to ensure storage completes before assertions
			wp.Close()
		})

		It("stores the paper", func() {
			got, err := driver.Get(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal("Paper p1"))
		})

		It("publishes one event carrying the source and meta", func() {
			events := publisher.published()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Paper.ID).To(Equal("p1"))
			Expect(events[0].Source.Provider).To(Equal("openai"))
			Expect(events[0].Generation.Theme).To(Equal("travel"))
		})

		It("reports the result", func() {
			var r Result
			Expect(results).To(Receive(&r))
			Expect(r.Inserted).To(BeTrue())
			Expect(r.Err).NotTo(HaveOccurred())
		})
	})

	It("does not publish a paper that was already stored", func() {
		p := testutils.NewTestPaper("p1", created)
		_, err := driver.Put(ctx, p)
		Expect(err).NotTo(HaveOccurred())

		wp.Enqueue(Job{Paper: p})
		wp.Close()

		Expect(publisher.published()).To(BeEmpty())
		var r Result
		Expect(results).To(Receive(&r))
		Expect(r.Inserted).To(BeFalse())
	})

	It("reports storage failures without publishing", func() {
		failing := testutils.NewMockDriver()
		failing.FailPut = true
		pool, err := NewPool(&Config{
			Driver:    failing,
			Publisher: publisher,
			OnDone:    func(r Result) { results <- r },
		})
		Expect(err).NotTo(HaveOccurred())

		pool.Enqueue(Job{Paper: testutils.NewTestPaper("p1", created)})
		pool.Close()

		var r Result
		Expect(results).To(Receive(&r))
		Expect(r.Err).To(MatchError(testutils.ErrInjected))
		Expect(publisher.published()).To(BeEmpty())
	})

	It("keeps the paper when publishing fails", func() {
		publisher.err = testutils.ErrInjected

		wp.Enqueue(Job{Paper: testutils.NewTestPaper("p1", created)})
		wp.Close()

		var r Result
		Expect(results).To(Receive(&r))
		Expect(r.Err).NotTo(HaveOccurred())
		Expect(driver.Count()).To(Equal(1))
	})
})
