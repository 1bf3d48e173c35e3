package pipeline_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/preview"
	"github.com/papercomputeco/quizpaper/pkg/reveal"
)

type frame struct {
	revealed string
	active   bool
}

type recordingDisplay struct {
	frames []frame
}

func (d *recordingDisplay) Render(revealed string, active bool) {
	d.frames = append(d.frames, frame{revealed: revealed, active: active})
}

func (d *recordingDisplay) last() frame {
	Expect(d.frames).NotTo(BeEmpty())
	return d.frames[len(d.frames)-1]
}

type recordingPersistence struct {
	onPersist func(*paper.Paper)
	papers    []*paper.Paper
}

func (r *recordingPersistence) Persist(p *paper.Paper) {
	if r.onPersist != nil {
		r.onPersist(p)
	}
	r.papers = append(r.papers, p)
}

func finalPaper() *paper.Paper {
	return &paper.Paper{
		ID:          "paper-1",
		Title:       "Weather",
		Description: "Talking about the forecast",
		Questions: []paper.Question{
			{ID: "q1", Sentence: "It will r___ later.", Answer: "rain", Hint: "r", Translation: "Il va pleuvoir plus tard."},
			{ID: "q2", Sentence: "Take an u_______.", Answer: "umbrella", Hint: "u"},
		},
	}
}

// chunks splits the paper's JSON into fixed-size deltas.
func chunks(p *paper.Paper, size int) []string {
	raw, err := json.Marshal(p)
	Expect(err).NotTo(HaveOccurred())

	var out []string
	for len(raw) > 0 {
		n := min(size, len(raw))
		out = append(out, string(raw[:n]))
		raw = raw[n:]
	}
	return out
}

var _ = Describe("Pipeline", func() {
	var (
		queue     *reveal.Queue
		display   *recordingDisplay
		persisted *recordingPersistence
		p         *pipeline.Pipeline
		now       time.Time
	)

	step := func() bool {
		r, ok := queue.Take()
		if !ok {
			return false
		}
		now = now.Add(r.Delay)
		p.Tick(r.ID, now)
		return true
	}

	drain := func() {
		for n := 0; step(); n++ {
			Expect(n).To(BeNumerically("<", 100000))
		}
	}

	BeforeEach(func() {
		queue = &reveal.Queue{}
		display = &recordingDisplay{}
		persisted = &recordingPersistence{}
		now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		p = pipeline.New(pipeline.Config{
			Reveal:      reveal.DefaultConfig(),
			Scheduler:   queue,
			Display:     display,
			Persistence: persisted,
		})
	})

	It("starts idle", func() {
		Expect(p.State()).To(Equal(pipeline.Idle))
		Expect(p.RevealedText()).To(BeEmpty())
		Expect(p.IsActive()).To(BeFalse())
		Expect(p.Result()).To(BeNil())
	})

	It("moves to streaming on the first delta", func() {
		epoch := p.Begin()
		p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(`{"title": "Wea`)})

		Expect(p.State()).To(Equal(pipeline.Streaming))
		Expect(p.IsActive()).To(BeTrue())
		Expect(p.Status()).To(Equal("0 questions generated"))
	})

	It("previews streamed items as they close", func() {
		epoch := p.Begin()
		for _, c := range chunks(finalPaper(), 9) {
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(c)})
			step()
		}
		drain()

		Expect(p.Record().Items).To(HaveLen(2))
		Expect(p.RevealedText()).To(Equal(preview.Format(preview.FromPaper(finalPaper()))))
		Expect(p.State()).To(Equal(pipeline.Streaming))
		Expect(persisted.papers).To(BeEmpty())
	})

	It("refuses a config without a scheduler", func() {
		Expect(func() {
			pipeline.New(pipeline.Config{Display: display})
		}).To(PanicWith(ContainSubstring("Scheduler")))
	})

	Describe("completion", func() {
		It("persists only after the final paper is fully revealed", func() {
			final := finalPaper()
			want := preview.Format(preview.FromPaper(final))

			var revealedAtPersist string
			var stateAtPersist pipeline.State
			persisted.onPersist = func(*paper.Paper) {
				revealedAtPersist = p.RevealedText()
				stateAtPersist = p.State()
			}

			epoch := p.Begin()
			for _, c := range chunks(final, 40)[:2] {
				p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(c)})
			}
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Completed(final)})

			Expect(p.State()).To(Equal(pipeline.Finalizing))
			Expect(p.Result()).To(BeNil())

			for p.State() == pipeline.Finalizing {
				Expect(persisted.papers).To(BeEmpty())
				Expect(step()).To(BeTrue())
			}

			Expect(p.State()).To(Equal(pipeline.Complete))
			Expect(persisted.papers).To(ConsistOf(final))
			Expect(revealedAtPersist).To(Equal(want))
			Expect(stateAtPersist).To(Equal(pipeline.Complete))
			Expect(p.Result()).To(BeIdenticalTo(final))
			Expect(p.Status()).To(Equal(pipeline.StatusComplete))
			Expect(display.last()).To(Equal(frame{revealed: want, active: false}))
		})

		It("completes without any deltas", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Completed(finalPaper())})
			drain()

			Expect(p.State()).To(Equal(pipeline.Complete))
			Expect(persisted.papers).To(HaveLen(1))
		})

		It("drops deltas after completion", func() {
			final := finalPaper()
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Completed(final)})
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta("garbage")})
			drain()

			Expect(p.RevealedText()).To(Equal(preview.Format(preview.FromPaper(final))))
		})

		It("fails when the stream completes without a paper", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Completed(nil)})

			Expect(p.State()).To(Equal(pipeline.Failed))
			Expect(p.Err()).To(HaveOccurred())
		})

		It("does not persist an attempt reset while finalizing", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Completed(finalPaper())})
			step()

			p.Reset()
			drain()

			Expect(p.State()).To(Equal(pipeline.Idle))
			Expect(persisted.papers).To(BeEmpty())
		})
	})

	Describe("errors", func() {
		It("fails and keeps the revealed text on a truncated stream", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(`{"title": "Weather", "questions": [{"id": "q1", "sent`)})
			for range 5 {
				step()
			}
			before := p.RevealedText()
			Expect(before).NotTo(BeEmpty())

			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Errored("upstream: 429 rate limited")})

			Expect(p.State()).To(Equal(pipeline.Failed))
			Expect(p.IsActive()).To(BeFalse())
			Expect(p.RevealedText()).To(Equal(before))

			var streamErr *pipeline.StreamError
			Expect(p.Err()).To(BeAssignableToTypeOf(streamErr))
			Expect(p.Err()).To(MatchError("upstream: 429 rate limited"))
			Expect(p.Status()).To(Equal("upstream: 429 rate limited"))

			drain()
			Expect(p.RevealedText()).To(Equal(before))
			Expect(display.last()).To(Equal(frame{revealed: before, active: false}))
		})

		It("ignores a second terminal event", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Errored("first")})
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Errored("second")})
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Completed(finalPaper())})
			drain()

			Expect(p.Err()).To(MatchError("first"))
			Expect(p.State()).To(Equal(pipeline.Failed))
			Expect(persisted.papers).To(BeEmpty())
		})
	})

	Describe("reset", func() {
		It("drops a stale delta from the previous epoch", func() {
			old := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: old, Event: pipeline.Delta(`{"title": "Weather", `)})
			step()

			p.Reset()
			p.Handle(pipeline.Envelope{Epoch: old, Event: pipeline.Delta(`"questions": []}`)})

			Expect(p.State()).To(Equal(pipeline.Idle))
			Expect(p.RevealedText()).To(BeEmpty())
			Expect(p.IsActive()).To(BeFalse())
			Expect(p.Epoch()).To(Equal(old + 1))
		})

		It("clears the display", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(`{"title": "Weather", `)})
			drain()

			p.Reset()
			Expect(display.last()).To(Equal(frame{revealed: "", active: false}))
		})

		It("ignores ticks scheduled before the reset", func() {
			epoch := p.Begin()
			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(`{"title": "Weather", `)})

			epoch = p.Begin()
			drain()
			Expect(p.RevealedText()).To(BeEmpty())

			p.Handle(pipeline.Envelope{Epoch: epoch, Event: pipeline.Delta(`{"title": "Snow", `)})
			drain()
			Expect(p.RevealedText()).To(Equal(preview.Format(preview.Record{Title: "Snow"})))
		})
	})
})
