package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// MockDriver is a storage.Driver that records calls and can be told to fail.
type MockDriver struct {
	mu     sync.Mutex
	papers []*paper.Paper

	// FailPut causes Put to return ErrInjected.
	FailPut bool

	// FailGet causes Get and List to return ErrInjected.
	FailGet bool
}

// NewMockDriver creates a new mock storage driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

func (m *MockDriver) Put(_ context.Context, p *paper.Paper) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut {
		return false, ErrInjected
	}
	for _, existing := range m.papers {
		if existing.ID == p.ID {
			return false, nil
		}
	}
	m.papers = append(m.papers, p)
	return true, nil
}

func (m *MockDriver) Get(_ context.Context, id string) (*paper.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGet {
		return nil, ErrInjected
	}

	for _, p := range m.papers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, storage.NotFoundError{ID: id}
}

func (m *MockDriver) List(_ context.Context) ([]*paper.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGet {
		return nil, ErrInjected
	}

	out := make([]*paper.Paper, len(m.papers))
	copy(out, m.papers)
	return out, nil
}

func (m *MockDriver) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.papers {
		if p.ID == id {
			m.papers = append(m.papers[:i], m.papers[i+1:]...)
			return nil
		}
	}
	return storage.NotFoundError{ID: id}
}

func (m *MockDriver) Close() error {
	return nil
}

// Stored returns the papers stored so far, in insertion order.
func (m *MockDriver) Stored() []*paper.Paper {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*paper.Paper, len(m.papers))
	copy(out, m.papers)
	return out
}

// DescribeDriver registers the behaviour every storage.Driver shares.
// newDriver is called before each spec; the driver is closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Put and Get", func() {
		It("round-trips a paper", func() {
			p := NewTestPaper("p1", base)

			inserted, err := driver.Put(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			got, err := driver.Get(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(p))
		})

		It("keeps the first paper stored under an id", func() {
			first := NewTestPaper("p1", base)
			second := NewTestPaper("p1", base.Add(time.Hour))
			second.Title = "Replacement"

			_, err := driver.Put(ctx, first)
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.Put(ctx, second)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			got, err := driver.Get(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal(first.Title))
		})

		It("rejects a nil paper", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(HaveOccurred())
		})

		It("returns NotFoundError for unknown ids", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound))

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.ID).To(Equal("missing"))
		})

		It("preserves papers without tags or description", func() {
			p := NewTestPaper("bare", base)
			p.Tags = nil
			p.Description = ""

			_, err := driver.Put(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Get(ctx, "bare")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(p))
		})

		It("keeps a zero creation time zero", func() {
			p := NewTestPaper("undated", base)
			p.CreatedAt = time.Time{}

			_, err := driver.Put(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Get(ctx, "undated")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CreatedAt.IsZero()).To(BeTrue())
			Expect(got).To(Equal(p))
		})
	})

	Describe("List", func() {
		It("returns nothing for an empty store", func() {
			papers, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(papers).To(BeEmpty())
		})

		It("orders papers newest first", func() {
			for i, id := range []string{"old", "new", "mid"} {
				offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
				_, err := driver.Put(ctx, NewTestPaper(id, base.Add(offset)))
				Expect(err).NotTo(HaveOccurred())
			}

			papers, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(papers))
			for _, p := range papers {
				ids = append(ids, p.ID)
			}
			Expect(ids).To(Equal([]string{"new", "mid", "old"}))
		})
	})

	Describe("Delete", func() {
		It("removes a stored paper", func() {
			_, err := driver.Put(ctx, NewTestPaper("p1", base))
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Delete(ctx, "p1")).To(Succeed())

			_, err = driver.Get(ctx, "p1")
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("reports unknown ids", func() {
			Expect(driver.Delete(ctx, "missing")).To(MatchError(storage.ErrNotFound))
		})
	})
}
