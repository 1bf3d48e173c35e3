// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	mu sync.RWMutex

	// papers maps paper ID to a private copy of the paper
	papers map[string]*paper.Paper
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		papers: make(map[string]*paper.Paper),
	}
}

// Put stores a copy of p.
func (s *Driver) Put(_ context.Context, p *paper.Paper) (bool, error) {
	if p == nil {
		return false, errors.New("cannot store nil paper")
	}
	if p.ID == "" {
		return false, errors.New("cannot store paper without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.papers[p.ID]; ok {
		return false, nil
	}

	s.papers[p.ID] = clone(p)
	return true, nil
}

// Get retrieves a paper by its ID.
func (s *Driver) Get(_ context.Context, id string) (*paper.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.papers[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return clone(p), nil
}

// List returns all papers, newest first. Papers created at the same instant
// are ordered by ID.
func (s *Driver) List(_ context.Context) ([]*paper.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*paper.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		result = append(result, clone(p))
	}

	slices.SortFunc(result, func(a, b *paper.Paper) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// Delete removes a paper by its ID.
func (s *Driver) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.papers[id]; !ok {
		return storage.NotFoundError{ID: id}
	}

	delete(s.papers, id)
	return nil
}

// Count returns the number of stored papers.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.papers)
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}

func clone(p *paper.Paper) *paper.Paper {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Questions = slices.Clone(p.Questions)
	return &c
}
