// Package storage persists generated papers.
package storage

import (
	"context"

	"github.com/papercomputeco/quizpaper/pkg/paper"
)

// Driver defines the interface for persisting and retrieving papers in a
// storage backend.
type Driver interface {
	// Put stores a paper. Returns true if the paper was newly inserted,
	// false if a paper with the same ID already exists, in which case the
	// stored paper is left untouched.
	Put(ctx context.Context, p *paper.Paper) (bool, error)

	// Get retrieves a paper by its ID.
	Get(ctx context.Context, id string) (*paper.Paper, error)

	// List returns all papers, newest first.
	List(ctx context.Context) ([]*paper.Paper, error)

	// Delete removes a paper by its ID.
	Delete(ctx context.Context, id string) error

	// Close closes the store and releases any resources.
	Close() error
}
