// Package nop provides a publisher that drops every event.
package nop

import (
	"context"

	"github.com/papercomputeco/quizpaper/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishPaper validates input and otherwise does nothing.
func (p *Publisher) PublishPaper(_ context.Context, event *eventstream.PaperGeneratedEvent) error {
	if event == nil {
		return eventstream.ErrNilPaperEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
