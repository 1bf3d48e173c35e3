package eventstream

import "context"

// Publisher publishes paper events to an event stream backend.
type Publisher interface {
	PublishPaper(ctx context.Context, event *PaperGeneratedEvent) error
	Close() error
}
