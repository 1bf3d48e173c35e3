package pipeline

import "github.com/papercomputeco/quizpaper/pkg/paper"

// EventType distinguishes stream events.
type EventType string

const (
	EventDelta    EventType = "delta"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// StreamEvent is one event from a stream source. A source emits any number
// of delta events followed by exactly one complete or error event.
type StreamEvent struct {
	Type EventType

	// Text is the raw chunk of a delta event.
	Text string

	// Result is the authoritative paper of a complete event.
	Result *paper.Paper

	// Message is the provider's error message of an error event.
	Message string
}

// Delta returns a delta event.
func Delta(text string) StreamEvent {
	return StreamEvent{Type: EventDelta, Text: text}
}

// Completed returns a complete event.
func Completed(result *paper.Paper) StreamEvent {
	return StreamEvent{Type: EventComplete, Result: result}
}

// Errored returns an error event.
func Errored(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}

// Envelope tags a stream event with the epoch of the attempt that produced
// it.
type Envelope struct {
	Epoch uint64
	Event StreamEvent
}
