// Package eventstream defines the transport-neutral events emitted once a
// generated paper has been persisted, and the publishers that ship them.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/quizpaper/pkg/paper"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePaperGenerated is emitted after a generated paper is persisted.
	EventTypePaperGenerated = "quizpaper.paper.generated"
)

// PaperGeneratedEvent is a transport-neutral event payload for a persisted
// paper.
type PaperGeneratedEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Generation    GenerationMeta `json:"generation"`
	Paper         *paper.Paper   `json:"paper"`
}

// EventSource identifies where the paper originated.
type EventSource struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// GenerationMeta captures the parameters and timing of the generation.
type GenerationMeta struct {
	Theme         string    `json:"theme"`
	Difficulty    string    `json:"difficulty,omitempty"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at,omitzero"`
	CompletedAt   time.Time `json:"completed_at"`
	DurationMs    int64     `json:"duration_ms"`
}

// NewPaperGeneratedEvent builds a v1 event for p, emitted at now.
func NewPaperGeneratedEvent(p *paper.Paper, source EventSource, meta GenerationMeta, now time.Time) *PaperGeneratedEvent {
	if meta.CompletedAt.IsZero() {
		meta.CompletedAt = now.UTC()
	}
	if !meta.StartedAt.IsZero() {
		meta.DurationMs = meta.CompletedAt.Sub(meta.StartedAt).Milliseconds()
	}
	if p != nil && meta.QuestionCount == 0 {
		meta.QuestionCount = len(p.Questions)
	}

	return &PaperGeneratedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypePaperGenerated,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     now.UTC(),
		Source:        source,
		Generation:    meta,
		Paper:         p,
	}
}
