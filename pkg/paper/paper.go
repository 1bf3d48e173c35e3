// Package paper defines the quiz paper model shared by generation, preview,
// storage and the API.
//
// A paper is a themed set of fill-in-the-blank questions. Each question's
// sentence hides the answer word behind its first letter followed by
// underscores (e.g. "She d_____ the car."), and the hint is that first letter.
package paper

import (
	"time"
)

// SourceLocal marks a paper generated on this machine.
const SourceLocal = "local"

// Difficulty levels a paper can be generated for.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Paper is a quiz paper: a titled, ordered set of questions.
type Paper struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	Source      string     `json:"source,omitempty"`
}

// Question is a single fill-in-the-blank item.
type Question struct {
	ID string `json:"id"`

	// Sentence is the full sentence with the answer replaced by its first
	// letter and underscores.
	Sentence string `json:"sentence"`

	// Answer is the complete hidden word.
	Answer string `json:"answer"`

	// Hint is the first letter of the answer.
	Hint string `json:"hint"`

	// Translation is an optional translation of the sentence.
	Translation string `json:"translation,omitempty"`
}

// Difficulties returns the supported difficulty levels in ascending order.
func Difficulties() []string {
	return []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
}

// IsValidDifficulty reports whether d is a supported difficulty level.
func IsValidDifficulty(d string) bool {
	for _, known := range Difficulties() {
		if d == known {
			return true
		}
	}
	return false
}
