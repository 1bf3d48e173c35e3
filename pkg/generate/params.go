// Package generate asks a generative model for a quiz paper and streams the
// answer as pipeline events.
package generate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/papercomputeco/quizpaper/pkg/paper"
)

const (
	// DefaultQuestionCount is used when Params.QuestionCount is zero.
	DefaultQuestionCount = 20

	// MaxQuestionCount bounds a single generation.
	MaxQuestionCount = 50
)

var (
	// ErrNoTheme is returned when Params.Theme is empty.
	ErrNoTheme = errors.New("theme is required")

	// ErrInvalidDifficulty is returned for an unknown difficulty level.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidQuestionCount is returned when the question count is out of
	// range.
	ErrInvalidQuestionCount = errors.New("invalid question count")

	// ErrInvalidWord is returned when a target word is not made of letters
	// a to z.
	ErrInvalidWord = errors.New("invalid word")
)

// Params describe the paper to generate.
type Params struct {
	// Theme is the topic of the paper (e.g., "airport travel").
	Theme string

	// Words optionally lists target words the questions must use.
	Words []string

	// Difficulty is one of paper.Difficulties. Empty means intermediate.
	Difficulty string

	// QuestionCount is the number of questions. Zero means
	// DefaultQuestionCount.
	QuestionCount int
}

// WithDefaults returns a copy of p with empty fields defaulted and the
// theme trimmed.
func (p Params) WithDefaults() Params {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Difficulty == "" {
		p.Difficulty = paper.DifficultyIntermediate
	}
	if p.QuestionCount == 0 {
		p.QuestionCount = DefaultQuestionCount
	}
	return p
}

// Validate checks p after defaults have been applied.
func (p Params) Validate() error {
	if p.Theme == "" {
		return ErrNoTheme
	}
	if !paper.IsValidDifficulty(p.Difficulty) {
		return fmt.Errorf("%w: %q (supported: %v)", ErrInvalidDifficulty, p.Difficulty, paper.Difficulties())
	}
	if p.QuestionCount < 1 || p.QuestionCount > MaxQuestionCount {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidQuestionCount, p.QuestionCount, MaxQuestionCount)
	}

	var bad []string
	for _, w := range p.Words {
		if !isPlainWord(w) {
			bad = append(bad, w)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidWord, strings.Join(bad, ", "))
	}

	return nil
}

// ParseWords splits a user-supplied word list on commas and whitespace,
// lowercases each word, and drops empty entries and duplicates. Order of
// first occurrence is kept.
func ParseWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	var words []string
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		w := strings.ToLower(f)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

func isPlainWord(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
