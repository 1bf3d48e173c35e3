package paper

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrNoTitle is returned when a paper has an empty title.
	ErrNoTitle = errors.New("paper has no title")

	// ErrNoQuestions is returned when a paper has no questions.
	ErrNoQuestions = errors.New("paper has no questions")
)

// QuestionError describes why a single question failed validation.
type QuestionError struct {
	Index  int
	ID     string
	Reason string
}

func (e *QuestionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("question %d: %s", e.Index+1, e.Reason)
	}
	return fmt.Sprintf("question %d (%s): %s", e.Index+1, e.ID, e.Reason)
}

// Validate checks that p is a usable quiz paper. All question problems are
// joined into the returned error.
func Validate(p *Paper) error {
	if p == nil {
		return errors.New("paper is nil")
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrNoTitle
	}
	if len(p.Questions) == 0 {
		return ErrNoQuestions
	}

	var errs []error
	seen := make(map[string]int, len(p.Questions))
	for i, q := range p.Questions {
		if q.ID != "" {
			if prev, ok := seen[q.ID]; ok {
				errs = append(errs, &QuestionError{Index: i, ID: q.ID, Reason: fmt.Sprintf("duplicate id, first used by question %d", prev+1)})
				continue
			}
			seen[q.ID] = i
		}
		if reason := checkQuestion(q); reason != "" {
			errs = append(errs, &QuestionError{Index: i, ID: q.ID, Reason: reason})
		}
	}

	return errors.Join(errs...)
}

func checkQuestion(q Question) string {
	switch {
	case strings.TrimSpace(q.Sentence) == "":
		return "missing sentence"
	case strings.TrimSpace(q.Answer) == "":
		return "missing answer"
	case strings.TrimSpace(q.Hint) == "":
		return "missing hint"
	case !strings.Contains(q.Sentence, "_"):
		return "sentence has no blank"
	}

	first, _ := utf8.DecodeRuneInString(strings.TrimSpace(q.Answer))
	hint, _ := utf8.DecodeRuneInString(strings.TrimSpace(q.Hint))
	if unicode.ToLower(first) != unicode.ToLower(hint) {
		return fmt.Sprintf("hint %q does not match answer %q", q.Hint, q.Answer)
	}

	return ""
}

// Normalize assigns missing IDs and stamps local provenance. Text fields are
// left untouched so a normalized paper formats exactly like its streamed
// preview. It mutates p in place.
func Normalize(p *Paper, now time.Time) {
	if p == nil {
		return
	}

	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	if p.Source == "" {
		p.Source = SourceLocal
	}

	for i := range p.Questions {
		if p.Questions[i].ID == "" {
			p.Questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
}

// NewID returns a fresh paper identifier.
func NewID() string {
	return uuid.NewString()
}
