// Package preview turns the cumulative text of a streaming paper generation
// into a best-effort structured record and renders that record as
// deterministic preview text.
package preview

import "github.com/papercomputeco/quizpaper/pkg/paper"

// Record is a best-effort reconstruction of an in-progress paper.
// Empty strings mean the field is absent.
type Record struct {
	Title       string
	Description string

	// Items are in document order. An item is only present once its object
	// has been fully closed in the stream.
	Items []Item
}

// Item is a single previewable question.
type Item struct {
	ID string

	// Primary is the question sentence.
	Primary string

	// Secondary is the optional translation.
	Secondary string

	Hint string

	// Note carries the answer. It is never rendered in the preview.
	Note string
}

// FromPaper converts an authoritative paper into a Record using the same
// field mapping Extract applies to streamed text.
func FromPaper(p *paper.Paper) Record {
	if p == nil {
		return Record{}
	}

	rec := Record{
		Title:       p.Title,
		Description: p.Description,
	}
	for _, q := range p.Questions {
		rec.Items = append(rec.Items, itemFromQuestion(q))
	}
	return rec
}

func itemFromQuestion(q paper.Question) Item {
	return Item{
		ID:        q.ID,
		Primary:   q.Sentence,
		Secondary: q.Translation,
		Hint:      q.Hint,
		Note:      q.Answer,
	}
}
