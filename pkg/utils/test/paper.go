// Package testutils holds fixtures and fakes shared by package tests.
package testutils

import (
	"fmt"
	"time"

	"github.com/papercomputeco/quizpaper/pkg/paper"
)

// NewTestPaper creates a valid two-question paper with the given id and
// creation time.
func NewTestPaper(id string, createdAt time.Time) *paper.Paper {
	return &paper.Paper{
		ID:          id,
		Title:       fmt.Sprintf("Paper %s", id),
		Description: "Travel vocabulary",
		Tags:        []string{"travel", paper.DifficultyBeginner},
		Questions: []paper.Question{
			{ID: "q1", Sentence: "We checked in at the h____.", Answer: "hotel", Hint: "h", Translation: "我们在酒店办理了入住。"},
			{ID: "q2", Sentence: "The t____ leaves at noon.", Answer: "train", Hint: "t"},
		},
		CreatedAt: createdAt.UTC(),
		Source:    paper.SourceLocal,
	}
}
