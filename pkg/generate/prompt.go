package generate

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/quizpaper/pkg/llm"
	"github.com/papercomputeco/quizpaper/pkg/paper"
)

const systemPrompt = `You write English vocabulary practice papers.

Reply with a single JSON object and nothing else: no markdown fences, no commentary.
The object has this shape:

{
  "title": "short paper title",
  "description": "one sentence describing the paper",
  "questions": [
    {
      "id": "q1",
      "sentence": "She b_____ a ticket to Rome.",
      "answer": "booked",
      "hint": "b",
      "translation": "optional translation of the sentence"
    }
  ]
}

Rules for every question:
- "sentence" is a natural sentence in which the answer word is replaced by its first letter followed by one underscore per remaining letter.
- "answer" is the hidden word exactly as it appears in the sentence.
- "hint" is the first letter of the answer.
- "id" values are "q1", "q2", ... in order.
- Write "title" first, then "description", then "questions".`

// BuildPrompt returns the system and user prompts for p. p should already
// have defaults applied.
func BuildPrompt(p Params) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %s level paper with exactly %d questions.\n", p.Difficulty, p.QuestionCount)
	fmt.Fprintf(&b, "Theme: %s\n", p.Theme)
	if len(p.Words) > 0 {
		fmt.Fprintf(&b, "Use each of these words as an answer at least once: %s\n", strings.Join(p.Words, ", "))
	}
	b.WriteString(difficultyGuidance(p.Difficulty))

	return systemPrompt, b.String()
}

// NewChatRequest builds the streaming chat request for p.
func NewChatRequest(model string, p Params) *llm.ChatRequest {
	system, user := BuildPrompt(p)
	return &llm.ChatRequest{
		Model:    model,
		System:   system,
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, user)},
		JSON:     true,
	}
}

func difficultyGuidance(d string) string {
	switch d {
	case paper.DifficultyBeginner:
		return "Use short sentences and everyday words.\n"
	case paper.DifficultyAdvanced:
		return "Use idiomatic sentences and less common words.\n"
	default:
		return "Use natural sentences of moderate length.\n"
	}
}
