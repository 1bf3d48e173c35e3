package preview

import (
	"encoding/json"
	"strings"

	"github.com/papercomputeco/quizpaper/pkg/paper"
)

// document is the wire shape of a generated paper.
type document struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []paper.Question `json:"questions"`
}

// Extract returns the best available Record for the cumulative stream text.
// It never fails: text that contains nothing recognisable yields an empty
// Record. Extract is a pure function of text.
//
// A strict parse of the outermost object is tried first. When that fails
// the text is walked once and each field is recovered independently:
// the first well-formed top level "title", the first well-formed top level
// "description", and the items of the first "questions" array up to the
// first item that is unclosed or malformed. String values are decoded with
// encoding/json, the same decoder used for the final payload, so every
// recovered value is byte-identical to its final counterpart.
func Extract(text string) Record {
	if rec, ok := parseStrict(text); ok {
		return rec
	}
	return parsePartial(text)
}

func parseStrict(text string) (Record, bool) {
	start := objectStart(text)
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return Record{}, false
	}

	var doc document
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return Record{}, false
	}

	rec := Record{Title: doc.Title, Description: doc.Description}
	for _, q := range doc.Questions {
		if !complete(q) {
			break
		}
		rec.Items = append(rec.Items, itemFromQuestion(q))
	}
	return rec, true
}

// partial holds the walker state for parsePartial.
type partial struct {
	rec Record

	haveTitle       bool
	haveDescription bool
	haveQuestions   bool

	// inItems is set while the walker is inside the first questions array.
	// itemsDone is set once an item failed, after which no more items are
	// collected even if later ones are well-formed.
	inItems   bool
	itemsDone bool
}

// itemsDepth is the nesting depth of the elements of the top level
// questions array.
const itemsDepth = 2

func parsePartial(text string) Record {
	start := objectStart(text)
	if start < 0 {
		return Record{}
	}

	var p partial
	depth := 0
	for i := start; i < len(text); {
		c := text[i]
		switch {
		case c == '{' && p.inItems && depth == itemsDepth:
			end, ok := containerEnd(text, i)
			if !ok {
				return p.rec
			}
			p.collectItem(text[i:end])
			i = end
			continue

		case c == '{' || c == '[':
			if p.inItems && depth == itemsDepth {
				p.itemsDone = true
			}
			depth++

		case c == '}' || c == ']':
			depth--
			if p.inItems && depth < itemsDepth {
				p.inItems = false
				p.itemsDone = true
			}
			if depth == 0 {
				return p.rec
			}

		case c == '"':
			end, ok := stringEnd(text, i)
			if !ok {
				return p.rec
			}
			if p.inItems && depth == itemsDepth {
				p.itemsDone = true
			}
			if depth == 1 {
				if next, handled, ok := p.field(text, i, end); handled {
					if !ok {
						return p.rec
					}
					if text[next-1] == '[' {
						depth++
					}
					i = next
					continue
				}
			}
			i = end
			continue

		case p.inItems && depth == itemsDepth && !isSeparator(c):
			// Scalars are not items.
			p.itemsDone = true
		}
		i++
	}

	return p.rec
}

// field handles a possible key string at text[start:end]. handled reports
// whether the key was one of the recognised fields and the walker should
// resume at next. ok is false when the value is an unterminated string.
func (p *partial) field(text string, start, end int) (next int, handled, ok bool) {
	colon := skipSpace(text, end)
	if colon >= len(text) || text[colon] != ':' {
		return 0, false, true
	}

	key, err := decodeString(text[start:end])
	if err != nil {
		return 0, false, true
	}

	v := skipSpace(text, colon+1)
	if v >= len(text) {
		return 0, false, true
	}

	switch key {
	case "title", "description":
		if text[v] != '"' {
			return 0, false, true
		}
		vend, closed := stringEnd(text, v)
		if !closed {
			return 0, true, false
		}
		s, err := decodeString(text[v:vend])
		if err == nil {
			p.setScalar(key, s)
		}
		return vend, true, true

	case "questions":
		if text[v] != '[' || p.haveQuestions {
			return 0, false, true
		}
		p.haveQuestions = true
		p.inItems = true
		return v + 1, true, true
	}

	return 0, false, true
}

func (p *partial) setScalar(key, value string) {
	switch key {
	case "title":
		if !p.haveTitle {
			p.rec.Title = value
			p.haveTitle = true
		}
	case "description":
		if !p.haveDescription {
			p.rec.Description = value
			p.haveDescription = true
		}
	}
}

func (p *partial) collectItem(raw string) {
	if p.itemsDone {
		return
	}

	var q paper.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil || !complete(q) {
		p.itemsDone = true
		return
	}
	p.rec.Items = append(p.rec.Items, itemFromQuestion(q))
}

func decodeString(raw string) (string, error) {
	var s string
	err := json.Unmarshal([]byte(raw), &s)
	return s, err
}

// stringEnd returns the index just past the closing quote of the JSON string
// starting at text[start]. ok is false if the string is not terminated.
func stringEnd(text string, start int) (int, bool) {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1, true
		}
	}
	return 0, false
}

// containerEnd returns the index just past the bracket that closes the
// object or array opened at text[start].
func containerEnd(text string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '"':
			end, ok := stringEnd(text, i)
			if !ok {
				return 0, false
			}
			i = end - 1
		}
	}
	return 0, false
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isSeparator(c byte) bool {
	return c == ',' || isSpace(c)
}

// complete reports whether q carries every field a card needs.
func complete(q paper.Question) bool {
	return q.ID != "" && q.Sentence != "" && q.Answer != "" && q.Hint != ""
}

// objectStart returns the index of the first '{' that opens a JSON object:
// one followed by a key or by the end of the text. Braces in leading prose
// are skipped. Falls back to the first '{', or -1.
func objectStart(text string) int {
	first := strings.IndexByte(text, '{')
	for i := first; i >= 0 && i < len(text); {
		j := skipSpace(text, i+1)
		if j >= len(text) || text[j] == '"' {
			return i
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += 1 + next
	}
	return first
}
