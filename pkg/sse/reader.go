package sse

import (
	"bufio"
	"io"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Reader parses SSE events from a source io.Reader. When a transcript writer
// is set, every raw line read is written to it verbatim, comments and blank
// lines included.
type Reader struct {
	scanner    *bufio.Scanner
	transcript io.Writer

	// current accumulates fields for the event being built.
	current *Event
	hasData bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithTranscript copies the raw stream to w.
func WithTranscript(w io.Writer) Option {
	return func(r *Reader) {
		if w != nil {
			r.transcript = w
		}
	}
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)

	r := &Reader{
		scanner:    scanner,
		transcript: io.Discard,
		current:    &Event{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next parsed SSE event. It blocks until a complete event is
// available (terminated by a blank line in the stream). Next returns nil, nil
// when the source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		// bufio.Scanner strips the newline, so it is reinserted here.
		if _, err := io.WriteString(r.transcript, raw+"\n"); err != nil {
			return nil, err
		}

		// A blank line signals the end of the current event.
		if raw == "" {
			if r.hasData {
				return r.flush(), nil
			}

			// Leading blank lines and keep-alive newlines.
			continue
		}

		// Lines starting with ':' are comments.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// The stream ended without a trailing blank line.
	if r.hasData {
		return r.flush(), nil
	}

	return nil, nil
}

// parseLine processes a single non-empty, non-comment SSE line of the form
// "field:value". A single leading space in the value is stripped.
func (r *Reader) parseLine(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	} else {
		field = line
	}

	switch field {
	case "data":
		if r.hasData && r.current.Data != "" {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	default:
		// "retry" and unknown fields are ignored.
	}
}

func (r *Reader) flush() *Event {
	ev := r.current
	r.current = &Event{}
	r.hasData = false
	return ev
}
