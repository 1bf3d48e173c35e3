package generatecmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/reveal"
)

// runPlain drives one attempt without the TUI: stream events and timer
// ticks are both handled on this goroutine. The finalized paper is returned
// once it has been fully revealed.
func runPlain(ctx context.Context, sess *session, out io.Writer, live bool, width int) (*paper.Paper, error) {
	timer := reveal.NewTimer()
	defer timer.Close()

	display := &plainDisplay{out: out, live: live, width: width}
	pipe := pipeline.New(pipeline.Config{
		Reveal:      sess.reveal,
		Scheduler:   timer,
		Display:     display,
		Persistence: sess.persistence(),
		Logger:      logger.OrNop(sess.logger).With("component", "pipeline"),
	})

	epoch := pipe.Begin()
	sess.sink.begin(sess.now())

	events, err := sess.streamer.Stream(ctx, sess.params)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			pipe.NotifyError(ctx.Err().Error())

		case ev, ok := <-events:
			if !ok {
				events = nil
				if s := pipe.State(); s == pipeline.Idle || s == pipeline.Streaming {
					pipe.NotifyError("stream closed before the paper was complete")
				}
				continue
			}
			pipe.Handle(pipeline.Envelope{Epoch: epoch, Event: ev})

		case t := <-timer.C:
			pipe.Tick(t.ID, t.At)
		}

		switch pipe.State() {
		case pipeline.Complete:
			display.finish()
			return pipe.Result(), nil
		case pipeline.Failed:
			display.finish()
			return nil, pipe.Err()
		}
	}
}

// plainDisplay writes the revealed preview to a terminal as it grows. When
// the preview diverges from what was already written, the affected lines are
// erased and rewritten. Without a live terminal only the final text is
// written.
type plainDisplay struct {
	out  io.Writer
	live bool

	// width hard wraps live output so every printed row ends in a newline
	// the rewind can count. Zero disables wrapping.
	width int

	printed string
	last    string
}

func (d *plainDisplay) Render(revealed string, _ bool) {
	d.last = revealed
	if !d.live {
		return
	}
	if d.width > 0 {
		revealed = ansi.Hardwrap(revealed, d.width, true)
	}

	if strings.HasPrefix(revealed, d.printed) {
		fmt.Fprint(d.out, revealed[len(d.printed):])
		d.printed = revealed
		return
	}

	// Rewind to the start of the line holding the first differing byte.
	keep := commonPrefixLen(d.printed, revealed)
	lineStart := strings.LastIndexByte(revealed[:keep], '\n') + 1
	up := strings.Count(d.printed[lineStart:], "\n")
	if up > 0 {
		fmt.Fprint(d.out, ansi.CursorUp(up))
	}
	fmt.Fprint(d.out, "\r"+ansi.EraseScreenBelow+revealed[lineStart:])
	d.printed = revealed
}

// finish writes whatever a non-live display held back and ends the line.
func (d *plainDisplay) finish() {
	if !d.live {
		fmt.Fprint(d.out, d.last)
		d.printed = d.last
	}
	if d.printed != "" && !strings.HasSuffix(d.printed, "\n") {
		fmt.Fprintln(d.out)
	}
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
