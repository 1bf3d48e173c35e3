package generatecmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/reveal"
	"github.com/papercomputeco/quizpaper/pkg/worker"
)

// chromeLines is the number of lines around the preview viewport: header,
// status and help.
const chromeLines = 4

type generateKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Follow key.Binding
	Retry  key.Binding
	Quit   key.Binding
}

func (k generateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Follow, k.Retry, k.Quit}
}

func (k generateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Follow}, {k.Retry, k.Quit}}
}

func defaultKeyMap() generateKeyMap {
	return generateKeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up", "pgup"), key.WithHelp("k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down", "pgdown"), key.WithHelp("j", "down")),
		Follow: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "follow")),
		Retry:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regenerate")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// streamStartedMsg carries the event channel of a new attempt.
type streamStartedMsg struct {
	epoch  uint64
	events <-chan pipeline.StreamEvent
	err    error
}

// streamMsg is one event read from the stream.
type streamMsg pipeline.Envelope

// streamClosedMsg reports that the event channel of an attempt closed.
type streamClosedMsg struct {
	epoch uint64
}

type revealTickMsg struct {
	id reveal.TickID
	at time.Time
}

type savedMsg worker.Result

// previewState is the pipeline's display sink. The model shares it by
// pointer so it survives the model being copied on every update.
type previewState struct {
	revealed string
	active   bool
}

func (s *previewState) Render(revealed string, active bool) {
	s.revealed = revealed
	s.active = active
}

type tickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

type generateModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	sess   *session

	pipe    *pipeline.Pipeline
	events  <-chan pipeline.StreamEvent
	queue   *reveal.Queue
	preview *previewState
	tick    tickFunc

	lastState pipeline.State
	saved     *worker.Result
	initCmd   tea.Cmd

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     generateKeyMap
	follow   bool
	width    int
	height   int
}

func newGenerateModel(ctx context.Context, sess *session) generateModel {
	queue := &reveal.Queue{}
	preview := &previewState{}

	m := generateModel{
		ctx:     ctx,
		sess:    sess,
		queue:   queue,
		preview: preview,
		tick:    tea.Tick,
		pipe: pipeline.New(pipeline.Config{
			Reveal:      sess.reveal,
			Scheduler:   queue,
			Display:     preview,
			Persistence: sess.persistence(),
			Logger:      logger.OrNop(sess.logger).With("component", "pipeline"),
		}),
		viewport: viewport.New(viewport.WithWidth(80), viewport.WithHeight(20)),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(successStyle)),
		help:     help.New(),
		keys:     defaultKeyMap(),
		follow:   true,
	}
	m.initCmd = m.startAttempt()
	return m
}

// startAttempt abandons the current attempt, if any, and starts streaming a
// new one.
func (m *generateModel) startAttempt() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel

	epoch := m.pipe.Begin()
	m.events = nil
	m.lastState = m.pipe.State()
	m.saved = nil
	m.follow = true
	m.sess.sink.begin(m.sess.now())

	streamer, params := m.sess.streamer, m.sess.params
	return func() tea.Msg {
		events, err := streamer.Stream(ctx, params)
		return streamStartedMsg{epoch: epoch, events: events, err: err}
	}
}

func waitForEvent(epoch uint64, events <-chan pipeline.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{epoch: epoch}
		}
		return streamMsg{Epoch: epoch, Event: ev}
	}
}

func waitForSaved(saved <-chan worker.Result) tea.Cmd {
	if saved == nil {
		return nil
	}
	return func() tea.Msg {
		return savedMsg(<-saved)
	}
}

func (m generateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initCmd)
}

func (m generateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(max(msg.Height-chromeLines, 1))
		m.help.SetWidth(msg.Width)

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Retry):
			if m.pipe.State().Terminal() {
				cmds = append(cmds, m.startAttempt())
			}
		case key.Matches(msg, m.keys.Follow):
			m.follow = true
		case key.Matches(msg, m.keys.Up, m.keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			m.follow = m.viewport.AtBottom()
			cmds = append(cmds, cmd)
		}

	case streamStartedMsg:
		if msg.epoch != m.pipe.Epoch() {
			break
		}
		if msg.err != nil {
			m.pipe.NotifyError(msg.err.Error())
			break
		}
		m.events = msg.events
		cmds = append(cmds, waitForEvent(msg.epoch, msg.events))

	case streamMsg:
		m.pipe.Handle(pipeline.Envelope(msg))
		if msg.Event.Type == pipeline.EventDelta && msg.Epoch == m.pipe.Epoch() {
			cmds = append(cmds, waitForEvent(msg.Epoch, m.events))
		}

	case streamClosedMsg:
		if msg.epoch == m.pipe.Epoch() {
			if s := m.pipe.State(); s == pipeline.Idle || s == pipeline.Streaming {
				m.pipe.NotifyError("stream closed before the paper was complete")
			}
		}

	case revealTickMsg:
		m.pipe.Tick(msg.id, msg.at)

	case savedMsg:
		r := worker.Result(msg)
		m.saved = &r

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.drainTicks())
	if s := m.pipe.State(); s != m.lastState {
		if s == pipeline.Complete && m.sess.sink != nil {
			cmds = append(cmds, waitForSaved(m.sess.saved))
		}
		m.lastState = s
	}
	m.refresh()

	return m, tea.Batch(cmds...)
}

// drainTicks turns scheduled reveal ticks into timer commands.
func (m generateModel) drainTicks() tea.Cmd {
	var cmds []tea.Cmd
	for {
		r, ok := m.queue.Take()
		if !ok {
			break
		}
		id := r.ID
		cmds = append(cmds, m.tick(r.Delay, func(t time.Time) tea.Msg {
			return revealTickMsg{id: id, at: t}
		}))
	}
	return tea.Batch(cmds...)
}

func (m *generateModel) refresh() {
	m.viewport.SetContent(renderPreview(m.preview.revealed, m.preview.active, m.viewport.Width()))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m generateModel) View() tea.View {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m generateModel) header() string {
	p := m.sess.params
	return headerStyle.Render("quizpaper") + " " +
		mutedStyle.Render(fmt.Sprintf("%s · %s · %d questions", p.Theme, p.Difficulty, p.QuestionCount))
}

func (m generateModel) statusLine() string {
	switch m.pipe.State() {
	case pipeline.Complete:
		line := cliui.SuccessMark + " " + successStyle.Render(m.pipe.Status())
		switch {
		case m.saved == nil && m.sess.sink != nil:
			line += mutedStyle.Render(" · saving")
		case m.saved != nil && m.saved.Err != nil:
			line += " " + cliui.WarnStyle.Render("· not saved: "+m.saved.Err.Error())
		case m.saved != nil:
			line += mutedStyle.Render(" · saved " + m.saved.Job.Paper.ID)
		}
		return line
	case pipeline.Failed:
		return cliui.FailMark + " " + failStyle.Render(m.pipe.Status()) + mutedStyle.Render(" · r to retry")
	default:
		return m.spinner.View() + " " + m.pipe.Status()
	}
}

// result returns the finalized paper, or nil.
func (m generateModel) result() *paper.Paper {
	return m.pipe.Result()
}
