package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/logger"
)

// decodeLine parses one JSON log line.
func decodeLine(line string) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(line)), &parsed)).To(Succeed())
	return parsed
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

var _ = Describe("New", func() {
	It("writes slog text at info level by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf))
		l.Info("paper saved", "paper_id", "p-1")
		l.Debug("tick")

		Expect(buf.String()).To(ContainSubstring("paper saved"))
		Expect(buf.String()).To(ContainSubstring("paper_id=p-1"))
		Expect(buf.String()).NotTo(ContainSubstring("tick"))
	})

	It("enables debug records with WithDebug", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithDebug(true)).Debug("stale event dropped", "epoch", 1)

		Expect(buf.String()).To(ContainSubstring("stale event dropped"))
	})

	It("writes one JSON object per record with WithJSON", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).Info("generation complete", "questions", 20)

		parsed := decodeLine(buf.String())
		Expect(parsed["msg"]).To(Equal("generation complete"))
		Expect(parsed["questions"]).To(BeNumerically("==", 20))
	})

	It("prefers the pretty handler over JSON", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true)).Info("listening")

		Expect(buf.String()).To(ContainSubstring("listening"))
		Expect(json.Valid(bytes.TrimSpace(buf.Bytes()))).To(BeFalse())
	})

	It("writes to every writer given to WithWriters", func() {
		var a, b bytes.Buffer
		logger.New(logger.WithWriters(&a, &b)).Info("both")

		Expect(a.String()).To(ContainSubstring("both"))
		Expect(b.String()).To(ContainSubstring("both"))
	})

	It("tags records with WithComponent", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithComponent("pipeline")).Info("state changed")

		Expect(decodeLine(buf.String())["component"]).To(Equal("pipeline"))
	})

	It("adds the caller with WithSource", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true)).Info("where")

		Expect(decodeLine(buf.String())).To(HaveKey(slog.SourceKey))
	})
})

var _ = Describe("Nop and OrNop", func() {
	It("discards every level", func() {
		l := logger.Nop()
		Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		Expect(func() { l.With("k", "v").WithGroup("g").Error("ignored") }).NotTo(Panic())
	})

	It("keeps a non-nil logger", func() {
		l := logger.New()
		Expect(logger.OrNop(l)).To(BeIdenticalTo(l))
	})

	It("replaces nil with a discarding logger", func() {
		Expect(logger.OrNop(nil).Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})
})

var _ = Describe("OpenFile", func() {
	It("creates the directory and appends across opens", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "nested")

		for _, msg := range []string{"first", "second"} {
			f, err := logger.OpenFile(dir)
			Expect(err).NotTo(HaveOccurred())
			logger.New(logger.WithWriter(f)).Info(msg)
			Expect(f.Close()).To(Succeed())
		}

		raw, err := os.ReadFile(filepath.Join(dir, logger.FileName))
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(raw), "\n")).To(Equal(2))
		Expect(string(raw)).To(ContainSubstring("first"))
		Expect(string(raw)).To(ContainSubstring("second"))
	})
})

var _ = Describe("Multi", func() {
	var file, term bytes.Buffer

	BeforeEach(func() {
		file.Reset()
		term.Reset()
	})

	It("applies each logger's own level", func() {
		l := logger.Multi(
			logger.New(logger.WithWriter(&file), logger.WithJSON(true), logger.WithDebug(true)),
			logger.New(logger.WithWriter(&term)),
		)
		l.Debug("tick scheduled")
		l.Info("stream started")

		Expect(file.String()).To(ContainSubstring("tick scheduled"))
		Expect(file.String()).To(ContainSubstring("stream started"))
		Expect(term.String()).NotTo(ContainSubstring("tick scheduled"))
		Expect(term.String()).To(ContainSubstring("stream started"))
	})

	It("carries attributes and groups to every handler", func() {
		l := logger.Multi(
			logger.New(logger.WithWriter(&file), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&term), logger.WithJSON(true)),
		)
		l.With("component", "worker").WithGroup("paper").Info("persisted", "id", "p-1")

		for _, out := range []string{file.String(), term.String()} {
			parsed := decodeLine(out)
			Expect(parsed["component"]).To(Equal("worker"))
			Expect(parsed["paper"]).To(HaveKeyWithValue("id", "p-1"))
		}
	})

	It("keeps writing after one handler fails", func() {
		broken := slog.New(failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)})
		l := logger.Multi(broken, nil, logger.New(logger.WithWriter(&term)))

		err := l.Handler().Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "still here", 0))
		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(term.String()).To(ContainSubstring("still here"))
	})
})
