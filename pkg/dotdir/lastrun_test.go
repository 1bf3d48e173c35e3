package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/dotdir"
)

var _ = Describe("dotdir.Manager last run", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns nil when nothing has been generated", func() {
		run, err := m.LoadLastRun(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(run).To(BeNil())
	})

	It("round-trips a saved run", func() {
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		saved := &dotdir.LastRun{
			Theme:         "airport",
			Words:         []string{"boarding", "gate"},
			Difficulty:    "beginner",
			QuestionCount: 10,
			PaperID:       "p1",
			At:            at,
		}
		Expect(m.SaveLastRun(saved, tmpDir)).To(Succeed())

		run, err := m.LoadLastRun(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(run).To(Equal(saved))
	})

	It("returns error for invalid JSON", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "last_run.json"), []byte("not json"), 0o600)).To(Succeed())

		run, err := m.LoadLastRun(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(run).To(BeNil())
	})

	It("refuses to save nil", func() {
		Expect(m.SaveLastRun(nil, tmpDir)).To(HaveOccurred())
	})

	It("clears the run and tolerates a missing file", func() {
		Expect(m.SaveLastRun(&dotdir.LastRun{Theme: "airport"}, tmpDir)).To(Succeed())
		Expect(m.ClearLastRun(tmpDir)).To(Succeed())
		Expect(filepath.Join(tmpDir, "last_run.json")).NotTo(BeAnExistingFile())
		Expect(m.ClearLastRun(tmpDir)).To(Succeed())
	})
})
