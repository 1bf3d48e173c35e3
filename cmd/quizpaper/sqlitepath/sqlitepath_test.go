package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var origCwd string

	BeforeEach(func() {
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers an explicit path", func() {
		path, err := ResolveSQLitePath(" /tmp/custom.db ", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("uses the config dir override", func() {
		dir := GinkgoT().TempDir()

		path, err := ResolveSQLitePath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, FileName)))
	})

	It("resolves ~/.quizpaper/quizpaper.db when there is no local dir", func() {
		homeDir := GinkgoT().TempDir()
		cwd := GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", homeDir)
		Expect(os.Chdir(cwd)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".quizpaper", FileName)))
		Expect(filepath.Join(homeDir, ".quizpaper")).To(BeADirectory())
	})

	It("prefers a local .quizpaper directory", func() {
		cwd := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(cwd, ".quizpaper"), 0o755)).To(Succeed())
		Expect(os.Chdir(cwd)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())

		want, err := filepath.EvalSymlinks(filepath.Join(cwd, ".quizpaper"))
		Expect(err).NotTo(HaveOccurred())
		got, err := filepath.EvalSymlinks(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(filepath.Base(path)).To(Equal(FileName))
	})
})
