package generatecmder

import (
	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("renderPreview", func() {
	const text = "📝 At the airport\n\n1. Our flight was d______ by two hours.\n   我们的航班延误了两个小时。\n"

	It("wraps without styling when the reveal is idle", func() {
		Expect(renderPreview(text, false, 20)).To(Equal(ansi.Wordwrap(text, 20, "")))
	})

	It("emphasizes the tail while active without changing the text", func() {
		out := renderPreview(text, true, 20)
		Expect(out).NotTo(Equal(renderPreview(text, false, 20)))
		Expect(ansi.Strip(out)).To(Equal(ansi.Wordwrap(text, 20, "")))
	})

	It("leaves text unwrapped without a width", func() {
		Expect(renderPreview(text, false, 0)).To(Equal(text))
	})
})

var _ = Describe("splitTail", func() {
	It("splits on rune boundaries", func() {
		head, tail := splitTail("航班延误了两个小时", 3)
		Expect(head).To(Equal("航班延误了两"))
		Expect(tail).To(Equal("个小时"))
	})

	It("returns everything as tail for short strings", func() {
		head, tail := splitTail("abc", tailRunes)
		Expect(head).To(BeEmpty())
		Expect(tail).To(Equal("abc"))
	})
})
