package servecmder

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("newLogger", func() {
	It("tags API server records with the serve component", func() {
		var buf bytes.Buffer
		newLogger(&buf, false).Info("listening", "addr", ":8081")

		Expect(buf.String()).To(ContainSubstring("listening"))
		Expect(buf.String()).To(ContainSubstring("component=serve"))
	})

	It("drops debug records unless debug is on", func() {
		var buf bytes.Buffer
		newLogger(&buf, false).Debug("hidden")
		Expect(buf.String()).To(BeEmpty())

		newLogger(&buf, true).Debug("shown")
		Expect(buf.String()).To(ContainSubstring("shown"))
	})
})
