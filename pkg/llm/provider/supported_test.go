package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/llm/provider"
)

var _ = Describe("New", func() {
	It("builds every supported provider", func() {
		for _, name := range provider.SupportedProviders() {
			p, err := provider.New(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal(name))
		}
	})

	It("rejects unknown providers", func() {
		_, err := provider.New("bedrock")
		Expect(err).To(MatchError(provider.ErrUnknownProvider))
		Expect(err.Error()).To(ContainSubstring(`"bedrock"`))
	})
})
