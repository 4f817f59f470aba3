package llm

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildSystemPrompt", func() {
	var (
		req    ExtractRequest
		prompt string
	)

	BeforeEach(func() {
		req = ExtractRequest{
			AllowedCategories: []string{"Office Supplies", "Meals"},
			DefaultCurrency:   "EUR",
		}
	})

	JustBeforeEach(func() {
		prompt = BuildSystemPrompt(req)
	})

	It("should forbid aggregate lines in the items", func() {
		Expect(prompt).To(ContainSubstring("subtotal, total, tax"))
	})

	It("should anchor line prices to the rightmost figure", func() {
		Expect(prompt).To(ContainSubstring("rightmost monetary figure"))
	})

	It("should pin the quantity default", func() {
		Expect(prompt).To(ContainSubstring("'quantity' is 1 unless"))
	})

	It("should demand an arithmetic self-check", func() {
		Expect(prompt).To(ContainSubstring("sum of items.total_price"))
	})

	It("should explain decimal-point recovery without inventing numbers", func() {
		Expect(prompt).To(ContainSubstring("decimal two digits from the right"))
		Expect(prompt).To(ContainSubstring("never invent"))
	})

	It("should require ISO dates", func() {
		Expect(prompt).To(ContainSubstring("YYYY-MM-DD"))
	})

	It("should list the allowed categories", func() {
		Expect(prompt).To(ContainSubstring("Office Supplies, Meals"))
	})

	It("should name the default currency", func() {
		Expect(prompt).To(ContainSubstring("default to EUR"))
	})

	When("no default currency is configured", func() {
		BeforeEach(func() {
			req.DefaultCurrency = ""
		})

		It("should fall back to USD", func() {
			Expect(prompt).To(ContainSubstring("default to USD"))
		})
	})
})

var _ = Describe("BuildUserPrompt", func() {
	It("should include the filename hint and delimit the text", func() {
		prompt := BuildUserPrompt(ExtractRequest{
			RawText:      "STAPLES\nCopy Paper 25.00\nTOTAL 25.00",
			FilenameHint: "staples-jan.pdf",
		})
		Expect(prompt).To(ContainSubstring("Filename: staples-jan.pdf"))
		Expect(prompt).To(ContainSubstring("---\nSTAPLES"))
	})

	It("should truncate very long documents", func() {
		prompt := BuildUserPrompt(ExtractRequest{
			RawText: strings.Repeat("line of receipt text\n", 1000),
		})
		Expect(prompt).To(ContainSubstring("(truncated)"))
		Expect(len(prompt)).To(BeNumerically("<", 7000))
	})

	It("should omit the filename line when there is no hint", func() {
		prompt := BuildUserPrompt(ExtractRequest{RawText: "text"})
		Expect(prompt).NotTo(ContainSubstring("Filename:"))
	})
})
