package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseMoney", func() {
	It("should accept plain integers", func() {
		f, err := ParseMoney("403")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(403.0))
	})

	It("should accept one or two decimal digits", func() {
		f, err := ParseMoney("12.5")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(12.5))

		f, err = ParseMoney("12.50")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(12.5))
	})

	It("should accept negatives for credit lines", func() {
		f, err := ParseMoney("-3.08")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(-3.08))
	})

	It("should reject currency symbols and separators", func() {
		_, err := ParseMoney("$12.50")
		Expect(err).To(HaveOccurred())

		_, err = ParseMoney("1,234.56")
		Expect(err).To(HaveOccurred())
	})

	It("should reject three decimal digits", func() {
		_, err := ParseMoney("12.345")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("NormalizeDate", func() {
	It("should keep ISO dates as-is", func() {
		Expect(NormalizeDate("2024-01-15")).To(Equal("2024-01-15"))
	})

	It("should convert common layouts", func() {
		Expect(NormalizeDate("01/15/2024")).To(Equal("2024-01-15"))
		Expect(NormalizeDate("Jan 2, 2024")).To(Equal("2024-01-02"))
		Expect(NormalizeDate("2 Jan 2024")).To(Equal("2024-01-02"))
	})

	It("should pass unparsable input through unchanged", func() {
		Expect(NormalizeDate("mid January")).To(Equal("mid January"))
	})

	It("should return empty for empty input", func() {
		Expect(NormalizeDate("  ")).To(Equal(""))
	})
})
