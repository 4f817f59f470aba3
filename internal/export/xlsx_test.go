package export

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"quickbills/internal/invoice"
)

var _ = Describe("XLSX", func() {
	var (
		payload []byte
		err     error
	)

	JustBeforeEach(func() {
		payload, err = XLSX(sampleRecord(), nil)
	})

	It("should produce a readable workbook", func() {
		Expect(err).NotTo(HaveOccurred())

		f, openErr := excelize.OpenReader(bytes.NewReader(payload))
		Expect(openErr).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(Equal([]string{"Invoice"}))

		v, _ := f.GetCellValue("Invoice", "A1")
		Expect(v).To(Equal("Vendor"))
		v, _ = f.GetCellValue("Invoice", "A2")
		Expect(v).To(Equal("Staples"))
		v, _ = f.GetCellValue("Invoice", "H3")
		Expect(v).To(Equal("Stapler"))
	})
})

var _ = Describe("XLSXAll", func() {
	It("should lay records out contiguously", func() {
		first := sampleRecord()
		second := sampleRecord()
		second.VendorName = "Corner Deli"
		second.Items = second.Items[:1]

		payload, err := XLSXAll([]invoice.Record{first, second}, nil)
		Expect(err).NotTo(HaveOccurred())

		f, openErr := excelize.OpenReader(bytes.NewReader(payload))
		Expect(openErr).NotTo(HaveOccurred())
		defer f.Close()

		v, _ := f.GetCellValue("Invoice", "A4")
		Expect(v).To(Equal("Corner Deli"))
	})
})
