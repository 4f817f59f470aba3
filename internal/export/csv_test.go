package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"quickbills/internal/invoice"
)

func TestExport(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Export Suite")
}

func sampleRecord() invoice.Record {
	return invoice.Record{
		VendorName:    "Staples",
		InvoiceNumber: "INV-2024-0042",
		IssueDate:     "2024-01-15",
		DueDate:       "2024-02-14",
		Items: []invoice.LineItem{
			{Description: "Copy Paper 500ct", Quantity: 2, UnitPrice: "12.50", TotalPrice: "25.00", Category: "Office Supplies"},
			{Description: "Stapler", Quantity: 1, TotalPrice: "8.99", Category: "Office Supplies"},
		},
		TotalAmount: "33.99",
		Currency:    "USD",
	}
}

func parseCSV(payload []byte) [][]string {
	Expect(bytes.HasPrefix(payload, utf8BOM)).To(BeTrue(), "payload must start with a UTF-8 BOM")
	rows, err := csv.NewReader(bytes.NewReader(payload[len(utf8BOM):])).ReadAll()
	Expect(err).NotTo(HaveOccurred())
	return rows
}

var _ = Describe("CSV", func() {
	var (
		rec     invoice.Record
		payload []byte
		rows    [][]string
	)

	BeforeEach(func() {
		rec = sampleRecord()
	})

	JustBeforeEach(func() {
		payload = CSV(rec)
		rows = parseCSV(payload)
	})

	It("should write the QuickBooks header row", func() {
		Expect(rows[0]).To(Equal([]string{
			"Vendor", "Invoice No", "Invoice Date", "Due Date",
			"Total Amount", "Line Amount", "Line Account", "Line Description",
		}))
	})

	It("should write one row per line item", func() {
		Expect(rows).To(HaveLen(3))
	})

	It("should repeat the invoice-level fields on every row", func() {
		for _, row := range rows[1:] {
			Expect(row[0]).To(Equal("Staples"))
			Expect(row[1]).To(Equal("INV-2024-0042"))
			Expect(row[4]).To(Equal("33.99"))
		}
	})

	It("should render dates as MM/DD/YYYY", func() {
		Expect(rows[1][2]).To(Equal("01/15/2024"))
		Expect(rows[1][3]).To(Equal("02/14/2024"))
	})

	It("should map item amount, account and description", func() {
		Expect(rows[1][5]).To(Equal("25.00"))
		Expect(rows[1][6]).To(Equal("Office Supplies"))
		Expect(rows[1][7]).To(Equal("Copy Paper 500ct"))
		Expect(rows[2][7]).To(Equal("Stapler"))
	})

	It("should be byte-identical across runs", func() {
		Expect(CSV(rec)).To(Equal(payload))
	})

	When("the record has no line items", func() {
		BeforeEach(func() {
			rec.Items = nil
		})

		It("should emit a single synthetic row for the stated total", func() {
			Expect(rows).To(HaveLen(2))
			Expect(rows[1][5]).To(Equal("33.99"))
			Expect(rows[1][6]).To(Equal("Uncategorized Expense"))
			Expect(rows[1][7]).To(Equal("Invoice Total"))
		})
	})

	When("a date did not normalize", func() {
		BeforeEach(func() {
			rec.DueDate = "on receipt"
		})

		It("should pass the raw text through", func() {
			Expect(rows[1][3]).To(Equal("on receipt"))
		})
	})

	When("an amount is malformed", func() {
		BeforeEach(func() {
			rec.Items[0].TotalPrice = "n/a"
		})

		It("should degrade to 0.00 instead of failing", func() {
			Expect(rows[1][5]).To(Equal("0.00"))
		})
	})
})

var _ = Describe("CSVAll", func() {
	It("should concatenate records under a single header", func() {
		first := sampleRecord()
		second := sampleRecord()
		second.VendorName = "Corner Deli"
		second.Items = second.Items[:1]

		rows := parseCSV(CSVAll([]invoice.Record{first, second}))
		Expect(rows).To(HaveLen(4))
		Expect(rows[1][0]).To(Equal("Staples"))
		Expect(rows[3][0]).To(Equal("Corner Deli"))
	})
})
