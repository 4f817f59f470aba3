package llm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildInvoiceJSONSchema", func() {
	var (
		schema map[string]any
		data   []byte
		err    error
	)

	BeforeEach(func() {
		schema = BuildInvoiceJSONSchema([]string{"Office Supplies", "Meals", "Uncategorized Expense"})
	})

	JustBeforeEach(func() {
		err = ValidateJSONAgainstSchema(schema, data)
	})

	When("the candidate is well-formed", func() {
		BeforeEach(func() {
			data = []byte(`{
				"vendor_name": "Staples",
				"invoice_number": "INV-2024-0042",
				"issue_date": "2024-01-15",
				"items": [
					{"description": "Copy Paper", "quantity": 2, "unit_price": "12.50", "total_price": "25.00", "category": "Office Supplies"}
				],
				"total_amount": "25.00",
				"currency": "USD"
			}`)
		})

		It("should accept it", func() {
			Expect(err).NotTo(HaveOccurred())
		})
	})

	When("the vendor name is missing", func() {
		BeforeEach(func() {
			data = []byte(`{"total_amount": "25.00"}`)
		})

		It("should reject it", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("money is a JSON number instead of a string", func() {
		BeforeEach(func() {
			data = []byte(`{"vendor_name": "Staples", "total_amount": 25.0}`)
		})

		It("should reject it", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("an amount carries three decimal digits", func() {
		BeforeEach(func() {
			data = []byte(`{"vendor_name": "Staples", "total_amount": "25.005"}`)
		})

		It("should reject it", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("a date is not ISO formatted", func() {
		BeforeEach(func() {
			data = []byte(`{"vendor_name": "Staples", "issue_date": "01/15/2024", "total_amount": "25.00"}`)
		})

		It("should reject it", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the candidate has a field the schema does not know", func() {
		BeforeEach(func() {
			data = []byte(`{"vendor_name": "Staples", "total_amount": "25.00", "notes": "hello"}`)
		})

		It("should reject it", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("a category falls outside the allowed set", func() {
		BeforeEach(func() {
			data = []byte(`{
				"vendor_name": "Staples",
				"items": [{"description": "Paper", "total_price": "25.00", "category": "Stationery"}],
				"total_amount": "25.00"
			}`)
		})

		It("should reject it", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("built without a category enum", func() {
		BeforeEach(func() {
			schema = BuildInvoiceJSONSchema(nil)
			data = []byte(`{
				"vendor_name": "Staples",
				"items": [{"description": "Paper", "total_price": "25.00", "category": "Stationery"}],
				"total_amount": "25.00"
			}`)
		})

		It("should accept any category string", func() {
			Expect(err).NotTo(HaveOccurred())
		})
	})

	When("a negative credit line appears", func() {
		BeforeEach(func() {
			data = []byte(`{
				"vendor_name": "Staples",
				"items": [{"description": "Coupon", "total_price": "-3.08"}],
				"total_amount": "21.92"
			}`)
		})

		It("should accept it", func() {
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
