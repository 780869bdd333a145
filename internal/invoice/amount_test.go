package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseAmount", func() {
	DescribeTable("recoverable tokens",
		func(token string, expected int64) {
			cents, ok := ParseAmount(token)
			Expect(ok).To(BeTrue())
			Expect(cents).To(Equal(expected))
		},
		Entry("comma thousands, dot decimal", "1,234.56", int64(123456)),
		Entry("dot thousands, comma decimal", "1.234,56", int64(123456)),
		Entry("comma only is a thousands mark", "1,234", int64(123400)),
		Entry("plain integer", "12", int64(1200)),
		Entry("single decimal digit", "0.5", int64(50)),
		Entry("negative value", "-25.99", int64(-2599)),
		Entry("currency symbol and spaces", "₹ 1,250.00", int64(125000)),
		Entry("rupee abbreviation", "Rs.450", int64(45000)),
		Entry("several dots keep the first number", "1.234.56", int64(123)),
		Entry("large grouped value", "$1,000,000.00", int64(100000000)),
	)

	DescribeTable("tokens without digits",
		func(token string) {
			_, ok := ParseAmount(token)
			Expect(ok).To(BeFalse())
		},
		Entry("letters", "abc"),
		Entry("empty", ""),
		Entry("lone dot", "."),
		Entry("separators only", ",.-"),
		Entry("account number sized run", "12345678901234567890"),
	)

	When("formatting and parsing again", func() {
		DescribeTable("recovers the original minor units",
			func(cents int64, c Currency) {
				back, ok := ParseAmount(FormatCents(cents, c))
				Expect(ok).To(BeTrue())
				Expect(back).To(Equal(cents))
			},
			Entry("rupees", int64(123456), INR),
			Entry("dollars", int64(5), USD),
			Entry("euros with code prefix", int64(99999999), EUR),
			Entry("pounds", int64(100), GBP),
			Entry("negative rupees", int64(-75050), INR),
			Entry("zero", int64(0), USD),
		)
	})
})

var _ = Describe("amountsIn", func() {
	It("parses each numeric token of a row", func() {
		Expect(amountsIn("Coffee 2 150.00 300.00")).To(Equal([]int64{200, 15000, 30000}))
	})

	It("skips punctuation without digits", func() {
		Expect(amountsIn("Total: Rs. 580.00")).To(Equal([]int64{58000}))
	})

	It("returns nothing for text", func() {
		Expect(amountsIn("Thank you")).To(BeEmpty())
	})
})
