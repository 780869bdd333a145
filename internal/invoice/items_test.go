package invoice

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("mapRow", func() {
	var (
		line string
		item LineItem
		ok   bool
	)

	JustBeforeEach(func() {
		item, ok = mapRow(line, INR)
	})

	When("the row has quantity, price and total", func() {
		BeforeEach(func() {
			line = "Coffee 2 150.00 300.00"
		})

		It("assigns each role", func() {
			Expect(ok).To(BeTrue())
			Expect(item.Name).To(Equal("Coffee"))
			Expect(item.Quantity).To(Equal(2))
			Expect(item.Price.Cents).To(Equal(int64(15000)))
			Expect(item.Total.Cents).To(Equal(int64(30000)))
			Expect(item.Currency).To(Equal(INR))
		})
	})

	When("no number is a clean count", func() {
		BeforeEach(func() {
			line = "Pen 0.5 2.50 7.50"
		})

		It("infers quantity from total over price", func() {
			Expect(item.Name).To(Equal("Pen"))
			Expect(item.Quantity).To(Equal(3))
			Expect(item.Price.Cents).To(Equal(int64(250)))
			Expect(item.Total.Cents).To(Equal(int64(750)))
		})
	})

	When("the number before the total is implausibly large", func() {
		BeforeEach(func() {
			line = "Widget 2 9999999.00 10.00"
		})

		It("keeps looking for a price further left", func() {
			Expect(item.Price.Cents).To(Equal(int64(200)))
			Expect(item.Total.Cents).To(Equal(int64(1000)))
		})
	})

	When("two numbers grow by more than five percent", func() {
		BeforeEach(func() {
			line = "Tea 10.00 30.00"
		})

		It("reads price and total", func() {
			Expect(item.Price.Cents).To(Equal(int64(1000)))
			Expect(item.Total.Cents).To(Equal(int64(3000)))
			Expect(item.Quantity).To(Equal(3))
		})
	})

	When("two numbers start with a clean count", func() {
		BeforeEach(func() {
			line = "Bread 3 2.50"
		})

		It("reads quantity and price", func() {
			Expect(item.Quantity).To(Equal(3))
			Expect(item.Price.Cents).To(Equal(int64(250)))
			Expect(item.Total.Cents).To(Equal(int64(750)))
		})
	})

	When("two close numbers are not a count", func() {
		BeforeEach(func() {
			line = "Juice 12.50 12.00"
		})

		It("reads price and total and defaults quantity", func() {
			Expect(item.Price.Cents).To(Equal(int64(1250)))
			Expect(item.Total.Cents).To(Equal(int64(1200)))
			Expect(item.Quantity).To(Equal(1))
		})
	})

	When("the row has a single number", func() {
		BeforeEach(func() {
			line = "Service charge 45.00"
		})

		It("treats it as the line total", func() {
			Expect(item.Name).To(Equal("Service charge"))
			Expect(item.Total.Cents).To(Equal(int64(4500)))
			Expect(item.Price).To(BeNil())
			Expect(item.Quantity).To(Equal(1))
		})
	})

	When("the row has no numbers", func() {
		BeforeEach(func() {
			line = "Thank you"
		})

		It("is rejected", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the row carries its own currency", func() {
		BeforeEach(func() {
			line = "Imported tea $ 12.00"
		})

		It("uses it instead of the document currency", func() {
			Expect(item.Currency).To(Equal(USD))
			Expect(item.Total.Currency).To(Equal(USD))
		})
	})

	When("the name is very long", func() {
		BeforeEach(func() {
			line = strings.Repeat("a", 130) + " 5.00"
		})

		It("caps it at 120 characters", func() {
			Expect(utf8.RuneCountInString(item.Name)).To(Equal(120))
		})
	})
})

var _ = Describe("mergeLines", func() {
	It("joins a name with the numbers on the next line", func() {
		Expect(mergeLines([]string{"Masala", "Dosa 2 80.00 160.00", "Thank you"})).
			To(Equal([]string{"Masala Dosa 2 80.00 160.00", "Thank you"}))
	})

	It("joins hyphen-wrapped lines", func() {
		Expect(mergeLines([]string{"Paper A4 500-", "sheets 1 250.00 250.00"})).
			To(Equal([]string{"Paper A4 500 sheets 1 250.00 250.00"}))
	})

	It("leaves unrelated lines alone", func() {
		Expect(mergeLines([]string{"Cafe", "Main Road"})).To(Equal([]string{"Cafe", "Main Road"}))
	})
})

var _ = Describe("extractItems", func() {
	itemsOf := func(raw string, skipSummary bool) []LineItem {
		return extractItems(Normalize(raw), INR, skipSummary)
	}

	It("drops exact repeats", func() {
		Expect(itemsOf("Coffee 2 150.00 300.00\nCoffee 2 150.00 300.00", false)).To(HaveLen(1))
	})

	It("drops rows without a price or total", func() {
		Expect(itemsOf("Free sample 0.00\nCoffee 2 150.00 300.00", false)).To(HaveLen(1))
	})

	It("ignores lines without letters", func() {
		Expect(itemsOf("07/03/2024\n450.00", false)).To(BeEmpty())
	})

	It("keeps summary rows unless asked to skip them", func() {
		raw := "Coffee 2 150.00 300.00\nSubtotal 300.00\nGST 5% 15.00\nTotal 315.00"
		Expect(itemsOf(raw, false)).To(HaveLen(4))

		items := itemsOf(raw, true)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Name).To(Equal("Coffee"))
	})

	It("retains only items with a price or total", func() {
		for _, it := range itemsOf("A 1\nB 2 3\nC 4 5 6\nD 0 0", false) {
			Expect(hasValue(it.Price) || hasValue(it.Total)).To(BeTrue())
			Expect(it.Quantity).To(BeNumerically(">=", 1))
		}
	})
})
