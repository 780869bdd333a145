package scanning

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TextLayer", func() {
	var (
		ocr   *mockScanner
		layer *TextLayer
	)

	BeforeEach(func() {
		ocr = &mockScanner{text: "Cafe Mocha\nTotal 10.00"}
		layer = NewTextLayer(ocr)
	})

	It("sends images straight to OCR", func() {
		text, err := layer.ScanText([]byte("png bytes"), "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Cafe Mocha\nTotal 10.00"))
		Expect(ocr.calls).To(Equal(1))
	})

	It("falls back to OCR when the PDF cannot be read", func() {
		text, err := layer.ScanText([]byte("%PDF-1.4 truncated"), "application/pdf")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Cafe Mocha\nTotal 10.00"))
		Expect(ocr.calls).To(Equal(1))
	})

	It("returns OCR errors", func() {
		ocr.err = errors.New("tesseract missing")
		_, err := layer.ScanText([]byte("png bytes"), "image/png")
		Expect(err).To(MatchError("tesseract missing"))
	})

	It("reports missing OCR for scans", func() {
		layer = NewTextLayer(nil)
		_, err := layer.ScanText([]byte("png bytes"), "image/png")
		Expect(err).To(MatchError(ErrNoText))
		Expect(layer.Close()).To(Succeed())
	})

	It("closes the wrapped scanner", func() {
		Expect(layer.Close()).To(Succeed())
		Expect(ocr.closed).To(BeTrue())
	})
})

var _ = Describe("isReadableText", func() {
	It("accepts an ordinary bill", func() {
		Expect(isReadableText([]string{"Cafe Mocha\nCoffee 2 150.00 300.00\n", "Total ₹300.00"})).To(BeTrue())
	})

	It("rejects short layers", func() {
		Expect(isReadableText([]string{"Page 1"})).To(BeFalse())
	})

	It("rejects layers without digits", func() {
		Expect(isReadableText([]string{"This document has no numbers at all in it"})).To(BeFalse())
	})

	It("rejects font garbage", func() {
		garbage := strings.Repeat("Ã©â\u0080\u009c", 20) + " 12"
		Expect(isReadableText([]string{garbage})).To(BeFalse())
	})
})

var _ = Describe("textQuality", func() {
	It("is zero for empty input", func() {
		Expect(textQuality(nil)).To(BeZero())
	})

	It("counts currency symbols as readable", func() {
		Expect(textQuality([]string{"₹€£$"})).To(Equal(1.0))
	})
})
