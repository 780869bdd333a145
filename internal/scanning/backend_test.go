package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("New", func() {
	It("wraps tesseract by default", func() {
		s, err := New(Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ocr).To(BeAssignableToTypeOf(&Tesseract{}))
	})

	It("builds an ollama backend", func() {
		s, err := New(Config{Backend: "Ollama", OllamaURL: "http://ollama:11434/"})
		Expect(err).NotTo(HaveOccurred())
		ollama, ok := s.ocr.(*Ollama)
		Expect(ok).To(BeTrue())
		Expect(ollama.baseURL).To(Equal("http://ollama:11434"))
	})

	It("reads text layers only with none", func() {
		s, err := New(Config{Backend: BackendNone})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ocr).To(BeNil())
		_, err = s.ScanText([]byte("jpeg"), "image/jpeg")
		Expect(err).To(MatchError(ErrNoText))
	})

	It("rejects an invalid OCR mode", func() {
		_, err := New(Config{Backend: BackendTesseract, OCRMode: "turbo"})
		Expect(err).To(MatchError(ContainSubstring("unknown OCR mode")))
	})

	It("rejects gemini without a key", func() {
		GinkgoT().Setenv("GEMINI_API_KEY", "")
		_, err := New(Config{Backend: BackendGemini})
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})

	It("rejects unknown backends", func() {
		_, err := New(Config{Backend: "abbyy"})
		Expect(err).To(MatchError(ContainSubstring(`unknown scanner "abbyy"`)))
	})
})
