package scanning

import "errors"

// ErrNoText is returned when a backend produced no usable transcript
var ErrNoText = errors.New("no text recognised")

// Scanner turns an uploaded document into raw text for the invoice parser.
// An empty transcript is not an error; the parser reports it.
type Scanner interface {
	// ScanText transcribes an image or PDF
	ScanText(data []byte, contentType string) (string, error)
	// Close releases any resources held by the scanner
	Close() error
}

// transcriptionPrompt is shared by the LLM backends. The parser needs the
// document as it is printed, so the model must not summarise or reformat it.
const transcriptionPrompt = `You are transcribing a bill, receipt or invoice. Read every piece of text in the image and return it exactly as printed.

Rules:
- Keep the original line order, one printed line per output line
- Keep each item row on a single line with its quantity, unit price and line total
- Keep currency symbols (₹, $, €, £), decimal points and thousands separators as printed
- Do not translate, summarise, correct or reformat anything
- Do not add commentary, headings or explanations
- Do not use markdown code blocks`
