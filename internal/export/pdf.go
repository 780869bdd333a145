package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/zombor/bill-reader/internal/invoice"
)

const (
	pdfLeft         = 50
	pdfTop          = 790
	pdfLineHeight   = 16
	pdfLinesPerPage = 45
	pdfFont         = "Helvetica"
	pdfMaxName      = 48
)

// pdfDocument is the subset of the pdfcpu JSON create format used here
type pdfDocument struct {
	Paper string             `json:"paper"`
	Pages map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFontDef `json:"font"`
}

type pdfFontDef struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type pdfLine struct {
	text string
	size int
}

// latin keeps the core Helvetica font renderable: anything beyond ASCII
// becomes '?'.
func latin(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, s)
}

func codeAmount(a *invoice.Amount) string {
	if a == nil {
		return invoice.Placeholder
	}
	return invoice.FormatCode(a.Cents, a.Currency)
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func pdfLines(rec *invoice.Record) []pdfLine {
	lines := []pdfLine{
		{"Invoice summary", 16},
		{"Merchant: " + rec.Display.Merchant, 12},
		{"Date: " + rec.Display.Date, 12},
		{"Total: " + codeAmount(rec.Total), 12},
		{"Confidence: " + strconv.Itoa(rec.Confidence), 12},
		{"Issues: " + issueSummary(rec), 12},
		{"", 12},
		{"Items", 14},
	}
	if len(rec.Items) == 0 {
		lines = append(lines, pdfLine{"No items found", 11})
	}
	for i, it := range rec.Items {
		lines = append(lines, pdfLine{
			fmt.Sprintf("%d. %s  x%d  %s  %s", i+1, truncateName(it.Name, pdfMaxName), max(1, it.Quantity), codeAmount(it.Price), codeAmount(it.Total)),
			11,
		})
	}
	return lines
}

// renderPDF lays the summary out on A4 pages with pdfcpu
func renderPDF(rec *invoice.Record) ([]byte, error) {
	doc := pdfDocument{Paper: "A4P", Pages: map[string]pdfPage{}}
	for i, line := range pdfLines(rec) {
		if line.text == "" {
			continue
		}
		page := strconv.Itoa(i/pdfLinesPerPage + 1)
		p := doc.Pages[page]
		p.Content.Text = append(p.Content.Text, pdfText{
			Value: latin(line.text),
			Pos:   [2]float64{pdfLeft, float64(pdfTop - (i%pdfLinesPerPage)*pdfLineHeight)},
			Font:  pdfFontDef{Name: pdfFont, Size: line.size},
		})
		doc.Pages[page] = p
	}

	layout, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling pdf layout: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(layout), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("creating pdf: %w", err)
	}
	return out.Bytes(), nil
}
