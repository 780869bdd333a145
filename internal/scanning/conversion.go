package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

const (
	// minOCRHeight is the height below which images are upscaled before OCR
	minOCRHeight = 800
	// ocrHeight is the target height of upscaled images
	ocrHeight = 1200
)

// renderPDFPage rasterises the first page of a PDF
func renderPDFPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// bills are scanned from the first page only
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// decodeImage decodes HEIC/HEIF and the standard library formats
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	if isHEICFormat(data) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") {
			return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

func normalizeMimeType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}

// loadImage decodes an upload into an image, rasterising PDFs
func loadImage(data []byte, contentType string) (image.Image, error) {
	mimeType := normalizeMimeType(contentType)
	if mimeType == "application/pdf" {
		img, err := renderPDFPage(data)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return img, nil
	}
	return decodeImage(data, mimeType)
}

// prepareImageData converts an upload to PNG for the LLM backends. PNG
// input is passed through untouched.
func prepareImageData(data []byte, contentType string) ([]byte, error) {
	if normalizeMimeType(contentType) == "image/png" && !isHEICFormat(data) {
		return data, nil
	}
	img, err := loadImage(data, contentType)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// preprocessForOCR grayscales the image and upscales short scans, which
// improves Tesseract accuracy on phone photos of receipts.
func preprocessForOCR(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minOCRHeight {
		return imaging.Resize(gray, 0, ocrHeight, imaging.Lanczos)
	}
	return gray
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
