// Package pdftext turns invoice PDFs into plain text lines: embedded text
// first, Tesseract OCR on rendered pages when a document has none (scanned
// invoices).
package pdftext

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// ErrNoText is returned when neither embedded text nor OCR produced any
// usable line.
var ErrNoText = errors.New("no text lines extracted")

// Extractor extracts text lines from PDF documents. With OCREnabled false
// (no tesseract install, or OCR_DISABLED set) scanned documents simply yield
// ErrNoText instead of crashing.
type Extractor struct {
	OCREnabled bool
	DPI        float64
	Languages  []string
}

// NewExtractor returns an extractor rendering at 200 DPI with Dutch+English
// OCR models.
func NewExtractor(ocrEnabled bool) *Extractor {
	return &Extractor{OCREnabled: ocrEnabled, DPI: 200, Languages: []string{"nld", "eng"}}
}

// Lines extracts the text lines of one document in page order. The second
// return reports whether the OCR fallback was used.
func (e *Extractor) Lines(path string) ([]string, bool, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	var lines []string
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			log.Printf("pdftext: page %d of %s: %v", n, path, err)
			continue
		}
		lines = append(lines, SplitLines(text)...)
	}
	if len(lines) > 0 {
		return lines, false, nil
	}

	if !e.OCREnabled {
		return nil, false, ErrNoText
	}
	lines, err = e.ocrLines(doc, path)
	if err != nil {
		return nil, true, err
	}
	if len(lines) == 0 {
		return nil, true, ErrNoText
	}
	return lines, true, nil
}

// ocrLines renders every page, preprocesses it and runs Tesseract in
// single-block mode.
func (e *Extractor) ocrLines(doc *fitz.Document, path string) ([]string, error) {
	var lines []string
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, e.DPI)
		if err != nil {
			return nil, fmt.Errorf("render page %d of %s: %w", n, path, err)
		}
		prepared := prepare(img)

		tmp, err := os.CreateTemp("", "factuurcheck-ocr-*.png")
		if err != nil {
			return nil, err
		}
		_ = tmp.Close()
		if err := imaging.Save(prepared, tmp.Name()); err != nil {
			_ = os.Remove(tmp.Name())
			return nil, err
		}

		client := gosseract.NewClient()
		_ = client.SetLanguage(e.Languages...)
		_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
		_ = client.SetImage(tmp.Name())
		text, err := client.Text()
		_ = client.Close()
		_ = os.Remove(tmp.Name())
		if err != nil {
			return nil, fmt.Errorf("ocr page %d of %s: %w", n, path, err)
		}
		lines = append(lines, SplitLines(text)...)
	}
	return lines, nil
}

// SplitLines splits extracted page text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
