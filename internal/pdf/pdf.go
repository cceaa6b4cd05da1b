// Package pdf turns uploaded PDF bytes into plain text for extraction.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrInvalidPDF means the bytes are not a readable PDF document.
var ErrInvalidPDF = errors.New("invalid PDF document")

// Extractor extracts plain text from PDF bytes. Implementations return page
// text in document order; a valid PDF with no extractable text returns an
// empty string, not an error.
type Extractor interface {
	Text(data []byte) (string, error)
}

// Reader is the default Extractor. It validates the document structure with
// pdfcpu, then pulls page text in order. Pages whose content cannot be
// decoded are skipped rather than failing the whole document.
type Reader struct {
	Logger *slog.Logger
}

// NewReader creates a Reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{Logger: logger}
}

// Text implements Extractor.
func (r *Reader) Text(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidPDF)
	}

	// Structural validation first: a page count failure means the bytes are
	// not a PDF we can work with.
	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if pageCount == 0 {
		return "", fmt.Errorf("%w: document has no pages", ErrInvalidPDF)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			r.Logger.Warn("skipping unreadable page", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
