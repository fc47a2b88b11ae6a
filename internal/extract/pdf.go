// Package extract turns raw PDF bytes into plain text. The parsing itself is
// owned by github.com/ledongthuc/pdf; this package only adapts it to the
// ingestion pipeline.
package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts the concatenated plain text of all pages of a PDF.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText parses data as a PDF and returns its full text content.
// The pdf library panics on some malformed files, so parsing runs behind a
// recover and surfaces those as ordinary errors.
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}
	return buf.String(), nil
}
