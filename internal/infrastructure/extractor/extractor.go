// Package extractor turns a local document into the plain text submitted by
// the paste workflow.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxSourceBytes caps how much of a source document is read.
const MaxSourceBytes = 20 << 20

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract reads r fully and returns its text. PDFs are detected by extension
// or magic bytes; anything else must be valid UTF-8.
func (e *Extractor) Extract(ctx context.Context, filename string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if len(raw) > MaxSourceBytes {
		return "", fmt.Errorf("source document %s exceeds %d bytes", filename, MaxSourceBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if isPDF(filename, raw) {
		return extractPDF(filename, raw)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary format: %s", filename)
	}
	return string(raw), nil
}

func isPDF(filename string, raw []byte) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf") || bytes.HasPrefix(raw, []byte("%PDF-"))
}

func extractPDF(filename string, raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", filename, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", filename, err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", filename, err)
	}
	return buf.String(), nil
}
