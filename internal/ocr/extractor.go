// Package ocr defines the text extraction boundary used when a prescription
// file is uploaded. Production deployments point this at a real OCR service;
// the default implementation reads plain-text files so the rest of the
// pipeline can run locally.
package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Extractor pulls the raw text out of an uploaded prescription file.
type Extractor interface {
	Extract(ctx context.Context, filePath string) (string, error)
}

// PlainTextExtractor treats the uploaded file as already-extracted text.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Extract(ctx context.Context, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read prescription file %s: %w", filePath, err)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("prescription file %s contained no text", filePath)
	}
	return text, nil
}
