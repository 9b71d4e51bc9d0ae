// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extraction turns heterogeneous document files into plain text.
//
// Supported formats:
//   - PDF: native text layer extraction, page by page
//   - DOCX: paragraph text from the main document part
//   - JPG/JPEG/PNG/BMP: OCR via Tesseract
//   - TXT: raw contents
//
// The package does not attempt layout reconstruction. Output is a flat
// string suitable for prompting and chunking.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions the extractor
// does not know how to handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// imageExtensions are the formats routed through OCR.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// TextExtractor extracts plain text from a document file.
// Implemented by Extractor; mocked in handler and pipeline tests.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Extractor dispatches to a format-specific extraction routine based on
// the file extension.
type Extractor struct {
	ocr OCREngine
}

// NewExtractor returns an Extractor backed by the Tesseract OCR engine.
func NewExtractor() *Extractor {
	return &Extractor{ocr: NewTesseractEngine()}
}

// NewExtractorWithOCR returns an Extractor with a caller-supplied OCR
// engine. Used by tests to avoid a Tesseract dependency.
func NewExtractorWithOCR(ocr OCREngine) *Extractor {
	return &Extractor{ocr: ocr}
}

// Extract reads the file at path and returns its text content.
// An empty result is not an error; downstream classification treats it
// as an unreadable document.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot access document %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	slog.Info("Extracting text", "path", path, "format", ext)

	switch {
	case ext == ".pdf":
		return extractPDF(ctx, path)
	case ext == ".docx":
		return extractDOCX(path)
	case ext == ".txt":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read text file %s: %w", path, err)
		}
		return string(raw), nil
	case imageExtensions[ext]:
		return e.ocr.Recognize(ctx, path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Supported reports whether the extractor can handle the given file.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".docx" || ext == ".txt" || imageExtensions[ext]
}
