// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// OCREngine recognizes text in a scanned image file.
type OCREngine interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// TesseractEngine implements OCREngine with the gosseract client.
// A fresh client is created per call; gosseract clients are not safe
// for concurrent use.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
// The language comes from OCR_LANGUAGE; the default is English.
func NewTesseractEngine() *TesseractEngine {
	languages := []string{"eng"}
	if env := os.Getenv("OCR_LANGUAGE"); env != "" {
		languages = []string{env}
	}
	return &TesseractEngine{clientFactory: gosseract.NewClient, languages: languages}
}

// Recognize performs OCR on a single image file.
func (e *TesseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to load image %s for OCR: %w", path, err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("failed to set OCR languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed for %s: %w", path, err)
	}
	slog.Debug("OCR complete", "path", path, "chars", len(text))
	return text, nil
}
