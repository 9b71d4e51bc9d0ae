// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"log/slog"
	"strconv"
	"strings"
)

// parseClassification pulls DOCUMENT_TYPE and CONFIDENCE out of a
// loosely formatted model response. Anything unparseable degrades to
// UNKNOWN/LOW; a bad response is never an error.
func parseClassification(response string) (DocumentType, Confidence) {
	docType := TypeUnknown
	confidence := ConfidenceLow

	for _, line := range strings.Split(response, "\n") {
		if idx := strings.Index(line, "DOCUMENT_TYPE:"); idx >= 0 {
			candidate := strings.TrimSpace(line[idx+len("DOCUMENT_TYPE:"):])
			docType = normalizeDocumentType(candidate)
		}
		if idx := strings.Index(line, "CONFIDENCE:"); idx >= 0 {
			candidate := strings.ToUpper(strings.Trim(line[idx+len("CONFIDENCE:"):], " \t*`"))
			switch Confidence(candidate) {
			case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
				confidence = Confidence(candidate)
			}
		}
	}

	return docType, confidence
}

// normalizeDocumentType maps a raw model answer onto a known type.
// Models occasionally echo the parenthetical description, wrap answers
// in markdown, or change the case, so matching is case-insensitive on
// the leading token.
func normalizeDocumentType(raw string) DocumentType {
	raw = strings.ToUpper(strings.Trim(raw, " \t*`"))
	if idx := strings.IndexAny(raw, " ("); idx > 0 {
		raw = raw[:idx]
	}
	for _, known := range KnownTypes {
		if raw == string(known) {
			return known
		}
	}
	return TypeUnknown
}

// parseEntities reads `NAME | value | confidence` lines. Lines for
// unknown entity names, NOT_FOUND markers, and lines without two pipes
// are skipped. A confidence that fails to parse becomes 0.0.
func parseEntities(response string) map[string]Entity {
	known := make(map[string]bool, len(EntityNames))
	for _, name := range EntityNames {
		known[name] = true
	}

	entities := make(map[string]Entity)
	for _, line := range strings.Split(response, "\n") {
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			continue
		}

		name := strings.ToUpper(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if !known[name] {
			continue
		}
		if value == "" || strings.EqualFold(value, "NOT_FOUND") {
			continue
		}

		confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			slog.Warn("Unparseable entity confidence, defaulting to 0.0",
				"entity", name, "raw", strings.TrimSpace(parts[2]))
			confidence = 0.0
		}
		if confidence < 0.0 {
			confidence = 0.0
		}
		if confidence > 1.0 {
			confidence = 1.0
		}

		entities[name] = Entity{Value: value, Confidence: confidence}
	}

	return entities
}
