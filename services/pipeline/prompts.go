// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// classificationTextLimit caps how much document text goes into the
// classification prompt. Identity documents are short; resumes and
// contracts are identifiable from their opening.
const classificationTextLimit = 2000

// buildClassificationPrompt asks the model to pick exactly one document
// type and report HIGH/MEDIUM/LOW confidence in a line-oriented format
// the parser can split on.
func buildClassificationPrompt(documentText string) string {
	documentText = truncateRunes(documentText, classificationTextLimit)

	return fmt.Sprintf(`Classify this document into ONE of these types:
- AADHAAR (Indian national ID card)
- PASSPORT (travel document)
- PAN_CARD (Permanent Account Number)
- RESUME (CV/job application)
- CONTRACT (legal agreement)
- EXPERIENCE_LETTER (employment letter)

Document text:
%s

Respond ONLY in this format:
DOCUMENT_TYPE: <type>
CONFIDENCE: <HIGH/MEDIUM/LOW>
`, documentText)
}

// truncateRunes cuts s to at most limit runes without splitting a
// multi-byte character. Scanned documents routinely mix scripts, so a
// plain byte slice could leave invalid UTF-8 at the cut point.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := 0
	for i := range s {
		if runes == limit {
			return s[:i]
		}
		runes++
	}
	return s
}

// buildEntityPrompt asks for every entity in EntityNames as one
// pipe-separated line per entity. Missing values must be reported as
// NOT_FOUND so the parser can skip them.
func buildEntityPrompt(documentText string) string {
	var names strings.Builder
	for _, name := range EntityNames {
		names.WriteString("- ")
		names.WriteString(name)
		names.WriteString("\n")
	}

	return fmt.Sprintf(`Extract the following entities from the document text below.

Entities to extract:
%s
Document text:
%s

Respond with ONE line per entity in EXACTLY this format:
<ENTITY_NAME> | <value> | <confidence between 0.0 and 1.0>

If an entity is not present in the document, respond with:
<ENTITY_NAME> | NOT_FOUND | 0.0

Do not add any other text.
`, names.String(), documentText)
}
