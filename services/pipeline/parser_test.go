// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantType       DocumentType
		wantConfidence Confidence
	}{
		{
			name:           "well formed",
			response:       "DOCUMENT_TYPE: AADHAAR\nCONFIDENCE: HIGH",
			wantType:       TypeAadhaar,
			wantConfidence: ConfidenceHigh,
		},
		{
			name:           "lowercase type",
			response:       "DOCUMENT_TYPE: pan_card\nCONFIDENCE: medium",
			wantType:       TypePANCard,
			wantConfidence: ConfidenceMedium,
		},
		{
			name:           "type echoed with description",
			response:       "DOCUMENT_TYPE: PASSPORT (travel document)\nCONFIDENCE: HIGH",
			wantType:       TypePassport,
			wantConfidence: ConfidenceHigh,
		},
		{
			name:           "markdown wrapped",
			response:       "Here is my answer:\n**DOCUMENT_TYPE: RESUME**\n**CONFIDENCE: MEDIUM**",
			wantType:       TypeResume,
			wantConfidence: ConfidenceMedium,
		},
		{
			name:           "unknown type falls back",
			response:       "DOCUMENT_TYPE: DRIVING_LICENSE\nCONFIDENCE: HIGH",
			wantType:       TypeUnknown,
			wantConfidence: ConfidenceHigh,
		},
		{
			name:           "garbage response",
			response:       "I am not sure what this document is.",
			wantType:       TypeUnknown,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "empty response",
			response:       "",
			wantType:       TypeUnknown,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "invalid confidence keeps default",
			response:       "DOCUMENT_TYPE: CONTRACT\nCONFIDENCE: VERY_HIGH",
			wantType:       TypeContract,
			wantConfidence: ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docType, confidence := parseClassification(tt.response)
			assert.Equal(t, tt.wantType, docType)
			assert.Equal(t, tt.wantConfidence, confidence)
		})
	}
}

func TestParseEntities(t *testing.T) {
	response := `FULL_NAME | Priya Sharma | 0.95
AADHAAR_NUMBER | 1234 5678 9012 | 0.9
PAN_NUMBER | NOT_FOUND | 0.0
PASSPORT_NUMBER | NOT_FOUND | 0.0
PHONE_NUMBER | +91 98765 43210 | 0.85
EMAIL_ADDRESS | priya.sharma@example.com | 0.92
DATE_OF_BIRTH | 14/08/1991 | 0.88
ADDRESS | 42 MG Road, Pune, Maharashtra | 0.7
GENDER | Female | 0.99
FATHER_NAME | NOT_FOUND | 0.0
SPOUSE_NAME | NOT_FOUND | 0.0`

	entities := parseEntities(response)

	assert.Len(t, entities, 7)
	assert.Equal(t, Entity{Value: "Priya Sharma", Confidence: 0.95}, entities["FULL_NAME"])
	assert.Equal(t, Entity{Value: "1234 5678 9012", Confidence: 0.9}, entities["AADHAAR_NUMBER"])
	assert.NotContains(t, entities, "PAN_NUMBER")
	assert.NotContains(t, entities, "FATHER_NAME")
}

func TestParseEntities_MalformedLines(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
	}{
		{"empty response", "", 0},
		{"prose only", "I could not find any entities in this document.", 0},
		{"missing pipe", "FULL_NAME Priya Sharma 0.9", 0},
		{"too many pipes", "FULL_NAME | Priya | Sharma | 0.9", 0},
		{"unknown entity name", "BLOOD_GROUP | B+ | 0.9", 0},
		{"empty value", "FULL_NAME |  | 0.9", 0},
		{"valid among noise", "Sure! Here you go:\nFULL_NAME | Priya Sharma | 0.9\nThanks!", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, parseEntities(tt.response), tt.want)
		})
	}
}

func TestParseEntities_ConfidenceClamping(t *testing.T) {
	response := `FULL_NAME | Priya Sharma | 1.7
PHONE_NUMBER | 9876543210 | -0.5
EMAIL_ADDRESS | priya@example.com | not-a-number`

	entities := parseEntities(response)

	assert.Equal(t, 1.0, entities["FULL_NAME"].Confidence)
	assert.Equal(t, 0.0, entities["PHONE_NUMBER"].Confidence)
	// Unparseable confidence keeps the value with a zero score.
	assert.Equal(t, Entity{Value: "priya@example.com", Confidence: 0.0}, entities["EMAIL_ADDRESS"])
}

func TestNormalizeDocumentType(t *testing.T) {
	assert.Equal(t, TypeAadhaar, normalizeDocumentType("aadhaar"))
	assert.Equal(t, TypeExperienceLetter, normalizeDocumentType(" EXPERIENCE_LETTER "))
	assert.Equal(t, TypePANCard, normalizeDocumentType("PAN_CARD (Permanent Account Number)"))
	assert.Equal(t, TypeUnknown, normalizeDocumentType("VOTER_ID"))
	assert.Equal(t, TypeUnknown, normalizeDocumentType(""))
}
