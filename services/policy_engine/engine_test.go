// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy_engine

import (
	"strings"
	"testing"
)

func TestPolicyEngine(t *testing.T) {
	engine, err := NewPolicyEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	tests := []struct {
		name            string
		input           string
		expectedClass   string
		expectFindings  bool
	}{
		{
			name:           "grouped aadhaar number",
			input:          "Her Aadhaar number is 1234 5678 9012.",
			expectedClass:  "aadhaar",
			expectFindings: true,
		},
		{
			name:           "plain aadhaar number",
			input:          "UID 123456789012 on record",
			expectedClass:  "aadhaar",
			expectFindings: true,
		},
		{
			name:           "pan number",
			input:          "PAN: ABCDE1234F",
			expectedClass:  "pan",
			expectFindings: true,
		},
		{
			name:           "passport number",
			input:          "Passport J8369854 issued in Mumbai",
			expectedClass:  "passport",
			expectFindings: true,
		},
		{
			name:           "mobile with country code",
			input:          "Call +91 98765 43210 for details",
			expectedClass:  "phone",
			expectFindings: true,
		},
		{
			name:           "email address",
			input:          "Reach priya.sharma@example.com",
			expectedClass:  "email",
			expectFindings: true,
		},
		{
			name:           "clean text",
			input:          "The employee worked here for five years.",
			expectedClass:  "public",
			expectFindings: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			class := engine.ClassifyData([]byte(tc.input))
			if class != tc.expectedClass {
				t.Errorf("ClassifyData(%q) = %q, want %q", tc.input, class, tc.expectedClass)
			}

			findings := engine.ScanContent(tc.input)
			if tc.expectFindings && len(findings) == 0 {
				t.Errorf("ScanContent(%q) returned no findings", tc.input)
			}
			if !tc.expectFindings && len(findings) > 0 {
				t.Errorf("ScanContent(%q) returned unexpected findings: %+v", tc.input, findings)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	engine, err := NewPolicyEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	input := "Priya Sharma, Aadhaar 1234 5678 9012, PAN ABCDE1234F, email priya@example.com."
	redacted := engine.Redact(input)

	if strings.Contains(redacted, "1234 5678 9012") {
		t.Errorf("Aadhaar number leaked through redaction: %q", redacted)
	}
	if strings.Contains(redacted, "ABCDE1234F") {
		t.Errorf("PAN number leaked through redaction: %q", redacted)
	}
	if strings.Contains(redacted, "priya@example.com") {
		t.Errorf("Email leaked through redaction: %q", redacted)
	}
	if !strings.Contains(redacted, "[AADHAAR REDACTED]") {
		t.Errorf("Expected aadhaar mask in output, got %q", redacted)
	}
	if !strings.Contains(redacted, "Priya Sharma") {
		t.Errorf("Non-sensitive text should survive redaction, got %q", redacted)
	}
}

func TestRedact_ScanLineNumbers(t *testing.T) {
	engine, err := NewPolicyEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	content := "line one is fine\nPAN ABCDE1234F here\nlast line"
	findings := engine.ScanContent(content)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].LineNumber != 2 {
		t.Errorf("expected finding on line 2, got %d", findings[0].LineNumber)
	}
	if findings[0].ClassificationName != "pan" {
		t.Errorf("expected pan classification, got %s", findings[0].ClassificationName)
	}
}
