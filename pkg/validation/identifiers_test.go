// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAadhaar(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain 12 digits", "123456789012", false},
		{"space grouped", "1234 5678 9012", false},
		{"hyphen grouped", "1234-5678-9012", false},
		{"surrounding whitespace", "  1234 5678 9012  ", false},
		{"too short", "1234 5678", true},
		{"too long", "1234 5678 9012 3456", true},
		{"letters", "1234 ABCD 9012", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAadhaar(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePAN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "ABCDE1234F", false},
		{"lowercase normalized", "abcde1234f", false},
		{"too short", "ABCD1234F", true},
		{"digits in prefix", "AB1DE1234F", true},
		{"trailing digit", "ABCDE12345", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePAN(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewValidator_CustomTags(t *testing.T) {
	v := NewValidator()

	type record struct {
		Aadhaar string `validate:"omitempty,aadhaar"`
		PAN     string `validate:"omitempty,pan"`
	}

	require.NoError(t, v.Struct(record{Aadhaar: "1234 5678 9012", PAN: "ABCDE1234F"}))
	require.NoError(t, v.Struct(record{}))
	assert.Error(t, v.Struct(record{Aadhaar: "not-a-number"}))
	assert.Error(t, v.Struct(record{PAN: "12345ABCDE"}))
}
