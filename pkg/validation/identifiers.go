// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for identity document
// numbers used in database lookups and manual record edits.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// aadhaarPattern matches a 12-digit Aadhaar number, with or without the
// conventional space/hyphen grouping (1234 5678 9012).
var aadhaarPattern = regexp.MustCompile(`^\d{4}[ -]?\d{4}[ -]?\d{4}$`)

// panPattern matches the PAN layout: five letters, four digits, one
// letter (ABCDE1234F).
var panPattern = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)

// ValidateAadhaar checks the shape of an Aadhaar number. It does not
// verify the Verhoeff check digit; the source is OCR output, which the
// confidence score already qualifies.
func ValidateAadhaar(aadhaar string) error {
	trimmed := strings.TrimSpace(aadhaar)
	if trimmed == "" {
		return fmt.Errorf("aadhaar number cannot be empty")
	}
	if !aadhaarPattern.MatchString(trimmed) {
		return fmt.Errorf("invalid aadhaar format: must be 12 digits, optionally grouped in fours")
	}
	return nil
}

// ValidatePAN checks the shape of a PAN number.
func ValidatePAN(pan string) error {
	normalized := strings.ToUpper(strings.TrimSpace(pan))
	if normalized == "" {
		return fmt.Errorf("pan number cannot be empty")
	}
	if !panPattern.MatchString(normalized) {
		return fmt.Errorf("invalid pan format: must be 5 letters, 4 digits, 1 letter")
	}
	return nil
}

// NewValidator returns a validator instance with the custom `aadhaar`
// and `pan` rules registered, for use with struct validate tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tag names.
	_ = v.RegisterValidation("aadhaar", func(fl validator.FieldLevel) bool {
		return ValidateAadhaar(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return ValidatePAN(fl.Field().String()) == nil
	})
	return v
}
