// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

// DocumentType is one of the fixed categories a document can be
// classified into.
type DocumentType string

const (
	TypeAadhaar          DocumentType = "AADHAAR"
	TypePassport         DocumentType = "PASSPORT"
	TypePANCard          DocumentType = "PAN_CARD"
	TypeResume           DocumentType = "RESUME"
	TypeContract         DocumentType = "CONTRACT"
	TypeExperienceLetter DocumentType = "EXPERIENCE_LETTER"
	TypeUnknown          DocumentType = "UNKNOWN"
)

// KnownTypes lists every classifiable type, in the order they appear in
// the classification prompt.
var KnownTypes = []DocumentType{
	TypeAadhaar,
	TypePassport,
	TypePANCard,
	TypeResume,
	TypeContract,
	TypeExperienceLetter,
}

// Confidence is the model's self-reported certainty for a
// classification decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// EntityNames is the fixed set of entities the extraction prompt asks
// for. The order is stable so prompts and tests are deterministic.
var EntityNames = []string{
	"FULL_NAME",
	"AADHAAR_NUMBER",
	"PAN_NUMBER",
	"PASSPORT_NUMBER",
	"PHONE_NUMBER",
	"EMAIL_ADDRESS",
	"DATE_OF_BIRTH",
	"ADDRESS",
	"GENDER",
	"FATHER_NAME",
	"SPOUSE_NAME",
}

// Entity is a single extracted value with the model's confidence score.
type Entity struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of running the full pipeline over one file.
type Result struct {
	FilePath     string            `json:"file_path"`
	DocumentText string            `json:"-"`
	DocumentType DocumentType      `json:"document_type"`
	Confidence   Confidence        `json:"confidence"`
	Entities     map[string]Entity `json:"entities"`
	EmployeeID   int64             `json:"employee_id,omitempty"`
}
