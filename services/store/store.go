// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists extraction results as employee records in a
// single flat SQLite table. Each entity the pipeline can extract maps
// to a (value, confidence) column pair; the raw entity map is kept as
// JSON alongside for anything the columns miss.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/riteshbawaskar/doc-classify/services/pipeline"
)

// ErrNotFound is returned when an employee record does not exist.
var ErrNotFound = errors.New("employee record not found")

// Store manages the employees database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens the employees database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL,
		document_type TEXT NOT NULL DEFAULT 'UNKNOWN',

		full_name TEXT, full_name_conf REAL,
		aadhaar_number TEXT, aadhaar_conf REAL,
		pan_number TEXT, pan_conf REAL,
		passport_number TEXT, passport_conf REAL,
		phone_number TEXT, phone_conf REAL,
		email TEXT, email_conf REAL,
		dob TEXT, dob_conf REAL,
		address TEXT, address_conf REAL,
		gender TEXT, gender_conf REAL,
		father_name TEXT, father_conf REAL,
		spouse_name TEXT, spouse_conf REAL,

		entities_json TEXT NOT NULL DEFAULT '{}',
		inserted_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_employees_aadhaar ON employees(aadhaar_number);
	CREATE INDEX IF NOT EXISTS idx_employees_pan ON employees(pan_number);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Field is an extracted value and its confidence, both optional.
type Field struct {
	Value      *string  `json:"value"`
	Confidence *float64 `json:"confidence"`
}

// Employee is one row of the employees table.
type Employee struct {
	ID           int64  `json:"id"`
	FilePath     string `json:"file_path"`
	DocumentType string `json:"document_type"`

	FullName       Field `json:"full_name"`
	AadhaarNumber  Field `json:"aadhaar_number"`
	PANNumber      Field `json:"pan_number"`
	PassportNumber Field `json:"passport_number"`
	PhoneNumber    Field `json:"phone_number"`
	Email          Field `json:"email"`
	DOB            Field `json:"dob"`
	Address        Field `json:"address"`
	Gender         Field `json:"gender"`
	FatherName     Field `json:"father_name"`
	SpouseName     Field `json:"spouse_name"`

	EntitiesJSON string `json:"entities_json"`
	InsertedAt   string `json:"inserted_at"`
}

// entityField pulls one entity out of the pipeline result as a Field.
func entityField(entities map[string]pipeline.Entity, name string) Field {
	entity, ok := entities[name]
	if !ok {
		return Field{}
	}
	value := entity.Value
	confidence := entity.Confidence
	return Field{Value: &value, Confidence: &confidence}
}

// SaveExtraction inserts a new employee record built from a pipeline
// result and returns its row ID. Implements pipeline.Recorder.
func (s *Store) SaveExtraction(ctx context.Context, result *pipeline.Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entitiesJSON, err := json.Marshal(result.Entities)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal entities: %w", err)
	}

	fullName := entityField(result.Entities, "FULL_NAME")
	aadhaar := entityField(result.Entities, "AADHAAR_NUMBER")
	pan := entityField(result.Entities, "PAN_NUMBER")
	passport := entityField(result.Entities, "PASSPORT_NUMBER")
	phone := entityField(result.Entities, "PHONE_NUMBER")
	email := entityField(result.Entities, "EMAIL_ADDRESS")
	dob := entityField(result.Entities, "DATE_OF_BIRTH")
	address := entityField(result.Entities, "ADDRESS")
	gender := entityField(result.Entities, "GENDER")
	father := entityField(result.Entities, "FATHER_NAME")
	spouse := entityField(result.Entities, "SPOUSE_NAME")

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (
			file_path, document_type,
			full_name, full_name_conf,
			aadhaar_number, aadhaar_conf,
			pan_number, pan_conf,
			passport_number, passport_conf,
			phone_number, phone_conf,
			email, email_conf,
			dob, dob_conf,
			address, address_conf,
			gender, gender_conf,
			father_name, father_conf,
			spouse_name, spouse_conf,
			entities_json, inserted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.FilePath, string(result.DocumentType),
		fullName.Value, fullName.Confidence,
		aadhaar.Value, aadhaar.Confidence,
		pan.Value, pan.Confidence,
		passport.Value, passport.Confidence,
		phone.Value, phone.Confidence,
		email.Value, email.Confidence,
		dob.Value, dob.Confidence,
		address.Value, address.Confidence,
		gender.Value, gender.Confidence,
		father.Value, father.Confidence,
		spouse.Value, spouse.Confidence,
		string(entitiesJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert employee record: %w", err)
	}
	return res.LastInsertId()
}

const employeeColumns = `
	id, file_path, document_type,
	full_name, full_name_conf,
	aadhaar_number, aadhaar_conf,
	pan_number, pan_conf,
	passport_number, passport_conf,
	phone_number, phone_conf,
	email, email_conf,
	dob, dob_conf,
	address, address_conf,
	gender, gender_conf,
	father_name, father_conf,
	spouse_name, spouse_conf,
	entities_json, inserted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.FilePath, &e.DocumentType,
		&e.FullName.Value, &e.FullName.Confidence,
		&e.AadhaarNumber.Value, &e.AadhaarNumber.Confidence,
		&e.PANNumber.Value, &e.PANNumber.Confidence,
		&e.PassportNumber.Value, &e.PassportNumber.Confidence,
		&e.PhoneNumber.Value, &e.PhoneNumber.Confidence,
		&e.Email.Value, &e.Email.Confidence,
		&e.DOB.Value, &e.DOB.Confidence,
		&e.Address.Value, &e.Address.Confidence,
		&e.Gender.Value, &e.Gender.Confidence,
		&e.FatherName.Value, &e.FatherName.Confidence,
		&e.SpouseName.Value, &e.SpouseName.Confidence,
		&e.EntitiesJSON, &e.InsertedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get returns one employee by row ID.
func (s *Store) Get(ctx context.Context, id int64) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	employee, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee %d: %w", id, err)
	}
	return employee, nil
}

// List returns the most recent records first, capped at limit.
func (s *Store) List(ctx context.Context, limit int) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()
	return collectEmployees(rows)
}

// FindByAadhaar returns every record matching the given Aadhaar number.
func (s *Store) FindByAadhaar(ctx context.Context, aadhaar string) ([]*Employee, error) {
	return s.findByColumn(ctx, "aadhaar_number", aadhaar)
}

// FindByPAN returns every record matching the given PAN number.
func (s *Store) FindByPAN(ctx context.Context, pan string) ([]*Employee, error) {
	return s.findByColumn(ctx, "pan_number", pan)
}

func (s *Store) findByColumn(ctx context.Context, column, value string) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE `+column+` = ?`, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees by %s: %w", column, err)
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func collectEmployees(rows *sql.Rows) ([]*Employee, error) {
	var employees []*Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

// UpdateRequest carries the manually editable fields of an employee
// record. Nil fields are left unchanged.
type UpdateRequest struct {
	FullName       *string `json:"full_name" validate:"omitempty,min=1"`
	AadhaarNumber  *string `json:"aadhaar_number" validate:"omitempty,aadhaar"`
	PANNumber      *string `json:"pan_number" validate:"omitempty,pan"`
	PassportNumber *string `json:"passport_number" validate:"omitempty,min=6"`
	PhoneNumber    *string `json:"phone_number" validate:"omitempty,min=8"`
	Email          *string `json:"email" validate:"omitempty,email"`
	DOB            *string `json:"dob"`
	Address        *string `json:"address"`
	Gender         *string `json:"gender"`
	FatherName     *string `json:"father_name"`
	SpouseName     *string `json:"spouse_name"`
}

// Update applies the non-nil fields of req to the employee with the
// given ID. Manually edited fields get a confidence of 1.0.
func (s *Store) Update(ctx context.Context, id int64, req *UpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []struct {
		valueColumn string
		confColumn  string
		value       *string
	}{
		{"full_name", "full_name_conf", req.FullName},
		{"aadhaar_number", "aadhaar_conf", req.AadhaarNumber},
		{"pan_number", "pan_conf", req.PANNumber},
		{"passport_number", "passport_conf", req.PassportNumber},
		{"phone_number", "phone_conf", req.PhoneNumber},
		{"email", "email_conf", req.Email},
		{"dob", "dob_conf", req.DOB},
		{"address", "address_conf", req.Address},
		{"gender", "gender_conf", req.Gender},
		{"father_name", "father_conf", req.FatherName},
		{"spouse_name", "spouse_conf", req.SpouseName},
	}

	setClause := ""
	var args []any
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if setClause != "" {
			setClause += ", "
		}
		setClause += f.valueColumn + " = ?, " + f.confColumn + " = 1.0"
		args = append(args, *f.value)
	}
	if setClause == "" {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET `+setClause+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update employee %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an employee record.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
