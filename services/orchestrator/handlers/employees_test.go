// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/riteshbawaskar/doc-classify/services/pipeline"
	"github.com/riteshbawaskar/doc-classify/services/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployeeRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "employees.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	router := gin.New()
	router.GET("/v1/employees", ListEmployees(st))
	router.GET("/v1/employees/:id", GetEmployee(st))
	router.PATCH("/v1/employees/:id", UpdateEmployee(st))
	router.DELETE("/v1/employees/:id", DeleteEmployee(st))
	return router, st
}

func seedEmployee(t *testing.T, st *store.Store, name, aadhaar string) int64 {
	t.Helper()

	result := &pipeline.Result{
		FilePath:     "/docs/" + name + ".pdf",
		DocumentType: pipeline.TypeAadhaar,
		Confidence:   pipeline.ConfidenceHigh,
		Entities: map[string]pipeline.Entity{
			"FULL_NAME":      {Value: name, Confidence: 0.95},
			"AADHAAR_NUMBER": {Value: aadhaar, Confidence: 0.9},
		},
	}
	id, err := st.SaveExtraction(context.Background(), result)
	require.NoError(t, err)
	return id
}

func TestGetEmployee(t *testing.T) {
	router, st := newEmployeeRouter(t)
	id := seedEmployee(t, st, "Priya Sharma", "2345 6789 0123")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", fmt.Sprintf("/v1/employees/%d", id), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var emp store.Employee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emp))
	assert.Equal(t, id, emp.ID)
	require.NotNil(t, emp.FullName.Value)
	assert.Equal(t, "Priya Sharma", *emp.FullName.Value)
	assert.Equal(t, "AADHAAR", emp.DocumentType)
}

func TestGetEmployee_NotFound(t *testing.T) {
	router, _ := newEmployeeRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/employees/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEmployee_InvalidID(t *testing.T) {
	router, _ := newEmployeeRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/employees/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEmployees(t *testing.T) {
	router, st := newEmployeeRouter(t)
	seedEmployee(t, st, "Priya Sharma", "2345 6789 0123")
	seedEmployee(t, st, "Arjun Mehta", "3456 7890 1234")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/employees", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Employees []store.Employee `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Employees, 2)
}

func TestListEmployees_AadhaarLookup(t *testing.T) {
	router, st := newEmployeeRouter(t)
	seedEmployee(t, st, "Priya Sharma", "2345 6789 0123")
	seedEmployee(t, st, "Arjun Mehta", "3456 7890 1234")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/employees?aadhaar=3456+7890+1234", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Employees []store.Employee `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "Arjun Mehta", *resp.Employees[0].FullName.Value)
}

func TestUpdateEmployee(t *testing.T) {
	router, st := newEmployeeRouter(t)
	id := seedEmployee(t, st, "Priya Sharma", "2345 6789 0123")

	body, _ := json.Marshal(map[string]string{"pan_number": "ABCDE1234F"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", fmt.Sprintf("/v1/employees/%d", id), bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var emp store.Employee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emp))
	require.NotNil(t, emp.PANNumber.Value)
	assert.Equal(t, "ABCDE1234F", *emp.PANNumber.Value)
	// Manual edits are stored with full confidence.
	require.NotNil(t, emp.PANNumber.Confidence)
	assert.Equal(t, 1.0, *emp.PANNumber.Confidence)
}

func TestUpdateEmployee_RejectsBadPAN(t *testing.T) {
	router, st := newEmployeeRouter(t)
	id := seedEmployee(t, st, "Priya Sharma", "2345 6789 0123")

	body, _ := json.Marshal(map[string]string{"pan_number": "NOT-A-PAN"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", fmt.Sprintf("/v1/employees/%d", id), bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
}

func TestUpdateEmployee_NotFound(t *testing.T) {
	router, _ := newEmployeeRouter(t)

	body, _ := json.Marshal(map[string]string{"full_name": "Nobody"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/v1/employees/999", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEmployee(t *testing.T) {
	router, st := newEmployeeRouter(t)
	id := seedEmployee(t, st, "Priya Sharma", "2345 6789 0123")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/v1/employees/%d", id), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// The record is really gone.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", fmt.Sprintf("/v1/employees/%d", id), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
