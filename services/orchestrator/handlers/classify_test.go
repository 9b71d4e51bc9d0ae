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
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/riteshbawaskar/doc-classify/services/extraction"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceLLM returns canned responses in order: first the classification,
// then the entity extraction.
type sequenceLLM struct {
	responses []string
	calls     int
}

func (s *sequenceLLM) Generate(_ context.Context, _ string, _ llm.GenerationParams) (string, error) {
	if s.calls >= len(s.responses) {
		return "", fmt.Errorf("unexpected LLM call %d", s.calls)
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func newClassifyRouter(model llm.LLMClient) *gin.Engine {
	classifier := pipeline.NewClassifier(model, extraction.NewExtractor(), nil)
	router := gin.New()
	// nil Weaviate client and embedder: indexing is skipped in tests.
	router.POST("/v1/classify", HandleClassifyUpload(classifier, nil, nil))
	router.POST("/v1/classify/path", HandleClassifyPath(classifier, nil, nil))
	return router
}

func resumeResponses() []string {
	return []string{
		"DOCUMENT_TYPE: RESUME\nCONFIDENCE: HIGH",
		"FULL_NAME | Priya Sharma | 0.95\nEMAIL_ADDRESS | priya@example.com | 0.9",
	}
}

func TestHandleClassifyPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Priya Sharma\nSenior Engineer\npriya@example.com"), 0o644))

	router := newClassifyRouter(&sequenceLLM{responses: resumeResponses()})

	body, _ := json.Marshal(ClassifyPathRequest{Path: path})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/classify/path", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, pipeline.TypeResume, result.DocumentType)
	assert.Equal(t, pipeline.ConfidenceHigh, result.Confidence)
	assert.Equal(t, "Priya Sharma", result.Entities["FULL_NAME"].Value)
}

func TestHandleClassifyPath_MissingPath(t *testing.T) {
	router := newClassifyRouter(&sequenceLLM{})

	body, _ := json.Marshal(ClassifyPathRequest{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/classify/path", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleClassifyPath_MissingFile(t *testing.T) {
	router := newClassifyRouter(&sequenceLLM{})

	body, _ := json.Marshal(ClassifyPathRequest{Path: "/nonexistent/file.txt"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/classify/path", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func multipartUpload(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandleClassifyUpload(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())

	router := newClassifyRouter(&sequenceLLM{responses: resumeResponses()})

	buf, contentType := multipartUpload(t, "file", "resume.txt",
		[]byte("Priya Sharma\nSenior Engineer\npriya@example.com"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/classify", buf)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, pipeline.TypeResume, result.DocumentType)
}

func TestHandleClassifyUpload_UnsupportedFormat(t *testing.T) {
	router := newClassifyRouter(&sequenceLLM{})

	buf, contentType := multipartUpload(t, "file", "report.xlsx", []byte("binary"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/classify", buf)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHandleClassifyUpload_MissingFile(t *testing.T) {
	router := newClassifyRouter(&sequenceLLM{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/classify", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
