// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/riteshbawaskar/doc-classify/services/extraction"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/observability"
	"github.com/riteshbawaskar/doc-classify/services/pipeline"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var classifyTracer = otel.Tracer("docclassify.orchestrator.handlers")

// ClassifyPathRequest asks the pipeline to process a file already on disk.
type ClassifyPathRequest struct {
	Path string `json:"path"`
}

// HandleClassifyUpload accepts a multipart file upload, runs the
// classification pipeline on it, and indexes the extracted text.
//
// The uploaded file is stored under UPLOAD_DIR (default: the system temp
// directory) and kept there so the stored file_path stays resolvable.
func HandleClassifyUpload(classifier *pipeline.Classifier, client *weaviate.Client,
	embedder llm.Embedder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := classifyTracer.Start(c.Request.Context(), "HandleClassifyUpload")
		defer span.End()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file form field is required"})
			return
		}
		if !extraction.Supported(fileHeader.Filename) {
			c.JSON(http.StatusUnsupportedMediaType,
				gin.H{"error": "unsupported file format", "file": fileHeader.Filename})
			return
		}

		uploadDir := os.Getenv("UPLOAD_DIR")
		if uploadDir == "" {
			uploadDir = os.TempDir()
		}
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			slog.Error("Failed to create upload directory", "dir", uploadDir, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}

		dest := filepath.Join(uploadDir, filepath.Base(fileHeader.Filename))
		if err := c.SaveUploadedFile(fileHeader, dest); err != nil {
			slog.Error("Failed to save uploaded file", "dest", dest, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}
		span.SetAttributes(attribute.String("upload.path", dest))

		runClassification(ctx, c, classifier, client, embedder, dest)
	}
}

// HandleClassifyPath runs the classification pipeline on a file that is
// already reachable on the server's filesystem, e.g. a mounted scan folder.
func HandleClassifyPath(classifier *pipeline.Classifier, client *weaviate.Client,
	embedder llm.Embedder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := classifyTracer.Start(c.Request.Context(), "HandleClassifyPath")
		defer span.End()

		var req ClassifyPathRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.Path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
			return
		}
		span.SetAttributes(attribute.String("file.path", req.Path))

		runClassification(ctx, c, classifier, client, embedder, req.Path)
	}
}

// runClassification is shared by the upload and path handlers. It runs the
// pipeline, records metrics, and kicks off vector indexing of the extracted
// text in the background.
func runClassification(ctx context.Context, c *gin.Context, classifier *pipeline.Classifier,
	client *weaviate.Client, embedder llm.Embedder, path string) {

	ctx, span := classifyTracer.Start(ctx, "runClassification")
	defer span.End()

	result, err := classifier.Run(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if observability.DefaultMetrics != nil {
			observability.DefaultMetrics.RecordDocument("UNKNOWN", false)
		}
		slog.Error("Classification pipeline failed", "path", path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("document.type", string(result.DocumentType)),
		attribute.String("document.confidence", string(result.Confidence)),
		attribute.Int("document.entities", len(result.Entities)),
	)

	if observability.DefaultMetrics != nil {
		observability.DefaultMetrics.RecordDocument(string(result.DocumentType), true)
		names := make([]string, 0, len(result.Entities))
		for name := range result.Entities {
			names = append(names, name)
		}
		observability.DefaultMetrics.RecordEntities(names)
	}

	// Index the extracted text so the document becomes queryable. Done in
	// the background so a slow Weaviate doesn't hold up the response.
	if client != nil && embedder != nil && result.DocumentText != "" {
		ingestReq := IngestDocumentRequest{
			Content:      result.DocumentText,
			Source:       path,
			DocumentType: string(result.DocumentType),
			EmployeeID:   result.EmployeeID,
		}
		go func() {
			if _, err := RunIngestion(context.Background(), client, embedder, ingestReq); err != nil {
				slog.Error("Background indexing failed", "source", path, "error", err)
			}
		}()
	}

	c.JSON(http.StatusOK, result)
}
