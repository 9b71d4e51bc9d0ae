// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/datatypes"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/observability"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate/entities/models"
)

var (
	CHUNK_SIZE        = 1000
	CHUNK_OVERLAP     = int(float64(CHUNK_SIZE) * 0.10) // 10% of CHUNK_SIZE
	defaultSeparators = []string{"\n\n", "\n", " ", ""}

	markdownSeparators = []string{
		"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"\n\n", "\n", " ", "",
	}
)

// IngestDocumentRequest carries extracted document text into the vector store.
type IngestDocumentRequest struct {
	Content      string `json:"content"`
	Source       string `json:"source"`
	DocumentType string `json:"document_type"`
	EmployeeID   int64  `json:"employee_id"`
}

// CreateDocument receives extracted text and indexes it in Weaviate.
// This is a thin wrapper around RunIngestion.
func CreateDocument(client *weaviate.Client, embedder llm.Embedder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestDocumentRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		chunksCreated, err := RunIngestion(c.Request.Context(), client, embedder, req)
		if err != nil {
			slog.Error("Ingestion failed", "source", req.Source, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		slog.Info("Successfully processed document via API", "source", req.Source, "chunks_processed", chunksCreated)
		c.JSON(http.StatusCreated, gin.H{
			"status":           "success",
			"source":           req.Source,
			"chunks_processed": chunksCreated,
		})
	}
}

// ListDocuments gets a unique list of all ingested 'parent_source' files.
func ListDocuments(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("Received request to list ingested documents")

		agg, err := client.GraphQL().Aggregate().
			WithClassName("Document").
			WithGroupBy("parent_source").
			Do(context.Background())

		if err != nil {
			slog.Error("Failed to aggregate documents from Weaviate", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query documents"})
			return
		}

		var docList []string

		if agg.Data["Aggregate"] != nil {
			aggMap, ok := agg.Data["Aggregate"].(map[string]interface{})
			if ok && aggMap["Document"] != nil {
				docGroups, ok := aggMap["Document"].([]interface{})
				if ok {
					for _, groupItem := range docGroups {
						groupMap, ok := groupItem.(map[string]interface{})
						if ok && groupMap["groupedBy"] != nil {
							groupedByMap, ok := groupMap["groupedBy"].(map[string]interface{})
							if ok && groupedByMap["value"] != nil {
								if sourceName, ok := groupedByMap["value"].(string); ok {
									docList = append(docList, sourceName)
								}
							}
						}
					}
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"documents": docList})
	}
}

// DeleteBySource removes every chunk belonging to a parent file.
func DeleteBySource(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := c.Query("source")
		if source == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "source query parameter is required"})
			return
		}
		slog.Info("Received request to delete document chunks", "source", source)

		where := filters.Where().
			WithPath([]string{"parent_source"}).
			WithOperator(filters.Equal).
			WithValueString(source)

		resp, err := client.Batch().ObjectsBatchDeleter().
			WithClassName("Document").
			WithOutput("minimal").
			WithWhere(where).
			Do(c.Request.Context())
		if err != nil {
			slog.Error("Failed to delete document chunks from Weaviate", "source", source, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document chunks"})
			return
		}

		var matches int64
		if resp != nil && resp.Results != nil {
			matches = resp.Results.Matches
		}
		slog.Info("Deleted document chunks", "source", source, "matches", matches)
		c.JSON(http.StatusOK, gin.H{"status": "success", "source": source, "deleted": matches})
	}
}

// RunIngestion splits the content, embeds every chunk, and batch-imports the
// chunks into Weaviate. Chunk IDs are derived from a content hash so
// re-ingesting the same file overwrites instead of duplicating.
func RunIngestion(ctx context.Context, client *weaviate.Client, embedder llm.Embedder,
	req IngestDocumentRequest) (int, error) {

	slog.Info("Ingestion request received", "source", req.Source, "document_type", req.DocumentType)

	splitter := getSplitterForFile(req.Source)

	chunks, err := splitter.SplitText(req.Content)
	if err != nil {
		slog.Error("Failed to split text", "source", req.Source, "error", err)
		return 0, fmt.Errorf("failed to split content: %w", err)
	}
	if len(chunks) == 0 {
		slog.Warn("No chunks produced after splitting", "source", req.Source)
		return 0, nil
	}
	slog.Info("Split document into chunks", "source", req.Source, "chunk_count", len(chunks))

	vectors, err := embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		slog.Error("Failed to embed chunks", "source", req.Source, "error", err)
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		slog.Error("Mismatch between chunk count and vector count", "chunks", len(chunks), "vectors", len(vectors))
		return 0, fmt.Errorf("embedder returned mismatched vector count")
	}

	batcher := client.Batch().ObjectsBatcher()
	objects := make([]*models.Object, len(chunks))

	for i, chunk := range chunks {
		props := datatypes.DocumentProperties{
			Content:      chunk,
			Source:       fmt.Sprintf("%s_part_%d", req.Source, i+1),
			ParentSource: req.Source,
			DocumentType: req.DocumentType,
			EmployeeID:   req.EmployeeID,
			IngestedAt:   time.Now().UnixMilli(),
		}

		hash := sha256.Sum256([]byte(chunk))
		docUUID, _ := uuid.FromBytes(hash[:16])

		objects[i] = &models.Object{
			Class:      "Document",
			ID:         strfmt.UUID(docUUID.String()),
			Vector:     vectors[i],
			Properties: props.ToMap(),
		}
	}

	batcher.WithObjects(objects...)

	resp, err := batcher.Do(ctx)
	if err != nil {
		slog.Error("Failed to perform batch import to Weaviate", "error", err)
		return 0, fmt.Errorf("failed to save objects to Weaviate: %w", err)
	}

	chunksCreated := 0
	hasErrors := false
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			chunksCreated++
			continue
		}
		hasErrors = true
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			for _, errItem := range item.Result.Errors.Error {
				slog.Warn("Error in Weaviate batch item", "source", req.Source, "error", errItem.Message)
			}
		} else {
			status := "UNKNOWN"
			if item.Result != nil && item.Result.Status != nil {
				status = *item.Result.Status
			}
			slog.Warn("Failed Weaviate batch item, no error provided", "source", req.Source, "status", status)
		}
	}

	if hasErrors {
		slog.Warn("Errors encountered during Weaviate batch import", "source", req.Source, "successful_chunks", chunksCreated)
	}
	if observability.DefaultMetrics != nil {
		observability.DefaultMetrics.RecordChunksIngested(chunksCreated)
	}

	slog.Info("Successfully processed document", "source", req.Source, "chunks_processed", chunksCreated)
	return chunksCreated, nil
}

func getSplitterForFile(filename string) textsplitter.TextSplitter {
	switch filepath.Ext(filename) {
	case ".md":
		return textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(CHUNK_SIZE),
			textsplitter.WithChunkOverlap(CHUNK_OVERLAP),
			textsplitter.WithSeparators(markdownSeparators),
		)

	default:
		return textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(CHUNK_SIZE),
			textsplitter.WithChunkOverlap(CHUNK_OVERLAP),
			textsplitter.WithSeparators(defaultSeparators),
		)
	}
}
