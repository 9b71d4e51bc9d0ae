// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

func GetDocumentSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "Document",
		Description: "A chunk of extracted document text with its classification.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "source",
				DataType:        []string{"text"},
				Description:     "Chunk identifier, derived from the parent file path.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "parent_source",
				DataType:        []string{"text"},
				Description:     "The original file the chunk was extracted from.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "document_type",
				DataType:        []string{"text"},
				Description:     "Classified document type (AADHAAR, PASSPORT, RESUME, ...).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "employee_id",
				DataType:        []string{"int"},
				Description:     "Employee record the document belongs to. 0 = unassigned.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "ingested_at",
				DataType:        []string{"number"},
				Description:     "Timestamp (Unix ms) of when the chunk was indexed.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

func GetConversationSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "Conversation",
		Description: "A record of a user question and the assistant's answer.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:            "session_id",
				DataType:        []string{"text"},
				Description:     "The unique ID for the conversation session.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:         "question",
				DataType:     []string{"text"},
				Description:  "The user's query.",
				Tokenization: "word",
			},
			{
				Name:         "answer",
				DataType:     []string{"text"},
				Description:  "The generated answer, after PII masking.",
				Tokenization: "word",
			},
			{
				Name:            "timestamp",
				DataType:        []string{"number"},
				Description:     "The timestamp of the conversation turn.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "inSession",
				DataType:        []string{"Session"},
				Description:     "A direct graph link to the parent Session object.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

func GetSessionSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:               "Session",
		Description:         "Metadata for a single question-answering session.",
		Vectorizer:          "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{IndexTimestamps: true},
		Properties: []*models.Property{
			{
				Name:            "session_id",
				DataType:        []string{"text"},
				Description:     "The unique ID for the conversation session.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "summary",
				DataType:     []string{"text"},
				Description:  "A short description of what the session is about.",
				Tokenization: "word",
			},
			{
				Name:            "timestamp",
				DataType:        []string{"number"},
				Description:     "The timestamp when the session began.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

func EnsureWeaviateSchema(client *weaviate.Client) {
	schemaGetters := []func() *models.Class{
		GetSessionSchema,
		GetDocumentSchema,
		GetConversationSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		// The class getter errors when the class does not exist yet.
		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
		if err != nil {
			slog.Info("Schema not found, creating it...", "class", class.Class)
			err := client.Schema().ClassCreator().WithClass(class).Do(context.Background())
			if err != nil {
				log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
}
