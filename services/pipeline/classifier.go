// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline implements the document processing workflow:
// extract text, classify the document type, extract named entities,
// persist the result. The stages run strictly in order; the only
// failure handling beyond returning an error is best-effort logging of
// a failed persistence step.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riteshbawaskar/doc-classify/services/extraction"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("docclassify.pipeline")

func recordStage(stage string, start time.Time) {
	if observability.DefaultMetrics != nil {
		observability.DefaultMetrics.RecordStageDuration(stage, time.Since(start).Seconds())
	}
}

func recordLLMCall(operation string, success bool) {
	if observability.DefaultMetrics != nil {
		observability.DefaultMetrics.RecordLLMCall(operation, success)
	}
}

// Recorder persists a pipeline result. Implemented by store.Store.
type Recorder interface {
	SaveExtraction(ctx context.Context, result *Result) (int64, error)
}

// Classifier runs the classification and extraction stages against an
// LLM backend.
type Classifier struct {
	llmClient llm.LLMClient
	extractor extraction.TextExtractor
	recorder  Recorder
}

// NewClassifier wires the pipeline dependencies. recorder may be nil,
// in which case results are returned without being persisted.
func NewClassifier(llmClient llm.LLMClient, extractor extraction.TextExtractor, recorder Recorder) *Classifier {
	return &Classifier{
		llmClient: llmClient,
		extractor: extractor,
		recorder:  recorder,
	}
}

// Classify determines the document type from already-extracted text.
func (c *Classifier) Classify(ctx context.Context, documentText string) (DocumentType, Confidence, error) {
	ctx, span := tracer.Start(ctx, "Classifier.Classify")
	defer span.End()
	defer recordStage("classify", time.Now())

	if documentText == "" {
		slog.Warn("No text available for classification, returning UNKNOWN")
		return TypeUnknown, ConfidenceLow, nil
	}

	prompt := buildClassificationPrompt(documentText)
	response, err := c.llmClient.Generate(ctx, prompt, llm.GenerationParams{})
	recordLLMCall("classify", err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TypeUnknown, ConfidenceLow, fmt.Errorf("classification call failed: %w", err)
	}

	docType, confidence := parseClassification(response)
	span.SetAttributes(
		attribute.String("document_type", string(docType)),
		attribute.String("confidence", string(confidence)),
	)
	slog.Info("Classified document", "document_type", docType, "confidence", confidence)
	return docType, confidence, nil
}

// ExtractEntities pulls the fixed entity set out of the document text.
// The returned map only contains entities the model actually found.
func (c *Classifier) ExtractEntities(ctx context.Context, documentText string) (map[string]Entity, error) {
	ctx, span := tracer.Start(ctx, "Classifier.ExtractEntities")
	defer span.End()
	defer recordStage("entities", time.Now())

	if documentText == "" {
		return map[string]Entity{}, nil
	}

	prompt := buildEntityPrompt(documentText)
	response, err := c.llmClient.Generate(ctx, prompt, llm.GenerationParams{})
	recordLLMCall("extract_entities", err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("entity extraction call failed: %w", err)
	}

	entities := parseEntities(response)
	span.SetAttributes(attribute.Int("entities_found", len(entities)))
	slog.Info("Extracted entities", "count", len(entities))
	return entities, nil
}

// Run executes the full pipeline for one file: extract, classify,
// extract entities, persist. A persistence failure is logged and the
// result still returned; all other stage failures abort the run.
func (c *Classifier) Run(ctx context.Context, filePath string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Classifier.Run")
	defer span.End()
	span.SetAttributes(attribute.String("file_path", filePath))

	extractStart := time.Now()
	text, err := c.extractor.Extract(ctx, filePath)
	recordStage("extract", extractStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	docType, confidence, err := c.Classify(ctx, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entities, err := c.ExtractEntities(ctx, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := &Result{
		FilePath:     filePath,
		DocumentText: text,
		DocumentType: docType,
		Confidence:   confidence,
		Entities:     entities,
	}

	if c.recorder != nil {
		persistStart := time.Now()
		id, err := c.recorder.SaveExtraction(ctx, result)
		recordStage("persist", persistStart)
		if err != nil {
			// Best-effort persistence: the caller still gets the result.
			slog.Error("Failed to persist extraction result", "file_path", filePath, "error", err)
		} else {
			result.EmployeeID = id
			slog.Info("Persisted extraction result", "file_path", filePath, "employee_id", id)
		}
	}

	return result, nil
}
