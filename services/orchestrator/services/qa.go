// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package services contains the orchestrator's business logic, kept separate
// from the HTTP handlers so it can be tested without gin.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/datatypes"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/observability"
	"github.com/riteshbawaskar/doc-classify/services/policy_engine"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var qaTracer = otel.Tracer("docclassify.orchestrator.services.qa")

// defaultTopK is the number of chunks retrieved per question.
const defaultTopK = 4

const refusalAnswer = "I don't have that information in the indexed documents."

// Retriever fetches document chunks relevant to a question.
//
// Implementations must be safe for concurrent use. A nil employeeID filter
// (employeeID <= 0) means search across all indexed documents.
type Retriever interface {
	Retrieve(ctx context.Context, question string, employeeID int64, topK int) ([]datatypes.RetrievedChunk, error)
}

// WeaviateRetriever embeds the question and runs a nearVector search against
// the Document class.
type WeaviateRetriever struct {
	client   *weaviate.Client
	embedder llm.Embedder
}

// NewWeaviateRetriever creates a retriever backed by the given Weaviate
// client and embedder. Both must be non-nil.
func NewWeaviateRetriever(client *weaviate.Client, embedder llm.Embedder) *WeaviateRetriever {
	return &WeaviateRetriever{client: client, embedder: embedder}
}

func (r *WeaviateRetriever) Retrieve(ctx context.Context, question string,
	employeeID int64, topK int) ([]datatypes.RetrievedChunk, error) {

	ctx, span := qaTracer.Start(ctx, "WeaviateRetriever.Retrieve")
	defer span.End()

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	nearVector := r.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "parent_source"},
		{Name: "document_type"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	query := r.client.GraphQL().Get().
		WithClassName("Document").
		WithNearVector(nearVector).
		WithFields(fields...).
		WithLimit(topK)

	if employeeID > 0 {
		where := filters.Where().
			WithPath([]string{"employee_id"}).
			WithOperator(filters.Equal).
			WithValueInt(employeeID)
		query = query.WithWhere(where)
	}

	resp, err := query.Do(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "vector search failed")
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.DocumentQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector search response: %w", err)
	}

	chunks := make([]datatypes.RetrievedChunk, 0, len(parsed.Get.Document))
	for _, doc := range parsed.Get.Document {
		chunk := datatypes.RetrievedChunk{
			Content:      doc.Content,
			Source:       doc.Source,
			ParentSource: doc.ParentSource,
			DocumentType: doc.DocumentType,
		}
		if doc.Additional.Distance != nil {
			chunk.Distance = *doc.Additional.Distance
		}
		chunks = append(chunks, chunk)
	}

	span.SetAttributes(attribute.Int("retrieval.chunk_count", len(chunks)))
	return chunks, nil
}

// QAService answers questions about indexed employee documents.
//
// The flow is: retrieve the top-K chunks for the question, generate an answer
// grounded strictly in that context, then run the answer through the policy
// engine so identifier values that slip past the prompt rules are masked
// deterministically before anything leaves the service.
type QAService struct {
	retriever    Retriever
	llmClient    llm.LLMClient
	policyEngine *policy_engine.PolicyEngine
	topK         int
}

// NewQAService creates a QAService. The policy engine may be nil, in which
// case answers are returned unmasked.
func NewQAService(retriever Retriever, llmClient llm.LLMClient,
	policyEngine *policy_engine.PolicyEngine) *QAService {
	return &QAService{
		retriever:    retriever,
		llmClient:    llmClient,
		policyEngine: policyEngine,
		topK:         defaultTopK,
	}
}

// Answer handles a question end to end. It never returns the raw model
// output: the answer is always passed through Redact first.
func (s *QAService) Answer(ctx context.Context, req *datatypes.AskRequest) (*datatypes.AskResponse, error) {
	ctx, span := qaTracer.Start(ctx, "QAService.Answer")
	defer span.End()

	start := time.Now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	span.SetAttributes(
		attribute.String("session_id", req.SessionId),
		attribute.Int64("employee_id", req.EmployeeID),
	)

	chunks, err := s.retriever.Retrieve(ctx, question, req.EmployeeID, s.topK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		s.recordRequest(false, start)
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(chunks) == 0 {
		slog.Info("No chunks retrieved for question", "sessionId", req.SessionId)
		s.recordRequest(true, start)
		return &datatypes.AskResponse{
			Answer:    refusalAnswer,
			SessionId: req.SessionId,
		}, nil
	}

	prompt := buildQAPrompt(question, chunks)
	answer, err := s.llmClient.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.recordRequest(false, start)
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	answer = s.redact(answer)

	sources := make([]datatypes.SourceInfo, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, datatypes.SourceInfo{
			Source:       chunk.Source,
			ParentSource: chunk.ParentSource,
			DocumentType: chunk.DocumentType,
			Distance:     chunk.Distance,
		})
	}

	span.SetAttributes(
		attribute.Int("response.answer_length", len(answer)),
		attribute.Int("response.sources_count", len(sources)),
	)
	s.recordRequest(true, start)

	return &datatypes.AskResponse{
		Answer:    answer,
		SessionId: req.SessionId,
		Sources:   sources,
	}, nil
}

// redact masks identifier values found in the generated answer and records
// one redaction metric per finding.
func (s *QAService) redact(answer string) string {
	if s.policyEngine == nil {
		return answer
	}
	findings := s.policyEngine.ScanContent(answer)
	if len(findings) == 0 {
		return answer
	}
	slog.Warn("Masking identifiers found in generated answer", "findings", len(findings))
	if observability.DefaultMetrics != nil {
		for _, f := range findings {
			observability.DefaultMetrics.RecordRedaction(f.ClassificationName)
		}
	}
	return s.policyEngine.Redact(answer)
}

func (s *QAService) recordRequest(success bool, start time.Time) {
	if observability.DefaultMetrics == nil {
		return
	}
	observability.DefaultMetrics.RecordQARequest(success, time.Since(start).Seconds())
}

// buildQAPrompt assembles the grounded generation prompt. The rules are
// belt-and-suspenders: the policy engine re-scans the output regardless of
// whether the model follows them.
func buildQAPrompt(question string, chunks []datatypes.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("You are an assistant for an HR document management system.\n")
	b.WriteString("Answer the question using ONLY the context below.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. If the answer is not contained in the context, reply exactly: \"" + refusalAnswer + "\"\n")
	b.WriteString("2. Never reveal a full Aadhaar, PAN, or passport number. Show at most the last four characters.\n")
	b.WriteString("3. Do not answer questions unrelated to the indexed employee documents.\n\n")
	b.WriteString("Context:\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "--- [%d] %s (%s) ---\n", i+1, chunk.ParentSource, chunk.DocumentType)
		b.WriteString(chunk.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
