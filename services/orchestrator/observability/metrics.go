// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the orchestrator.
//
// Metrics cover the classification pipeline (documents processed, entities
// extracted, LLM calls) and the question-answering path (requests, retrieval
// latency, redactions). All metrics are exposed via the /metrics endpoint
// and are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "docclassify"

const (
	pipelineSubsystem = "pipeline"
	qaSubsystem       = "qa"
)

// PipelineMetrics holds all Prometheus metrics for document processing and
// question answering. Initialize once at startup via InitMetrics().
type PipelineMetrics struct {
	// DocumentsProcessedTotal counts pipeline runs by classified type and outcome.
	// Labels: document_type (AADHAAR, RESUME, ...), status (success, error)
	DocumentsProcessedTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures end-to-end pipeline latency per stage.
	// Labels: stage (extract, classify, entities, persist)
	PipelineDurationSeconds *prometheus.HistogramVec

	// EntitiesExtractedTotal counts extracted entities by name.
	// Labels: entity (AADHAAR_NUMBER, PAN_NUMBER, ...)
	EntitiesExtractedTotal *prometheus.CounterVec

	// LLMCallsTotal counts LLM invocations by operation and outcome.
	// Labels: operation (classify, extract_entities, answer), status (success, error)
	LLMCallsTotal *prometheus.CounterVec

	// ChunksIngestedTotal counts document chunks written to the vector store.
	ChunksIngestedTotal prometheus.Counter

	// QARequestsTotal counts question-answering requests by status.
	// Labels: status (success, error)
	QARequestsTotal *prometheus.CounterVec

	// QADurationSeconds measures question-answering latency end to end.
	QADurationSeconds prometheus.Histogram

	// RedactionsTotal counts PII redactions applied to generated answers.
	// Labels: classification (aadhaar, pan, ...)
	RedactionsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, initialized by InitMetrics().
var DefaultMetrics *PipelineMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// application startup; calling twice panics on duplicate registration.
func InitMetrics() *PipelineMetrics {
	DefaultMetrics = &PipelineMetrics{
		DocumentsProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "documents_processed_total",
				Help:      "Total documents processed by classified type and status",
			},
			[]string{"document_type", "status"},
		),

		PipelineDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),

		EntitiesExtractedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "entities_extracted_total",
				Help:      "Total entities extracted by entity name",
			},
			[]string{"entity"},
		),

		LLMCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "llm_calls_total",
				Help:      "Total LLM invocations by operation and status",
			},
			[]string{"operation", "status"},
		),

		ChunksIngestedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "chunks_ingested_total",
				Help:      "Total document chunks written to the vector store",
			},
		),

		QARequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: qaSubsystem,
				Name:      "requests_total",
				Help:      "Total question-answering requests by status",
			},
			[]string{"status"},
		),

		QADurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: qaSubsystem,
				Name:      "duration_seconds",
				Help:      "Question-answering request duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		RedactionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: qaSubsystem,
				Name:      "redactions_total",
				Help:      "Total PII redactions applied to generated answers",
			},
			[]string{"classification"},
		),
	}

	return DefaultMetrics
}

// RecordDocument records a completed pipeline run.
func (m *PipelineMetrics) RecordDocument(documentType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.DocumentsProcessedTotal.WithLabelValues(documentType, status).Inc()
}

// RecordStageDuration records the latency of a single pipeline stage.
func (m *PipelineMetrics) RecordStageDuration(stage string, seconds float64) {
	m.PipelineDurationSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordEntities records the names of entities found in a document.
func (m *PipelineMetrics) RecordEntities(names []string) {
	for _, name := range names {
		m.EntitiesExtractedTotal.WithLabelValues(name).Inc()
	}
}

// RecordLLMCall records an LLM invocation.
func (m *PipelineMetrics) RecordLLMCall(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.LLMCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordChunksIngested records chunks written to the vector store.
func (m *PipelineMetrics) RecordChunksIngested(count int) {
	m.ChunksIngestedTotal.Add(float64(count))
}

// RecordQARequest records a completed question-answering request.
func (m *PipelineMetrics) RecordQARequest(success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	m.QARequestsTotal.WithLabelValues(status).Inc()
	m.QADurationSeconds.Observe(seconds)
}

// RecordRedaction records a PII redaction applied to an answer.
func (m *PipelineMetrics) RecordRedaction(classification string) {
	m.RedactionsTotal.WithLabelValues(classification).Inc()
}
