// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics creates a PipelineMetrics instance without touching the
// global Prometheus registry, so tests don't conflict with InitMetrics().
func newTestMetrics(t *testing.T) *PipelineMetrics {
	t.Helper()

	return &PipelineMetrics{
		DocumentsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "documents_processed_total",
			},
			[]string{"document_type", "status"},
		),
		PipelineDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "duration_seconds",
				Buckets:   []float64{0.1, 1, 10},
			},
			[]string{"stage"},
		),
		EntitiesExtractedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "entities_extracted_total",
			},
			[]string{"entity"},
		),
		LLMCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "llm_calls_total",
			},
			[]string{"operation", "status"},
		),
		ChunksIngestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "chunks_ingested_total",
			},
		),
		QARequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: qaSubsystem,
				Name:      "requests_total",
			},
			[]string{"status"},
		),
		QADurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: qaSubsystem,
				Name:      "duration_seconds",
				Buckets:   []float64{0.25, 1, 10},
			},
		),
		RedactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: qaSubsystem,
				Name:      "redactions_total",
			},
			[]string{"classification"},
		),
	}
}

func TestRecordDocument(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordDocument("AADHAAR", true)
	m.RecordDocument("AADHAAR", true)
	m.RecordDocument("RESUME", false)

	if got := testutil.ToFloat64(m.DocumentsProcessedTotal.WithLabelValues("AADHAAR", "success")); got != 2 {
		t.Errorf("expected 2 successful AADHAAR documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentsProcessedTotal.WithLabelValues("RESUME", "error")); got != 1 {
		t.Errorf("expected 1 failed RESUME document, got %v", got)
	}
}

func TestRecordEntities(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordEntities([]string{"FULL_NAME", "AADHAAR_NUMBER", "FULL_NAME"})

	if got := testutil.ToFloat64(m.EntitiesExtractedTotal.WithLabelValues("FULL_NAME")); got != 2 {
		t.Errorf("expected 2 FULL_NAME entities, got %v", got)
	}
	if got := testutil.ToFloat64(m.EntitiesExtractedTotal.WithLabelValues("AADHAAR_NUMBER")); got != 1 {
		t.Errorf("expected 1 AADHAAR_NUMBER entity, got %v", got)
	}
}

func TestRecordLLMCall(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordLLMCall("classify", true)
	m.RecordLLMCall("extract_entities", false)

	if got := testutil.ToFloat64(m.LLMCallsTotal.WithLabelValues("classify", "success")); got != 1 {
		t.Errorf("expected 1 successful classify call, got %v", got)
	}
	if got := testutil.ToFloat64(m.LLMCallsTotal.WithLabelValues("extract_entities", "error")); got != 1 {
		t.Errorf("expected 1 failed extract_entities call, got %v", got)
	}
}

func TestRecordQARequest(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordQARequest(true, 1.2)
	m.RecordQARequest(false, 0.1)

	if got := testutil.ToFloat64(m.QARequestsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful QA request, got %v", got)
	}
	if got := testutil.ToFloat64(m.QARequestsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed QA request, got %v", got)
	}
}

func TestRecordChunksIngested(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordChunksIngested(5)
	m.RecordChunksIngested(3)

	if got := testutil.ToFloat64(m.ChunksIngestedTotal); got != 8 {
		t.Errorf("expected 8 ingested chunks, got %v", got)
	}
}

func TestRecordRedaction(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRedaction("aadhaar")
	m.RecordRedaction("aadhaar")
	m.RecordRedaction("pan")

	if got := testutil.ToFloat64(m.RedactionsTotal.WithLabelValues("aadhaar")); got != 2 {
		t.Errorf("expected 2 aadhaar redactions, got %v", got)
	}
}
