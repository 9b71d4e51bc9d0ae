// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command orchestrator starts the document classification HTTP server.
//
// Configuration comes from environment variables:
//
//   - ORCHESTRATOR_PORT: HTTP server port (default: 8600)
//   - LLM_BACKEND_TYPE: LLM provider - gemini, openai, ollama (default: gemini)
//   - EMBEDDING_BACKEND_TYPE: embedding provider - gemini, openai (default: follows LLM backend)
//   - WEAVIATE_SERVICE_URL: Weaviate vector DB URL (optional)
//   - EMPLOYEE_DB_PATH: SQLite file for employee records (default: ./data/employees.db)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: otel-collector:4317)
//   - OCR_ENABLED: set to "true" to process image uploads with Tesseract
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_DIR: write JSON logs to a dated file in this directory (optional)
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/riteshbawaskar/doc-classify/pkg/logging"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator"
)

func main() {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Service: "orchestrator",
		LogDir:  os.Getenv("LOG_DIR"),
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	cfg := orchestrator.Config{
		Port:             getEnvInt("ORCHESTRATOR_PORT", 8600),
		LLMBackend:       getEnvString("LLM_BACKEND_TYPE", "gemini"),
		EmbeddingBackend: os.Getenv("EMBEDDING_BACKEND_TYPE"),
		WeaviateURL:      os.Getenv("WEAVIATE_SERVICE_URL"),
		DBPath:           getEnvString("EMPLOYEE_DB_PATH", "./data/employees.db"),
		OTelEndpoint:     getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OCREnabled:       os.Getenv("OCR_ENABLED") == "true",
		APIKey:           os.Getenv("API_KEY"),
	}

	slog.Info("Starting orchestrator",
		"port", cfg.Port,
		"llm_backend", cfg.LLMBackend,
		"weaviate_url", cfg.WeaviateURL,
	)

	svc, err := orchestrator.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	if err := svc.Run(); err != nil {
		log.Fatalf("Orchestrator error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
