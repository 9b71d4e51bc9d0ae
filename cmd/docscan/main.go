// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command docscan classifies document files from the command line.
//
// It runs the same extraction and classification pipeline as the
// orchestrator, but in-process: point it at a file or folder and it prints
// the classified type and extracted entities for each document, saving the
// results to the employee store.
//
// With --watch the folder is monitored and newly dropped files are
// processed as they appear.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/riteshbawaskar/doc-classify/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "docscan",
		Short: "Classify identity documents and extract entities",
		Long: `docscan runs the document classification pipeline over local files:
text is extracted (PDF, DOCX, TXT, or OCR for images), the document type is
classified, and entities like names and ID numbers are pulled out and saved
to the employee store.`,
	}

	scanCmd = &cobra.Command{
		Use:   "scan [file or directory]",
		Short: "Classify one file or every supported file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	llmBackend string
	dbPath     string
	ocrEnabled bool
	jsonOutput bool
	watchMode  bool
)

func init() {
	scanCmd.Flags().StringVar(&llmBackend, "llm", envOr("LLM_BACKEND_TYPE", "gemini"),
		"LLM backend: gemini, openai, or ollama")
	scanCmd.Flags().StringVar(&dbPath, "db", envOr("EMPLOYEE_DB_PATH", "./data/employees.db"),
		"SQLite file for extracted employee records")
	scanCmd.Flags().BoolVar(&ocrEnabled, "ocr", os.Getenv("OCR_ENABLED") == "true",
		"process image files with Tesseract OCR")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"print full results as JSON instead of a summary line")
	scanCmd.Flags().BoolVar(&watchMode, "watch", false,
		"keep running and process files as they are added to the directory")

	rootCmd.AddCommand(scanCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Keep scan output readable: pipeline log noise below warn stays off
	// stderr unless LOG_LEVEL says otherwise.
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(envOr("LOG_LEVEL", "warn")),
		Service: "docscan",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
