// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/riteshbawaskar/doc-classify/services/extraction"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/pipeline"
	"github.com/riteshbawaskar/doc-classify/services/store"
	"github.com/spf13/cobra"
)

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}
	if watchMode && !info.IsDir() {
		return fmt.Errorf("--watch requires a directory, got a file: %s", target)
	}

	classifier, st, err := buildClassifier()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	if !info.IsDir() {
		return processFile(ctx, classifier, target)
	}

	if err := processDirectory(ctx, classifier, target); err != nil {
		return err
	}

	if watchMode {
		return watchDirectory(ctx, classifier, target)
	}
	return nil
}

func buildClassifier() (*pipeline.Classifier, *store.Store, error) {
	var llmClient llm.LLMClient
	var err error

	switch llmBackend {
	case "gemini":
		llmClient, err = llm.NewGeminiClient()
	case "openai":
		llmClient, err = llm.NewOpenAIClient()
	case "ollama":
		llmClient, err = llm.NewOllamaClient()
	default:
		return nil, nil, fmt.Errorf("unknown LLM backend %q (want gemini, openai, or ollama)", llmBackend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open employee store: %w", err)
	}

	extractor := extraction.NewExtractor()
	if ocrEnabled {
		extractor = extraction.NewExtractorWithOCR(extraction.NewTesseractEngine())
	}

	return pipeline.NewClassifier(llmClient, extractor, st), st, nil
}

func processDirectory(ctx context.Context, classifier *pipeline.Classifier, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if extraction.Supported(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Println("No supported files found in", dir)
		return nil
	}

	failures := 0
	for _, path := range files {
		if err := processFile(ctx, classifier, path); err != nil {
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", path, err)
			failures++
		}
	}

	fmt.Printf("\nProcessed %d file(s), %d failure(s)\n", len(files), failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

func processFile(ctx context.Context, classifier *pipeline.Classifier, path string) error {
	result, err := classifier.Run(ctx, path)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%-18s %-8s %s\n", result.DocumentType, result.Confidence, path)
	names := make([]string, 0, len(result.Entities))
	for name := range result.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entity := result.Entities[name]
		fmt.Printf("    %-18s %-30s (%.2f)\n", name, entity.Value, entity.Confidence)
	}
	if result.EmployeeID > 0 {
		fmt.Printf("    saved as employee record #%d\n", result.EmployeeID)
	}
	return nil
}

// watchDirectory blocks, processing supported files as they are created in
// dir. Stops on SIGINT/SIGTERM or context cancellation.
func watchDirectory(ctx context.Context, classifier *pipeline.Classifier, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Println("Watching", dir, "for new documents (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// A file dropped into the folder emits Create followed by Writes;
	// process each path once per session.
	processed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigCh:
			fmt.Println("\nStopping watch")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if processed[event.Name] || !extraction.Supported(event.Name) {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			processed[event.Name] = true
			if err := processFile(ctx, classifier, event.Name); err != nil {
				fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
