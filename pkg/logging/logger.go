// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for all binaries in this
// repository.
//
// It is a thin layer over the standard library slog package:
//
//   - Default: JSON output on stderr (follows Unix CLI conventions)
//   - Optional: file logging with automatic directory creation
//
// Basic usage:
//
//	logger := logging.Default()
//	logger.Info("classified document", "document_type", docType)
//
// File logging:
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    LogDir:  "~/.docclassify/logs",
//	    Service: "orchestrator",
//	})
//	defer logger.Close()
//
// Note that this package does NOT automatically redact sensitive data.
// Callers must keep Aadhaar numbers, PAN numbers, and other document
// PII out of log fields; log presence flags, not values.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level controls which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a LOG_LEVEL string onto a Level. Unknown values
// default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config controls Logger construction.
type Config struct {
	// Level is the minimum level to emit.
	Level Level

	// Service names the component; added as a "service" attribute to
	// every record and used in the log file name.
	Service string

	// LogDir enables file logging when non-empty. Supports a leading ~.
	LogDir string
}

// Logger wraps slog with optional file output.
type Logger struct {
	mu     sync.Mutex
	slog   *slog.Logger
	file   *os.File
	closed bool
}

// New builds a Logger from config. File logging failures are reported
// on stderr and the logger falls back to stderr-only output.
func New(config Config) *Logger {
	handlerOptions := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	logger := &Logger{}
	var handler slog.Handler

	if config.LogDir != "" {
		dir := expandPath(config.LogDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "logging: failed to create log dir %s: %v\n", dir, err)
		} else {
			name := fmt.Sprintf("%s_%s.log", config.Service, time.Now().UTC().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(dir, name),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "logging: failed to open log file: %v\n", err)
			} else {
				logger.file = file
				handler = slog.NewJSONHandler(file, handlerOptions)
			}
		}
	}
	if handler == nil {
		handler = slog.NewJSONHandler(os.Stderr, handlerOptions)
	}

	sl := slog.New(handler)
	if config.Service != "" {
		sl = sl.With("service", config.Service)
	}
	logger.slog = sl
	return logger
}

// Default returns a stderr-only logger at the level named by the
// LOG_LEVEL environment variable.
func Default() *Logger {
	return New(Config{Level: ParseLevel(os.Getenv("LOG_LEVEL"))})
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a Logger whose records carry the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), file: nil}
}

// Slog exposes the underlying slog.Logger for packages that want to
// install it as the process default via slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close flushes and closes the log file, if any. Safe to call twice.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.file == nil {
		l.closed = true
		return nil
	}
	l.closed = true
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// expandPath resolves a leading ~ against the user's home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
