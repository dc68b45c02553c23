// Package logger provides structured logging for the voice platform.
//
// This package wraps Go's standard log/slog with convenience functions for:
//   - Provider API call logging (STT, LLM, TTS, embeddings)
//   - Call session lifecycle logging
//   - Automatic API key redaction
//   - Level-based verbosity control
//
// All exported functions use the global DefaultLogger which can be configured
// for different output formats and log levels.
package logger

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// DefaultLogger is the global structured logger instance.
// It is safe for concurrent use and initialized with slog.LevelInfo by default.
var DefaultLogger *slog.Logger

func init() {
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		switch strings.ToLower(envLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	DefaultLogger = slog.New(handler)
}

// SetLevel changes the logging level for all subsequent log operations.
// This is safe for concurrent use as it replaces the entire logger instance.
func SetLevel(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	DefaultLogger = slog.New(handler)
}

// Debug logs a debug-level message with structured key-value attributes.
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// Info logs an informational message with structured key-value attributes.
// Args should be provided in key-value pairs: key1, value1, key2, value2, ...
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// Warn logs a warning message with structured attributes.
// Use for recoverable errors or unexpected but non-critical situations.
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// Error logs an error message with structured attributes.
// Use for errors that affect operation but don't cause complete failure.
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}

// InfoContext logs an informational message with context for request tracing.
func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context for request tracing.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

// ProviderCall logs an outbound AI provider request with structured fields.
// family is the capability family ("stt", "llm", "tts", "embeddings").
func ProviderCall(family, provider, model string, attrs ...any) {
	allAttrs := make([]any, 0, 6+len(attrs))
	allAttrs = append(allAttrs,
		"family", family,
		"provider", provider,
		"model", model,
	)
	allAttrs = append(allAttrs, attrs...)
	Debug("provider call", allAttrs...)
}

// ProviderError logs a failed AI provider request. The error text is
// redacted; upstream messages sometimes echo the request's auth header.
func ProviderError(family, provider string, err error, attrs ...any) {
	allAttrs := make([]any, 0, 6+len(attrs))
	allAttrs = append(allAttrs,
		"family", family,
		"provider", provider,
		"error", RedactSensitiveData(err.Error()),
	)
	allAttrs = append(allAttrs, attrs...)
	Error("provider call failed", allAttrs...)
}

// CallEvent logs a call session lifecycle event keyed by the call identifier.
func CallEvent(callID, event string, attrs ...any) {
	allAttrs := make([]any, 0, 4+len(attrs))
	allAttrs = append(allAttrs,
		"call_id", callID,
		"event", event,
	)
	allAttrs = append(allAttrs, attrs...)
	Info("call event", allAttrs...)
}

// apiKeyPatterns match common API key formats from the providers this
// platform talks to.
var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),   // OpenAI-style keys (also Groq gsk_ via Bearer)
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),    // Groq API keys
	regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_-]+`), // Bearer tokens
	regexp.MustCompile(`xi-api-key:\s*\S+`),       // ElevenLabs header values
}

// RedactSensitiveData removes API keys and bearer tokens from strings before
// they reach logs. Matched values are replaced with a short prefix plus
// "***" so operators can still tell which credential was involved.
func RedactSensitiveData(s string) string {
	for _, pattern := range apiKeyPatterns {
		s = pattern.ReplaceAllStringFunc(s, func(match string) string {
			keep := 4
			if len(match) < keep {
				keep = len(match)
			}
			return match[:keep] + "***"
		})
	}
	return s
}
