// Package logger is a thin factory around log/slog with environment-aware
// defaults (JSON in production, text in development) and attribute helpers
// shared across the application.
package logger
