// Package httpserver wraps net/http's Server with functional options,
// graceful shutdown on context cancellation or OS signals, and probe
// handlers for liveness/readiness checks.
package httpserver
