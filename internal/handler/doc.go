// Package handler exposes registration, two-step login, TOTP enrollment
// and verification, and account management over HTTP with JSON payloads.
package handler
