// Package pg wires the pgx/v5 driver into the application: pooled connection
// setup with startup retries, goose schema migrations from an embedded
// filesystem, a healthcheck closure, and error classification helpers
// (not-found, duplicate key, foreign key violation) used by storage code.
package pg
