// Package cookie manages HTTP cookies with AES-256-GCM encryption and
// key-rotation support.
//
// A Manager is constructed with one or more secrets of at least 32 bytes.
// The first secret encrypts new cookies; all secrets are tried when reading,
// so old cookies stay valid while keys rotate. Defaults follow secure
// practice: HttpOnly, SameSite=Lax, path "/". The Secure flag is opt-in to
// keep local development over plain HTTP working.
//
// Flash helpers (SetFlash/GetFlash) store one-time values, deleted on read,
// for messages that must survive a redirect.
package cookie
