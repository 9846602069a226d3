// Package session manages browser sessions as a small state machine:
// anonymous, pending-MFA (password verified, second factor outstanding),
// and authenticated. Tokens rotate on every state elevation and sessions
// idle out after fifteen minutes by default.
//
// Storage is pluggable (in-memory or Redis) and tokens travel in
// AES-GCM encrypted cookies.
package session
