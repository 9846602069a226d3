// Package ratelimiter implements a token bucket rate limiter with pluggable
// storage and HTTP middleware support.
package ratelimiter
