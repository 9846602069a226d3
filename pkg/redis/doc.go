// Package redis provides connection bootstrap with retries and a healthcheck
// helper for the go-redis/v9 client.
package redis
