// Package config loads env-tagged configuration structs from the process
// environment (with optional .env file support) and caches them per type, so
// configuration is read once at startup and never mutated afterwards.
package config
