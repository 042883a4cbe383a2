// Package cache keeps provider responses on disk so that re-running an event
// does not pay twice for the same prompt.
//
// Entries are keyed by a SHA-256 hash of the provider, model and the full
// request (system prompt, conversation and token limit). Every request has
// already been through redaction, so the cache never holds raw secrets.
// Entries older than the TTL are ignored on read and counted as expired by
// Stats.
package cache
