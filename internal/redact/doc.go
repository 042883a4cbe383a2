// Package redact scrubs secrets from patches before they are sent to an LLM
// provider.
//
// Detection uses regex heuristics for common secret shapes: provider API keys
// (OpenAI, OpenRouter, Anthropic, Google), GitHub and Slack tokens, AWS keys,
// JWTs, bearer tokens, private key headers and credential assignments.
// Files whose path matches a configured glob are withheld entirely.
package redact
