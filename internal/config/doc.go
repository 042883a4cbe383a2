// Package config loads and merges prbot configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (AI_PROVIDER, MODEL_ID, MAX_TOKENS, GITHUB_TOKEN, etc.)
//  3. Config file (PRBOT_CONFIG, default .github/prbot.yaml)
//  4. Built-in defaults
//
// The config file holds repository policy: provider, model, language,
// review guidelines, excluded extensions and redaction paths. Credentials and
// the event being processed come from the environment only.
//
// Use [Load] to obtain a merged [Config] and [Config.Validate] before acting
// on it.
package config
