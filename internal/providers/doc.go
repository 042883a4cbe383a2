// Package providers implements the Generator interface for each supported LLM
// provider.
//
// Supported providers: OpenAI and Anthropic through their official SDKs,
// Google Gemini through generative-ai-go, and OpenRouter through its
// OpenAI-compatible REST endpoint.
//
// Providers make exactly one attempt per request; SDK clients are built with
// retries disabled. Every failure is returned as a [*GenerationError] so
// callers can tell generation problems apart from platform ones.
//
// Use [New] to obtain a Generator from a [Config].
package providers
