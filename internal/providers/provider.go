package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Role identifies the speaker of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// Request contains the data sent to an LLM.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Response contains the text produced by an LLM.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator is the provider abstraction interface.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint. Empty uses the default.
	BaseURL string
}

// ErrUnsupportedProvider is returned by New for a provider name outside the
// supported set.
var ErrUnsupportedProvider = errors.New("unsupported AI provider")

var defaultModels = map[string]string{
	"openai":     "gpt-4o",
	"openrouter": "anthropic/claude-3.5-sonnet:beta",
	"anthropic":  "claude-sonnet-4-20250514",
	"gemini":     "gemini-2.5-flash",
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Supported returns the supported provider names, sorted.
func Supported() []string {
	names := make([]string, 0, len(defaultModels))
	for name := range defaultModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a provider by name.
func New(cfg Config) (Generator, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel(cfg.Provider)
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.APIKey, model, cfg.BaseURL)
	case "openrouter":
		return NewOpenRouter(cfg.APIKey, model, cfg.BaseURL)
	case "anthropic":
		return NewAnthropic(cfg.APIKey, model, cfg.BaseURL)
	case "gemini":
		return NewGemini(cfg.APIKey, model)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// GenerationError reports a failed call to a provider.
type GenerationError struct {
	Provider string
	// StatusCode is the HTTP status of the failed call, or 0 when the
	// request never got a response.
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		return false
	}
	return genErr.StatusCode == http.StatusUnauthorized || genErr.StatusCode == http.StatusForbidden
}

func missingKey(provider, env string) error {
	return &GenerationError{
		Provider: provider,
		Err:      fmt.Errorf("%s is not set", env),
	}
}

func lastMessage(msgs []Message) (Message, error) {
	if len(msgs) == 0 {
		return Message{}, errors.New("no messages in request")
	}
	return msgs[len(msgs)-1], nil
}
