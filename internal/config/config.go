package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	yaml "go.yaml.in/yaml/v2"

	"github.com/dshills/prbot/internal/providers"
)

const (
	// DefaultPath is used when PRBOT_CONFIG is unset.
	DefaultPath = ".github/prbot.yaml"

	BackendComments = "comments"
	BackendSQLite   = "sqlite"
)

// Error reports invalid or missing configuration.
type Error struct {
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	return fmt.Sprintf("config %s: %s", e.Field, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Config represents the prbot configuration.
type Config struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	MaxTokens         int           `yaml:"maxTokens"`
	Language          string        `yaml:"language"`
	Guidelines        string        `yaml:"guidelines"`
	BotLogin          string        `yaml:"botLogin"`
	ExcludeExtensions []string      `yaml:"excludeExtensions"`
	State             StateConfig   `yaml:"state"`
	Privacy           PrivacyConfig `yaml:"privacy"`
	Cache             CacheConfig   `yaml:"cache"`
	LogFormat         string        `yaml:"logFormat"`
	MetricsTextfile   string        `yaml:"metricsTextfile"`

	// Set from the environment only.
	Keys         APIKeys `yaml:"-"`
	GitHubToken  string  `yaml:"-"`
	GitHubAPIURL string  `yaml:"-"`
	Repository   string  `yaml:"-"`
	PRNumber     int     `yaml:"-"`
	Event        string  `yaml:"-"`
	CommentID    int64   `yaml:"-"`
}

// StateConfig selects where file digests are kept between runs.
type StateConfig struct {
	Backend string `yaml:"backend"`
	DBPath  string `yaml:"dbPath"`
}

// PrivacyConfig controls redaction of patches sent to providers.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths"`
}

// CacheConfig controls the on-disk cache of provider responses.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// APIKeys holds one credential per provider.
type APIKeys struct {
	OpenAI     string
	OpenRouter string
	Anthropic  string
	Gemini     string
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:          "openai",
		MaxTokens:         1000,
		Language:          "English",
		BotLogin:          "github-actions[bot]",
		ExcludeExtensions: []string{".exe", ".dll", ".so", ".dylib", ".bin"},
		State: StateConfig{
			Backend: BackendComments,
			DBPath:  ".prbot/state.db",
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
		Cache: CacheConfig{
			Dir:        ".prbot/cache",
			TTLSeconds: 86400,
		},
		LogFormat: "text",
	}
}

// Path returns the config file location.
func Path() string {
	if p := os.Getenv("PRBOT_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// APIKey returns the credential of the configured provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.Keys.OpenAI
	case "openrouter":
		return c.Keys.OpenRouter
	case "anthropic":
		return c.Keys.Anthropic
	case "gemini":
		return c.Keys.Gemini
	}
	return ""
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// When an override switches the provider without naming a model, the model
// comes from the new provider's model variable, or its default.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()
	if err := mergeFile(&cfg, Path()); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	provider := cfg.Provider
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if cfg.Provider != provider && overrides["model"] == "" {
		// The model picked so far belongs to the previous provider.
		cfg.Model = os.Getenv(modelEnv(cfg.Provider))
	}
	return cfg, nil
}

// mergeFile decodes the YAML file over cfg, so keys absent from the file keep
// their current values. A missing file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &Error{Field: "file", Msg: "reading " + path, Err: err}
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return &Error{Field: "file", Msg: "parsing " + path, Err: err}
	}
	return nil
}

func mergeEnv(cfg *Config) error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.Provider, "AI_PROVIDER")
	setString(&cfg.Model, modelEnv(cfg.Provider), "MODEL_ID", "MODEL")
	setString(&cfg.BotLogin, "BOT_LOGIN")
	setString(&cfg.State.Backend, "STATE_BACKEND")
	setString(&cfg.State.DBPath, "STATE_DB_PATH")
	setString(&cfg.MetricsTextfile, "METRICS_TEXTFILE")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.Language, "REVIEW_LANGUAGE")
	setString(&cfg.Cache.Dir, "CACHE_DIR")

	setString(&cfg.Keys.OpenAI, "OPENAI_API_KEY")
	setString(&cfg.Keys.OpenRouter, "OPENROUTER_API_KEY")
	setString(&cfg.Keys.Anthropic, "ANTHROPIC_API_KEY")
	setString(&cfg.Keys.Gemini, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setString(&cfg.GitHubToken, "GITHUB_TOKEN")
	setString(&cfg.GitHubAPIURL, "GITHUB_API_URL")
	setString(&cfg.Repository, "GITHUB_REPOSITORY")
	setString(&cfg.Event, "EVENT_NAME")

	if v := os.Getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "MAX_TOKENS", Msg: "must be an integer", Err: err}
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv("PR_NUMBER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "PR_NUMBER", Msg: "must be an integer", Err: err}
		}
		cfg.PRNumber = n
	}
	if v := os.Getenv("COMMENT_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &Error{Field: "COMMENT_ID", Msg: "must be an integer", Err: err}
		}
		cfg.CommentID = n
	}
	if v := os.Getenv("REDACT_SECRETS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Field: "REDACT_SECRETS", Msg: "must be a boolean", Err: err}
		}
		cfg.Privacy.RedactSecrets = b
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Field: "CACHE_ENABLED", Msg: "must be a boolean", Err: err}
		}
		cfg.Cache.Enabled = b
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "CACHE_TTL_SECONDS", Msg: "must be an integer", Err: err}
		}
		cfg.Cache.TTLSeconds = n
	}
	return nil
}

// modelEnv names the provider-specific model variable.
func modelEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_MODEL"
	case "openrouter":
		return "OPENROUTER_MODEL_ID"
	case "anthropic":
		return "ANTHROPIC_MODEL"
	case "gemini":
		return "GEMINI_MODEL"
	}
	return "MODEL_ID"
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &Error{Field: key, Msg: "must be an integer", Err: err}
		}
		cfg.MaxTokens = n
	case "language":
		cfg.Language = value
	case "botLogin":
		cfg.BotLogin = value
	case "stateBackend":
		cfg.State.Backend = value
	case "logFormat":
		cfg.LogFormat = value
	case "cacheEnabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &Error{Field: key, Msg: "must be a boolean", Err: err}
		}
		cfg.Cache.Enabled = b
	default:
		return &Error{Field: key, Msg: "unknown config key"}
	}
	return nil
}

// Validate reports the first problem that prevents processing an event.
func (c Config) Validate() error {
	if !slices.Contains(providers.Supported(), c.Provider) {
		return &Error{Field: "provider", Err: fmt.Errorf("%w: %q", providers.ErrUnsupportedProvider, c.Provider)}
	}
	if c.APIKey() == "" {
		return &Error{Field: "provider", Msg: "no API key set for " + c.Provider}
	}
	if c.MaxTokens <= 0 {
		return &Error{Field: "MAX_TOKENS", Msg: fmt.Sprintf("must be positive, got %d", c.MaxTokens)}
	}
	if err := c.ValidateTarget(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &Error{Field: "LOG_FORMAT", Msg: fmt.Sprintf("unknown format %q", c.LogFormat)}
	}
	return nil
}

// ValidateTarget checks only what is needed to address the pull request and
// its stored state.
func (c Config) ValidateTarget() error {
	if c.GitHubToken == "" {
		return &Error{Field: "GITHUB_TOKEN", Msg: "is required"}
	}
	if c.Repository == "" {
		return &Error{Field: "GITHUB_REPOSITORY", Msg: "is required"}
	}
	if c.PRNumber <= 0 {
		return &Error{Field: "PR_NUMBER", Msg: "is required"}
	}
	switch c.State.Backend {
	case BackendComments, BackendSQLite:
	default:
		return &Error{Field: "STATE_BACKEND", Msg: fmt.Sprintf("unknown backend %q", c.State.Backend)}
	}
	return nil
}

// Show renders the effective configuration as YAML with credentials masked.
func (c Config) Show() (string, error) {
	view := struct {
		Config     `yaml:",inline"`
		Keys       map[string]string `yaml:"apiKeys"`
		GitHub     map[string]string `yaml:"github"`
		PRNumber   int               `yaml:"prNumber"`
		Event      string            `yaml:"event"`
		CommentID  int64             `yaml:"commentId,omitempty"`
		ConfigPath string            `yaml:"configPath"`
	}{
		Config: c,
		Keys: map[string]string{
			"openai":     mask(c.Keys.OpenAI),
			"openrouter": mask(c.Keys.OpenRouter),
			"anthropic":  mask(c.Keys.Anthropic),
			"gemini":     mask(c.Keys.Gemini),
		},
		GitHub: map[string]string{
			"token":      mask(c.GitHubToken),
			"apiURL":     c.GitHubAPIURL,
			"repository": c.Repository,
		},
		PRNumber:   c.PRNumber,
		Event:      c.Event,
		CommentID:  c.CommentID,
		ConfigPath: Path(),
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(out), nil
}

// mask keeps the last four characters of long secrets.
func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}
