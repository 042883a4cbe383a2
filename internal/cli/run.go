package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/dshills/prbot/internal/cache"
	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/github"
	"github.com/dshills/prbot/internal/metrics"
	"github.com/dshills/prbot/internal/providers"
	"github.com/dshills/prbot/internal/redact"
	"github.com/dshills/prbot/internal/review"
	"github.com/dshills/prbot/internal/state"
)

// Run flags
var (
	flagDryRun    bool
	flagProvider  string
	flagModel     string
	flagMaxTokens int
)

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, openrouter, anthropic, gemini)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens per generated response")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = strconv.Itoa(flagMaxTokens)
	}
	return m
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one pull request event",
	Long: "Process the event named by EVENT_NAME for pull request PR_NUMBER.\n\n" +
		"pull_request and pull_request_target review every new or changed file;\n" +
		"issue_comment answers the comment COMMENT_ID. Other events are ignored.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			return fail(err)
		}
		if err := cfg.Validate(); err != nil {
			return fail(err)
		}

		log := newLogger(cfg.LogFormat, os.Stderr)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runEvent(ctx, cfg, flagDryRun, log); err != nil {
			log.Error("run failed", "error", err)
			return fail(err)
		}
		return nil
	},
}

// loadConfig loads the effective config and fills in the repository from the
// git remote when the environment does not name one.
func loadConfig(overrides map[string]string) (config.Config, error) {
	cfg, err := config.Load(overrides)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Repository == "" {
		if owner, repo, err := github.DetectRepo(); err == nil {
			cfg.Repository = owner + "/" + repo
		}
	}
	return cfg, nil
}

// newLogger returns a logger tagged with a fresh run ID.
func newLogger(format string, w io.Writer) *slog.Logger {
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, nil)
	} else {
		h = slog.NewTextHandler(w, nil)
	}
	return slog.New(h).With("run_id", uuid.NewString())
}

// pullRequest builds the GitHub handle of the configured pull request.
func pullRequest(cfg config.Config) (*github.PullRequest, error) {
	owner, repo, err := github.ParseRepository(cfg.Repository)
	if err != nil {
		return nil, &config.Error{Field: "GITHUB_REPOSITORY", Err: err}
	}
	client, err := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	if err != nil {
		return nil, &config.Error{Field: "GITHUB_API_URL", Err: err}
	}
	return client.PullRequest(owner, repo, cfg.PRNumber), nil
}

// openStore returns the configured state store and a function releasing it.
func openStore(cfg config.Config, pull *github.PullRequest, log *slog.Logger) (state.Store, func() error, error) {
	switch cfg.State.Backend {
	case config.BackendSQLite:
		s, err := state.OpenSQLite(cfg.State.DBPath, cfg.Repository, cfg.PRNumber, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendComments:
		return state.NewCommentStore(pull, log), func() error { return nil }, nil
	default:
		return nil, nil, &config.Error{Field: "STATE_BACKEND", Msg: fmt.Sprintf("unknown backend %q", cfg.State.Backend)}
	}
}

func openCache(cfg config.Config) (*cache.Cache, error) {
	c, err := cache.Open(cfg.Cache.Dir, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

func modelName(cfg config.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return providers.DefaultModel(cfg.Provider)
}

// runEvent wires the collaborators for one event and processes it.
func runEvent(ctx context.Context, cfg config.Config, dryRun bool, log *slog.Logger) error {
	pull, err := pullRequest(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg, pull, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing state store", "error", err)
		}
	}()

	gen, err := providers.New(providers.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey(),
	})
	if err != nil {
		return &config.Error{Field: "provider", Err: err}
	}
	if cfg.Cache.Enabled {
		c, err := openCache(cfg)
		if err != nil {
			return err
		}
		gen = cache.Wrap(gen, modelName(cfg), c, log)
	}
	if c, ok := gen.(io.Closer); ok {
		defer c.Close()
	}

	rec := metrics.New()
	defer func() {
		if cfg.MetricsTextfile == "" {
			return
		}
		if err := rec.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn("writing metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}()

	log.Info("processing event",
		"event", cfg.Event,
		"repository", cfg.Repository,
		"pr", cfg.PRNumber,
		"provider", gen.Name(),
		"state", cfg.State.Backend,
		"cache", cfg.Cache.Enabled,
		"dry_run", dryRun,
	)

	orch := review.New(pull, gen, store, review.Options{
		BotLogin:          cfg.BotLogin,
		ExcludeExtensions: cfg.ExcludeExtensions,
		MaxTokens:         cfg.MaxTokens,
		Language:          cfg.Language,
		Guidelines:        cfg.Guidelines,
		DryRun:            dryRun,
		Redactor:          redact.New(cfg.Privacy.RedactSecrets, cfg.Privacy.RedactPaths),
		Metrics:           rec,
		Tracer:            otel.Tracer("prbot"),
		Logger:            log,
	})
	return orch.Handle(ctx, review.Event{
		Kind:      review.EventKind(cfg.Event),
		CommentID: cfg.CommentID,
	})
}

func init() {
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Log comments instead of posting them and do not persist state")
	addProviderFlags(runCmd)
}
