package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/github"
	"github.com/dshills/prbot/internal/providers"
	"github.com/dshills/prbot/internal/state"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagDryRun = false
	flagProvider = ""
	flagModel = ""
	flagMaxTokens = 0
}

// isolate clears every variable the config reads and points PRBOT_CONFIG at
// a file that does not exist.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AI_PROVIDER", "MODEL_ID", "MODEL", "OPENAI_MODEL", "OPENROUTER_MODEL_ID", "ANTHROPIC_MODEL", "GEMINI_MODEL",
		"MAX_TOKENS", "BOT_LOGIN", "STATE_BACKEND", "STATE_DB_PATH", "METRICS_TEXTFILE", "LOG_FORMAT",
		"REVIEW_LANGUAGE", "REDACT_SECRETS", "OPENAI_API_KEY", "OPENROUTER_API_KEY", "ANTHROPIC_API_KEY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GITHUB_TOKEN", "GITHUB_API_URL", "GITHUB_REPOSITORY",
		"PR_NUMBER", "EVENT_NAME", "COMMENT_ID", "CACHE_ENABLED", "CACHE_DIR", "CACHE_TTL_SECONDS",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("PRBOT_CONFIG", filepath.Join(t.TempDir(), "prbot.yaml"))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", &config.Error{Field: "PR_NUMBER", Msg: "is required"}, ExitUsageError},
		{"unsupported provider", fmt.Errorf("building: %w", providers.ErrUnsupportedProvider), ExitUsageError},
		{"github auth", &github.FetchError{Op: "list files", StatusCode: 401, Err: errors.New("bad creds")}, ExitAuthError},
		{"provider auth", &providers.GenerationError{Provider: "openai", StatusCode: 403, Err: errors.New("forbidden")}, ExitAuthError},
		{"github outage", &github.FetchError{Op: "list files", StatusCode: 502, Err: errors.New("bad gateway")}, ExitRuntimeError},
		{"other", errors.New("boom"), ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestBuildOverrides(t *testing.T) {
	resetFlags()
	defer resetFlags()

	if got := buildOverrides(); len(got) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty", got)
	}

	flagProvider = "anthropic"
	flagModel = "claude-sonnet-4-20250514"
	flagMaxTokens = 2048
	got := buildOverrides()
	want := map[string]string{
		"provider":  "anthropic",
		"model":     "claude-sonnet-4-20250514",
		"maxTokens": "2048",
	}
	if len(got) != len(want) {
		t.Fatalf("buildOverrides() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger("json", &buf).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	if id, _ := line["run_id"].(string); len(id) != 36 {
		t.Errorf("run_id = %v, want a UUID", line["run_id"])
	}
}

func TestLoadConfig_KeepsRepositoryFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_REPOSITORY", "octo/hello")

	cfg, err := loadConfig(map[string]string{"provider": "gemini"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Repository != "octo/hello" {
		t.Errorf("Repository = %q, want %q", cfg.Repository, "octo/hello")
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "gemini")
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.State.Backend = "redis"

	_, _, err := openStore(cfg, nil, quietLogger())
	if got := exitCodeFor(err); got != ExitUsageError {
		t.Errorf("exit code = %d, want %d (err: %v)", got, ExitUsageError, err)
	}
}

func TestPrintModels(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	printModels(cmd)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(providers.Supported()) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(providers.Supported()), buf.String())
	}
	if !strings.Contains(buf.String(), "openrouter  anthropic/claude-3.5-sonnet:beta") {
		t.Errorf("missing openrouter default model:\n%s", buf.String())
	}
}

func TestPrintState(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printState(cmd, state.NewDigestMap())
	if got := buf.String(); got != "No files recorded yet\n" {
		t.Errorf("empty state output = %q", got)
	}

	buf.Reset()
	m := state.NewDigestMap()
	m.Set("a.go", "abc")
	m.Set("old.go", "removed")
	printState(cmd, m)
	if got, want := buf.String(), "a.go: abc\nold.go: removed\n"; got != want {
		t.Errorf("state output = %q, want %q", got, want)
	}
}

func testConfig(apiURL string) config.Config {
	cfg := config.Default()
	cfg.Keys.OpenAI = "sk-test"
	cfg.GitHubToken = "ghs_test"
	cfg.GitHubAPIURL = apiURL
	cfg.Repository = "octo/hello"
	cfg.PRNumber = 7
	return cfg
}

func TestRunEvent_UnsupportedEventMakesNoCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	for _, event := range []string{"push", ""} {
		t.Run("event="+event, func(t *testing.T) {
			cfg := testConfig(srv.URL)
			cfg.Event = event

			err := runEvent(context.Background(), cfg, false, quietLogger())
			if err != nil {
				t.Fatalf("runEvent: %v", err)
			}
			if got := exitCodeFor(err); got != ExitSuccess {
				t.Errorf("exit code = %d, want %d", got, ExitSuccess)
			}
		})
	}
}

func TestRunEvent_SQLiteStateAndMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/octo/hello/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"filename":"dist/tool.exe","status":"added"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfg := testConfig(srv.URL)
	cfg.Event = "pull_request"
	cfg.State.Backend = config.BackendSQLite
	cfg.State.DBPath = filepath.Join(dir, "state", "prbot.db")
	cfg.MetricsTextfile = filepath.Join(dir, "prbot.prom")

	if err := runEvent(context.Background(), cfg, false, quietLogger()); err != nil {
		t.Fatalf("runEvent: %v", err)
	}

	if _, err := os.Stat(cfg.State.DBPath); err != nil {
		t.Errorf("state database not created: %v", err)
	}
	data, err := os.ReadFile(cfg.MetricsTextfile)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if !strings.Contains(string(data), `prbot_files_total{outcome="excluded"} 1`) {
		t.Errorf("metrics missing excluded file:\n%s", data)
	}
}

func TestRunEvent_InvalidRepository(t *testing.T) {
	cfg := testConfig("")
	cfg.Repository = "not-a-slug"
	cfg.Event = "pull_request"

	err := runEvent(context.Background(), cfg, false, quietLogger())
	if got := exitCodeFor(err); got != ExitUsageError {
		t.Errorf("exit code = %d, want %d (err: %v)", got, ExitUsageError, err)
	}
}

func TestModelName(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "anthropic"
	if got := modelName(cfg); got != providers.DefaultModel("anthropic") {
		t.Errorf("modelName() = %q, want provider default", got)
	}
	cfg.Model = "claude-opus-4"
	if got := modelName(cfg); got != "claude-opus-4" {
		t.Errorf("modelName() = %q, want %q", got, "claude-opus-4")
	}
}
