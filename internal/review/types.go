package review

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/prbot/internal/metrics"
	"github.com/dshills/prbot/internal/pr"
	"github.com/dshills/prbot/internal/redact"
)

// EventKind names the CI event that triggered a run.
type EventKind string

const (
	EventPullRequest       EventKind = "pull_request"
	EventPullRequestTarget EventKind = "pull_request_target"
	EventIssueComment      EventKind = "issue_comment"
)

// Event is one trigger to process.
type Event struct {
	Kind EventKind
	// CommentID identifies the triggering comment of an issue_comment
	// event. Zero means unset.
	CommentID int64
}

// Platform is the pull request as exposed by the hosting service.
type Platform interface {
	ListFiles(ctx context.Context) ([]pr.FileChange, error)
	ListCommits(ctx context.Context) ([]pr.Commit, error)
	ListComments(ctx context.Context) ([]pr.Comment, error)
	GetComment(ctx context.Context, id int64) (pr.Comment, error)
	CreateComment(ctx context.Context, body string) error
}

// Options tune an Orchestrator. Zero values fall back to defaults.
type Options struct {
	// BotLogin is the account the bot posts as.
	BotLogin string
	// ExcludeExtensions lists file extensions, with the dot, that are never
	// reviewed.
	ExcludeExtensions []string
	MaxTokens         int
	Language          string
	Guidelines        string
	// DryRun logs comments instead of posting them and skips persisting
	// state.
	DryRun bool

	Redactor *redact.Redactor
	Metrics  *metrics.Recorder
	Tracer   trace.Tracer
	Logger   *slog.Logger
}
