package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/prbot/internal/conversation"
	"github.com/dshills/prbot/internal/digest"
	"github.com/dshills/prbot/internal/history"
	"github.com/dshills/prbot/internal/metrics"
	"github.com/dshills/prbot/internal/pr"
	"github.com/dshills/prbot/internal/providers"
	"github.com/dshills/prbot/internal/state"
)

const (
	defaultBotLogin  = "github-actions[bot]"
	defaultMaxTokens = 1000
)

// Orchestrator processes pull request events.
type Orchestrator struct {
	platform Platform
	gen      providers.Generator
	store    state.Store
	opts     Options
	log      *slog.Logger
	tracer   trace.Tracer
}

// New creates an Orchestrator.
func New(platform Platform, gen providers.Generator, store state.Store, opts Options) *Orchestrator {
	if opts.BotLogin == "" {
		opts.BotLogin = defaultBotLogin
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("prbot")
	}
	return &Orchestrator{
		platform: platform,
		gen:      gen,
		store:    store,
		opts:     opts,
		log:      log,
		tracer:   tracer,
	}
}

// Handle processes one event. Unsupported events and comment events without
// a comment ID are logged and ignored. Per-file review failures are logged
// and do not fail the event.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) error {
	ctx, span := o.tracer.Start(ctx, "prbot.event", trace.WithAttributes(
		attribute.String("event.kind", string(ev.Kind)),
	))
	defer span.End()

	var err error
	switch ev.Kind {
	case EventPullRequest, EventPullRequestTarget:
		err = o.handlePullRequest(ctx)
	case EventIssueComment:
		err = o.handleComment(ctx, ev.CommentID)
	default:
		o.log.Info("unsupported event, nothing to do", "event", ev.Kind)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// prContext lazily fetches data shared by every file review of one event.
type prContext struct {
	comments    []pr.Comment
	commentsErr error
	commentsSet bool

	commits    []pr.Commit
	commitsSet bool
}

func (o *Orchestrator) handlePullRequest(ctx context.Context) error {
	files, err := o.platform.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	stored, err := o.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	o.log.Info("processing pull request", "files", len(files), "known", stored.Len())

	staged := state.NewDigestMap()
	shared := &prContext{}
	var failed int
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.processFile(ctx, f, stored, staged, shared); err != nil {
			failed++
			o.opts.Metrics.File(metrics.OutcomeFailed)
			o.log.Error("file review failed", "path", f.Path, "error", err)
		}
	}

	if staged.Len() == 0 {
		o.log.Info("no state changes", "failed", failed)
		return nil
	}
	if o.opts.DryRun {
		o.log.Info("dry run: state not persisted", "updates", staged.Len(), "state", state.Format(staged))
		return nil
	}
	if err := o.store.Persist(ctx, staged); err != nil {
		return fmt.Errorf("persisting state: %w", err)
	}
	o.opts.Metrics.CommentPosted(metrics.KindState)
	o.log.Info("state persisted", "updates", staged.Len(), "failed", failed)
	return nil
}

// processFile handles one changed file and stages its new digest on success.
func (o *Orchestrator) processFile(ctx context.Context, f pr.FileChange, stored, staged *state.DigestMap, shared *prContext) (err error) {
	ctx, span := o.tracer.Start(ctx, "prbot.review_file", trace.WithAttributes(
		attribute.String("file.path", f.Path),
		attribute.String("file.status", string(f.Status)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	outcome := func(name string) {
		span.SetAttributes(attribute.String("file.outcome", name))
		o.opts.Metrics.File(name)
	}

	if f.Status == pr.StatusRemoved {
		if prev, ok := stored.Get(f.Path); ok && prev == digest.Removed {
			outcome(metrics.OutcomeUnchanged)
			return nil
		}
		o.log.Info("file deleted", "path", f.Path)
		if err := o.post(ctx, metrics.KindDeletion, DeletionNotice(f.Path)); err != nil {
			return err
		}
		staged.Set(f.Path, digest.Removed)
		outcome(metrics.OutcomeDeleted)
		return nil
	}

	if o.excluded(f) {
		o.log.Info("skipping excluded file type", "path", f.Path)
		outcome(metrics.OutcomeExcluded)
		return nil
	}

	current, err := digest.Of(f.Patch)
	if err != nil {
		return fmt.Errorf("hashing patch: %w", err)
	}
	if prev, ok := stored.Get(f.Path); ok && prev == current {
		o.log.Debug("file unchanged since last review", "path", f.Path)
		outcome(metrics.OutcomeUnchanged)
		return nil
	}

	o.log.Info("reviewing file", "path", f.Path)
	body, err := o.reviewFile(ctx, f, shared)
	if err != nil {
		return err
	}
	if err := o.post(ctx, metrics.KindReview, body); err != nil {
		return err
	}
	staged.Set(f.Path, current)
	outcome(metrics.OutcomeReviewed)
	return nil
}

func (o *Orchestrator) excluded(f pr.FileChange) bool {
	ext := f.Ext()
	if ext == "" {
		return false
	}
	for _, e := range o.opts.ExcludeExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// reviewFile asks for a review and a merge decision and returns the comment
// body to post.
func (o *Orchestrator) reviewFile(ctx context.Context, f pr.FileChange, shared *prContext) (string, error) {
	comments, err := o.comments(ctx, shared)
	if err != nil {
		return "", err
	}
	turns := conversation.Build(comments, o.opts.BotLogin, fn.Some(f.Path))

	previous := history.Collect(o.commits(ctx, shared), f.Path)
	previous = o.redact(f.Path, previous)
	current := o.redact(f.Path, f.Patch)

	messages := toMessages(turns)
	messages = append(messages, providers.Message{
		Role:    providers.RoleUser,
		Content: BuildReviewPrompt(previous, current),
	})
	review, err := o.generate(ctx, providers.Request{
		System:    ReviewSystemPrompt(o.opts.Language, o.opts.Guidelines),
		Messages:  messages,
		MaxTokens: o.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generating review: %w", err)
	}

	decision, err := o.generate(ctx, providers.Request{
		System:    mergeSystemPrompt,
		Messages:  []providers.Message{{Role: providers.RoleUser, Content: BuildMergePrompt(review)}},
		MaxTokens: o.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generating merge decision: %w", err)
	}

	return conversation.FormatReview(f.Path, review, decision), nil
}

// comments lists PR comments once per event. Comments posted during the
// event are not included.
func (o *Orchestrator) comments(ctx context.Context, shared *prContext) ([]pr.Comment, error) {
	if !shared.commentsSet {
		shared.comments, shared.commentsErr = o.platform.ListComments(ctx)
		shared.commentsSet = true
	}
	if shared.commentsErr != nil {
		return nil, fmt.Errorf("listing comments: %w", shared.commentsErr)
	}
	return shared.comments, nil
}

// commits lists PR commits once per event. A failure is logged and yields
// no history.
func (o *Orchestrator) commits(ctx context.Context, shared *prContext) []pr.Commit {
	if !shared.commitsSet {
		commits, err := o.platform.ListCommits(ctx)
		if err != nil {
			o.log.Warn("fetching commit history failed, reviewing without it", "error", err)
		}
		shared.commits = commits
		shared.commitsSet = true
	}
	return shared.commits
}

func (o *Orchestrator) handleComment(ctx context.Context, id int64) error {
	if id == 0 {
		o.log.Warn("comment event without a comment ID, nothing to do")
		return nil
	}
	comment, err := o.platform.GetComment(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching comment %d: %w", id, err)
	}
	if comment.Author == o.opts.BotLogin {
		o.log.Info("ignoring comment by the bot itself", "comment_id", id)
		return nil
	}

	files, err := o.platform.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	comments, err := o.platform.ListComments(ctx)
	if err != nil {
		return fmt.Errorf("listing comments: %w", err)
	}

	blocks := make([]string, 0, len(files))
	paths := make([]string, 0, len(files))
	for _, f := range files {
		blocks = append(blocks, fmt.Sprintf("File: %s\n%s", f.Path, o.redact(f.Path, f.Patch)))
		paths = append(paths, f.Path)
	}

	messages := toMessages(conversation.Build(comments, o.opts.BotLogin, fn.None[string]()))
	messages = append(messages, providers.Message{
		Role:    providers.RoleUser,
		Content: BuildReplyPrompt(fenceLanguage(paths), strings.Join(blocks, "\n"), comment.Body),
	})

	o.log.Info("answering comment", "comment_id", id, "author", comment.Author)
	kind := metrics.KindReply
	body, err := o.generate(ctx, providers.Request{
		System:    ReplySystemPrompt(o.opts.Language),
		Messages:  messages,
		MaxTokens: o.opts.MaxTokens,
	})
	if err != nil {
		o.log.Error("generating reply failed", "comment_id", id, "error", err)
		kind = metrics.KindApology
		body = Apology(err)
	}
	return o.post(ctx, kind, body)
}

func (o *Orchestrator) generate(ctx context.Context, req providers.Request) (string, error) {
	start := time.Now()
	resp, err := o.gen.Generate(ctx, req)
	o.opts.Metrics.Generation(o.gen.Name(), time.Since(start), err)
	if err != nil {
		var genErr *providers.GenerationError
		if !errors.As(err, &genErr) {
			err = &providers.GenerationError{Provider: o.gen.Name(), Err: err}
		}
		return "", err
	}
	o.log.Debug("generated response", "provider", o.gen.Name(), "tokens", resp.TokensUsed)
	return resp.Content, nil
}

func (o *Orchestrator) post(ctx context.Context, kind, body string) error {
	if o.opts.DryRun {
		o.log.Info("dry run: comment not posted", "kind", kind, "body", body)
		return nil
	}
	if err := o.platform.CreateComment(ctx, body); err != nil {
		return fmt.Errorf("posting %s comment: %w", kind, err)
	}
	o.opts.Metrics.CommentPosted(kind)
	return nil
}

func (o *Orchestrator) redact(path, text string) string {
	out, hits := o.opts.Redactor.Patch(path, text)
	if hits > 0 {
		o.log.Info("redacted secrets before sending to provider", "path", path, "count", hits)
	}
	return out
}

func toMessages(turns []conversation.Turn) []providers.Message {
	msgs := make([]providers.Message, 0, len(turns)+1)
	for _, t := range turns {
		role := providers.RoleUser
		if t.Role == conversation.RoleAssistant {
			role = providers.RoleAssistant
		}
		msgs = append(msgs, providers.Message{Role: role, Content: t.Content})
	}
	return msgs
}
