package state

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/prbot/internal/pr"
)

// Header is the first line of every state comment.
const Header = "File Hashes:"

const separator = ": "

// ParseError reports a malformed line in a state comment.
type ParseError struct {
	CommentID int64
	Line      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("state comment %d: malformed line %q (want \"path: digest\")", e.CommentID, e.Line)
}

// IsStateComment reports whether body is a state comment.
func IsStateComment(body string) bool {
	return strings.HasPrefix(body, Header)
}

// Load replays the state comments among comments in order and returns the
// resulting map. A comment containing a malformed line is skipped as a whole;
// one *ParseError is returned per skipped comment.
func Load(comments []pr.Comment) (*DigestMap, []error) {
	m := NewDigestMap()
	var errs []error
	for _, c := range comments {
		if !IsStateComment(c.Body) {
			continue
		}
		parsed, err := parseComment(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.Merge(parsed)
	}
	return m, errs
}

func parseComment(c pr.Comment) (*DigestMap, error) {
	m := NewDigestMap()
	lines := strings.Split(c.Body, "\n")
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		path, digest, ok := strings.Cut(line, separator)
		if !ok || path == "" {
			return nil, &ParseError{CommentID: c.ID, Line: line}
		}
		m.Set(path, digest)
	}
	return m, nil
}

// Format renders updates as a state comment body.
func Format(updates *DigestMap) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, e := range updates.Entries() {
		b.WriteString("\n")
		b.WriteString(e.Path)
		b.WriteString(separator)
		b.WriteString(e.Digest)
	}
	return b.String()
}

// CommentStore keeps the digest map in the pull request's comment stream.
type CommentStore struct {
	source CommentSource
	log    *slog.Logger
}

// NewCommentStore returns a store backed by source.
func NewCommentStore(source CommentSource, log *slog.Logger) *CommentStore {
	if log == nil {
		log = slog.Default()
	}
	return &CommentStore{source: source, log: log}
}

// Load implements Store.
func (s *CommentStore) Load(ctx context.Context) (*DigestMap, error) {
	comments, err := s.source.ListComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	m, errs := Load(comments)
	for _, err := range errs {
		s.log.WarnContext(ctx, "Skipping unreadable state comment", "error", err)
	}
	return m, nil
}

// Persist implements Store by appending one state comment.
func (s *CommentStore) Persist(ctx context.Context, updates *DigestMap) error {
	if updates.Len() == 0 {
		return nil
	}
	if err := s.source.CreateComment(ctx, Format(updates)); err != nil {
		return fmt.Errorf("posting state comment: %w", err)
	}
	return nil
}
