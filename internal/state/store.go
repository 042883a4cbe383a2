package state

import (
	"context"

	"github.com/dshills/prbot/internal/pr"
)

// Store loads and persists the digest map of one pull request.
type Store interface {
	// Load returns the digests recorded by earlier runs.
	Load(ctx context.Context) (*DigestMap, error)
	// Persist records updates on top of what is already stored. An empty map
	// is a no-op.
	Persist(ctx context.Context, updates *DigestMap) error
}

// CommentSource lists and creates pull request comments.
type CommentSource interface {
	ListComments(ctx context.Context) ([]pr.Comment, error)
	CreateComment(ctx context.Context, body string) error
}
