package pr

import (
	"path"
	"strings"
	"time"
)

// Status describes how a file changed in a pull request.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusRemoved  Status = "removed"
)

// NormalizeStatus maps a platform file status onto the three states the bot
// distinguishes. Renames, copies and other edits count as modifications.
func NormalizeStatus(s string) Status {
	switch Status(strings.ToLower(s)) {
	case StatusAdded:
		return StatusAdded
	case StatusRemoved:
		return StatusRemoved
	default:
		return StatusModified
	}
}

// FileChange is one changed file of a pull request.
type FileChange struct {
	Path   string
	Status Status
	Patch  string
}

// Ext returns the lowercased extension of the file, including the dot.
func (f FileChange) Ext() string {
	return strings.ToLower(path.Ext(f.Path))
}

// Comment is an issue-level comment on a pull request.
type Comment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
}

// Commit is one commit of a pull request with the patch of every file it
// touched, keyed by path.
type Commit struct {
	SHA     string
	Patches map[string]string
}

// ShortSHA returns the abbreviated commit hash.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}
