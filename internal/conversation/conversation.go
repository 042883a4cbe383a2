package conversation

import (
	"strings"

	"github.com/dshills/prbot/internal/pr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Role identifies who spoke a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the reconstructed conversation.
type Turn struct {
	Role    Role
	Content string
}

// Build turns comments into conversation turns, preserving their order.
// When scope holds a file path, only comments whose body mentions that path
// are considered.
//
// Scoping is a plain substring test, so a comment about "lib/a.py.bak" also
// matches scope "a.py".
func Build(comments []pr.Comment, botLogin string, scope fn.Option[string]) []Turn {
	var turns []Turn
	for _, c := range comments {
		if !mentions(c.Body, scope) {
			continue
		}
		if c.Author == botLogin {
			if review, ok := ExtractReview(c.Body); ok {
				turns = append(turns, Turn{Role: RoleAssistant, Content: review})
			}
			continue
		}
		turns = append(turns, Turn{Role: RoleUser, Content: c.Body})
	}
	return turns
}

func mentions(body string, scope fn.Option[string]) bool {
	if scope.IsNone() {
		return true
	}
	return strings.Contains(body, scope.UnwrapOr(""))
}
