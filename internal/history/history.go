package history

import (
	"fmt"
	"strings"

	"github.com/dshills/prbot/internal/pr"
)

// Collect returns the patches of path in every commit but the newest, oldest
// first, each block headed by the short commit hash. Commits that did not
// touch path contribute nothing. The result is empty when there is no prior
// history.
func Collect(commits []pr.Commit, path string) string {
	if len(commits) < 2 {
		return ""
	}
	var blocks []string
	for _, c := range commits[:len(commits)-1] {
		patch, ok := c.Patches[path]
		if !ok {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Commit %s:\n%s", c.ShortSHA(), patch))
	}
	return strings.Join(blocks, "\n\n")
}
