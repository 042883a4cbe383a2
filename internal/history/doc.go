// Package history assembles the earlier patches of a file across the commits
// of a pull request, so a reviewer can compare the current diff against what
// came before.
package history
