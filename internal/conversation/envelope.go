package conversation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	reviewBegin = "<!-- prbot:review:begin -->"
	reviewEnd   = "<!-- prbot:review:end -->"
)

// legacyReviewRe matches review comments written without sentinels.
var legacyReviewRe = regexp.MustCompile(`(?s)AI Review for.*?:\n\n(.*?)\n\n(?:\*\*)?Conclusion\s*:`)

// FormatReview renders the comment body the bot posts for a file review.
func FormatReview(path, review, conclusion string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "AI Review for %s:\n\n", path)
	b.WriteString(reviewBegin)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(review))
	b.WriteString("\n")
	b.WriteString(reviewEnd)
	fmt.Fprintf(&b, "\n\n**Conclusion : %s**", strings.TrimSpace(conclusion))
	return b.String()
}

// ExtractReview returns the review text of a bot review comment.
func ExtractReview(body string) (string, bool) {
	if start := strings.Index(body, reviewBegin); start >= 0 {
		rest := body[start+len(reviewBegin):]
		if end := strings.Index(rest, reviewEnd); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}
	m := legacyReviewRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
