package review

import (
	"fmt"
	"path"
	"strings"
)

const (
	safeToMerge    = "It seems safe to merge 💯👍"
	notSafeToMerge = "It seems not safe to merge 🙈🌧️"
)

const reviewSystemPromptText = `You are a helpful and informative code reviewer. Consider the previous conversation history and review the current code changes. First find something to praise, then focus on these three main aspects: **1. Verify changes and functionality ✅** **2. Code quality (bugs, readability, maintainability) 🧐** **3. Performance and optimization 🚀**. For code quality/readability, only suggest method documentation comments for complex methods. If there are areas for improvement, create a '**🎯 Suggestions for Improvement**' section with specific code examples. End the review with praise, and if changes are needed before merging, clearly indicate the file locations that need modification and request additional commits for review. If suggestions for improvement are present but deemed non-essential, it's okay to merge without additional commits. Offer to answer any questions through comments. Use many emojis and respond in %s with a casual, friendly tone.`

const replySystemPromptText = `You are a helpful and informative AI assistant. Use many emojis and respond in %s with a casual, friendly tone. Express gratitude and appreciation for questions, actively respond to user comments, and offer to review any additional questions through comments before ending the conversation.`

var mergeSystemPrompt = fmt.Sprintf(
	"Based on the review content, make a merge decision. Respond only with either '%s' or '%s'.",
	safeToMerge, notSafeToMerge,
)

// ReviewSystemPrompt returns the system prompt for file reviews. Non-empty
// guidelines are appended as repository-specific instructions.
func ReviewSystemPrompt(language, guidelines string) string {
	prompt := fmt.Sprintf(reviewSystemPromptText, languageOrDefault(language))
	if g := strings.TrimSpace(guidelines); g != "" {
		prompt += "\n\nAdditional review guidelines for this repository:\n" + g
	}
	return prompt
}

// ReplySystemPrompt returns the system prompt for answering comments.
func ReplySystemPrompt(language string) string {
	return fmt.Sprintf(replySystemPromptText, languageOrDefault(language))
}

func languageOrDefault(language string) string {
	if strings.TrimSpace(language) == "" {
		return "English"
	}
	return language
}

// BuildReviewPrompt asks for a review of the current patch against the
// file's earlier patches.
func BuildReviewPrompt(previous, current string) string {
	return fmt.Sprintf("Previous diff:\n%s\n\nCurrent diff:\n%s\n\n"+
		"Compare these two diffs, focusing on the most recent (top) item from the previous diff "+
		"and thoroughly review all changes in the current diff!", previous, current)
}

// BuildMergePrompt asks for a merge decision on a finished review.
func BuildMergePrompt(review string) string {
	return "Make a merge decision based on this review:\n\n" + review
}

// BuildReplyPrompt wraps a reviewer's question with the pull request's code.
func BuildReplyPrompt(fence, code, question string) string {
	return fmt.Sprintf("I have a question about this code:\n\n```%s\n%s\n```\n\n%s", fence, code, question)
}

// DeletionNotice is posted once when a file is removed.
func DeletionNotice(path string) string {
	return fmt.Sprintf("**🚨️ The file '%s' was deleted!** 🚨️\nPlease check if this change affects other parts!", path)
}

// Apology is posted when a reply could not be generated.
func Apology(err error) string {
	return fmt.Sprintf("Oops, an error occurred while generating the response 😅: %v", err)
}

var fenceLanguages = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".cpp":   "cpp",
	".cc":    "cpp",
	".c":     "c",
	".h":     "c",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".sql":   "sql",
	".sh":    "sh",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".tf":    "hcl",
}

// fenceLanguage picks the code fence tag for a set of files: the language
// with the most files, earliest first on ties. Unknown extensions yield "".
func fenceLanguage(paths []string) string {
	counts := make(map[string]int)
	var order []string
	for _, p := range paths {
		lang, ok := fenceLanguages[strings.ToLower(path.Ext(p))]
		if !ok {
			continue
		}
		if counts[lang] == 0 {
			order = append(order, lang)
		}
		counts[lang]++
	}
	best := ""
	for _, lang := range order {
		if counts[lang] > counts[best] {
			best = lang
		}
	}
	return best
}
