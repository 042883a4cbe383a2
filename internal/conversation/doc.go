// Package conversation rebuilds the chat history between reviewers and the
// bot from a pull request's flat comment list.
//
// Comments by humans become user turns verbatim. Comments by the bot become
// assistant turns only when they carry a review; the review text is taken
// from between explicit sentinels (see [FormatReview]), or, for comments
// written before the sentinels existed, from the "AI Review for ...:" and
// "Conclusion:" markers. State comments and plain replies by the bot produce
// no turn.
package conversation
