// Package review drives one pull-request event from start to finish.
//
// On pull_request and pull_request_target events the [Orchestrator] walks the
// changed files, compares each patch digest with the digests stored by
// earlier runs, and asks the configured provider to review only files whose
// patch changed. Each review is posted as one comment; all new digests are
// persisted together at the end of the event. Deleted files get a one-time
// notice and binary artifacts are skipped.
//
// On issue_comment events it answers the triggering comment using every
// changed file as context and the reconstructed conversation as history.
// Generation failures there become an apology comment instead of an error.
package review
