// Package state remembers which version of each file the bot last reviewed.
//
// The record is a [DigestMap] from file path to patch digest. The default
// [CommentStore] keeps it in the pull request itself: every run that reviews
// something appends one "File Hashes:" comment, and loading replays all such
// comments in order so later entries win. Nothing is ever edited in place.
// [SQLiteStore] keeps the same append-only log in a local database for runners
// with a persistent workspace.
package state
