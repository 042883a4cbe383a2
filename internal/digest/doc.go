// Package digest fingerprints file patches so the bot can tell whether a file
// changed since it was last reviewed.
//
// Digests are lowercase hex SHA-256 sums of the patch text. The value
// [Removed] is reserved for files that were deleted from the pull request and
// never collides with a real digest.
package digest
