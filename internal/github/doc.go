// Package github wraps google/go-github for the handful of pull-request
// operations the bot needs: listing changed files, commits and issue
// comments, reading a single comment and posting a new one.
//
// Results are converted to the platform-neutral types of package pr. Every
// failed API call is returned as a [*FetchError] naming the operation.
// GITHUB_API_URL switches the client to a GitHub Enterprise instance.
package github
