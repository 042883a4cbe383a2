package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/go-github/v72/github"

	"github.com/dshills/prbot/internal/pr"
)

const (
	defaultAPIURL = "https://api.github.com"
	perPage       = 100
)

// FetchError reports a failed call to the GitHub API.
type FetchError struct {
	Op string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("github %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsAuthError checks if an error is a GitHub authentication failure.
func IsAuthError(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.StatusCode == http.StatusUnauthorized || fe.StatusCode == http.StatusForbidden
}

func fetchErr(op string, resp *github.Response, err error) error {
	fe := &FetchError{Op: op, Err: err}
	if resp != nil && resp.Response != nil {
		fe.StatusCode = resp.StatusCode
	}
	return fe
}

// Client provides access to the GitHub REST API.
type Client struct {
	gh *github.Client
}

// NewClient creates a GitHub client authenticated with token. A non-empty
// apiURL other than the public API selects a GitHub Enterprise server.
func NewClient(token, apiURL string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	gh := github.NewClient(nil).WithAuthToken(token)

	apiURL = strings.TrimRight(apiURL, "/")
	if apiURL != "" && apiURL != defaultAPIURL {
		var err error
		gh, err = gh.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub API URL %q: %w", apiURL, err)
		}
	}
	return &Client{gh: gh}, nil
}

// PullRequest returns a handle on one pull request of owner/repo.
func (c *Client) PullRequest(owner, repo string, number int) *PullRequest {
	return &PullRequest{gh: c.gh, owner: owner, repo: repo, number: number}
}

// PullRequest performs API calls scoped to a single pull request.
type PullRequest struct {
	gh     *github.Client
	owner  string
	repo   string
	number int
}

// ListFiles returns the files changed by the pull request.
func (p *PullRequest) ListFiles(ctx context.Context) ([]pr.FileChange, error) {
	var files []pr.FileChange
	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := p.gh.PullRequests.ListFiles(ctx, p.owner, p.repo, p.number, opts)
		if err != nil {
			return nil, fetchErr("list files", resp, err)
		}
		for _, f := range page {
			files = append(files, pr.FileChange{
				Path:   f.GetFilename(),
				Status: pr.NormalizeStatus(f.GetStatus()),
				Patch:  f.GetPatch(),
			})
		}
		if resp.NextPage == 0 {
			return files, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListCommits returns the commits of the pull request, oldest first, each
// with the patches of the files it touched. The newest commit is the current
// head and is never part of the prior history, so its patches are not
// fetched and its Patches map is nil.
func (p *PullRequest) ListCommits(ctx context.Context) ([]pr.Commit, error) {
	var shas []string
	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := p.gh.PullRequests.ListCommits(ctx, p.owner, p.repo, p.number, opts)
		if err != nil {
			return nil, fetchErr("list commits", resp, err)
		}
		for _, c := range page {
			shas = append(shas, c.GetSHA())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	commits := make([]pr.Commit, 0, len(shas))
	for i, sha := range shas {
		if i == len(shas)-1 {
			commits = append(commits, pr.Commit{SHA: sha})
			break
		}
		rc, resp, err := p.gh.Repositories.GetCommit(ctx, p.owner, p.repo, sha, nil)
		if err != nil {
			return nil, fetchErr("get commit "+sha, resp, err)
		}
		patches := make(map[string]string, len(rc.Files))
		for _, f := range rc.Files {
			patches[f.GetFilename()] = f.GetPatch()
		}
		commits = append(commits, pr.Commit{SHA: sha, Patches: patches})
	}
	return commits, nil
}

// ListComments returns every issue comment on the pull request in ascending
// creation order.
func (p *PullRequest) ListComments(ctx context.Context) ([]pr.Comment, error) {
	var comments []pr.Comment
	opts := &github.IssueListCommentsOptions{
		Sort:        github.Ptr("created"),
		Direction:   github.Ptr("asc"),
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for {
		page, resp, err := p.gh.Issues.ListComments(ctx, p.owner, p.repo, p.number, opts)
		if err != nil {
			return nil, fetchErr("list comments", resp, err)
		}
		for _, c := range page {
			comments = append(comments, toComment(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// GetComment returns a single issue comment by ID.
func (p *PullRequest) GetComment(ctx context.Context, id int64) (pr.Comment, error) {
	c, resp, err := p.gh.Issues.GetComment(ctx, p.owner, p.repo, id)
	if err != nil {
		return pr.Comment{}, fetchErr(fmt.Sprintf("get comment %d", id), resp, err)
	}
	return toComment(c), nil
}

// CreateComment posts a new issue comment on the pull request.
func (p *PullRequest) CreateComment(ctx context.Context, body string) error {
	_, resp, err := p.gh.Issues.CreateComment(ctx, p.owner, p.repo, p.number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fetchErr("create comment", resp, err)
	}
	return nil
}

func toComment(c *github.IssueComment) pr.Comment {
	return pr.Comment{
		ID:        c.GetID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
	}
}
