// Package github wraps the GitHub REST API calls used by the scaffolding and
// bulk repository tools.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"wpscaffold.dev/wpscaffold/internal/pipeline"
)

// Repository is the subset of repository data the tools work with
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	Description   string
	SSHURL        string
	CloneURL      string
	HTMLURL       string
	DefaultBranch string
	Private       bool
}

// PullRequestInfo contains information about a pull request.
// This is a simplified struct to avoid coupling callers to go-github.
type PullRequestInfo struct {
	Owner   string
	Repo    string
	Number  int
	Title   string
	HTMLURL string
	State   string
	// Head is the branch the pull request merges from.
	Head string
	// HeadCloneURL is the clone URL of the repository that holds Head.
	HeadCloneURL string
	HeadSSHURL   string
	Base         string
}

// FullName returns "owner/repo"
func (p PullRequestInfo) FullName() string {
	return p.Owner + "/" + p.Repo
}

// TemplateOptions describes a repository created from a template
type TemplateOptions struct {
	TemplateOwner string
	TemplateName  string
	Owner         string
	Name          string
	Description   string
	Private       bool
}

// FileContent is a file read from a repository
type FileContent struct {
	SHA     string
	Content []byte
}

// FileUpdate describes a commit that creates or replaces one file
type FileUpdate struct {
	Path    string
	Branch  string
	Message string
	Content []byte
	// SHA of the file being replaced; empty creates the file.
	SHA string
}

// Client is an interface for GitHub API interactions
type Client interface {
	// GetRepository returns a repository or an error wrapping a 404
	GetRepository(ctx context.Context, owner, name string) (*Repository, error)

	// HasRepository reports whether owner/name exists
	HasRepository(ctx context.Context, owner, name string) (bool, error)

	// CreateFromTemplate generates a new repository from a template repository
	CreateFromTemplate(ctx context.Context, opts TemplateOptions) (*Repository, error)

	// WaitUntilReady blocks until the repository has at least one commit
	WaitUntilReady(ctx context.Context, owner, name string) error

	// ReplaceTopics sets the repository topics
	ReplaceTopics(ctx context.Context, owner, name string, topics []string) error

	// SearchRepositories returns repositories matching a GitHub search query
	SearchRepositories(ctx context.Context, query string) ([]Repository, error)

	// SearchPullRequests returns pull requests matching a GitHub search query
	SearchPullRequests(ctx context.Context, query string) ([]PullRequestInfo, error)

	// GetPullRequest returns a pull request including its head branch
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestInfo, error)

	// MergePullRequest squash-merges a pull request
	MergePullRequest(ctx context.Context, owner, repo string, number int) error

	// ClosePullRequest closes a pull request without merging it
	ClosePullRequest(ctx context.Context, owner, repo string, number int) error

	// DeleteBranch deletes a branch ref
	DeleteBranch(ctx context.Context, owner, repo, branch string) error

	// GetFile returns a file on a branch, or nil when it does not exist
	GetFile(ctx context.Context, owner, repo, path, branch string) (*FileContent, error)

	// PutFile commits a file and returns the commit URL
	PutFile(ctx context.Context, owner, repo string, update FileUpdate) (string, error)

	// DispatchWorkflow triggers a workflow_dispatch event
	DispatchWorkflow(ctx context.Context, owner, repo, workflowFile, ref string) error
}

// APIClient implements Client on top of go-github
type APIClient struct {
	client *github.Client
	poller *pipeline.Poller
}

var _ Client = (*APIClient)(nil)

// NewClient creates a client authenticated with a personal access token
func NewClient(ctx context.Context, token, userAgent string) *APIClient {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	if userAgent != "" {
		client.UserAgent = userAgent
	}
	return NewFromGitHub(client)
}

// NewFromGitHub wraps an already configured go-github client
func NewFromGitHub(client *github.Client) *APIClient {
	return &APIClient{
		client: client,
		poller: pipeline.NewPoller(IsTransient),
	}
}

// WithPoller replaces the readiness poller, mainly so tests can skip sleeping
func (c *APIClient) WithPoller(p *pipeline.Poller) *APIClient {
	c.poller = p
	return c
}

// StatusCode returns the HTTP status of a GitHub API error, or 0
func StatusCode(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a GitHub 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsTransient reports whether err means a fresh repository is not ready yet.
// GitHub answers 404 before the repository is visible and 409 while it is empty.
func IsTransient(err error) bool {
	switch StatusCode(err) {
	case http.StatusNotFound, http.StatusConflict:
		return true
	}
	return false
}

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseRemoteURL parses a git remote URL and extracts hostname, owner, and repo.
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.com/owner/repo.git
func ParseRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	var hostname, path string
	switch {
	case strings.Contains(remoteURL, "://"):
		u, err := url.Parse(remoteURL)
		if err != nil {
			return nil, fmt.Errorf("invalid remote URL %q: %w", remoteURL, err)
		}
		hostname = u.Hostname()
		path = strings.TrimPrefix(u.Path, "/")
	case strings.Contains(remoteURL, "@"):
		// scp-like: git@hostname:owner/repo
		_, rest, _ := strings.Cut(remoteURL, "@")
		var ok bool
		hostname, path, ok = strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("invalid remote URL %q", remoteURL)
		}
	default:
		return nil, fmt.Errorf("invalid remote URL %q", remoteURL)
	}

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("remote URL %q does not name owner/repo", remoteURL)
	}

	return &RepoInfo{Hostname: hostname, Owner: parts[0], Repo: parts[1]}, nil
}

// SplitFullName splits "owner/repo"
func SplitFullName(fullName string) (string, string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("%q is not in owner/repo form", fullName)
	}
	return owner, repo, nil
}

func toRepository(r *github.Repository) Repository {
	return Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		SSHURL:        r.GetSSHURL(),
		CloneURL:      r.GetCloneURL(),
		HTMLURL:       r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
	}
}
