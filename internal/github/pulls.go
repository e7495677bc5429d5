package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"
)

// SearchPullRequests runs an issue search restricted to pull requests
func (c *APIClient) SearchPullRequests(ctx context.Context, query string) ([]PullRequestInfo, error) {
	q := strings.TrimSpace(query)
	if !strings.Contains(q, "is:pr") {
		q = "is:pr " + q
	}

	result, _, err := c.client.Search.Issues(ctx, q, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("pull request search failed: %w", err)
	}

	prs := make([]PullRequestInfo, 0, len(result.Issues))
	for _, issue := range result.Issues {
		owner, repo := repoFromAPIURL(issue.GetRepositoryURL())
		prs = append(prs, PullRequestInfo{
			Owner:   owner,
			Repo:    repo,
			Number:  issue.GetNumber(),
			Title:   issue.GetTitle(),
			HTMLURL: issue.GetHTMLURL(),
			State:   issue.GetState(),
		})
	}
	return prs, nil
}

// GetPullRequest returns a pull request with its head and base branches
func (c *APIClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestInfo, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s#%d: %w", owner, repo, number, err)
	}
	return &PullRequestInfo{
		Owner:        owner,
		Repo:         repo,
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		HTMLURL:      pr.GetHTMLURL(),
		State:        pr.GetState(),
		Head:         pr.GetHead().GetRef(),
		HeadCloneURL: pr.GetHead().GetRepo().GetCloneURL(),
		HeadSSHURL:   pr.GetHead().GetRepo().GetSSHURL(),
		Base:         pr.GetBase().GetRef(),
	}, nil
}

// MergePullRequest squash-merges a pull request
func (c *APIClient) MergePullRequest(ctx context.Context, owner, repo string, number int) error {
	result, _, err := c.client.PullRequests.Merge(ctx, owner, repo, number, "", &github.PullRequestOptions{
		MergeMethod: "squash",
	})
	if err != nil {
		return fmt.Errorf("failed to merge %s/%s#%d: %w", owner, repo, number, err)
	}
	if !result.GetMerged() {
		return fmt.Errorf("%s/%s#%d was not merged: %s", owner, repo, number, result.GetMessage())
	}
	return nil
}

// ClosePullRequest closes a pull request without merging it
func (c *APIClient) ClosePullRequest(ctx context.Context, owner, repo string, number int) error {
	_, _, err := c.client.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		State: github.String("closed"),
	})
	if err != nil {
		return fmt.Errorf("failed to close %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

// DeleteBranch deletes refs/heads/branch. A branch that is already gone is not an error.
func (c *APIClient) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	_, err := c.client.Git.DeleteRef(ctx, owner, repo, "heads/"+branch)
	if err != nil && !IsNotFound(err) && StatusCode(err) != 422 {
		return fmt.Errorf("failed to delete branch %s on %s/%s: %w", branch, owner, repo, err)
	}
	return nil
}

// repoFromAPIURL extracts owner and repo from ".../repos/{owner}/{repo}"
func repoFromAPIURL(apiURL string) (string, string) {
	_, rest, ok := strings.Cut(apiURL, "/repos/")
	if !ok {
		return "", ""
	}
	owner, repo, _ := strings.Cut(strings.Trim(rest, "/"), "/")
	return owner, repo
}
