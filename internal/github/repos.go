package github

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/go-github/v62/github"
)

// GetRepository returns owner/name
func (c *APIClient) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	r := toRepository(repo)
	return &r, nil
}

// HasRepository reports whether owner/name exists. Only a 404 means "no";
// every other failure is returned.
func (c *APIClient) HasRepository(ctx context.Context, owner, name string) (bool, error) {
	_, err := c.GetRepository(ctx, owner, name)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// CreateFromTemplate generates a repository from a template. Only the default
// branch of the template is copied.
func (c *APIClient) CreateFromTemplate(ctx context.Context, opts TemplateOptions) (*Repository, error) {
	req := &github.TemplateRepoRequest{
		Name:               github.String(opts.Name),
		Owner:              github.String(opts.Owner),
		Private:            github.Bool(opts.Private),
		IncludeAllBranches: github.Bool(false),
	}
	if opts.Description != "" {
		req.Description = github.String(opts.Description)
	}

	repo, _, err := c.client.Repositories.CreateFromTemplate(ctx, opts.TemplateOwner, opts.TemplateName, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s/%s from %s/%s: %w", opts.Owner, opts.Name, opts.TemplateOwner, opts.TemplateName, err)
	}
	r := toRepository(repo)
	return &r, nil
}

// WaitUntilReady polls the commit list until the template has been applied.
// 404 and 409 answers are retried; any other error is returned at once.
func (c *APIClient) WaitUntilReady(ctx context.Context, owner, name string) error {
	_, err := c.poller.Poll(ctx, func(ctx context.Context) (bool, error) {
		commits, _, err := c.client.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
			ListOptions: github.ListOptions{PerPage: 1},
		})
		if err != nil {
			return false, err
		}
		return len(commits) > 0, nil
	})
	if err != nil {
		return fmt.Errorf("repository %s/%s did not become ready: %w", owner, name, err)
	}
	return nil
}

// ReplaceTopics sets the topics of owner/name
func (c *APIClient) ReplaceTopics(ctx context.Context, owner, name string, topics []string) error {
	if _, _, err := c.client.Repositories.ReplaceAllTopics(ctx, owner, name, topics); err != nil {
		return fmt.Errorf("failed to set topics on %s/%s: %w", owner, name, err)
	}
	return nil
}

// SearchRepositories returns the first page of matches sorted by name
func (c *APIClient) SearchRepositories(ctx context.Context, query string) ([]Repository, error) {
	result, _, err := c.client.Search.Repositories(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("repository search failed: %w", err)
	}

	repos := make([]Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, toRepository(r))
	}
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].Name < repos[j].Name
	})
	return repos, nil
}

// DispatchWorkflow triggers workflowFile on ref
func (c *APIClient) DispatchWorkflow(ctx context.Context, owner, repo, workflowFile, ref string) error {
	_, err := c.client.Actions.CreateWorkflowDispatchEventByFileName(ctx, owner, repo, workflowFile, github.CreateWorkflowDispatchEventRequest{
		Ref: ref,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch %s on %s/%s: %w", workflowFile, owner, repo, err)
	}
	return nil
}
