package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"
)

// GetFile returns path on branch, or nil when the file does not exist
func (c *APIClient) GetFile(ctx context.Context, owner, repo, path, branch string) (*FileContent, error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{
		Ref: branch,
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s from %s/%s: %w", path, owner, repo, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s in %s/%s is a directory", path, owner, repo)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s from %s/%s: %w", path, owner, repo, err)
	}
	return &FileContent{SHA: file.GetSHA(), Content: []byte(content)}, nil
}

// PutFile creates or replaces a file with a single commit
func (c *APIClient) PutFile(ctx context.Context, owner, repo string, update FileUpdate) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(update.Message),
		Content: update.Content,
		Branch:  github.String(update.Branch),
	}

	var (
		resp *github.RepositoryContentResponse
		err  error
	)
	if update.SHA == "" {
		resp, _, err = c.client.Repositories.CreateFile(ctx, owner, repo, update.Path, opts)
	} else {
		opts.SHA = github.String(update.SHA)
		resp, _, err = c.client.Repositories.UpdateFile(ctx, owner, repo, update.Path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s to %s/%s: %w", update.Path, owner, repo, err)
	}
	return resp.Commit.GetHTMLURL(), nil
}
