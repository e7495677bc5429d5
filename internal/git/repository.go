package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Repository wraps a go-git repository checked out on disk
type Repository struct {
	*git.Repository
	path string
	auth transport.AuthMethod
}

// CloneOptions controls Clone
type CloneOptions struct {
	// Branch checks out a single branch instead of the remote HEAD.
	Branch string
	// Token authenticates HTTPS remotes.
	Token    string
	Progress io.Writer
}

// Clone clones url into dir and returns the opened repository
func Clone(ctx context.Context, url, dir string, opts CloneOptions) (*Repository, error) {
	auth, err := AuthFor(url, opts.Token)
	if err != nil {
		return nil, err
	}

	cloneOpts := &git.CloneOptions{
		URL:      url,
		Auth:     auth,
		Progress: opts.Progress,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	return &Repository{Repository: repo, path: absPath, auth: auth}, nil
}

// OpenRepository opens the git repository at path. token is used for pushes
// to HTTPS remotes.
func OpenRepository(path, token string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	r := &Repository{Repository: repo, path: absPath}
	if remote, err := repo.Remote(git.DefaultRemoteName); err == nil && len(remote.Config().URLs) > 0 {
		if r.auth, err = AuthFor(remote.Config().URLs[0], token); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Root returns the worktree directory
func (r *Repository) Root() string {
	return r.path
}

// GetCurrentBranch returns the current branch name
func (r *Repository) GetCurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// AddAll stages every change in the worktree, including deletions
func (r *Repository) AddAll() error {
	wt, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// IsClean reports whether the worktree has no changes, staged or not
func (r *Repository) IsClean() (bool, error) {
	wt, err := r.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// Push pushes the current branch to origin. Nothing to push is not an error.
func (r *Repository) Push(ctx context.Context) error {
	branch, err := r.GetCurrentBranch()
	if err != nil {
		return err
	}
	ref := plumbing.NewBranchReferenceName(branch)

	err = r.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       r.auth,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	return nil
}
