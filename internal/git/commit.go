package git

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultAuthor is used when no identity is configured
var DefaultAuthor = object.Signature{Name: "wp-scaffold", Email: "wp-scaffold@localhost"}

// Author returns the identity from the repository, global and system git
// config, in that order of precedence.
func (r *Repository) Author() object.Signature {
	sig := DefaultAuthor
	for _, scope := range []config.Scope{config.SystemScope, config.GlobalScope} {
		if cfg, err := config.LoadConfig(scope); err == nil {
			applyUser(&sig, cfg)
		}
	}
	if cfg, err := r.Config(); err == nil {
		applyUser(&sig, cfg)
	}
	sig.When = time.Now()
	return sig
}

func applyUser(sig *object.Signature, cfg *config.Config) {
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
}

// Commit records the staged changes and returns the new commit hash
func (r *Repository) Commit(message string) (string, error) {
	wt, err := r.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	author := r.Author()
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:    &author,
		Committer: &author,
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

// CommitAll stages every change and commits it. A clean worktree yields no
// commit and an empty hash.
func (r *Repository) CommitAll(message string) (string, error) {
	if err := r.AddAll(); err != nil {
		return "", err
	}
	clean, err := r.IsClean()
	if err != nil {
		return "", err
	}
	if clean {
		return "", nil
	}
	return r.Commit(message)
}

// CommitTracked commits changes to files git already tracks, like
// "git commit -a". Untracked files stay out of the commit. No tracked
// change yields no commit and an empty hash.
func (r *Repository) CommitTracked(message string) (string, error) {
	wt, err := r.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}

	changed := false
	for _, s := range status {
		if s.Worktree == git.Untracked {
			continue
		}
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			changed = true
			break
		}
	}
	if !changed {
		return "", nil
	}

	author := r.Author()
	hash, err := wt.Commit(message, &git.CommitOptions{
		All:       true,
		Author:    &author,
		Committer: &author,
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}
