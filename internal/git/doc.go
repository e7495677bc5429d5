// Package git provides the Git operations the tools need, on top of go-git.
//
// It covers:
//   - Cloning a repository, optionally at a single branch
//   - Staging every change and checking whether the worktree is clean
//   - Committing with the operator's configured identity
//   - Pushing the current branch
//
// No git binary is required.
package git
