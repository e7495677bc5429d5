package testhelpers

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testSignature is the identity of every fixture commit
var testSignature = object.Signature{Name: "Test User", Email: "test@example.com"}

// GitRepo is a working repository whose "origin" is a local bare repository.
// Point a mock GitHub repository's CloneURL at Remote to clone it for real.
type GitRepo struct {
	Dir    string
	Remote string
	repo   *git.Repository
}

// NewGitRepo creates a bare remote whose main branch holds files in one commit
func NewGitRepo(t *testing.T, files map[string]string) *GitRepo {
	t.Helper()

	root := t.TempDir()
	remote := filepath.Join(root, "origin.git")
	_, err := git.PlainInitWithOptions(remote, &git.PlainInitOptions{
		Bare:        true,
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err, "failed to init bare remote")

	dir := filepath.Join(root, "work")
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err, "failed to init repo")

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: git.DefaultRemoteName, URLs: []string{remote}})
	require.NoError(t, err, "failed to add remote")

	r := &GitRepo{Dir: dir, Remote: remote, repo: repo}
	r.CreateChangeAndCommit(t, files, "Initial commit")
	r.PushBranch(t, "main")
	return r
}

// CreateChangeAndCommit writes files and commits them
func (r *GitRepo) CreateChangeAndCommit(t *testing.T, files map[string]string, message string) {
	t.Helper()

	WriteFiles(t, r.Dir, files)
	wt, err := r.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))

	sig := testSignature
	sig.When = time.Now()
	_, err = wt.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig, AllowEmptyCommits: true})
	require.NoError(t, err, "failed to commit")
}

// CreateAndCheckoutBranch creates a branch at HEAD and checks it out
func (r *GitRepo) CreateAndCheckoutBranch(t *testing.T, name string) {
	t.Helper()

	wt, err := r.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
}

// PushBranch pushes branch to the bare remote
func (r *GitRepo) PushBranch(t *testing.T, branch string) {
	t.Helper()

	ref := plumbing.NewBranchReferenceName(branch)
	err := r.repo.Push(&git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		require.NoError(t, err, "push failed")
	}
}

// RemoteFile reads path from the tip of branch on the bare remote
func (r *GitRepo) RemoteFile(t *testing.T, branch, path string) (string, bool) {
	t.Helper()

	commit := r.remoteCommit(t, branch)
	file, err := commit.File(path)
	if err == object.ErrFileNotFound {
		return "", false
	}
	require.NoError(t, err)
	content, err := file.Contents()
	require.NoError(t, err)
	return content, true
}

// RemoteCommitMessages lists the commit messages of branch on the remote, newest first
func (r *GitRepo) RemoteCommitMessages(t *testing.T, branch string) []string {
	t.Helper()

	remote, err := git.PlainOpen(r.Remote)
	require.NoError(t, err)
	ref, err := remote.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(t, err, "branch %s not on remote", branch)

	iter, err := remote.Log(&git.LogOptions{From: ref.Hash()})
	require.NoError(t, err)
	var messages []string
	require.NoError(t, iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, c.Message)
		return nil
	}))
	return messages
}

// RemoteBranches lists the branches of the bare remote, sorted
func (r *GitRepo) RemoteBranches(t *testing.T) []string {
	t.Helper()

	remote, err := git.PlainOpen(r.Remote)
	require.NoError(t, err)
	iter, err := remote.Branches()
	require.NoError(t, err)
	var names []string
	require.NoError(t, iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	}))
	sort.Strings(names)
	return names
}

func (r *GitRepo) remoteCommit(t *testing.T, branch string) *object.Commit {
	t.Helper()

	remote, err := git.PlainOpen(r.Remote)
	require.NoError(t, err)
	ref, err := remote.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(t, err, "branch %s not on remote", branch)
	commit, err := remote.CommitObject(ref.Hash())
	require.NoError(t, err)
	return commit
}

// WriteFiles writes files relative to dir, creating parent directories
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
}

// ReadFile reads a file relative to dir
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}
