package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpscaffold.dev/wpscaffold/internal/git"
	"wpscaffold.dev/wpscaffold/testhelpers"
)

func TestCloneCommitPush(t *testing.T) {
	t.Parallel()

	origin := testhelpers.NewGitRepo(t, map[string]string{
		"README.md":  "# Plugin Name\n",
		"plugin.php": "<?php\n",
	})
	dir := filepath.Join(t.TempDir(), "shop")
	ctx := context.Background()

	repo, err := git.Clone(ctx, origin.Remote, dir, git.CloneOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# Plugin Name\n", testhelpers.ReadFile(t, dir, "README.md"))

	branch, err := repo.GetCurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)

	hash, err := repo.CommitAll("Nothing to do")
	require.NoError(t, err)
	assert.Empty(t, hash)

	testhelpers.WriteFiles(t, dir, map[string]string{"README.md": "# Shop\n", "inc/new.php": "<?php\n"})
	require.NoError(t, os.Remove(filepath.Join(dir, "plugin.php")))

	hash, err = repo.CommitAll("Update plugin name")
	require.NoError(t, err)
	assert.Len(t, hash, 40)
	require.NoError(t, repo.Push(ctx))
	require.NoError(t, repo.Push(ctx))

	assert.Equal(t, []string{"Update plugin name", "Initial commit"}, trimAll(origin.RemoteCommitMessages(t, "main")))
	readme, ok := origin.RemoteFile(t, "main", "README.md")
	require.True(t, ok)
	assert.Equal(t, "# Shop\n", readme)
	_, ok = origin.RemoteFile(t, "main", "plugin.php")
	assert.False(t, ok)
	_, ok = origin.RemoteFile(t, "main", "inc/new.php")
	assert.True(t, ok)
}

func TestCloneBranch(t *testing.T) {
	t.Parallel()

	origin := testhelpers.NewGitRepo(t, map[string]string{"composer.lock": "{}\n"})
	origin.CreateAndCheckoutBranch(t, "update-deps")
	origin.CreateChangeAndCommit(t, map[string]string{"composer.json": "{\"require\":{}}\n"}, "Update deps")
	origin.PushBranch(t, "update-deps")

	dir := filepath.Join(t.TempDir(), "checkout")
	ctx := context.Background()
	repo, err := git.Clone(ctx, origin.Remote, dir, git.CloneOptions{Branch: "update-deps"})
	require.NoError(t, err)

	branch, err := repo.GetCurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "update-deps", branch)

	testhelpers.WriteFiles(t, dir, map[string]string{"composer.lock": "{\"packages\":[]}\n"})
	_, err = repo.CommitTracked("Add modified files")
	require.NoError(t, err)
	require.NoError(t, repo.Push(ctx))

	assert.Equal(t, []string{"Add modified files", "Update deps", "Initial commit"}, trimAll(origin.RemoteCommitMessages(t, "update-deps")))
	assert.Equal(t, []string{"Initial commit"}, trimAll(origin.RemoteCommitMessages(t, "main")))
}

func TestCommitTrackedLeavesUntrackedFiles(t *testing.T) {
	t.Parallel()

	origin := testhelpers.NewGitRepo(t, map[string]string{"composer.lock": "{}\n", "composer.json": "{}\n"})
	dir := filepath.Join(t.TempDir(), "checkout")
	ctx := context.Background()
	repo, err := git.Clone(ctx, origin.Remote, dir, git.CloneOptions{})
	require.NoError(t, err)

	testhelpers.WriteFiles(t, dir, map[string]string{"vendor/autoload.php": "<?php\n"})
	hash, err := repo.CommitTracked("Add modified files")
	require.NoError(t, err)
	assert.Empty(t, hash, "untracked files alone are not committed")

	testhelpers.WriteFiles(t, dir, map[string]string{"composer.lock": "{\"packages\":[]}\n"})
	hash, err = repo.CommitTracked("Add modified files")
	require.NoError(t, err)
	assert.Len(t, hash, 40)
	require.NoError(t, repo.Push(ctx))

	lock, ok := origin.RemoteFile(t, "main", "composer.lock")
	require.True(t, ok)
	assert.Equal(t, "{\"packages\":[]}\n", lock)
	_, ok = origin.RemoteFile(t, "main", "vendor/autoload.php")
	assert.False(t, ok)
}

func TestCloneFailure(t *testing.T) {
	t.Parallel()

	_, err := git.Clone(context.Background(), filepath.Join(t.TempDir(), "missing.git"), filepath.Join(t.TempDir(), "dst"), git.CloneOptions{})
	require.Error(t, err)
}

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	origin := testhelpers.NewGitRepo(t, map[string]string{"a.txt": "a\n"})
	repo, err := git.OpenRepository(filepath.Join(origin.Dir), "")
	require.NoError(t, err)
	assert.Equal(t, origin.Dir, repo.Root())

	_, err = git.OpenRepository(t.TempDir(), "")
	require.Error(t, err)
}

func TestAuthFor(t *testing.T) {
	t.Parallel()

	auth, err := git.AuthFor("https://github.com/acme/shop.git", "ghp_token")
	require.NoError(t, err)
	require.NotNil(t, auth)
	assert.Equal(t, "http-basic-auth", auth.Name())

	auth, err = git.AuthFor("https://github.com/acme/shop.git", "")
	require.NoError(t, err)
	assert.Nil(t, auth)

	auth, err = git.AuthFor("/tmp/origin.git", "ghp_token")
	require.NoError(t, err)
	assert.Nil(t, auth)
}

func trimAll(messages []string) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = trimNewline(m)
	}
	return out
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
