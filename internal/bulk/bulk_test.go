package bulk_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpscaffold.dev/wpscaffold/internal/bulk"
	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/testhelpers"
)

func newScene(t *testing.T, answers ...interface{}) *testhelpers.Scene {
	t.Helper()
	return testhelpers.NewScene(t, testhelpers.SceneOptions{
		Tool:     "repo-management",
		Settings: map[string]string{"github_organization": "acme", "merge_delay": "0s"},
	}, answers...)
}

func files(branch string, content map[string]string) map[string]map[string][]byte {
	out := map[string][]byte{}
	for path, c := range content {
		out[path] = []byte(c)
	}
	return map[string]map[string][]byte{branch: out}
}

func TestUpdateFile(t *testing.T) {
	t.Parallel()

	local := filepath.Join(t.TempDir(), "ci.yml")
	require.NoError(t, os.WriteFile(local, []byte("name: CI\n"), 0600))

	scene := newScene(t,
		"ghp_new",
		".github/workflows/ci.yml",
		"main",
		testhelpers.Default,
		testhelpers.Default,
		local,
		[]string{"changed", "missing", "same"},
		"y",
	)
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "changed", Files: files("main", map[string]string{".github/workflows/ci.yml": "name: Old\n"})})
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "missing"})
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "same", Files: files("main", map[string]string{".github/workflows/ci.yml": "name: CI\n"})})
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "other", Name: "elsewhere"})

	require.NoError(t, bulk.UpdateFile(context.Background(), scene.Context))

	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		assert.ElementsMatch(t, []string{
			"acme/changed:main:.github/workflows/ci.yml",
			"acme/missing:main:.github/workflows/ci.yml",
		}, c.FileWrites)
		assert.Equal(t, "name: CI\n", string(c.Repos["acme/changed"].Files["main"][".github/workflows/ci.yml"]))
	})

	out := scene.Output.String()
	assert.Contains(t, out, "Updating '.github/workflows/ci.yml' for the following 3 repositories:")
	assert.Contains(t, out, "Content is unchanged.")
	assert.Contains(t, out, "File updated. https://github.com/acme/changed/commit/")

	assert.Contains(t, scene.Asker.Defaults, "user:acme")
	assert.Contains(t, scene.Asker.Defaults, "Update .github/workflows/ci.yml.")

	token, err := scene.Credentials.Get()
	require.NoError(t, err)
	assert.Equal(t, "ghp_new", token)

	last := scene.Config.LastInput(bulk.UpdateFileTool)
	assert.Equal(t, ".github/workflows/ci.yml", last[bulk.KeyPath])
	assert.Equal(t, "main", last[bulk.KeyBranch])
	assert.Equal(t, local, last[bulk.KeyFile])
	assert.Equal(t, "user:acme", last[bulk.KeyQuery])
	assert.NotContains(t, last, bulk.KeyToken)
}

func TestUpdateFileDefaultsFromLastInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	local := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(local, []byte("# Readme\n"), 0600))

	scene := newScene(t,
		testhelpers.Default, testhelpers.Default, testhelpers.Default,
		testhelpers.Default, testhelpers.Default, testhelpers.Default,
		[]string{"site"}, "y",
	)
	require.NoError(t, scene.Credentials.Set("ghp_stored"))
	require.NoError(t, scene.Config.SetLastInput(bulk.UpdateFileTool, map[string]interface{}{
		bulk.KeyPath:   "README.md",
		bulk.KeyBranch: "develop",
		bulk.KeyQuery:  "org:acme topic:site",
		bulk.KeyFile:   local,
	}))
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "site"})

	require.NoError(t, bulk.UpdateFile(context.Background(), scene.Context))

	assert.Equal(t, []string{"ghp_stored", "README.md", "develop", "org:acme topic:site", "Update README.md.", local}, scene.Asker.Defaults)
	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		assert.Equal(t, []string{"acme/site:develop:README.md"}, c.FileWrites)
	})
}

func TestUpdateFileNoRepositories(t *testing.T) {
	t.Parallel()

	local := filepath.Join(t.TempDir(), "x")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0600))
	scene := newScene(t, "ghp", "x", "main", testhelpers.Default, testhelpers.Default, local)

	require.NoError(t, bulk.UpdateFile(context.Background(), scene.Context))
	assert.Contains(t, scene.Output.String(), "No repositories found.")
	assert.Zero(t, scene.Asker.Remaining())
}

func TestUpdateFileDeclined(t *testing.T) {
	t.Parallel()

	local := filepath.Join(t.TempDir(), "x")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0600))
	scene := newScene(t, "ghp", "x", "main", testhelpers.Default, testhelpers.Default, local, []string{"site"}, "n")
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "site"})

	err := bulk.UpdateFile(context.Background(), scene.Context)
	assert.True(t, errors.Is(err, scaffolderrors.ErrAborted))
	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		assert.Empty(t, c.FileWrites)
	})
}

func TestUpdateFileEmptySelectionAborts(t *testing.T) {
	t.Parallel()

	local := filepath.Join(t.TempDir(), "x")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0600))
	scene := newScene(t, "ghp", "x", "main", testhelpers.Default, testhelpers.Default, local, []string{})
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "site"})

	err := bulk.UpdateFile(context.Background(), scene.Context)
	assert.ErrorIs(t, err, scaffolderrors.ErrAborted)
}

func TestUpdateFileTargetFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	local := filepath.Join(t.TempDir(), "x")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0600))
	scene := newScene(t, "ghp", "x", "main", testhelpers.Default, testhelpers.Default, local, []string{"broken", "fine"}, "y")
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "broken"})
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "fine"})
	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		c.ErrorResponses["PUT /repos/acme/broken/contents/x"] = 500
	})

	require.NoError(t, bulk.UpdateFile(context.Background(), scene.Context))

	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		assert.Equal(t, []string{"acme/fine:main:x"}, c.FileWrites)
	})
	out := scene.Output.String()
	assert.Contains(t, out, "[broken] file not updated:")
	assert.Contains(t, out, "1 of 2 targets failed.")
}

func TestPushFileSkipsIdenticalContent(t *testing.T) {
	t.Parallel()

	scene := newScene(t)
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "site", Files: files("main", map[string]string{"a.txt": "same"})})
	gh := scene.Context.NewGitHub(context.Background(), "")

	outcome, err := bulk.PushFile(context.Background(), gh, "acme", "site", bulk.FileTarget{
		Path: "a.txt", Branch: "main", Message: "Update a.txt.", Content: []byte("same"),
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Outcome{Skipped: true, Message: "Content is unchanged."}, outcome)

	outcome, err = bulk.PushFile(context.Background(), gh, "acme", "site", bulk.FileTarget{
		Path: "a.txt", Branch: "main", Message: "Update a.txt.", Content: []byte("changed"),
	})
	require.NoError(t, err)
	assert.False(t, outcome.Skipped)
	assert.Contains(t, outcome.Message, "File updated. ")
}

// addPullRequestRepo creates a repository whose branch holds files, with an open pull request from it
func addPullRequestRepo(t *testing.T, scene *testhelpers.Scene, name, branch string, number int, branchFiles map[string]string) *testhelpers.GitRepo {
	t.Helper()

	fixture := testhelpers.NewGitRepo(t, map[string]string{"composer.json": "{}\n"})
	fixture.CreateAndCheckoutBranch(t, branch)
	fixture.CreateChangeAndCommit(t, branchFiles, "Update dependencies")
	fixture.PushBranch(t, branch)

	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: name, CloneURL: fixture.Remote})
	scene.GitHub.AddPullRequest(&testhelpers.MockPullRequest{
		Owner: "acme", Repo: name, Number: number, Title: "Update dependencies", Head: branch,
	})
	return fixture
}

func TestMergePR(t *testing.T) {
	t.Parallel()

	scene := newScene(t,
		"ghp_token",
		testhelpers.Default,
		[]string{"acme/alpha#1 Update dependencies", "acme/beta#2 Update dependencies"},
		"y",
	)
	alpha := addPullRequestRepo(t, scene, "alpha", "deps", 1, map[string]string{"composer.lock": `{"stale":true}` + "\n"})
	beta := addPullRequestRepo(t, scene, "beta", "deps", 2, map[string]string{"composer.lock": `{"packages":[]}` + "\n"})

	// composer rewrites the lock file and installs an untracked vendor dir
	scene.Shell.On("composer install --no-progress --prefer-dist --no-ansi --no-interaction", func(dir string) (string, error) {
		testhelpers.WriteFiles(t, dir, map[string]string{
			"composer.lock":       `{"packages":[]}` + "\n",
			"vendor/autoload.php": "<?php\n",
		})
		return "", nil
	})

	require.NoError(t, bulk.MergePR(context.Background(), scene.Context))

	assert.Equal(t, []string{bulk.ModifiedFilesMessage, "Update dependencies", "Initial commit"}, trimAll(alpha.RemoteCommitMessages(t, "deps")))
	lock, ok := alpha.RemoteFile(t, "deps", "composer.lock")
	require.True(t, ok)
	assert.Equal(t, `{"packages":[]}`+"\n", lock)
	_, ok = alpha.RemoteFile(t, "deps", "vendor/autoload.php")
	assert.False(t, ok, "untracked files are not pushed")
	assert.Equal(t, []string{"Update dependencies", "Initial commit"}, trimAll(beta.RemoteCommitMessages(t, "deps")))

	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		for _, pr := range c.PullRequests {
			assert.True(t, pr.Merged, pr.Repo)
			assert.Equal(t, "squash", pr.MergeMethod)
		}
		assert.ElementsMatch(t, []string{"acme/alpha:heads/deps", "acme/beta:heads/deps"}, c.DeletedRefs)
	})

	assert.Len(t, scene.Shell.Calls(), 2)
	for _, call := range scene.Shell.Calls() {
		_, err := os.Stat(call.Dir)
		assert.True(t, os.IsNotExist(err), "checkout %s should be removed", call.Dir)
	}

	out := scene.Output.String()
	assert.Contains(t, out, "Merging the following 2 pull requests:")
	assert.Contains(t, out, "Pushed modified files and merged.")
	assert.Equal(t, "user:acme", scene.Config.LastInput(bulk.PullRequestTool)[bulk.KeyQuery])
}

func TestMergePRComposerFailureKeepsPullRequestOpen(t *testing.T) {
	t.Parallel()

	scene := newScene(t, "ghp_token", testhelpers.Default, []string{"acme/alpha#1 Update dependencies"}, "y")
	addPullRequestRepo(t, scene, "alpha", "deps", 1, map[string]string{"composer.json": "{}\n{}\n"})
	scene.Shell.On("composer install --no-progress --prefer-dist --no-ansi --no-interaction", func(string) (string, error) {
		return "", errors.New("composer: not found")
	})

	require.NoError(t, bulk.MergePR(context.Background(), scene.Context))

	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		assert.False(t, c.PullRequests[0].Merged)
		assert.Empty(t, c.DeletedRefs)
	})
	assert.Contains(t, scene.Output.String(), "composer: not found")
}

func TestClosePR(t *testing.T) {
	t.Parallel()

	scene := newScene(t, "ghp_token", "org:acme", []string{"acme/site#7 Stale change"}, "y")
	scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "acme", Name: "site"})
	scene.GitHub.AddPullRequest(&testhelpers.MockPullRequest{Owner: "acme", Repo: "site", Number: 7, Title: "Stale change", Head: "stale"})
	scene.GitHub.AddPullRequest(&testhelpers.MockPullRequest{Owner: "acme", Repo: "site", Number: 8, Title: "Keep me", Head: "keep"})

	require.NoError(t, bulk.ClosePR(context.Background(), scene.Context))

	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		assert.Equal(t, "closed", c.PullRequests[0].State)
		assert.False(t, c.PullRequests[0].Merged)
		assert.Equal(t, "open", c.PullRequests[1].State)
		assert.Equal(t, []string{"acme/site:heads/stale"}, c.DeletedRefs)
	})
	assert.Contains(t, scene.Output.String(), "Closing the following 1 pull requests:")
	assert.Empty(t, scene.Shell.Calls())
	assert.Equal(t, "org:acme", scene.Config.LastInput(bulk.PullRequestTool)[bulk.KeyQuery])
}

func TestClosePRNoPullRequests(t *testing.T) {
	t.Parallel()

	scene := newScene(t, "ghp_token", testhelpers.Default)
	require.NoError(t, bulk.ClosePR(context.Background(), scene.Context))
	assert.Contains(t, scene.Output.String(), "No pull requests found.")
}

func TestSearchFailure(t *testing.T) {
	t.Parallel()

	scene := newScene(t, "ghp_token", testhelpers.Default)
	scene.GitHub.Snapshot(func(c *testhelpers.MockGitHubServerConfig) {
		c.ErrorResponses["GET /search/issues"] = 403
	})

	err := bulk.ClosePR(context.Background(), scene.Context)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PR search failed")
}

func TestPullRequestLabel(t *testing.T) {
	t.Parallel()

	label := bulk.PullRequestLabel(github.PullRequestInfo{Owner: "acme", Repo: "site", Number: 12, Title: "Bump"})
	assert.Equal(t, "acme/site#12 Bump", label)
}

func trimAll(messages []string) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = strings.TrimSpace(m)
	}
	return out
}
