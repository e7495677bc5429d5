package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpscaffold.dev/wpscaffold/internal/cli"
	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/tui"
	"wpscaffold.dev/wpscaffold/testhelpers"
)

// sceneFactory hands out the scene's context and records the options it was asked for
func sceneFactory(scene *testhelpers.Scene, got *runtime.Options) cli.ContextFactory {
	return func(opts runtime.Options) (*runtime.Context, error) {
		*got = opts
		return scene.Context, nil
	}
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{})
	var opts runtime.Options
	factory := sceneFactory(scene, &opts)

	run := func(args ...string) (string, error) {
		root := cli.NewGenerateCmd(cli.Options{NewContext: factory})
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		err := root.ExecuteContext(context.Background())
		return out.String(), err
	}

	_, err := run("config", "set", "github_organization", "acme")
	require.NoError(t, err)
	assert.Equal(t, cli.ToolGenerate, opts.Tool)
	assert.Equal(t, "acme", scene.Config.GitHubOrganization())

	out, err := run("config", "get", "github_organization")
	require.NoError(t, err)
	assert.Equal(t, "acme\n", out)

	out, err = run("config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "github_organization=acme\n")
	assert.Contains(t, out, "skip_intros=false\n")

	out, err = run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, scene.Config.Path()+"\n", out)

	_, err = run("config", "set", "github_organization", "not valid!")
	assert.Error(t, err)
	_, err = run("config", "set", "unknown_key", "x")
	assert.ErrorContains(t, err, "unknown setting")
}

func TestReplaceRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{})
	var opts runtime.Options
	root := cli.NewGenerateCmd(cli.Options{NewContext: sceneFactory(scene, &opts)})
	root.SetArgs([]string{"replace", "--kind", "block"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, `unknown kind "block"`)
}

func TestGlobalFlagsReachTheContext(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{Tool: cli.ToolRepoManagement}, "ghp", testhelpers.Default)
	var opts runtime.Options
	root := cli.NewRepoManagementCmd(cli.Options{NewContext: sceneFactory(scene, &opts)})
	root.SetArgs([]string{"close-pr", "--debug"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, runtime.Options{Tool: cli.ToolRepoManagement, Debug: true}, opts)
	assert.Contains(t, scene.Output.String(), "No pull requests found.")
}

func TestSkipIntroFlag(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{Tool: cli.ToolSetupRemoteServer})
	var opts runtime.Options
	root := cli.NewSetupRemoteServerCmd(cli.Options{NewContext: sceneFactory(scene, &opts)})
	root.SetArgs([]string{"create", "--skip-intro", "--trigger-deploy"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, scaffolderrors.ErrNotAProject)
	assert.True(t, opts.SkipIntro)
	assert.Equal(t, cli.ToolSetupRemoteServer, opts.Tool)
}

func TestContextFactoryFailure(t *testing.T) {
	t.Parallel()

	root := cli.NewGenerateCmd(cli.Options{NewContext: func(runtime.Options) (*runtime.Context, error) {
		return nil, errors.New("keychain locked")
	}})
	root.SetArgs([]string{"checkout"})
	assert.ErrorContains(t, root.ExecuteContext(context.Background()), "keychain locked")
}

func TestReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  []string
	}{
		{name: "success", err: nil, wantCode: 0},
		{name: "abort", err: fmt.Errorf("interrupted: %w", scaffolderrors.ErrAborted), wantCode: 0, wantOut: []string{"Aborted."}},
		{name: "canceled", err: context.Canceled, wantCode: 0, wantOut: []string{"Aborted."}},
		{
			name:     "step failure",
			err:      scaffolderrors.NewStepError("Installing dependencies", "Could not install dependencies.", errors.New("npm: not found")),
			wantCode: 1,
			wantOut:  []string{"npm: not found", "Could not install dependencies."},
		},
		{name: "preflight failure", err: scaffolderrors.ErrRepositoryExists, wantCode: 1, wantOut: []string{"repository already exists"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out testhelpers.SyncBuffer
			splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Writer: &out})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, cli.Report(tt.err, splog))
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	root := cli.NewSetupRemoteServerCmd(cli.Options{Version: "1.2.3"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1.2.3")
}
