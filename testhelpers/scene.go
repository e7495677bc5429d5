package testhelpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wpscaffold.dev/wpscaffold/internal/config"
	"wpscaffold.dev/wpscaffold/internal/credentials"
	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/tui"
)

// Scene is a command run wired to fakes: a mock GitHub API, scripted
// prompts, a recording shell, an in-memory credential store and a config
// file in a temporary directory.
type Scene struct {
	// Dir is the working directory of the run.
	Dir         string
	GitHub      *MockGitHubServerConfig
	Asker       *ScriptedAsker
	Shell       *FakeShell
	Credentials *credentials.Memory
	Config      *config.Store
	Output      *SyncBuffer
	Context     *runtime.Context

	templates map[string]*GitRepo
}

// SceneOptions configures NewScene
type SceneOptions struct {
	Tool        string
	StoredToken string
	// Settings are written to the config file before it is loaded.
	Settings map[string]string
}

// NewScene creates a scene whose prompts are answered from answers, in order
func NewScene(t *testing.T, opts SceneOptions, answers ...interface{}) *Scene {
	t.Helper()

	store, err := config.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	for key, value := range opts.Settings {
		require.NoError(t, store.Set(key, value))
	}

	output := &SyncBuffer{}
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Writer: output, Tool: opts.Tool})
	require.NoError(t, err)

	mock := NewMockGitHubServerConfig()
	poller := pipeline.NewPoller(github.IsTransient)
	poller.Sleep = func(context.Context, time.Duration) error { return nil }
	api := github.NewFromGitHub(NewMockGitHubClient(t, mock)).WithPoller(poller)

	tool := opts.Tool
	if tool == "" {
		tool = "generate"
	}

	s := &Scene{
		Dir:         t.TempDir(),
		GitHub:      mock,
		Asker:       NewScriptedAsker(answers...),
		Shell:       NewFakeShell(),
		Credentials: credentials.NewMemory(opts.StoredToken),
		Config:      store,
		Output:      output,
		templates:   make(map[string]*GitRepo),
	}
	s.Context = &runtime.Context{
		Tool:        tool,
		Splog:       splog,
		Config:      store,
		Credentials: s.Credentials,
		Collector:   prompt.NewCollector(s.Asker, splog),
		Runner:      pipeline.NewRunner(&tui.PlainIndicator{Splog: splog}),
		Shell:       s.Shell,
		NewGitHub: func(context.Context, string) github.Client {
			return api
		},
		WorkDir:   s.Dir,
		SkipIntro: true,
	}

	mock.OnGenerate = func(template, created *MockRepo) {
		if fixture, ok := s.templates[template.FullName()]; ok {
			created.CloneURL = fixture.Remote
		}
	}
	return s
}

// AddTemplate registers a template repository holding files. Repositories
// generated from it clone from and push to the returned fixture's remote.
func (s *Scene) AddTemplate(t *testing.T, fullName string, files map[string]string) *GitRepo {
	t.Helper()

	owner, name, err := github.SplitFullName(fullName)
	require.NoError(t, err)

	fixture := NewGitRepo(t, files)
	s.GitHub.Snapshot(func(*MockGitHubServerConfig) {
		s.templates[fullName] = fixture
	})
	s.GitHub.AddRepo(&MockRepo{Owner: owner, Name: name, CloneURL: fixture.Remote, Commits: 1})
	return fixture
}

// Path joins elem onto the scene directory
func (s *Scene) Path(elem ...string) string {
	return filepath.Join(append([]string{s.Dir}, elem...)...)
}
