package runtime

import (
	"context"
	"fmt"
	"os"

	"wpscaffold.dev/wpscaffold/internal/config"
	"wpscaffold.dev/wpscaffold/internal/credentials"
	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/shell"
	"wpscaffold.dev/wpscaffold/internal/tui"
	"wpscaffold.dev/wpscaffold/internal/utils"
)

// GitHubFactory creates an API client for a token
type GitHubFactory func(ctx context.Context, token string) github.Client

// Context provides access to shared dependencies for commands
type Context struct {
	// Tool names the binary, used for the keychain service and log file.
	Tool        string
	Splog       *tui.Splog
	Config      *config.Store
	Credentials credentials.Store
	Collector   *prompt.Collector
	Runner      *pipeline.Runner
	Shell       shell.Runner
	NewGitHub   GitHubFactory
	// WorkDir is where new checkouts are created.
	WorkDir string
	// SkipIntro hides the welcome banner for this run.
	SkipIntro bool
}

// Options configures NewContext
type Options struct {
	Tool      string
	Debug     bool
	SkipIntro bool
}

// NewContext wires the production dependencies: the keychain, the survey
// prompts, the spinner indicator and the go-github client.
func NewContext(opts Options) (*Context, error) {
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{
		LogFile: tui.GetLogFilePath(opts.Tool),
		Debug:   opts.Debug || os.Getenv("DEBUG") != "",
		Tool:    opts.Tool,
	})
	if err != nil {
		return nil, err
	}

	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	store, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var asker prompt.Asker = prompt.NewSurveyAsker()
	if !utils.IsInteractive() {
		asker = prompt.NonInteractiveAsker{}
	}

	userAgent := opts.Tool + "/" + config.CurrentVersion
	return &Context{
		Tool:        opts.Tool,
		Splog:       splog,
		Config:      store,
		Credentials: credentials.NewKeychain(KeychainService(opts.Tool)),
		Collector:   prompt.NewCollector(asker, splog),
		Runner:      pipeline.NewRunner(tui.NewIndicator(splog)),
		Shell:       shell.NewExecRunner(),
		NewGitHub: func(ctx context.Context, token string) github.Client {
			return github.NewClient(ctx, token, userAgent)
		},
		WorkDir:   workDir,
		SkipIntro: opts.SkipIntro,
	}, nil
}

// KeychainService is the keychain service a tool stores its token under
func KeychainService(tool string) string {
	switch tool {
	case "repo-management":
		return "repo-management"
	default:
		return "required-generate"
	}
}

// ShowIntro reports whether the welcome banner should be printed
func (c *Context) ShowIntro() bool {
	return !c.SkipIntro && (c.Config == nil || !c.Config.SkipIntros())
}

// Close releases the log file
func (c *Context) Close() error {
	if c.Splog != nil {
		return c.Splog.Close()
	}
	return nil
}
