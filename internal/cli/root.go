// Package cli builds the cobra command trees of the generate,
// repo-management and setup-remote-server binaries.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"wpscaffold.dev/wpscaffold/internal/runtime"
)

// Tool names, also used for the keychain service, log file and last-input cache
const (
	ToolGenerate          = "generate"
	ToolRepoManagement    = "repo-management"
	ToolSetupRemoteServer = "setup-remote-server"
)

// ContextFactory creates the runtime context of a command run
type ContextFactory func(opts runtime.Options) (*runtime.Context, error)

// Options configures a command tree
type Options struct {
	Version string
	// NewContext defaults to runtime.NewContext.
	NewContext ContextFactory
}

// app carries the flags shared by every command of one binary
type app struct {
	tool      string
	opts      Options
	debug     bool
	skipIntro bool
}

func newApp(tool string, opts Options) *app {
	if opts.NewContext == nil {
		opts.NewContext = runtime.NewContext
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &app{tool: tool, opts: opts}
}

// root creates the binary's root command with the global flags
func (a *app) root(short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           a.tool,
		Short:         short,
		Version:       a.opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Print debug output")
	return cmd
}

// withSkipIntro adds --skip-intro to a pipeline command
func (a *app) withSkipIntro(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolVar(&a.skipIntro, "skip-intro", false, "Skip the welcome message")
	return cmd
}

// run creates the runtime context and hands it to fn
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime.Context) error) error {
	rt, err := a.opts.NewContext(runtime.Options{
		Tool:      a.tool,
		Debug:     a.debug,
		SkipIntro: a.skipIntro,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Splog.Debug("%s %s run %s", a.tool, a.opts.Version, rt.Splog.RunID())
	return fn(cmd.Context(), rt)
}
