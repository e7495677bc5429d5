package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/scaffold"
)

// NewGenerateCmd creates the generate command tree
func NewGenerateCmd(opts Options) *cobra.Command {
	a := newApp(ToolGenerate, opts)
	root := a.root("Scaffold WordPress plugins, themes and projects")

	root.AddCommand(
		a.withSkipIntro(&cobra.Command{
			Use:     "wordpress-plugin",
			Aliases: []string{"plugin"},
			Short:   "Create a new WordPress plugin with GitHub repo and local checkout",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, scaffold.Plugin)
			},
		}),
		a.withSkipIntro(&cobra.Command{
			Use:     "wordpress-theme",
			Aliases: []string{"theme"},
			Short:   "Create a new WordPress theme with GitHub repo and local checkout",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, scaffold.Theme)
			},
		}),
		a.withSkipIntro(&cobra.Command{
			Use:     "wordpress-project",
			Aliases: []string{"project"},
			Short:   "Create a new WordPress project with GitHub repo and local checkout",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, scaffold.Project)
			},
		}),
		a.newReplaceCmd(),
		&cobra.Command{
			Use:   "checkout",
			Short: "Clone the plugin boilerplate into a directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, scaffold.Checkout)
			},
		},
		a.newConfigCmd(),
	)
	return root
}

func (a *app) newReplaceCmd() *cobra.Command {
	var (
		kind   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Rename the boilerplate placeholders in the current checkout",
		Long: `Rename the boilerplate placeholders in the current checkout.

Examples:
  generate replace
  generate replace --kind theme --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fn func(ctx context.Context, rt *runtime.Context, dryRun bool) error
			switch kind {
			case "plugin":
				fn = scaffold.ReplacePlugin
			case "theme":
				fn = scaffold.ReplaceTheme
			default:
				return fmt.Errorf("unknown kind %q, expected plugin or theme", kind)
			}
			return a.run(cmd, func(ctx context.Context, rt *runtime.Context) error {
				return fn(ctx, rt, dryRun)
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "plugin", "Boilerplate kind: plugin or theme")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the files that would change without writing them")
	return cmd
}
