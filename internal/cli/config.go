package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wpscaffold.dev/wpscaffold/internal/runtime"
)

// newConfigCmd creates the config command
func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set persisted settings",
		Long: `Get and set the persisted settings shared by the tools.

Examples:
  generate config get github_organization
  generate config set skip_intros true
  generate config path`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [key]",
			Short: "Print one setting, or all of them",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(_ context.Context, rt *runtime.Context) error {
					out := cmd.OutOrStdout()
					if len(args) == 1 {
						_, err := fmt.Fprintln(out, rt.Config.Get(args[0]))
						return err
					}
					for _, key := range rt.Config.Keys() {
						if _, err := fmt.Fprintf(out, "%s=%v\n", key, rt.Config.Get(key)); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Validate and store a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(_ context.Context, rt *runtime.Context) error {
					if err := rt.Config.Set(args[0], args[1]); err != nil {
						return err
					}
					rt.Splog.Info("Set %s to: %s", args[0], args[1])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the location of the settings file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, func(_ context.Context, rt *runtime.Context) error {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), rt.Config.Path())
					return err
				})
			},
		},
	)
	return cmd
}
