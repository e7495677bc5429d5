package cli

import (
	"context"

	"github.com/spf13/cobra"

	"wpscaffold.dev/wpscaffold/internal/remote"
	"wpscaffold.dev/wpscaffold/internal/runtime"
)

// NewSetupRemoteServerCmd creates the setup-remote-server command tree
func NewSetupRemoteServerCmd(opts Options) *cobra.Command {
	a := newApp(ToolSetupRemoteServer, opts)
	root := a.root("Provision a remote server for a Deployer project")

	var remoteOpts remote.Options
	create := a.withSkipIntro(&cobra.Command{
		Use:   "create",
		Short: "Upload the environment and access files of a stage to its server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, rt *runtime.Context) error {
				return remote.NewProvisioner(rt, remoteOpts).Run(ctx)
			})
		},
	})
	create.Flags().BoolVar(&remoteOpts.TriggerDeploy, "trigger-deploy", false, "Dispatch the deploy workflow when done")
	create.Flags().BoolVar(&remoteOpts.OpenWorkflow, "open", false, "Open the deploy workflow in the browser")

	root.AddCommand(create)
	return root
}
