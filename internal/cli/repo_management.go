package cli

import (
	"github.com/spf13/cobra"

	"wpscaffold.dev/wpscaffold/internal/bulk"
)

// NewRepoManagementCmd creates the repo-management command tree
func NewRepoManagementCmd(opts Options) *cobra.Command {
	a := newApp(ToolRepoManagement, opts)
	root := a.root("Bulk operations on GitHub repositories and pull requests")

	root.AddCommand(
		&cobra.Command{
			Use:   "update-file",
			Short: "Update and commit a file in many repositories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, bulk.UpdateFile)
			},
		},
		&cobra.Command{
			Use:   "merge-pr",
			Short: "Refresh composer dependencies and merge pull requests",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, bulk.MergePR)
			},
		},
		&cobra.Command{
			Use:   "close-pr",
			Short: "Close pull requests and delete their branches",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, bulk.ClosePR)
			},
		},
	)
	return root
}
