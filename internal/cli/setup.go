package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msageha/wfinterop/internal/setup"
)

func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup [project-dir]",
		Short: "Create a .wfinterop workspace",
		Long: `Create a .wfinterop workspace in project-dir (default: the current
directory) with the default config, example queues and empty snapshots.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			base, err := setup.Run(dir)
			if err != nil {
				return WrapExitError(ExitCommandError, "setup", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized testbed workspace in %s\n", base)
			return nil
		},
	}
}
