package cli

import (
	"github.com/spf13/cobra"

	"github.com/msageha/wfinterop/internal/snapshot"
	"github.com/msageha/wfinterop/internal/status"
)

type StatusOptions struct {
	*RootOptions
	JSON bool
}

func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show submission counts and runs from the testbed log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			testbedLog, _ := ws.snapshotPaths()
			if err := status.Run(cmd.OutOrStdout(), snapshot.NewFileLoader(), testbedLog, opts.JSON); err != nil {
				return WrapExitError(ExitCommandError, "status", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output as JSON")
	return cmd
}
