// Package cli implements the wfinterop command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	// Dir is the workspace directory (.wfinterop). Found by walking up from
	// the working directory when empty.
	Dir      string
	LogLevel string
}

var validLogLevels = []string{"", "debug", "info", "warn", "warning", "error"}

// NewRootCommand creates the root command for the wfinterop CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wfinterop",
		Short: "Workflow interoperability testbed",
		Long: `Reconcile checker-queue runs across Workflow Execution Service (WES)
backends and report which workflow versions have been verified.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range validLogLevels {
				if opts.LogLevel == l {
					return nil
				}
			}
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid log level %q: must be debug, info, warn or error", opts.LogLevel))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "workspace directory (default: nearest .wfinterop)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error, default from config.yaml)")

	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewQueueCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wfinterop %s\n", Version)
			return err
		},
	}
}
