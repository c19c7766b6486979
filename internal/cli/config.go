package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msageha/wfinterop/internal/config"
	"github.com/msageha/wfinterop/internal/report"
)

func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage testbed configuration",
	}

	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigAddQueueCommand(rootOpts))
	cmd.AddCommand(newConfigAddServiceCommand(rootOpts, "add-workflowservice", "Register a Workflow Execution Service endpoint",
		(*config.Store).AddWorkflowService))
	cmd.AddCommand(newConfigAddServiceCommand(rootOpts, "add-toolregistry", "Register a Tool Registry Service endpoint",
		(*config.Store).AddToolRegistry))
	cmd.AddCommand(newConfigAddWESOptCommand(rootOpts))
	cmd.AddCommand(newConfigRecoverCommand(rootOpts))

	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show queues, tool registries and workflow services",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := ws.store.Show(cmd.OutOrStdout()); err != nil {
				return WrapExitError(ExitCommandError, "show config", err)
			}
			return nil
		},
	}
}

func newConfigAddQueueCommand(rootOpts *RootOptions) *cobra.Command {
	var spec config.QueueSpec

	cmd := &cobra.Command{
		Use:   "add-queue <queue-id>",
		Short: "Register a workflow evaluation queue",
		Long: `Register (or replace) a workflow evaluation queue. One of --workflow-id or
--workflow-url is required. A queue with --target-queue is a checker for
that queue and appears in the verification report.

Examples:
  wfinterop config add-queue test_cwl_queue --type CWL --workflow-url file://md5sum.cwl
  wfinterop config add-queue md5sum_checker --type CWL --workflow-id '#workflow/md5sum/_cwl_checker' \
      --version-id master --target-queue test_cwl_queue --wes-opt local --wes-opt toil`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := ws.store.AddQueue(args[0], spec); err != nil {
				return WrapExitError(ExitCommandError, "add queue", err)
			}
			ws.log(report.LogLevelInfo, "queue_added id=%s checker=%t", args[0], spec.TargetQueue != "")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&spec.WorkflowType, "type", "", "workflow type (CWL|WDL)")
	f.StringVar(&spec.TRSID, "trs-id", "", "tool registry id (default dockstore)")
	f.StringVar(&spec.WorkflowID, "workflow-id", "", "workflow id in the tool registry")
	f.StringVar(&spec.VersionID, "version-id", "", "workflow version (default local)")
	f.StringVar(&spec.WorkflowURL, "workflow-url", "", "URL of the main workflow descriptor")
	f.StringSliceVar(&spec.WorkflowAttachments, "attachment", nil, "additional workflow file (repeatable)")
	f.StringVar(&spec.WESDefault, "wes-default", "", "default WES endpoint (default local)")
	f.StringSliceVar(&spec.WESOpts, "wes-opt", nil, "compatible WES endpoint (repeatable, default: --wes-default)")
	f.StringVar(&spec.TargetQueue, "target-queue", "", "queue this queue checks")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

type addServiceFunc func(s *config.Store, id string, spec config.ServiceSpec) error

func newConfigAddServiceCommand(rootOpts *RootOptions, use, short string, add addServiceFunc) *cobra.Command {
	var spec config.ServiceSpec

	cmd := &cobra.Command{
		Use:           use + " <service-id>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := add(ws.store, args[0], spec); err != nil {
				return WrapExitError(ExitCommandError, use, err)
			}
			ws.log(report.LogLevelInfo, "service_added kind=%s id=%s host=%s", use, args[0], spec.Host)
			return nil
		},
	}

	cmd.Flags().StringVar(&spec.Host, "host", "", "host (and port/API path) of the endpoint")
	cmd.Flags().StringVar(&spec.Proto, "proto", "", "protocol (default https)")
	cmd.Flags().StringToStringVar(&spec.Auth, "auth", nil, "auth header (repeatable, Header=value)")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func newConfigAddWESOptCommand(rootOpts *RootOptions) *cobra.Command {
	var makeDefault bool

	cmd := &cobra.Command{
		Use:           "add-wes-opt <wes-id> <queue-id>...",
		Short:         "Add a WES endpoint to the options of one or more queues",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := ws.store.AddWESOpt(args[1:], args[0], makeDefault); err != nil {
				return WrapExitError(ExitCommandError, "add wes option", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&makeDefault, "default", false, "also make it the default WES")
	return cmd
}

func newConfigRecoverCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recover <config.yaml|queues.yaml>",
		Short: "Quarantine a corrupted config file and restore its backup",
		Long: `Move a corrupted config.yaml or queues.yaml to quarantine/ and restore the
last good copy from its .bak file, or an empty skeleton if there is none.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workspaceDir(rootOpts)
			if err != nil {
				return err
			}
			if err := config.NewStore(dir).Recover(args[0]); err != nil {
				return WrapExitError(ExitCommandError, "recover", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recovered %s\n", args[0])
			return nil
		},
	}
}
