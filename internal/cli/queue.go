package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/msageha/wfinterop/internal/model"
	"github.com/msageha/wfinterop/internal/queue"
	"github.com/msageha/wfinterop/internal/report"
	"github.com/msageha/wfinterop/internal/snapshot"
)

func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and edit the submission queue",
	}

	cmd.AddCommand(newQueueListCommand(rootOpts))
	cmd.AddCommand(newQueueShowCommand(rootOpts))
	cmd.AddCommand(newQueueCreateCommand(rootOpts))
	cmd.AddCommand(newQueueUpdateCommand(rootOpts))

	return cmd
}

func openQueueStore(rootOpts *RootOptions, cmd *cobra.Command) (*queue.Store, *workspace, error) {
	ws, err := openWorkspace(rootOpts, cmd)
	if err != nil {
		return nil, nil, err
	}
	_, submissionQueue := ws.snapshotPaths()
	lockDir := filepath.Join(ws.store.Dir(), "locks")
	return queue.NewStore(submissionQueue, lockDir, snapshot.NewFileLoader()), ws, nil
}

func newQueueListCommand(rootOpts *RootOptions) *cobra.Command {
	var statuses, exclude []string

	cmd := &cobra.Command{
		Use:           "list <queue-id>",
		Short:         "List submission ids of a queue",
		Long:          "List submission ids of a queue, by default those that are RECEIVED, SUBMITTED, VALIDATED or COMPLETE.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openQueueStore(rootOpts, cmd)
			if err != nil {
				return err
			}
			ids, err := store.IDs(args[0], toStatuses(statuses), toStatuses(exclude))
			if err != nil {
				return WrapExitError(ExitCommandError, "list submissions", err)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "statuses to include (repeatable)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "statuses to exclude (repeatable)")
	return cmd
}

func toStatuses(ss []string) []model.Status {
	if ss == nil {
		return nil
	}
	out := make([]model.Status, len(ss))
	for i, s := range ss {
		out[i] = model.Status(s)
	}
	return out
}

func newQueueShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <queue-id> <submission-id>",
		Short:         "Print one submission as JSON",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openQueueStore(rootOpts, cmd)
			if err != nil {
				return err
			}
			sub, err := store.Bundle(args[0], args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "show submission", err)
			}
			return writeJSON(cmd.OutOrStdout(), sub)
		},
	}
}

func newQueueCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var data, wesID string

	cmd := &cobra.Command{
		Use:   "create <queue-id>",
		Short: "Queue a new RECEIVED submission",
		Long: `Queue a new RECEIVED submission and print its id. --data takes the
submission payload as JSON or YAML.

Examples:
  wfinterop queue create test_cwl_queue --data '{"input": "md5sum.input"}' --wes local`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := decodeValue(data)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --data", err)
			}
			store, ws, err := openQueueStore(rootOpts, cmd)
			if err != nil {
				return err
			}
			id, err := store.Create(args[0], payload, wesID)
			if err != nil {
				return WrapExitError(ExitCommandError, "create submission", err)
			}
			ws.log(report.LogLevelInfo, "submission_created queue=%s sub=%s", args[0], id)
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "submission payload (JSON or YAML)")
	cmd.Flags().StringVar(&wesID, "wes", "", "WES endpoint to run on")
	return cmd
}

func newQueueUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <queue-id> <submission-id> <field> <value>",
		Short: "Set one field of a submission",
		Long: `Set one field of a submission. status, wes_id and run_id take the value
as text; data, run_log and any other field name take JSON or YAML.

Examples:
  wfinterop queue update test_cwl_queue 01890a5d-ac96-774b-bcce-b302099a8057 status COMPLETE
  wfinterop queue update test_cwl_queue 01890a5d-ac96-774b-bcce-b302099a8057 run_log \
      '{"run_id": "R1", "start_time": "2017-10-01T00:00:00Z"}'`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			queueID, subID, field, raw := args[0], args[1], args[2], args[3]

			var value any = raw
			switch field {
			case "status", "wes_id", "run_id":
			case "run_log":
				var rl model.RunLog
				if err := yamlv3.Unmarshal([]byte(raw), &rl); err != nil {
					return WrapExitError(ExitCommandError, "invalid run_log value", err)
				}
				value = rl
			default:
				v, err := decodeValue(raw)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid "+field+" value", err)
				}
				value = v
			}

			store, ws, err := openQueueStore(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := store.Update(queueID, subID, field, value); err != nil {
				return WrapExitError(ExitCommandError, "update submission", err)
			}
			ws.log(report.LogLevelInfo, "submission_updated queue=%s sub=%s field=%s", queueID, subID, field)
			return nil
		},
	}
}

// decodeValue parses a JSON or YAML flag value. Empty input is nil.
func decodeValue(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	var v any
	if err := yamlv3.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
