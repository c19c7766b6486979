package cli

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msageha/wfinterop/internal/archive"
	"github.com/msageha/wfinterop/internal/report"
	"github.com/msageha/wfinterop/internal/snapshot"
	"github.com/msageha/wfinterop/internal/watch"
	atomicyaml "github.com/msageha/wfinterop/internal/yaml"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Format     string
	Output     string
	Archive    string
	Strict     bool
	Duplicates string
	Watch      bool
	Interval   time.Duration
}

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the verification report",
		Long: `Generate the verification report: one record per checker queue with the
target queue's workflow_id/version_id and the WES endpoints on which the
checker completed (or false when nothing has been recorded yet).

Exit codes:
  0 - Report generated
  1 - Command error (workspace not found, unreadable snapshot, etc.)
  2 - Data-integrity failure (malformed run_log, duplicate completion under
      --duplicates=reject, unresolved reference under --strict)

Examples:
  wfinterop report
  wfinterop report --format text
  wfinterop report --output latest.json --archive history.db
  wfinterop report --watch --output latest.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "json", "output format (json|yaml|text)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the report to this file (relative to reports/) instead of stdout")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "also record the report in this SQLite database (relative to reports/)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat unresolved WES/submission references as errors")
	cmd.Flags().StringVar(&opts.Duplicates, "duplicates", "last-wins", "policy for repeated completions on one WES (last-wins|reject)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "regenerate whenever the snapshots or config change")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "with --watch, also regenerate on this interval")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	policy, err := report.ParseDuplicatePolicy(opts.Duplicates)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --duplicates", err)
	}

	ws, err := openWorkspace(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	testbedLog, submissionQueue := ws.snapshotPaths()
	gen := report.NewGenerator(ws.store, snapshot.NewFileLoader(), report.Options{
		TestbedLogPath:      testbedLog,
		SubmissionQueuePath: submissionQueue,
		Duplicates:          policy,
		StrictReferences:    opts.Strict,
	}, ws.logger, ws.logLevel)

	var arc *archive.Archive
	if opts.Archive != "" {
		arc, err = archive.Open(ws.reportsPath(opts.Archive))
		if err != nil {
			return WrapExitError(ExitCommandError, "open archive", err)
		}
		defer arc.Close()
	}

	generate := func(ctx context.Context) error {
		results, err := gen.Report()
		if err != nil {
			return WrapExitError(reportExitCode(err), "generate report", err)
		}

		var buf bytes.Buffer
		if err := report.Render(&buf, results, format); err != nil {
			return WrapExitError(ExitCommandError, "render report", err)
		}
		if opts.Output != "" {
			path := ws.reportsPath(opts.Output)
			if err := atomicyaml.AtomicWriteFile(path, buf.Bytes()); err != nil {
				return WrapExitError(ExitCommandError, "write report", err)
			}
			ws.log(report.LogLevelInfo, "report_written path=%s results=%d", path, len(results))
		} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return WrapExitError(ExitCommandError, "write report", err)
		}

		if arc != nil {
			run, err := arc.Save(ctx, results, time.Now())
			if err != nil {
				return WrapExitError(ExitCommandError, "archive report", err)
			}
			ws.log(report.LogLevelInfo, "report_archived run=%s checkers=%d observed=%d", run.ID, run.Checkers, run.Observed)
		}
		return nil
	}

	if !opts.Watch {
		return generate(contextOf(cmd))
	}

	paths := []string{testbedLog, submissionQueue, ws.store.ConfigPath(), ws.store.QueuesPath()}
	w, err := watch.New(paths, generate, watch.Options{Interval: opts.Interval}, ws.logger, ws.logLevel)
	if err != nil {
		return WrapExitError(ExitCommandError, "start watcher", err)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ws.log(report.LogLevelInfo, "watching files=%d", len(paths))
	if err := w.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "watch", err)
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
