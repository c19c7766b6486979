package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/msageha/wfinterop/internal/archive"
	"github.com/msageha/wfinterop/internal/report"
)

type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Run      string
	Format   string
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived reports or show one of them",
		Long: `List reports recorded with 'wfinterop report --archive', newest first, or
render one archived report with --run.

Examples:
  wfinterop history
  wfinterop history --db history.db --limit 5
  wfinterop history --run 01890a5d-ac96-774b-bcce-b302099a8057 --format text`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "history.db", "SQLite database (relative to reports/)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the report of this run")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text, or yaml with --run)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ws, err := openWorkspace(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	arc, err := archive.Open(ws.reportsPath(opts.Database))
	if err != nil {
		return WrapExitError(ExitCommandError, "open archive", err)
	}
	defer arc.Close()

	ctx := contextOf(cmd)
	out := cmd.OutOrStdout()

	if opts.Run != "" {
		format, err := report.ParseFormat(opts.Format)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --format", err)
		}
		results, err := arc.Results(ctx, opts.Run)
		if errors.Is(err, archive.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "load run", err)
		}
		return report.Render(out, results, format)
	}

	runs, err := arc.Runs(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	switch opts.Format {
	case "json":
		return writeJSON(out, runs)
	case "text", "":
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --format %q: must be json or text", opts.Format))
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived reports.")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-20s  %8s  %8s\n", "RUN", "CREATED", "CHECKERS", "OBSERVED")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-20s  %8d  %8d\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.Checkers, r.Observed)
	}
	return nil
}
