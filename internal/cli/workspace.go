package cli

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/msageha/wfinterop/internal/config"
	"github.com/msageha/wfinterop/internal/model"
	"github.com/msageha/wfinterop/internal/report"
)

// workspace is the resolved state shared by commands that operate on an
// existing .wfinterop directory.
type workspace struct {
	store    *config.Store
	cfg      model.Config
	logger   *log.Logger
	logLevel report.LogLevel
}

func openWorkspace(opts *RootOptions, cmd *cobra.Command) (*workspace, error) {
	dir, err := workspaceDir(opts)
	if err != nil {
		return nil, err
	}

	store := config.NewStore(dir)
	cfg, err := store.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	return &workspace{
		store:    store,
		cfg:      cfg,
		logger:   log.New(cmd.ErrOrStderr(), "", 0),
		logLevel: report.ParseLogLevel(level),
	}, nil
}

// workspaceDir locates the workspace without loading config.yaml, which may
// be the file being recovered.
func workspaceDir(opts *RootOptions) (string, error) {
	if opts.Dir != "" {
		return opts.Dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", WrapExitError(ExitCommandError, "get working directory", err)
	}
	dir, err := config.FindWorkspace(cwd)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "locate workspace", err)
	}
	return dir, nil
}

func (ws *workspace) snapshotPaths() (testbedLog, submissionQueue string) {
	return ws.store.SnapshotPaths(ws.cfg)
}

// reportsPath resolves p against the workspace reports/ directory.
func (ws *workspace) reportsPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ws.store.Dir(), "reports", p)
}

func (ws *workspace) log(level report.LogLevel, format string, args ...any) {
	report.Logf(ws.logger, ws.logLevel, level, "cli", format, args...)
}
