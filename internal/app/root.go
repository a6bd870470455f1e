package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/capture"
	"github.com/blackwell-systems/qacapture/internal/config"
	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
)

var (
	cfgFile    string
	dataDir    string
	rootFolder string
	verbose    bool

	// RootCmd is the root command for qacapture
	RootCmd = &cobra.Command{
		Use:   "qacapture",
		Short: "Screenshot evidence collection for manual QA runs",
		Long: `qacapture collects screenshot evidence for manual test runs and turns
it into a PDF report.

Each test record owns a folder of sequentially numbered screenshots plus the
header a report needs (system, cycle, case, type and the verdict). Records
live in a JSON database under the data directory; preferences and a capture
log live beside it in SQLite.

Quick Start:
  1. qacapture new --system Billing --cycle C1 --case TC-7 --type regression --type-value R-42
  2. qacapture capture            # whole display
  3. qacapture capture --select   # drag a region
  4. qacapture update --name pass
  5. qacapture export

Examples:
  # List records, most recently touched first
  qacapture list

  # Resume an older record
  qacapture continue

  # Delete completed records after 30 days
  qacapture settings --auto-delete 30`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "qacapture: screenshot evidence for manual QA")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run 'qacapture new' to start a test record.")
			fmt.Fprintln(out, "Run 'qacapture --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/qacapture/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding tests.json and qacapture.db")
	RootCmd.PersistentFlags().StringVar(&rootFolder, "root", "", "folder new test records are created under")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// newDeps supplies the platform collaborators. Tests replace it.
var newDeps = func(cfg *config.Config, logger zerolog.Logger, stderr io.Writer) evidence.Deps {
	return evidence.Deps{
		Source:    capture.ScreenSource{},
		Cursor:    capture.SystemCursor{},
		Clipboard: &capture.SystemClipboard{},
		Notifier:  output.NewTerminalNotifier(stderr),
		Logger:    logger,
	}
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if rootFolder != "" {
		cfg.RootFolder = rootFolder
	}
	return cfg, nil
}

// newLogger writes human-readable logs to w at the configured level.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger()
}

// openApp loads the configuration and wires the services. Callers Close it.
func openApp(cmd *cobra.Command) (*evidence.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, cfg.LogLevel)

	a, err := evidence.Open(cfg, newDeps(cfg, logger, stderr))
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence store: %w", err)
	}
	return a, nil
}

// withApp runs fn against an opened App.
func withApp(fn func(cmd *cobra.Command, a *evidence.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// testArg returns the optional [id] argument.
func testArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// exitError carries a process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// ExitCode returns the exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return 1
}
