package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DarthJahus/telegram-fraud-network/internal/config"
	"github.com/DarthJahus/telegram-fraud-network/internal/history"
	"github.com/DarthJahus/telegram-fraud-network/internal/ledger"
	"github.com/DarthJahus/telegram-fraud-network/internal/lookup"
	"github.com/DarthJahus/telegram-fraud-network/internal/runner"
	"github.com/DarthJahus/telegram-fraud-network/internal/schedule"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions

	Types         []string
	SkipTime      string
	Skip          []string
	Ignore        []string
	NoSkipUnknown bool
	WriteID       bool
	DryRun        bool
	User          string
	Delay         int
	Ledger        string
	LogFile       string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts, Delay: -1}

	cmd := &cobra.Command{
		Use:   "check <records-dir>",
		Short: "Check every record against the platform and update histories",
		Long: `Check resolves each markdown record in the directory against the
platform, appends the observed status to the record's history, and
prints a summary of everything that changed.

Records are processed one at a time with a mandatory pause before
every platform call. A fatal session failure aborts the run; records
already written stay written, so the run is safe to repeat.

Example:
  tgstatus check ./records
  tgstatus check ./records --type channel,group --skip-time "7*24*60*60"
  tgstatus check ./records --dry-run --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "only check these entity types (channel,group,user,bot,website)")
	cmd.Flags().StringVar(&opts.SkipTime, "skip-time", "", `skip records checked within this many seconds (accepts "86400" or "24*60*60")`)
	cmd.Flags().StringSliceVar(&opts.Skip, "skip", nil, "skip records whose current status is in this set")
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "check but do not write when the result is in this set")
	cmd.Flags().BoolVar(&opts.NoSkipUnknown, "no-skip-unknown", false, "let unknown records age out like any other status")
	cmd.Flags().BoolVar(&opts.WriteID, "write-id", false, "write ids recovered via invite links back to records")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would be written without touching any record")
	cmd.Flags().StringVar(&opts.User, "user", "", "account session to use (token read from <secrets_dir>/<user>.token)")
	cmd.Flags().IntVar(&opts.Delay, "delay", -1, "seconds to wait before each platform call (default from config)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "append this run to a SQLite run ledger at the given path")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "duplicate the report to this file")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, dir string) error {
	setupLogging(opts.Verbose)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}
	applyCheckFlags(&cfg, opts)

	gate, err := buildGate(cfg, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	paths, err := scanRecords(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot scan records", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no records found in %s", dir))
	}

	token, err := cfg.ReadToken()
	if err != nil {
		return WrapExitError(ExitCommandError, "session", err)
	}

	svc := lookup.NewHTTPService(lookup.HTTPServiceOptions{
		BaseURL: cfg.APIBaseURL,
		Token:   token,
	})
	pacer := lookup.NewPacer(cfg.Delay())
	client := lookup.NewClient(svc, pacer, slog.Default())

	var ledg *ledger.Ledger
	if opts.Ledger != "" {
		ledg, err = ledger.Open(opts.Ledger)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot open run ledger", err)
		}
		defer func() {
			if closeErr := ledg.Close(); closeErr != nil {
				slog.Error("error closing run ledger", "error", closeErr)
			}
		}()
	}

	run := runner.New(runner.Options{
		Gate:    gate,
		Client:  client,
		History: history.NewManager(cfg.HistoryCap),
		Ledger:  ledg,
		WriteID: opts.WriteID,
		Log:     slog.Default(),
	})

	// Use the command's context if available (for testing), otherwise
	// create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("run starting", "records", len(paths), "delay", cfg.Delay(), "dry_run", opts.DryRun)
	rep, runErr := run.Run(ctx, paths)

	if err := emitReport(cmd, opts, rep, runErr); err != nil {
		return err
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return WrapExitError(ExitFatal, "run interrupted", runErr)
		}
		return WrapExitError(ExitFatal, "fatal session failure", runErr)
	}
	return nil
}

// applyCheckFlags overlays explicit flags on the file configuration.
func applyCheckFlags(cfg *config.Config, opts *CheckOptions) {
	if opts.Delay >= 0 {
		cfg.DelaySeconds = opts.Delay
	}
	if opts.User != "" {
		cfg.User = opts.User
	}
	if len(opts.Types) > 0 {
		cfg.Types = opts.Types
	}
	if len(opts.Skip) > 0 {
		cfg.Skip = opts.Skip
	}
	if len(opts.Ignore) > 0 {
		cfg.Ignore = opts.Ignore
	}
}

func buildGate(cfg config.Config, opts *CheckOptions) (*schedule.Gate, error) {
	gate := schedule.NewGate()
	gate.Kinds = schedule.ParseKindSet(cfg.Types)
	gate.SkipStatuses = schedule.ParseStatusSet(cfg.Skip)
	gate.IgnoreStatuses = schedule.ParseStatusSet(cfg.Ignore)
	gate.RecheckUnknown = !opts.NoSkipUnknown
	gate.DryRun = opts.DryRun

	if opts.SkipTime != "" {
		age, err := schedule.ParseDuration(opts.SkipTime)
		if err != nil {
			return nil, fmt.Errorf("--skip-time: %w", err)
		}
		gate.SkipAge = age
	}
	return gate, nil
}

// emitReport writes the run report in the configured format, and
// duplicates the text rendering to the log file when one was asked
// for.
func emitReport(cmd *cobra.Command, opts *CheckOptions, rep *runner.Report, runErr error) error {
	out := cmd.OutOrStdout()
	formatter := &OutputFormatter{Format: opts.Format, Writer: out}

	if formatter.JSON() {
		if runErr != nil {
			return formatter.Error("fatal", runErr.Error(), rep)
		}
		return formatter.Success(rep)
	}

	w := out
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot open log file", err)
		}
		defer f.Close()
		w = io.MultiWriter(out, f)
	}
	runner.Render(w, rep)
	return nil
}

// setupLogging configures the process-wide slog handler.
func setupLogging(verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
