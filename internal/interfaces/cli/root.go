// Package cli implements the subwatch command tree: clean the raw regulatory
// exports, compile the CMR/PE report, or both in one run.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/SubstanceWatch/internal/config"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// metricsNamespace prefixes every exported metric.
const metricsNamespace = "subwatch"

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath  string
	LogLevel    string
	Verbose     bool
	Timeout     time.Duration
	MetricsFile string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config *config.Config
	// ConfigFile is the file the config was read from, or "" for defaults.
	ConfigFile string
	Logger     logging.Logger
	Collector  prometheus.MetricsCollector
	Metrics    *prometheus.RunMetrics
	RunID      string
	Timeout    time.Duration
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "subwatch",
		Short: "SubstanceWatch reconciles regulatory substance lists into a CMR/PE report",
		Long: "SubstanceWatch cleans raw regulatory exports (EU cosmetics annexes, CLP,\n" +
			"CIRC, IFRA, REACH and endocrine-disruptor lists) into normalized tables,\n" +
			"folds them into one CAS-keyed substance registry, and emits the list of\n" +
			"substances flagged as CMR or potential endocrine disruptors.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./subwatch.yaml, ~/.subwatch/config.yaml, /etc/subwatch/config.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "abort the run after this long (0 disables)")
	pf.StringVar(&opts.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")

	cmd.AddCommand(
		NewCleanCmd(),
		NewCompileCmd(),
		NewRunCmd(),
		NewCheckCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config, logger and metrics, then stores the
// CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, file, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	runID := uuid.NewString()
	logger = logger.With(logging.String("run_id", runID))
	logging.SetDefault(logger)
	if file == "" {
		logger.Debug("no config file found, using defaults")
	} else {
		logger.Debug("config loaded", logging.String("file", file))
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: metricsNamespace}, logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "metrics initialization failed")
	}

	cliCtx := &CLIContext{
		Config:     cfg,
		ConfigFile: file,
		Logger:     logger,
		Collector:  collector,
		Metrics:    prometheus.NewRunMetrics(collector),
		RunID:      runID,
		Timeout:    opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	var loadOpts []config.LoadOption
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithConfigPath(opts.ConfigPath))
	}
	cfg, file, err := config.Load(loadOpts...)
	if err != nil {
		return nil, "", err
	}

	if opts.LogLevel != "" {
		level := strings.ToLower(opts.LogLevel)
		switch level {
		case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
		default:
			return nil, "", errors.InvalidConfig("unknown log level " + opts.LogLevel)
		}
		cfg.Log.Level = level
	}
	if opts.Verbose {
		cfg.Log.Level = logging.LevelDebug
	}
	if opts.MetricsFile != "" {
		cfg.Metrics.Textfile = opts.MetricsFile
	}
	return cfg, file, nil
}

// initLogger creates a logger that writes to stderr unless configured
// otherwise, keeping stdout for command output.
func initLogger(cfg *config.Config, _ *RootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// runContext applies the global timeout to the command context.
func (c *CLIContext) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(parent, c.Timeout)
	}
	return context.WithCancel(parent)
}

// Finish exports the run metrics when a textfile is configured and flushes
// the logger.  It runs whether or not the command succeeded.
func (c *CLIContext) Finish() {
	if path := c.Config.Metrics.Textfile; path != "" {
		if err := c.Collector.WriteToTextfile(path); err != nil {
			c.Logger.Error("metrics export failed", logging.String("path", path), logging.Err(err))
		} else {
			c.Logger.Debug("metrics exported", logging.String("path", path))
		}
	}
	_ = c.Logger.Sync()
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// Exit statuses returned by ExitCode.
const (
	ExitOK       = 0
	ExitFatal    = 1
	ExitFindings = 2
)

// ExitCode maps a command error to the process exit status.  Run-level
// failures exit with ExitFatal; row-level codes surfaced on purpose, such as
// check --strict, exit with ExitFindings.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsFatal(err):
		return ExitFatal
	default:
		return ExitFindings
	}
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(colWidths))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
