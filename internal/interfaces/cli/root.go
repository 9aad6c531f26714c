package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/VitalGuard/internal/application/assessment"
	"github.com/turtacn/VitalGuard/internal/config"
	"github.com/turtacn/VitalGuard/internal/domain/cvrisk"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// OverrideStore is an editable source of threshold overrides.
type OverrideStore interface {
	Name() string
	Overrides(ctx context.Context) (map[string]float64, error)
	Set(ctx context.Context, key string, value float64) error
	Unset(ctx context.Context, key string) error
}

// Dependencies are the infrastructure builders injected by main. Either
// field may be nil, in which case the commands needing it report that the
// feature is unavailable.
type Dependencies struct {
	// OpenStores opens every override store enabled in cfg, in precedence
	// order (later stores win). The returned func releases them.
	OpenStores func(ctx context.Context, cfg *config.Config, log logging.Logger) ([]OverrideStore, func(), error)

	// Migrate applies the global_config migrations.
	Migrate func(ctx context.Context, cfg *config.Config, log logging.Logger) error
}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath      string
	LogLevel        string
	OutputFormat    string
	Verbose         bool
	Timeout         time.Duration
	MetricsTextfile string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	RunID        string

	deps      Dependencies
	collector prom.MetricsCollector
	metrics   *prom.EngineMetrics
	textfile  string
	stores    []OverrideStore
	closers   []func()
	opened    bool
	cancel    context.CancelFunc
}

// rootState is shared between the command closures and execute so that the
// metrics textfile and store connections are handled even when a command
// fails.
type rootState struct {
	opts RootOptions
	deps Dependencies
	cli  *CLIContext
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand(deps Dependencies) *cobra.Command {
	cmd, _ := newRoot(deps)
	return cmd
}

func newRoot(deps Dependencies) (*cobra.Command, *rootState) {
	st := &rootState{deps: deps}

	cmd := &cobra.Command{
		Use:   "vitalguard",
		Short: "VitalGuard clinical scoring engine",
		Long: "VitalGuard scores patient snapshots: a 0-100 vital stability score and a\n" +
			"WHO/ISH SEAR-D ten-year cardiovascular risk estimate, both driven by\n" +
			"operator-tunable threshold tables.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.persistentPreRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&st.opts.ConfigPath, "config", "c", "", "config file path (default: ./vitalguard.yaml)")
	pf.StringVar(&st.opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	pf.StringVarP(&st.opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&st.opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.DurationVar(&st.opts.Timeout, "timeout", 30*time.Second, "global operation timeout")
	pf.StringVar(&st.opts.MetricsTextfile, "metrics-textfile", "", "write engine metrics to this node-exporter textfile on exit")

	cmd.AddCommand(
		NewStabilityCmd(),
		NewRiskCmd(),
		NewThresholdsCmd(),
		NewVersionCmd(),
	)
	return cmd, st
}

// persistentPreRun initializes config, logger and metrics, then stores the
// CLIContext on the command context.
func (st *rootState) persistentPreRun(cmd *cobra.Command) error {
	switch strings.ToLower(st.opts.OutputFormat) {
	case "json", "table", "text":
	default:
		return errors.InvalidParam("unsupported output format").WithDetail(st.opts.OutputFormat)
	}

	cfg, cfgPath, err := initConfig(&st.opts)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := initLogger(cfg, &st.opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "logger initialization failed")
	}
	logger = logger.With(logging.String("run_id", runID))

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   cfgPath,
		Logger:       logger,
		OutputFormat: strings.ToLower(st.opts.OutputFormat),
		Verbose:      st.opts.Verbose,
		RunID:        runID,
		deps:         st.deps,
		textfile:     st.opts.MetricsTextfile,
	}
	if cliCtx.textfile == "" && cfg.Metrics.Enabled {
		cliCtx.textfile = cfg.Metrics.TextfilePath
	}
	if cliCtx.textfile != "" {
		collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: cfg.Metrics.Namespace}, logger)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, "metrics initialization failed")
		}
		cliCtx.collector = collector
		cliCtx.metrics = prom.NewEngineMetrics(collector)
	}
	st.cli = cliCtx

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx := parent
	if st.opts.Timeout > 0 {
		ctx, cliCtx.cancel = context.WithTimeout(parent, st.opts.Timeout)
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))

	logger.Debug("command started", logging.String("command", cmd.CommandPath()))
	return nil
}

// finish writes the metrics textfile and releases stores. It runs after
// every command, failed or not.
func (st *rootState) finish() error {
	c := st.cli
	if c == nil {
		return nil
	}
	st.cli = nil

	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.collector == nil {
		return nil
	}
	if err := c.collector.WriteTextfile(c.textfile); err != nil {
		c.Logger.Error("metrics textfile not written", logging.String("path", c.textfile), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeInternal, "write metrics textfile")
	}
	c.Logger.Debug("metrics textfile written", logging.String("path", c.textfile))
	return nil
}

// initConfig loads configuration with priority: env > file > defaults. The
// file is the --config flag or the first of the default search paths that
// exists; its path is returned, empty when no file was read.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(config.WithConfigPath(opts.ConfigPath))
		return cfg, opts.ConfigPath, err
	}

	searchPaths := []string{"./vitalguard.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".vitalguard", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/vitalguard/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			cfg, err := config.Load(config.WithConfigPath(p))
			return cfg, p, err
		}
	}
	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = "debug"
	}

	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
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

// Stores opens the configured override stores once per invocation.
func (c *CLIContext) Stores(ctx context.Context) ([]OverrideStore, error) {
	if c.opened {
		return c.stores, nil
	}
	if c.deps.OpenStores == nil {
		c.opened = true
		return nil, nil
	}
	stores, closer, err := c.deps.OpenStores(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
	c.stores, c.opened = stores, true
	return stores, nil
}

// Engine builds an assessment engine from the configured threshold file and
// publishes the operator overrides of every enabled store.
func (c *CLIContext) Engine(ctx context.Context) (*assessment.Engine, error) {
	stores, err := c.Stores(ctx)
	if err != nil {
		return nil, err
	}
	sources := make([]assessment.OverrideSource, 0, len(stores))
	for _, s := range stores {
		sources = append(sources, s)
	}

	ec := c.Config.Engine
	engine, err := assessment.NewEngine(
		assessment.WithLogger(c.Logger),
		assessment.WithMetrics(c.metrics),
		assessment.WithBaseLoader(config.ThresholdLoader(ec.ThresholdsFile)),
		assessment.WithOverrideSources(sources...),
		assessment.WithBatchConcurrency(ec.BatchConcurrency),
		assessment.WithMeta(cvrisk.Meta{
			Region:             ec.Region,
			Country:            ec.Country,
			MethodologyVersion: ec.MethodologyVersion,
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		if err := engine.Reload(ctx); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// Execute is the main entry point for the CLI application.
func Execute(ctx context.Context, deps Dependencies) error {
	cmd, st := newRoot(deps)
	return execute(ctx, cmd, st)
}

func execute(ctx context.Context, cmd *cobra.Command, st *rootState) error {
	err := cmd.ExecuteContext(ctx)
	if ferr := st.finish(); err == nil {
		err = ferr
	}
	if err != nil {
		PrintError(cmd, err)
	}
	return err
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return errors.ExitCodeForCode(errors.GetCode(err))
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd.OutOrStdout(), data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd.OutOrStdout(), data)
	case "table":
		return printTable(cmd.OutOrStdout(), data)
	default:
		return printText(cmd.OutOrStdout(), data)
	}
}

// printJSON outputs data as indented JSON.
func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(w, v)
	case fmt.Stringer:
		fmt.Fprint(w, v.String())
	default:
		fmt.Fprintf(w, "%+v\n", v)
	}
	return nil
}

// printTable outputs data as a table if it provides headers and rows,
// otherwise falls back to text.
func printTable(w io.Writer, data interface{}) error {
	type tableProvider interface {
		TableHeaders() []string
		TableRows() [][]string
	}

	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(w, FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(w, data)
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
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
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
