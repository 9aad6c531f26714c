package cli

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/VitalGuard/internal/config"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// NewThresholdsCmd creates the thresholds command and its subcommands.
func NewThresholdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Inspect and tune the scoring thresholds",
		Long: "Inspect the active threshold snapshot, check a threshold file, and edit the\n" +
			"operator overrides kept in Redis or in the Postgres global_config table.",
	}
	cmd.AddCommand(
		newThresholdsShowCmd(),
		newThresholdsValidateCmd(),
		newThresholdsSetCmd(),
		newThresholdsUnsetCmd(),
		newThresholdsMigrateCmd(),
		newThresholdsWatchCmd(),
	)
	return cmd
}

func newThresholdsShowCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active threshold snapshot as override keys and values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			engine, err := c.Engine(cmd.Context())
			if err != nil {
				return err
			}
			values := engine.Thresholds().OverrideValues()
			for k := range values {
				if !strings.HasPrefix(k, prefix) {
					delete(values, k)
				}
			}
			if c.OutputFormat == "json" {
				return PrintResult(cmd, values)
			}
			return PrintResult(cmd, thresholdListing(values))
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only keys starting with this prefix, e.g. stability.glucose")
	return cmd
}

func newThresholdsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a threshold file against the threshold schema and invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := config.LoadThresholds(args[0])
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%s is valid (%d tunable values)", args[0], len(th.OverrideKeys())))
			return nil
		},
	}
}

func newThresholdsSetCmd() *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set one operator override",
		Example: "  vitalguard thresholds set alerts.spo2_severe 86\n  vitalguard thresholds set --store postgres stability.weights.glucose 25",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				return errors.Newf(errors.ErrCodeOverrideValue, "override %s: %q is not a number", key, args[1])
			}
			s, err := overrideStore(cmd, store, key)
			if err != nil {
				return err
			}
			if err := s.Set(cmd.Context(), key, value); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%s = %s in %s", key, strconv.FormatFloat(value, 'g', -1, 64), s.Name()))
			return nil
		},
	}
	cmd.Flags().StringVar(&store, "store", "redis", "override store to edit (redis, postgres)")
	return cmd
}

func newThresholdsUnsetCmd() *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove one operator override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			s, err := overrideStore(cmd, store, key)
			if err != nil {
				return err
			}
			if err := s.Unset(cmd.Context(), key); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%s removed from %s", key, s.Name()))
			return nil
		},
	}
	cmd.Flags().StringVar(&store, "store", "redis", "override store to edit (redis, postgres)")
	return cmd
}

func newThresholdsMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres global_config migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if c.deps.Migrate == nil || !c.Config.Postgres.Enabled {
				return errors.New(errors.ErrCodeFeatureDisabled, "postgres is not enabled")
			}
			if err := c.deps.Migrate(cmd.Context(), c.Config, c.Logger); err != nil {
				return err
			}
			PrintSuccess(cmd, "global_config migrations applied")
			return nil
		},
	}
}

func newThresholdsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow threshold changes and log every published revision",
		Long: "Poll the override stores every engine.refresh_interval and reload when the\n" +
			"threshold file changes, until interrupted or --timeout expires. Use\n" +
			"--timeout 0 to run indefinitely.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			engine, err := c.Engine(ctx)
			if err != nil {
				return err
			}

			if file := c.Config.Engine.ThresholdsFile; file != "" {
				err := config.WatchThresholds(ctx, file,
					func() { _ = engine.Reload(ctx) },
					func(err error) { c.Logger.Warn("threshold file watch error", logging.Err(err)) })
				if err != nil {
					return err
				}
			}
			if c.ConfigPath != "" {
				err := config.Watch(c.ConfigPath,
					func(*config.Config) {
						c.Logger.Warn("configuration file changed; restart to apply engine and store settings",
							logging.String("path", c.ConfigPath))
					},
					func(err error) {
						c.Logger.Warn("changed configuration file is invalid", logging.Err(err))
					})
				if err != nil {
					return err
				}
			}

			c.Logger.Info("watching thresholds",
				logging.Duration("refresh_interval", c.Config.Engine.RefreshInterval),
				logging.Uint64("revision", engine.Revision()))
			engine.Watch(ctx, c.Config.Engine.RefreshInterval)
			<-ctx.Done()

			PrintSuccess(cmd, fmt.Sprintf("stopped at threshold revision %d", engine.Revision()))
			return nil
		},
	}
}

// overrideStore checks key against the base thresholds and returns the
// enabled store called name.
func overrideStore(cmd *cobra.Command, name, key string) (OverrideStore, error) {
	c, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	base, err := config.LoadThresholds(c.Config.Engine.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	if !base.IsOverrideKey(key) {
		return nil, errors.New(errors.ErrCodeUnknownOverrideKey, "unknown override key").WithDetail(key)
	}

	stores, err := c.Stores(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeFeatureDisabled, "override store %q is not enabled", name)
}

type thresholdListing map[string]float64

func (l thresholdListing) keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l thresholdListing) TableHeaders() []string { return []string{"KEY", "VALUE"} }

func (l thresholdListing) TableRows() [][]string {
	keys := l.keys()
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k, strconv.FormatFloat(l[k], 'g', -1, 64)}
	}
	return rows
}

func (l thresholdListing) String() string {
	var sb strings.Builder
	for _, k := range l.keys() {
		fmt.Fprintf(&sb, "%s = %s\n", k, strconv.FormatFloat(l[k], 'g', -1, 64))
	}
	return sb.String()
}
