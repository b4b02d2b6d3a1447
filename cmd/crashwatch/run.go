package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/crashwatch"
	"github.com/jpalmerr/crashwatch/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// runCmd runs the monitor until its duration elapses.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the target page and record value changes",
	Long: `Open the target page and record every change of the watched value.

Settings are resolved in this order, later ones winning:
  built-in defaults < config file < MONITOR_DURATION < flags

The run ends when the duration elapses or on Ctrl+C / SIGTERM, both of
which exit with status 0. Startup failures and unrecoverable page errors
exit with status 1.

Example:
  crashwatch run
  crashwatch run -c crashwatch.yaml --dashboard-port 8080
  MONITOR_DURATION=30 crashwatch run --log-format json`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file")
	runCmd.Flags().Duration("duration", 0, "how long to run, e.g. 6m (overrides MONITOR_DURATION)")
	runCmd.Flags().Int("dashboard-port", 0, "serve the live dashboard on this port (0 disables)")
	runCmd.Flags().String("log-format", "text", "log format: text or json")
	runCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

// runOverrides holds settings given on the command line. Nil fields were
// not set.
type runOverrides struct {
	duration      *time.Duration
	dashboardPort *int
}

// newLogger creates the CLI logger. Text output is colorized with tint.
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	switch format {
	case "text", "":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", format)
	}
}

// resolveConfig loads the config file, if any, and applies the
// environment and command-line overrides.
func resolveConfig(path string, o runOverrides) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	d, set, err := config.MonitorDurationFromEnv()
	if err != nil {
		return nil, err
	}
	if set {
		cfg.Duration = config.Duration(d)
	}

	if o.duration != nil {
		if *o.duration <= 0 {
			return nil, fmt.Errorf("--duration must be positive, got %s", *o.duration)
		}
		cfg.Duration = config.Duration(*o.duration)
	}
	if o.dashboardPort != nil {
		cfg.DashboardPort = *o.dashboardPort
	}

	return cfg, nil
}

func overridesFromFlags(cmd *cobra.Command) runOverrides {
	var o runOverrides
	if cmd.Flags().Changed("duration") {
		d, _ := cmd.Flags().GetDuration("duration")
		o.duration = &d
	}
	if cmd.Flags().Changed("dashboard-port") {
		p, _ := cmd.Flags().GetInt("dashboard-port")
		o.dashboardPort = &p
	}
	return o
}

func runMonitor(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("log-format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(cmd.ErrOrStderr(), format, verbose)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := resolveConfig(configFile, overridesFromFlags(cmd))
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"target", cfg.Target.URL,
		"selector", cfg.Target.Selector,
		"duration", cfg.Duration.Duration().String(),
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build monitor options: %w", err)
	}
	opts = append(opts, crashwatch.WithLogger(logger))

	m, err := crashwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// cancel on SIGINT/SIGTERM; Run treats that as a normal stop
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Run(ctx); err != nil {
		logger.Error("monitor failed", "error", err)
		return err
	}
	return nil
}
