// Package cli implements the pistats command-line interface using Cobra.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/luki/pistats/internal/config"
	"github.com/luki/pistats/internal/display"
	"github.com/luki/pistats/internal/monitor"
	"github.com/luki/pistats/internal/platform"
	"github.com/luki/pistats/internal/runner"
	"github.com/luki/pistats/internal/stats"
)

// flags override values from the config file when set.
type flags struct {
	configPath string
	mode       string
	source     string
	sysfsRoot  string
	onError    string
	logLevel   string
}

var opts flags

var rootCmd = &cobra.Command{
	Use:   "pistats",
	Short: "Live CPU frequency, temperature and available memory on one line",
	Long: `pistats samples the CPU clock, the CPU temperature and the memory
available to new allocations once per second and redraws them on a single
terminal line:

    1500 Mhz / 45 C / 512 MiB

The temperature is taken from the "Composite" sensor when present, then
"CPU", and reads 0 when neither exists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLive,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultPath(), "path to config.toml")
	pf.StringVar(&opts.source, "source", "", "temperature source: hwmon or lmsensors")
	pf.StringVar(&opts.sysfsRoot, "sysfs-root", "", "sysfs mount point")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.Flags().StringVar(&opts.mode, "mode", "", "display mode: line or tui")
	rootCmd.Flags().StringVar(&opts.onError, "on-error", "", "on a failed read: exit or retry")

	rootCmd.AddCommand(onceCmd, sensorsCmd)
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.mode != "" {
		cfg.Display.Mode = opts.mode
	}
	if opts.source != "" {
		cfg.Sensors.Source = opts.source
	}
	if opts.sysfsRoot != "" {
		cfg.Sensors.SysfsRoot = opts.sysfsRoot
	}
	if opts.onError != "" {
		cfg.Errors.Policy = opts.onError
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

// setup loads configuration and builds the logger and host.
func setup() (config.Config, *slog.Logger, *platform.Host, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, nil, err
	}
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger := NewLogger(level)
	host := platform.New(cfg.Sensors.SysfsRoot, cfg.SensorSource())
	return cfg, logger, host, nil
}

func runLive(cmd *cobra.Command, _ []string) error {
	cfg, logger, host, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if summary, err := host.Summary(ctx); err != nil {
		logger.Debug("host summary unavailable", "error", err)
	} else {
		logger.Info("starting",
			"cpu", summary.CPUModel,
			"logical_cpus", summary.LogicalCPUs,
			"memory_total", humanize.IBytes(summary.MemoryTotal),
			"source", cfg.Sensors.Source,
			"mode", cfg.Display.Mode,
		)
	}

	policy, _ := runner.ParsePolicy(cfg.Errors.Policy)
	sampler := stats.NewSampler(host)

	if cfg.Display.Mode == config.ModeTUI {
		return reportFailure(logger, monitor.Run(ctx, sampler, policy))
	}

	line := display.NewLine(os.Stdout)
	defer line.Close()

	loop := &runner.Loop{
		Sampler: sampler,
		Display: line,
		Policy:  policy,
		Logger:  logger,
	}
	return reportFailure(logger, loop.Run(ctx))
}

// reportFailure logs a sample error with its metric before it reaches the
// generic error printer.
func reportFailure(logger *slog.Logger, err error) error {
	if err == nil {
		return nil
	}
	if metric, ok := failedMetric(err); ok {
		logger.Error("hardware query failed", "metric", metric, "error", err)
	}
	return err
}
