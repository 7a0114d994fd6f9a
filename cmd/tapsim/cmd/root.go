package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	irWidth    int
	syncStages int
	halfPeriod int

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

var rootCmd = &cobra.Command{
	Use:   "tapsim",
	Short: "Cycle-accurate JTAG TAP controller simulator",
	Long: `Simulates an IEEE 1149.1 TAP controller behind a pin synchronizer and
drives it one TCK cycle at a time.

Examples:
  tapsim table                               # Print the state transition table
  tapsim path RunTestIdle ShiftIR            # Shortest TMS sequence between states
  tapsim run scan.tap --vcd scan.vcd         # Run a stimulus script, dump waveforms
  tapsim idcode --id 0x4BA00477              # Read IDCODE through the simulated TAP`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	def := tap.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVarP(&configPath, "config", "c", "", "JSON device configuration file")
	flags.IntVar(&irWidth, "ir-width", def.IRWidth, "instruction register width in bits")
	flags.IntVar(&syncStages, "sync-stages", def.SyncStages, "synchronizer depth in controller ticks")
	flags.IntVar(&halfPeriod, "half-period", def.TCKHalfPeriod, "controller ticks per TCK half period")
}

// loadConfig starts from the defaults, applies the config file if one was
// given and then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (tap.Config, error) {
	cfg := tap.DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("ir-width") {
		cfg.IRWidth = irWidth
	}
	if flags.Changed("sync-stages") {
		cfg.SyncStages = syncStages
	}
	if flags.Changed("half-period") {
		cfg.TCKHalfPeriod = halfPeriod
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logger.Debug("device config", "ir_width", cfg.IRWidth, "sync_stages", cfg.SyncStages, "tck_half_period", cfg.TCKHalfPeriod)
	return cfg, nil
}

func newDevice(cmd *cobra.Command) (*tap.Device, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return tap.NewDevice(cfg)
}
