package cmd

import (
	"github.com/jsphweid/midgrid/config"
	"github.com/jsphweid/midgrid/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "midgrid",
	Short: "Converts between MIDI files and midgrid text",
	Long: `midgrid converts standard MIDI files to a plaintext beat grid and back,
and reports intervals and motion between the voices of a grid.`,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $MIDGRID_CONFIG)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// setup loads configuration and a logger tagged with a fresh run id.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.WithRun(logger), nil
}
