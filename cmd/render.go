package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renderWindow window

func init() {
	renderCmd.Flags().Float64Var(&renderWindow.from, "from", 0, "First beat to render")
	renderCmd.Flags().Float64Var(&renderWindow.to, "to", 0, "Stop rendering at this beat (0 renders to the end)")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <input.mid>",
	Short: "Prints a MIDI file as a midgrid",
	Long:  `Prints a MIDI file as a midgrid on standard output. Diagnostics go to standard error.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening midi file")
		}
		defer f.Close()

		logger.Info("rendering", zap.String("input", args[0]))
		return midiToGrid(f, cmd.OutOrStdout(), renderWindow, cfg, logger)
	},
}
