package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/midgrid/analysis"
	"github.com/jsphweid/midgrid/config"
	"github.com/jsphweid/midgrid/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(compileCmd)
}

var compileCmd = &cobra.Command{
	Use:   "compile <input.midgrid> <output.mid>",
	Short: "Compiles a midgrid into a MIDI file",
	Long: `Compiles a midgrid into a MIDI file and writes a contrapuntal report next
to it, with the same base name and the report extension.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return Compile(args[0], args[1], cfg, logger)
	},
}

func reportPath(midiPath, ext string) string {
	return strings.TrimSuffix(midiPath, filepath.Ext(midiPath)) + ext
}

// Compile converts the grid at inPath and writes the MIDI file and its
// report. Neither file is left behind if any step fails.
func Compile(inPath, outPath string, cfg config.Config, logger *zap.Logger) error {
	f, err := os.Open(inPath)
	if err != nil {
		return errors.Wrap(err, "opening grid")
	}
	defer f.Close()

	res, err := compileGrid(f, cfg, logger)
	if err != nil {
		return err
	}

	if err := midi.WriteMidiFile(outPath, res.song); err != nil {
		return err
	}
	report := reportPath(outPath, cfg.ReportExtension)
	if err := os.WriteFile(report, []byte(analysis.ReportString(res.report)), 0644); err != nil {
		os.Remove(outPath)
		return errors.Wrap(err, "writing report")
	}
	logger.Info("compiled", zap.String("midi", outPath), zap.String("report", report))
	return nil
}
