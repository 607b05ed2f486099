package cmd

import (
	"encoding/json"
	"os"

	"github.com/jsphweid/midgrid/analysis"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.midgrid>",
	Short: "Reports intervals and motion between voices",
	Long:  `Reports, for every beat row and every pair of voices, the interval, the motion and its complexity score.`,
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
			return errors.Wrap(err, "opening grid")
		}
		defer f.Close()

		resp, err := analyzeGrid(f, cfg, logger)
		if err != nil {
			return err
		}
		if analyzeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		return analysis.WriteReport(cmd.OutOrStdout(), resp)
	},
}
