package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/am"
	"github.com/teranos/qntx-ags/cmd/qntx-ags/commands"
	"github.com/teranos/qntx-ags/logger"
)

var rootCmd = &cobra.Command{
	Use:   "qntx-ags",
	Short: "qntx-ags - AGS ground-investigation ingestion",
	Long: `qntx-ags - AGS ground-investigation ingestion.

Reads AGS files (LOCA, GEOL and ERES groups) into boreholes, strata and
contaminant samples, reports data-quality issues without stopping, and keeps
every import in a local SQLite database.

Available commands:
  ix      - Ingest AGS files, directories or URLs
  ax      - Query ingested boreholes, strata and samples
  so      - Export the ground model as CSV
  am      - Manage configuration
  db      - Database statistics
  version - Show version information

Examples:
  qntx-ags ix site.ags                  # Ingest one file
  qntx-ags ix ./exports --watch         # Ingest a directory and keep watching it
  qntx-ags ax borehole BH1              # One borehole with its strata and samples
  qntx-ags so csv strata strata.csv     # Export strata`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")

		// Config errors surface in the commands that need config; logging falls back to console
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}

		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Logger.Debugw("logger initialised", "verbosity", logger.LevelName(verbosity), "json", jsonLogs)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("yaml", false, "Output results as YAML")

	rootCmd.AddCommand(commands.IxCmd)
	rootCmd.AddCommand(commands.AxCmd)
	rootCmd.AddCommand(commands.SoCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
