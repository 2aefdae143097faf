package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/display"
	"github.com/teranos/qntx-ags/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the qntx-ags database",
	Long: sym.DB + ` db - Database operations

Examples:
  qntx-ags db stats                     # Counts of imports, boreholes, strata, samples and issues`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Args:  cobra.NoArgs,
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), struct {
			Path  string      `json:"path" yaml:"path"`
			Stats interface{} `json:"stats" yaml:"stats"`
		}{cfg.GetDatabasePath(), stats}, format)
	}

	last := "never"
	if stats.LastImport != nil {
		last = stats.LastImport.Local().Format("2006-01-02 15:04:05")
	}

	pterm.DefaultSection.Printf("%s Database statistics", sym.DB)
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"Database path", cfg.GetDatabasePath()},
		{"Imports", fmt.Sprint(stats.Imports)},
		{"Boreholes", fmt.Sprint(stats.Boreholes)},
		{"Strata", fmt.Sprint(stats.Strata)},
		{"Contaminant samples", fmt.Sprint(stats.ContaminantSamples)},
		{"Issues", fmt.Sprint(stats.Issues)},
		{"Last import", last},
	}).Render()
}
