package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/ags/export"
	"github.com/teranos/qntx-ags/display"
	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
	"github.com/teranos/qntx-ags/sym"
)

// SoCmd represents the so (export) command
var SoCmd = &cobra.Command{
	Use:   "so",
	Short: sym.SO + " Export the ground model",
	Long: sym.SO + ` so - Export the ingested ground model

Examples:
  qntx-ags so csv boreholes boreholes.csv
  qntx-ags so csv strata strata.csv --delimiter ";"
  qntx-ags so csv samples bh1.csv --id BH1 --headers loca_id,chemical_name,result_value`,
}

var soCsvCmd = &cobra.Command{
	Use:       "csv <boreholes|strata|samples> <output-file>",
	Short:     "Export boreholes, strata or contaminant samples as CSV",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(export.KindBoreholes), string(export.KindStrata), string(export.KindSamples)},
	RunE:      runSoCsv,
}

func init() {
	soCsvCmd.Flags().String("delimiter", ",", "Single-character field delimiter")
	soCsvCmd.Flags().StringSlice("headers", nil, "Columns to write (default: every column of the kind)")
	addFilterFlags(soCsvCmd)

	SoCmd.AddCommand(soCsvCmd)
}

func runSoCsv(cmd *cobra.Command, args []string) error {
	kind := export.Kind(strings.ToLower(args[0]))
	if _, ok := export.DefaultHeaders[kind]; !ok {
		return errors.NewInvalidRequestError("unknown export kind %q (use boreholes, strata or samples)", args[0])
	}

	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	delimiter, _ := cmd.Flags().GetString("delimiter")
	headers, _ := cmd.Flags().GetStringSlice("headers")
	payload := export.Payload{
		Kind:      kind,
		Filename:  args[1],
		Delimiter: delimiter,
		Headers:   headers,
		Filter:    filterFromFlags(cmd),
	}

	n, err := export.Execute(cmd.Context(), store, payload)
	if err != nil {
		logger.Errorw("CSV export failed", "kind", kind, logger.FieldFile, payload.Filename, logger.FieldError, err)
		return err
	}
	logger.Debugw("CSV export written", "kind", kind, logger.FieldFile, payload.Filename, "rows", n)

	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), map[string]interface{}{
			"kind": kind, "file": payload.Filename, "rows": n,
		}, format)
	}
	pterm.Success.Printf("Wrote %d %s to %s\n", n, kind, payload.Filename)
	return nil
}
