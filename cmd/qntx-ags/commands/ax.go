package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/ags/storage"
	"github.com/teranos/qntx-ags/display"
	"github.com/teranos/qntx-ags/sym"
)

// AxCmd represents the ax (query) command
var AxCmd = &cobra.Command{
	Use:   "ax",
	Short: sym.AX + " Query ingested boreholes, strata and samples",
	Long: sym.AX + ` ax - Query the ingested ground model

Examples:
  qntx-ags ax imports                   # Recent imports
  qntx-ags ax boreholes                 # All boreholes
  qntx-ags ax borehole BH1              # BH1 from its latest import, with strata and samples
  qntx-ags ax strata --id BH1           # Strata of BH1
  qntx-ags ax samples --import <id>     # Samples of one import
  qntx-ags ax boreholes --json          # Machine-readable output`,
}

var axImportsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List recent imports",
	Args:  cobra.NoArgs,
	RunE:  runAxImports,
}

var axBoreholesCmd = &cobra.Command{
	Use:   "boreholes",
	Short: "List boreholes",
	Args:  cobra.NoArgs,
	RunE:  runAxBoreholes,
}

var axBoreholeCmd = &cobra.Command{
	Use:   "borehole <loca-id>",
	Short: "Show one borehole with its strata and samples",
	Args:  cobra.ExactArgs(1),
	RunE:  runAxBorehole,
}

var axStrataCmd = &cobra.Command{
	Use:   "strata",
	Short: "List strata",
	Args:  cobra.NoArgs,
	RunE:  runAxStrata,
}

var axSamplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List contaminant samples",
	Args:  cobra.NoArgs,
	RunE:  runAxSamples,
}

func init() {
	for _, c := range []*cobra.Command{axBoreholesCmd, axStrataCmd, axSamplesCmd} {
		addFilterFlags(c)
	}
	axImportsCmd.Flags().Int("limit", 20, "Maximum imports to list")

	AxCmd.AddCommand(axImportsCmd, axBoreholesCmd, axBoreholeCmd, axStrataCmd, axSamplesCmd)
}

func addFilterFlags(c *cobra.Command) {
	c.Flags().String("id", "", "Only this LOCA_ID")
	c.Flags().String("import", "", "Only this import")
	c.Flags().Int("limit", 0, "Maximum rows (0 = all)")
}

func filterFromFlags(cmd *cobra.Command) storage.Filter {
	var f storage.Filter
	f.BoreholeID, _ = cmd.Flags().GetString("id")
	f.ImportID, _ = cmd.Flags().GetString("import")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	return f
}

// openStore opens the configured database; callers close the returned func.
func openStore() (*storage.SQLStore, func(), error) {
	database, err := openDatabase("")
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLStore(database, nil), func() { database.Close() }, nil
}

func runAxImports(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	limit, _ := cmd.Flags().GetInt("limit")
	imports, err := store.ListImports(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), imports, format)
	}

	data := pterm.TableData{{"Import", "Source", "AGS", "Finished", "Rows", "Skipped", "Warnings", "Errors"}}
	for _, imp := range imports {
		data = append(data, []string{
			imp.ID, imp.Source, imp.AGSVersion, imp.FinishedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(imp.RowsRead), strconv.Itoa(imp.RowsSkipped), strconv.Itoa(imp.Warnings), strconv.Itoa(imp.Errors),
		})
	}
	return renderTable(data, "imports")
}

func runAxBoreholes(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	boreholes, err := store.ListBoreholes(cmd.Context(), filterFromFlags(cmd))
	if err != nil {
		return err
	}
	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), boreholes, format)
	}

	data := pterm.TableData{{"LOCA_ID", "Easting", "Northing", "Ground level", "Base", "Type", "Strata", "Samples"}}
	for _, b := range boreholes {
		data = append(data, []string{
			b.ID, ordinate(b.Top.X), ordinate(b.Top.Y), ordinate(b.Top.Z), ordinate(b.Bottom.Z),
			b.Type, strconv.Itoa(b.StrataCount), strconv.Itoa(b.SampleCount),
		})
	}
	return renderTable(data, "boreholes")
}

func runAxBorehole(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	b, err := store.GetBorehole(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), b, format)
	}

	pterm.DefaultSection.Printf("%s (import %s)", b.ID, b.ImportID)
	if err := pterm.DefaultTable.WithData(pterm.TableData{
		{"Top", fmt.Sprintf("%s, %s, %s", ordinate(b.Top.X), ordinate(b.Top.Y), ordinate(b.Top.Z))},
		{"Bottom", fmt.Sprintf("%s, %s, %s", ordinate(b.Bottom.X), ordinate(b.Bottom.Y), ordinate(b.Bottom.Z))},
		{"Type / status", b.Type + " / " + b.Status},
		{"Purpose", b.Purpose},
		{"Dates", b.StartDate + " .. " + b.EndDate},
		{"Remarks", b.Remarks},
	}).Render(); err != nil {
		return err
	}

	strata := pterm.TableData{{"Top", "Base", "Legend", "Geology", "Description"}}
	for _, s := range b.Strata {
		strata = append(strata, []string{depth(s.Top), depth(s.Bottom), s.Legend, s.ObservedGeology, s.Description})
	}
	pterm.DefaultSection.WithLevel(2).Println("Strata")
	if err := renderTable(strata, "strata"); err != nil {
		return err
	}

	samples := sampleTable(b.Samples)
	pterm.DefaultSection.WithLevel(2).Println("Contaminant samples")
	return renderTable(samples, "contaminant samples")
}

func runAxStrata(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	strata, err := store.ListStrata(cmd.Context(), filterFromFlags(cmd))
	if err != nil {
		return err
	}
	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), strata, format)
	}

	data := pterm.TableData{{"LOCA_ID", "Top", "Base", "Legend", "Geology", "Description"}}
	for _, s := range strata {
		data = append(data, []string{s.BoreholeID, depth(s.Top), depth(s.Bottom), s.Legend, s.ObservedGeology, s.Description})
	}
	return renderTable(data, "strata")
}

func runAxSamples(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	samples, err := store.ListSamples(cmd.Context(), filterFromFlags(cmd))
	if err != nil {
		return err
	}
	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), samples, format)
	}
	return renderTable(sampleTable(samples), "contaminant samples")
}

func sampleTable(samples []storage.SampleRecord) pterm.TableData {
	data := pterm.TableData{{"LOCA_ID", "Depth", "Chemical", "Result", "Unit", "Detection limit", "Lab"}}
	for _, s := range samples {
		data = append(data, []string{
			s.BoreholeID, depth(s.Top), s.ChemicalName, ordinate(s.ResultValue), s.ResultUnit, ordinate(s.DetectionLimit), s.LabName,
		})
	}
	return data
}

// renderTable prints data with a header row, or a note when only the header is present.
func renderTable(data pterm.TableData, what string) error {
	if len(data) <= 1 {
		pterm.Info.Printf("No %s found\n", what)
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ordinate formats a nullable number; unknown values print as "-".
func ordinate(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func depth(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
