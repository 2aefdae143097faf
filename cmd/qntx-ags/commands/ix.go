package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/am"
	"github.com/teranos/qntx-ags/db"
	"github.com/teranos/qntx-ags/display"
	"github.com/teranos/qntx-ags/errors"
	ixags "github.com/teranos/qntx-ags/ixgest/ags"
	"github.com/teranos/qntx-ags/logger"
	"github.com/teranos/qntx-ags/sym"
)

// IxCmd represents the ix (ingest) command
var IxCmd = &cobra.Command{
	Use:   "ix <file|url|directory>",
	Short: sym.IX + " Ingest AGS files",
	Long: sym.IX + ` ix - Ingest AGS files

Tokenizes an AGS file, maps LOCA into boreholes, GEOL into strata and ERES
into contaminant samples, and stores the import. Data-quality problems are
reported as issues and never stop the import.

Inputs:
  site.ags                              # local file
  ./exports                             # every *.ags file in a directory, in name order
  https://example.com/site.ags          # remote file (http, s3::, gcs::)

Examples:
  qntx-ags ix site.ags --dry-run        # Map and report without writing
  qntx-ags ix site.ags -v               # List every issue
  qntx-ags ix ./exports --watch         # Re-ingest files as they are written
  qntx-ags ix legacy.ags --encoding windows-1252`,
	Args: cobra.ExactArgs(1),
	RunE: runIx,
}

func init() {
	IxCmd.Flags().Bool("dry-run", false, "Map and report without writing to the database")
	IxCmd.Flags().Bool("watch", false, "Keep watching a directory and ingest files as they change")
	IxCmd.Flags().Bool("strict", false, "Exit non-zero when any error-severity issue is reported")
	IxCmd.Flags().String("encoding", "", "Override import.encoding (utf-8, windows-1252, latin1)")
	IxCmd.Flags().String("blank-geology", "", "Override import.blank_geology")
	IxCmd.Flags().String("db", "", "Database path (default: database.path from config)")
	IxCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics while watching (default: watch.metrics_addr)")
}

func runIx(cmd *cobra.Command, args []string) error {
	input := args[0]
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	watch, _ := cmd.Flags().GetBool("watch")
	strict, _ := cmd.Flags().GetBool("strict")
	verbosity, _ := cmd.Flags().GetCount("verbose")
	dbPath, _ := cmd.Flags().GetString("db")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := ixOptions(cmd, cfg, dryRun)

	var database *sql.DB
	if !dryRun {
		database, err = openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer database.Close()
	}
	processor := ixags.NewProcessor(database, opts, logger.ComponentLogger("ix"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format := display.OutputFormat(cmd)
	if format == display.FormatText {
		pterm.DefaultHeader.WithFullWidth().Printf("%s AGS ingestion", sym.IX)
		if dryRun {
			pterm.Warning.Println("DRY RUN MODE: nothing will be written to the database")
		}
	}

	info, statErr := os.Stat(input)
	isDir := statErr == nil && info.IsDir()
	if watch && !isDir {
		return errors.NewInvalidRequestError("--watch needs a directory, got %s", input)
	}
	if watch {
		if err := startMetrics(ctx, cmd, cfg, processor); err != nil {
			return err
		}
	}

	var results []*ixags.ProcessingResult
	if isDir {
		results, err = processor.ProcessDirectory(ctx, input)
	} else {
		var result *ixags.ProcessingResult
		result, err = processor.ProcessSource(ctx, input)
		if result != nil {
			results = append(results, result)
		}
	}
	if err != nil {
		return err
	}

	if err := renderResults(cmd, format, results, verbosity); err != nil {
		return err
	}

	if watch {
		return watchDirectory(ctx, cmd, input, cfg, processor, format, verbosity)
	}

	if strict && countErrors(results) > 0 {
		return errors.Newf("%d error-severity issues reported", countErrors(results))
	}
	return nil
}

// ixOptions builds processor options from config and flag overrides.
func ixOptions(cmd *cobra.Command, cfg *am.Config, dryRun bool) ixags.Options {
	opts := ixags.Options{
		DryRun:        dryRun,
		BlankGeology:  cfg.GetBlankGeology(),
		Encoding:      cfg.Import.Encoding,
		MinAGSVersion: cfg.Import.MinAGSVersion,
	}
	if v, _ := cmd.Flags().GetString("encoding"); v != "" {
		opts.Encoding = v
	}
	if v, _ := cmd.Flags().GetString("blank-geology"); v != "" {
		opts.BlankGeology = v
	}
	return opts
}

// startMetrics serves Prometheus metrics for a watch session when an address is configured.
func startMetrics(ctx context.Context, cmd *cobra.Command, cfg *am.Config, processor *ixags.Processor) error {
	addr := cfg.Watch.MetricsAddr
	if v, _ := cmd.Flags().GetString("metrics-addr"); v != "" {
		addr = v
	}
	if addr == "" {
		return nil
	}

	reg := prometheus.NewRegistry()
	metrics, err := ixags.NewMetrics(reg)
	if err != nil {
		return err
	}
	processor.WithMetrics(metrics)

	log := logger.ComponentLogger("ix.metrics")
	done, err := ixags.ServeMetrics(ctx, addr, reg, log)
	if err != nil {
		return err
	}
	go func() {
		if err := <-done; err != nil {
			log.Errorw("metrics server stopped", logger.FieldError, err)
		}
	}()
	return nil
}

func watchDirectory(ctx context.Context, cmd *cobra.Command, dir string, cfg *am.Config, processor *ixags.Processor, format display.Format, verbosity int) error {
	opts := ixags.WatchOptions{
		Debounce:          time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		MaxFilesPerMinute: cfg.Watch.MaxFilesPerMinute,
	}
	w, err := ixags.NewWatcher(dir, opts, func(ctx context.Context, path string) {
		result, err := processor.ProcessFile(ctx, path)
		if db.IsDatabaseClosed(err) {
			return
		}
		if err != nil {
			logger.IxWarnw("watched file not ingested", logger.FieldFile, path, logger.FieldError, err)
			pterm.Error.Printf("%s: %v\n", path, err)
			return
		}
		if err := renderResults(cmd, format, []*ixags.ProcessingResult{result}, verbosity); err != nil {
			pterm.Error.Printf("%s: %v\n", path, err)
		}
	})
	if err != nil {
		return err
	}

	if format == display.FormatText {
		pterm.Info.Printf("Watching %s for *.ags changes (Ctrl+C to stop)\n", dir)
	}
	return w.Run(ctx)
}

func renderResults(cmd *cobra.Command, format display.Format, results []*ixags.ProcessingResult, verbosity int) error {
	if format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), results, format)
	}

	if len(results) == 0 {
		pterm.Warning.Println("No AGS files found")
		return nil
	}

	for _, r := range results {
		pterm.Println()
		pterm.Success.Printf("%s\n", r.Source)
		data := pterm.TableData{
			{"Import", r.ImportID},
			{"AGS edition", valueOr(r.AGSVersion, "not declared")},
			{"Boreholes", fmt.Sprint(r.Stats.Boreholes)},
			{"Strata", fmt.Sprint(r.Stats.Strata)},
			{"Contaminant samples", fmt.Sprint(r.Stats.ContaminantSamples)},
			{"Rows skipped", fmt.Sprint(r.Stats.RowsSkipped)},
			{"Warnings / errors", fmt.Sprintf("%d / %d", r.Stats.Warnings, r.Stats.Errors)},
		}
		if logger.ShouldOutput(verbosity, logger.OutputTiming) {
			data = append(data, []string{"Duration", fmt.Sprintf("%dms", r.Stats.DurationMs)})
		}
		if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
			return err
		}

		if logger.ShouldOutput(verbosity, logger.OutputIssues) {
			renderIssues(r.Issues)
		} else if r.Stats.Warnings+r.Stats.Errors > 0 {
			pterm.Info.Printf("Run with -v to show %s\n", logger.CategoryName(logger.OutputIssues))
		}
	}
	return nil
}

func renderIssues(issues []ingestion.Issue) {
	for _, issue := range issues {
		switch issue.Severity {
		case ingestion.SeverityError:
			pterm.Error.Println(issue.String())
		case ingestion.SeverityWarning:
			pterm.Warning.Println(issue.String())
		default:
			pterm.Info.Println(issue.String())
		}
	}
}

func countErrors(results []*ixags.ProcessingResult) int {
	n := 0
	for _, r := range results {
		n += r.Stats.Errors
	}
	return n
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
