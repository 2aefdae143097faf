// Package ags ingests AGS files: it decodes and tokenizes the file, maps LOCA, GEOL and ERES
// into ground entities, checks the declared AGS edition and persists the import.
package ags

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/mapper"
	"github.com/teranos/qntx-ags/ags/parser"
	"github.com/teranos/qntx-ags/ags/storage"
	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
)

const stage = "ingest"

// Extension is the file extension picked up by directory and watch ingestion.
const Extension = ".ags"

// Options configures a Processor.
type Options struct {
	DryRun        bool   // map and report, but do not write to the database
	BlankGeology  string // passed to the mapper
	Encoding      string // utf-8 (default), windows-1252 or latin1
	MinAGSVersion string // empty disables the edition check
}

// Processor runs AGS files through tokenize, map and store.
type Processor struct {
	store   *storage.SQLStore
	opts    Options
	logger  *zap.SugaredLogger
	metrics *Metrics
}

// ProcessingResult is the outcome of ingesting one AGS file.
type ProcessingResult struct {
	ImportID   string            `json:"import_id" yaml:"import_id"`
	Source     string            `json:"source" yaml:"source"`
	DryRun     bool              `json:"dry_run" yaml:"dry_run"`
	AGSVersion string            `json:"ags_version,omitempty" yaml:"ags_version,omitempty"`
	Stats      ingestion.Stats   `json:"stats" yaml:"stats"`
	Issues     []ingestion.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
	StartTime  time.Time         `json:"start_time" yaml:"start_time"`
	EndTime    time.Time         `json:"end_time" yaml:"end_time"`

	// Entities carry NaN for unknown measurements, which encoding/json rejects; query the
	// stored import for a JSON view.
	Boreholes          []ground.Borehole          `json:"-" yaml:"-"`
	Strata             []ground.Stratum           `json:"-" yaml:"-"`
	ContaminantSamples []ground.ContaminantSample `json:"-" yaml:"-"`
}

// NewProcessor creates a processor writing to db. db may be nil when opts.DryRun is set.
func NewProcessor(db *sql.DB, opts Options, log *zap.SugaredLogger) *Processor {
	if log == nil {
		log = logger.ComponentLogger("ix")
	}
	p := &Processor{opts: opts, logger: log}
	if db != nil {
		p.store = storage.NewSQLStore(db, log)
	}
	return p
}

// WithMetrics makes the processor record every file it handles in m.
func (p *Processor) WithMetrics(m *Metrics) *Processor {
	p.metrics = m
	return p
}

// ProcessFile ingests a local AGS file.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*ProcessingResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return p.ProcessReader(ctx, path, f)
}

// ProcessSource ingests a local path or a remote AGS file (http, s3, gcs, ...).
func (p *Processor) ProcessSource(ctx context.Context, input string) (*ProcessingResult, error) {
	src, err := ResolveSource(ctx, input, p.logger)
	if err != nil {
		return nil, err
	}
	defer src.Cleanup()

	f, err := os.Open(src.LocalPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", src.LocalPath)
	}
	defer f.Close()
	return p.ProcessReader(ctx, src.OriginalInput, f)
}

// ProcessDirectory ingests every *.ags file directly inside dir in name order. A file that
// cannot be read is logged and skipped; the first storage error stops the run.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) ([]*ProcessingResult, error) {
	files, err := AGSFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*ProcessingResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := p.ProcessFile(ctx, path)
		if err != nil {
			if p.store != nil && !p.opts.DryRun && isStorageError(err) {
				return results, err
			}
			p.logger.Warnw("skipping unreadable AGS file", logger.FieldFile, path, logger.FieldError, err)
			continue
		}
		results = append(results, result)
	}
	logger.IxInfow("directory ingested", logger.FieldFile, dir, "files", len(files), "ingested", len(results))
	return results, nil
}

// ProcessReader ingests AGS content from r; source names it in results and storage.
func (p *Processor) ProcessReader(ctx context.Context, source string, r io.Reader) (*ProcessingResult, error) {
	result, err := p.ingest(ctx, source, r)
	p.metrics.observe(result, err)
	return result, err
}

func (p *Processor) ingest(ctx context.Context, source string, r io.Reader) (*ProcessingResult, error) {
	if !p.opts.DryRun && p.store == nil {
		return nil, errors.NewContractViolation("processor has no database and is not in dry-run mode")
	}

	result := &ProcessingResult{
		ImportID:  uuid.New().String(),
		Source:    source,
		DryRun:    p.opts.DryRun,
		StartTime: time.Now(),
	}
	ctx = logger.WithImportID(ctx, result.ImportID)
	log := logger.ChildLogger(p.logger, logger.FieldFile, source).With(logger.FieldsFromContext(ctx)...)
	collector := ingestion.NewCollector(log)

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", source)
	}
	text, err := decode(raw, p.opts.Encoding, collector)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", source)
	}

	table, tokenIssues, err := parser.TokenizeReader(bytes.NewReader(text))
	if err != nil {
		return nil, err
	}
	for _, issue := range tokenIssues {
		collector.Report(issue)
	}

	result.AGSVersion = checkEdition(table, p.opts.MinAGSVersion, collector)

	mapped, err := mapper.New(mapper.Config{BlankGeology: p.opts.BlankGeology}, collector).Map(table)
	if err != nil {
		return nil, err
	}

	result.Boreholes = mapped.Boreholes
	result.Strata = mapped.Strata
	result.ContaminantSamples = mapped.ContaminantSamples
	result.Issues = collector.Issues()
	result.EndTime = time.Now()
	result.Stats = stats(table, mapped, collector, result.EndTime.Sub(result.StartTime))

	if !p.opts.DryRun {
		if err := p.store.SaveImport(ctx, &storage.Import{
			ID:                 result.ImportID,
			Source:             source,
			AGSVersion:         result.AGSVersion,
			StartedAt:          result.StartTime,
			FinishedAt:         result.EndTime,
			Stats:              result.Stats,
			Issues:             result.Issues,
			Boreholes:          result.Boreholes,
			Strata:             result.Strata,
			ContaminantSamples: result.ContaminantSamples,
		}); err != nil {
			return result, &storageError{err}
		}
	}

	log.Infow("AGS file ingested",
		"boreholes", result.Stats.Boreholes,
		"strata", result.Stats.Strata,
		"samples", result.Stats.ContaminantSamples,
		"warnings", result.Stats.Warnings,
		"errors", result.Stats.Errors,
		"dry_run", p.opts.DryRun,
		logger.FieldDurationMS, result.Stats.DurationMs)

	return result, nil
}

// AGSFiles lists the *.ags files directly inside dir, sorted by name.
func AGSFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsAGSFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IsAGSFile reports whether name carries the .ags extension, in any case.
func IsAGSFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

func stats(table *parser.RawTable, mapped *mapper.Result, c *ingestion.Collector, took time.Duration) ingestion.Stats {
	return ingestion.Stats{
		LinesRead:          table.LinesRead,
		GroupsFound:        table.Len(),
		RowsRead:           table.RowCount(),
		Boreholes:          len(mapped.Boreholes),
		Strata:             len(mapped.Strata),
		ContaminantSamples: len(mapped.ContaminantSamples),
		RowsSkipped:        c.CountByCode()[ingestion.CodeRowSkipped],
		Warnings:           len(c.Warnings()),
		Errors:             len(c.Errors()),
		DurationMs:         took.Milliseconds(),
	}
}

// storageError marks a failure to persist, as opposed to a problem with one input file.
type storageError struct{ err error }

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func isStorageError(err error) bool {
	var se *storageError
	return errors.As(err, &se)
}
