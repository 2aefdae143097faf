// Package storage persists mapped AGS imports in SQLite and reads them back for the ax, so and
// db commands.
package storage

import (
	"context"
	"database/sql"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
	"github.com/teranos/qntx-ags/sym"
)

const dateLayout = "2006-01-02"

// Query constants
const (
	ImportInsertQuery = `
		INSERT INTO imports (id, source, ags_version, started_at, finished_at, lines_read, rows_read, rows_skipped, warnings, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	BoreholeInsertQuery = `
		INSERT INTO boreholes (import_id, loca_id, seq, top_x, top_y, top_z, bottom_x, bottom_y, bottom_z,
			loca_type, status, purpose, remarks, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	StratumInsertQuery = `
		INSERT INTO strata (import_id, loca_id, seq, top, bottom, description, legend, observed_geology,
			interpreted_geology, lexicon_code, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	SampleInsertQuery = `
		INSERT INTO contaminant_samples (import_id, loca_id, seq, top, chemical_code, chemical_name, result_value,
			result_unit, sample_type, sample_ref, matrix, lab_name, analysis_date, detection_limit, detected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	IssueInsertQuery = `
		INSERT INTO ingest_issues (import_id, stage, code, severity, message, group_key, heading, record_id, row_num, line_num)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// Import is everything one ingestion run produced.
type Import struct {
	ID         string
	Source     string
	AGSVersion string
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      ingestion.Stats
	Issues     []ingestion.Issue

	Boreholes          []ground.Borehole
	Strata             []ground.Stratum
	ContaminantSamples []ground.ContaminantSample
}

// SQLStore reads and writes AGS imports.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a store over a migrated database. A nil logger uses the "storage"
// component logger.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger) *SQLStore {
	if log == nil {
		log = logger.ComponentLogger("storage")
	}
	return &SQLStore{db: db, logger: log}
}

// SaveImport writes an import and all its entities and issues in one transaction.
func (s *SQLStore) SaveImport(ctx context.Context, imp *Import) error {
	if imp == nil || imp.ID == "" {
		return errors.NewInvalidRequestError("import must have an id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin import transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, ImportInsertQuery,
		imp.ID, imp.Source, imp.AGSVersion, imp.StartedAt.UTC(), imp.FinishedAt.UTC(),
		imp.Stats.LinesRead, imp.Stats.RowsRead, imp.Stats.RowsSkipped, imp.Stats.Warnings, imp.Stats.Errors,
	); err != nil {
		return errors.Wrapf(err, "insert import %s", imp.ID)
	}

	for i, b := range imp.Boreholes {
		m, _ := b.Methodology()
		if m == nil {
			m = &ground.Methodology{}
		}
		var start, end sql.NullString
		if ref, ok := b.Reference(); ok {
			start, end = nullDate(ref.StartDate), nullDate(ref.EndDate)
		}
		if _, err := tx.ExecContext(ctx, BoreholeInsertQuery,
			imp.ID, b.ID, i,
			nullFloat(b.Top.X), nullFloat(b.Top.Y), nullFloat(b.Top.Z),
			nullFloat(b.Bottom.X), nullFloat(b.Bottom.Y), nullFloat(b.Bottom.Z),
			m.Type, m.Status, m.Purpose, m.Remarks, start, end,
		); err != nil {
			return errors.Wrapf(err, "insert borehole %s", b.ID)
		}
	}

	for i, st := range imp.Strata {
		var lexicon, remarks string
		if st.Reference != nil {
			lexicon, remarks = st.Reference.LexiconCode, st.Reference.Remarks
		}
		if _, err := tx.ExecContext(ctx, StratumInsertQuery,
			imp.ID, st.ID, i, st.Top, st.Bottom, st.LogDescription, st.Legend, st.ObservedGeology,
			st.InterpretedGeology, lexicon, remarks,
		); err != nil {
			return errors.Wrapf(err, "insert stratum %d of %s", i, st.ID)
		}
	}

	for i, cs := range imp.ContaminantSamples {
		if _, err := tx.ExecContext(ctx, SampleInsertQuery,
			imp.ID, cs.ID, i, cs.Top, cs.Chemical, cs.Name, nullFloat(cs.ResultValue),
			cs.ResultUnit, cs.Type, cs.Reference.Reference, cs.Test.Matrix, cs.Analysis.LabName,
			nullDate(cs.Test.AnalysisDate), nullFloat(cs.Detection.DetectionLimit), cs.Result.Detected,
		); err != nil {
			return errors.Wrapf(err, "insert contaminant sample %d of %s", i, cs.ID)
		}
	}

	for _, issue := range imp.Issues {
		if _, err := tx.ExecContext(ctx, IssueInsertQuery,
			imp.ID, issue.Stage, issue.Code, string(issue.Severity), issue.Message,
			issue.Group, issue.Heading, issue.RecordID, issue.Row, issue.Line,
		); err != nil {
			return errors.Wrap(err, "insert issue")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit import %s", imp.ID)
	}

	s.logger.Infow("Saved import",
		logger.FieldImportID, imp.ID,
		logger.FieldSymbol, sym.DB,
		"boreholes", len(imp.Boreholes),
		"strata", len(imp.Strata),
		"samples", len(imp.ContaminantSamples),
		"issues", len(imp.Issues))
	return nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}
