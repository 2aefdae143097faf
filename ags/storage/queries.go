package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/teranos/qntx-ags/errors"
)

// ImportRecord is a stored ingestion run.
type ImportRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Source      string    `json:"source" yaml:"source"`
	AGSVersion  string    `json:"ags_version,omitempty" yaml:"ags_version,omitempty"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
	LinesRead   int       `json:"lines_read" yaml:"lines_read"`
	RowsRead    int       `json:"rows_read" yaml:"rows_read"`
	RowsSkipped int       `json:"rows_skipped" yaml:"rows_skipped"`
	Warnings    int       `json:"warnings" yaml:"warnings"`
	Errors      int       `json:"errors" yaml:"errors"`
}

// Coordinates holds nullable ordinates; nil means unknown.
type Coordinates struct {
	X *float64 `json:"x" yaml:"x"`
	Y *float64 `json:"y" yaml:"y"`
	Z *float64 `json:"z" yaml:"z"`
}

// BoreholeRecord is a stored borehole. Strata and Samples are only filled by GetBorehole.
type BoreholeRecord struct {
	ImportID    string          `json:"import_id" yaml:"import_id"`
	ID          string          `json:"id" yaml:"id"`
	Top         Coordinates     `json:"top" yaml:"top"`
	Bottom      Coordinates     `json:"bottom" yaml:"bottom"`
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	Status      string          `json:"status,omitempty" yaml:"status,omitempty"`
	Purpose     string          `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Remarks     string          `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	StartDate   string          `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string          `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	StrataCount int             `json:"strata_count" yaml:"strata_count"`
	SampleCount int             `json:"sample_count" yaml:"sample_count"`
	Strata      []StratumRecord `json:"strata,omitempty" yaml:"strata,omitempty"`
	Samples     []SampleRecord  `json:"samples,omitempty" yaml:"samples,omitempty"`
}

type StratumRecord struct {
	ImportID           string  `json:"import_id" yaml:"import_id"`
	BoreholeID         string  `json:"borehole_id" yaml:"borehole_id"`
	Top                float64 `json:"top" yaml:"top"`
	Bottom             float64 `json:"bottom" yaml:"bottom"`
	Description        string  `json:"description,omitempty" yaml:"description,omitempty"`
	Legend             string  `json:"legend,omitempty" yaml:"legend,omitempty"`
	ObservedGeology    string  `json:"observed_geology" yaml:"observed_geology"`
	InterpretedGeology string  `json:"interpreted_geology,omitempty" yaml:"interpreted_geology,omitempty"`
	LexiconCode        string  `json:"lexicon_code,omitempty" yaml:"lexicon_code,omitempty"`
	Remarks            string  `json:"remarks,omitempty" yaml:"remarks,omitempty"`
}

type SampleRecord struct {
	ImportID       string   `json:"import_id" yaml:"import_id"`
	BoreholeID     string   `json:"borehole_id" yaml:"borehole_id"`
	Top            float64  `json:"top" yaml:"top"`
	ChemicalCode   string   `json:"chemical_code,omitempty" yaml:"chemical_code,omitempty"`
	ChemicalName   string   `json:"chemical_name,omitempty" yaml:"chemical_name,omitempty"`
	ResultValue    *float64 `json:"result_value" yaml:"result_value"`
	ResultUnit     string   `json:"result_unit,omitempty" yaml:"result_unit,omitempty"`
	SampleType     string   `json:"sample_type,omitempty" yaml:"sample_type,omitempty"`
	SampleRef      string   `json:"sample_ref,omitempty" yaml:"sample_ref,omitempty"`
	Matrix         string   `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	LabName        string   `json:"lab_name,omitempty" yaml:"lab_name,omitempty"`
	AnalysisDate   string   `json:"analysis_date,omitempty" yaml:"analysis_date,omitempty"`
	DetectionLimit *float64 `json:"detection_limit" yaml:"detection_limit"`
	Detected       bool     `json:"detected" yaml:"detected"`
}

// Stats summarises the database contents.
type Stats struct {
	Imports            int        `json:"imports" yaml:"imports"`
	Boreholes          int        `json:"boreholes" yaml:"boreholes"`
	Strata             int        `json:"strata" yaml:"strata"`
	ContaminantSamples int        `json:"contaminant_samples" yaml:"contaminant_samples"`
	Issues             int        `json:"issues" yaml:"issues"`
	LastImport         *time.Time `json:"last_import,omitempty" yaml:"last_import,omitempty"`
}

// Filter narrows list queries. Zero values match everything.
type Filter struct {
	ImportID   string
	BoreholeID string
	Limit      int
}

func (f Filter) where(table string) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if f.ImportID != "" {
		clauses = append(clauses, table+".import_id = ?")
		args = append(args, f.ImportID)
	}
	if f.BoreholeID != "" {
		clauses = append(clauses, table+".loca_id = ?")
		args = append(args, f.BoreholeID)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (f Filter) limit() string {
	if f.Limit > 0 {
		return " LIMIT ?"
	}
	return ""
}

func (f Filter) limitArgs(args []interface{}) []interface{} {
	if f.Limit > 0 {
		return append(args, f.Limit)
	}
	return args
}

const boreholeColumns = `b.import_id, b.loca_id, b.top_x, b.top_y, b.top_z, b.bottom_x, b.bottom_y, b.bottom_z,
	COALESCE(b.loca_type, ''), COALESCE(b.status, ''), COALESCE(b.purpose, ''), COALESCE(b.remarks, ''),
	COALESCE(b.start_date, ''), COALESCE(b.end_date, ''),
	(SELECT COUNT(*) FROM strata s WHERE s.import_id = b.import_id AND s.loca_id = b.loca_id),
	(SELECT COUNT(*) FROM contaminant_samples c WHERE c.import_id = b.import_id AND c.loca_id = b.loca_id)`

const stratumColumns = `s.import_id, s.loca_id, s.top, s.bottom, COALESCE(s.description, ''), COALESCE(s.legend, ''),
	s.observed_geology, COALESCE(s.interpreted_geology, ''), COALESCE(s.lexicon_code, ''), COALESCE(s.remarks, '')`

const sampleColumns = `c.import_id, c.loca_id, c.top, COALESCE(c.chemical_code, ''), COALESCE(c.chemical_name, ''),
	c.result_value, COALESCE(c.result_unit, ''), COALESCE(c.sample_type, ''), COALESCE(c.sample_ref, ''),
	COALESCE(c.matrix, ''), COALESCE(c.lab_name, ''), COALESCE(c.analysis_date, ''), c.detection_limit, c.detected`

// ListImports returns imports, most recent first.
func (s *SQLStore) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	query := `SELECT id, source, COALESCE(ags_version, ''), started_at, finished_at, lines_read, rows_read,
		rows_skipped, warnings, errors FROM imports ORDER BY started_at DESC`
	f := Filter{Limit: limit}
	rows, err := s.db.QueryContext(ctx, query+f.limit(), f.limitArgs(nil)...)
	if err != nil {
		return nil, errors.Wrap(err, "query imports")
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.AGSVersion, &r.StartedAt, &r.FinishedAt,
			&r.LinesRead, &r.RowsRead, &r.RowsSkipped, &r.Warnings, &r.Errors); err != nil {
			return nil, errors.Wrap(err, "scan import")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate imports")
}

// ListBoreholes returns boreholes in import and file order.
func (s *SQLStore) ListBoreholes(ctx context.Context, f Filter) ([]BoreholeRecord, error) {
	where, args := f.where("b")
	query := "SELECT " + boreholeColumns + " FROM boreholes b" + where + " ORDER BY b.import_id, b.seq" + f.limit()

	rows, err := s.db.QueryContext(ctx, query, f.limitArgs(args)...)
	if err != nil {
		return nil, errors.Wrap(err, "query boreholes")
	}
	defer rows.Close()

	var out []BoreholeRecord
	for rows.Next() {
		r, err := scanBorehole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, errors.Wrap(rows.Err(), "iterate boreholes")
}

// GetBorehole returns the most recently imported borehole with the given LOCA_ID, with its
// strata and samples.
func (s *SQLStore) GetBorehole(ctx context.Context, id string) (*BoreholeRecord, error) {
	query := "SELECT " + boreholeColumns + ` FROM boreholes b JOIN imports i ON i.id = b.import_id
		WHERE b.loca_id = ? ORDER BY i.started_at DESC, b.pk DESC LIMIT 1`

	r, err := scanBorehole(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("borehole %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	f := Filter{ImportID: r.ImportID, BoreholeID: r.ID}
	if r.Strata, err = s.ListStrata(ctx, f); err != nil {
		return nil, err
	}
	if r.Samples, err = s.ListSamples(ctx, f); err != nil {
		return nil, err
	}
	return r, nil
}

// ListStrata returns strata in import and file order.
func (s *SQLStore) ListStrata(ctx context.Context, f Filter) ([]StratumRecord, error) {
	where, args := f.where("s")
	query := "SELECT " + stratumColumns + " FROM strata s" + where + " ORDER BY s.import_id, s.seq" + f.limit()

	rows, err := s.db.QueryContext(ctx, query, f.limitArgs(args)...)
	if err != nil {
		return nil, errors.Wrap(err, "query strata")
	}
	defer rows.Close()

	var out []StratumRecord
	for rows.Next() {
		var r StratumRecord
		if err := rows.Scan(&r.ImportID, &r.BoreholeID, &r.Top, &r.Bottom, &r.Description, &r.Legend,
			&r.ObservedGeology, &r.InterpretedGeology, &r.LexiconCode, &r.Remarks); err != nil {
			return nil, errors.Wrap(err, "scan stratum")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate strata")
}

// ListSamples returns contaminant samples in import and file order.
func (s *SQLStore) ListSamples(ctx context.Context, f Filter) ([]SampleRecord, error) {
	where, args := f.where("c")
	query := "SELECT " + sampleColumns + " FROM contaminant_samples c" + where + " ORDER BY c.import_id, c.seq" + f.limit()

	rows, err := s.db.QueryContext(ctx, query, f.limitArgs(args)...)
	if err != nil {
		return nil, errors.Wrap(err, "query contaminant samples")
	}
	defer rows.Close()

	var out []SampleRecord
	for rows.Next() {
		var r SampleRecord
		var value, limit sql.NullFloat64
		if err := rows.Scan(&r.ImportID, &r.BoreholeID, &r.Top, &r.ChemicalCode, &r.ChemicalName, &value,
			&r.ResultUnit, &r.SampleType, &r.SampleRef, &r.Matrix, &r.LabName, &r.AnalysisDate, &limit, &r.Detected); err != nil {
			return nil, errors.Wrap(err, "scan contaminant sample")
		}
		r.ResultValue, r.DetectionLimit = floatPtr(value), floatPtr(limit)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate contaminant samples")
}

// Stats counts rows per table.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	counts := []struct {
		table string
		into  *int
	}{
		{"imports", &st.Imports},
		{"boreholes", &st.Boreholes},
		{"strata", &st.Strata},
		{"contaminant_samples", &st.ContaminantSamples},
		{"ingest_issues", &st.Issues},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.into); err != nil {
			return nil, errors.Wrapf(err, "count %s", c.table)
		}
	}

	if st.Imports > 0 {
		var last time.Time
		if err := s.db.QueryRowContext(ctx, "SELECT started_at FROM imports ORDER BY started_at DESC LIMIT 1").Scan(&last); err != nil {
			return nil, errors.Wrap(err, "query last import")
		}
		st.LastImport = &last
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBorehole(row scanner) (*BoreholeRecord, error) {
	var r BoreholeRecord
	var tx, ty, tz, bx, by, bz sql.NullFloat64
	err := row.Scan(&r.ImportID, &r.ID, &tx, &ty, &tz, &bx, &by, &bz,
		&r.Type, &r.Status, &r.Purpose, &r.Remarks, &r.StartDate, &r.EndDate, &r.StrataCount, &r.SampleCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan borehole")
	}
	r.Top = Coordinates{X: floatPtr(tx), Y: floatPtr(ty), Z: floatPtr(tz)}
	r.Bottom = Coordinates{X: floatPtr(bx), Y: floatPtr(by), Z: floatPtr(bz)}
	return &r, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
