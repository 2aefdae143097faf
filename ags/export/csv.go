// Package export writes stored AGS entities as delimited text.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/teranos/qntx-ags/ags/storage"
	"github.com/teranos/qntx-ags/errors"
)

// Kind selects the entity table to export.
type Kind string

const (
	KindBoreholes Kind = "boreholes"
	KindStrata    Kind = "strata"
	KindSamples   Kind = "samples"
)

// Kinds lists the exportable kinds in display order.
var Kinds = []Kind{KindBoreholes, KindStrata, KindSamples}

// DefaultHeaders per kind; any other header is written as an empty column.
var DefaultHeaders = map[Kind][]string{
	KindBoreholes: {"import_id", "loca_id", "top_x", "top_y", "top_z", "bottom_x", "bottom_y", "bottom_z", "type", "status", "strata", "samples"},
	KindStrata:    {"import_id", "loca_id", "top", "bottom", "legend", "observed_geology", "interpreted_geology", "description"},
	KindSamples:   {"import_id", "loca_id", "top", "chemical_code", "chemical_name", "result_value", "result_unit", "detection_limit", "detected", "lab_name"},
}

// Source is the read side of storage.SQLStore.
type Source interface {
	ListBoreholes(ctx context.Context, f storage.Filter) ([]storage.BoreholeRecord, error)
	ListStrata(ctx context.Context, f storage.Filter) ([]storage.StratumRecord, error)
	ListSamples(ctx context.Context, f storage.Filter) ([]storage.SampleRecord, error)
}

// Payload describes one export.
type Payload struct {
	Kind      Kind
	Filename  string
	Delimiter string   // single character, default ","
	Headers   []string // default DefaultHeaders[Kind]
	Filter    storage.Filter
}

// Execute writes the export to payload.Filename and returns the number of data rows.
func Execute(ctx context.Context, src Source, payload Payload) (int, error) {
	file, err := os.Create(payload.Filename)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	n, err := Write(ctx, file, src, payload)
	if err != nil {
		return n, err
	}
	return n, errors.Wrap(file.Close(), "failed to close CSV file")
}

// Write writes the export to w and returns the number of data rows.
func Write(ctx context.Context, w io.Writer, src Source, payload Payload) (int, error) {
	rows, err := collect(ctx, src, payload.Kind, payload.Filter)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, errors.NewNotFoundError("no %s found to export", payload.Kind)
	}

	writer := csv.NewWriter(w)
	if payload.Delimiter != "" && payload.Delimiter != "," {
		if len([]rune(payload.Delimiter)) > 1 {
			return 0, errors.NewInvalidRequestError("csv delimiter must be a single character")
		}
		writer.Comma = []rune(payload.Delimiter)[0]
	}

	headers := payload.Headers
	if len(headers) == 0 {
		headers = DefaultHeaders[payload.Kind]
	}
	if err := writer.Write(headers); err != nil {
		return 0, errors.Wrap(err, "failed to write headers")
	}

	for _, values := range rows {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = values[h]
		}
		if err := writer.Write(row); err != nil {
			return 0, errors.Wrap(err, "failed to write row")
		}
	}

	writer.Flush()
	return len(rows), errors.Wrap(writer.Error(), "failed to flush CSV")
}

func collect(ctx context.Context, src Source, kind Kind, f storage.Filter) ([]map[string]string, error) {
	var out []map[string]string
	switch kind {
	case KindBoreholes:
		records, err := src.ListBoreholes(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			out = append(out, map[string]string{
				"import_id":  r.ImportID,
				"loca_id":    r.ID,
				"top_x":      formatPtr(r.Top.X),
				"top_y":      formatPtr(r.Top.Y),
				"top_z":      formatPtr(r.Top.Z),
				"bottom_x":   formatPtr(r.Bottom.X),
				"bottom_y":   formatPtr(r.Bottom.Y),
				"bottom_z":   formatPtr(r.Bottom.Z),
				"type":       r.Type,
				"status":     r.Status,
				"purpose":    r.Purpose,
				"remarks":    r.Remarks,
				"start_date": r.StartDate,
				"end_date":   r.EndDate,
				"strata":     strconv.Itoa(r.StrataCount),
				"samples":    strconv.Itoa(r.SampleCount),
			})
		}
	case KindStrata:
		records, err := src.ListStrata(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			out = append(out, map[string]string{
				"import_id":           r.ImportID,
				"loca_id":             r.BoreholeID,
				"top":                 formatFloat(r.Top),
				"bottom":              formatFloat(r.Bottom),
				"legend":              r.Legend,
				"observed_geology":    r.ObservedGeology,
				"interpreted_geology": r.InterpretedGeology,
				"description":         r.Description,
				"lexicon_code":        r.LexiconCode,
				"remarks":             r.Remarks,
			})
		}
	case KindSamples:
		records, err := src.ListSamples(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			out = append(out, map[string]string{
				"import_id":       r.ImportID,
				"loca_id":         r.BoreholeID,
				"top":             formatFloat(r.Top),
				"chemical_code":   r.ChemicalCode,
				"chemical_name":   r.ChemicalName,
				"result_value":    formatPtr(r.ResultValue),
				"result_unit":     r.ResultUnit,
				"detection_limit": formatPtr(r.DetectionLimit),
				"detected":        strconv.FormatBool(r.Detected),
				"lab_name":        r.LabName,
				"sample_type":     r.SampleType,
				"sample_ref":      r.SampleRef,
				"matrix":          r.Matrix,
				"analysis_date":   r.AnalysisDate,
			})
		}
	default:
		return nil, errors.NewInvalidRequestError("unknown export kind %q (want boreholes, strata or samples)", kind)
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
