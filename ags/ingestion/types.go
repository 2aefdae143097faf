// Package ingestion provides the diagnostic types shared by the AGS tokenizer, the record
// mapper and the ingestion processor. Data-quality problems are reported as Issues through a
// Reporter; they never abort a parse.
package ingestion

import "fmt"

// Severity of an Issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue codes.
const (
	CodeTokenizer        = "tokenizer"         // malformed or out-of-place line
	CodeStructural       = "structural"        // group missing, or without HEADING/DATA
	CodeFieldMissing     = "field_missing"     // heading absent from the group
	CodeFieldUnparsable  = "field_unparsable"  // value present but not numeric/date
	CodeUnitUnrecognized = "unit_unrecognized" // value passed through unconverted
	CodeRowSkipped       = "row_skipped"       // load-bearing field missing, entity not built
	CodeGeometryFallback = "geometry_fallback" // coordinates taken from a fallback source
	CodeEdition          = "edition"           // AGS edition outside the supported range
	CodeEncoding         = "encoding"          // content re-decoded with a fallback charset
)

// Issue represents a warning or error found while ingesting an AGS file.
type Issue struct {
	Stage    string   `json:"stage" yaml:"stage"` // "tokenize", "map", "ingest"
	Code     string   `json:"code" yaml:"code"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Group    string   `json:"group,omitempty" yaml:"group,omitempty"`
	Heading  string   `json:"heading,omitempty" yaml:"heading,omitempty"`
	RecordID string   `json:"record_id,omitempty" yaml:"record_id,omitempty"` // LOCA_ID of the row, when known
	Row      int      `json:"row,omitempty" yaml:"row,omitempty"`             // 1-based DATA row within the group
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`           // 1-based physical line in the file
	Hints    []string `json:"hints,omitempty" yaml:"hints,omitempty"`
}

// String renders the issue on one line for logs and terminal output.
func (i Issue) String() string {
	loc := i.Group
	if i.Heading != "" {
		loc += "." + i.Heading
	}
	if i.RecordID != "" {
		loc += fmt.Sprintf(" [%s]", i.RecordID)
	}
	if i.Row > 0 {
		loc += fmt.Sprintf(" row %d", i.Row)
	}
	if i.Line > 0 {
		loc += fmt.Sprintf(" line %d", i.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s %s: %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s %s (%s): %s", i.Severity, i.Code, loc, i.Message)
}

// Stats captures counts for one ingestion run.
type Stats struct {
	LinesRead          int   `json:"lines_read" yaml:"lines_read"`
	GroupsFound        int   `json:"groups_found" yaml:"groups_found"`
	RowsRead           int   `json:"rows_read" yaml:"rows_read"`
	Boreholes          int   `json:"boreholes" yaml:"boreholes"`
	Strata             int   `json:"strata" yaml:"strata"`
	ContaminantSamples int   `json:"contaminant_samples" yaml:"contaminant_samples"`
	RowsSkipped        int   `json:"rows_skipped" yaml:"rows_skipped"`
	Warnings           int   `json:"warnings" yaml:"warnings"`
	Errors             int   `json:"errors" yaml:"errors"`
	DurationMs         int64 `json:"duration_ms" yaml:"duration_ms"`
}

// Reporter is the sink for issues. Implementations must be safe to call from a single
// goroutine; the parse pipeline never reports concurrently.
type Reporter interface {
	Report(issue Issue)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Issue)

// Report implements Reporter.
func (f ReporterFunc) Report(issue Issue) { f(issue) }
