package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
	"github.com/teranos/qntx-ags/ags/units"
)

// loadBearing headings are required to build an entity at all; their absence is an error.
var loadBearing = map[string]bool{
	"LOCA_ID":   true,
	"GEOL_TOP":  true,
	"GEOL_BASE": true,
}

// pass holds the state of mapping one group: the group itself and the de-duplication of
// group-wide issues, which are reported once per heading rather than once per row.
type pass struct {
	m        *Mapper
	group    *parser.Group
	reported map[string]bool
}

func (m *Mapper) newPass(group *parser.Group) *pass {
	return &pass{m: m, group: group, reported: make(map[string]bool)}
}

func (p *pass) once(key string) bool {
	if p.reported[key] {
		return false
	}
	p.reported[key] = true
	return true
}

// row returns a reader for the i-th row of the group.
func (p *pass) row(i int) *fields {
	f := &fields{pass: p, row: p.group.Rows[i], index: i}
	if i < len(p.group.Lines) {
		f.line = p.group.Lines[i]
	}
	f.id = strings.TrimSpace(f.row["LOCA_ID"])
	return f
}

// fields reads typed values from one row. Lookups never fail: a missing heading or a bad
// value is reported and the zero value of the type is returned (empty string, NaN, zero time,
// false).
type fields struct {
	pass  *pass
	row   parser.Row
	index int
	line  int
	id    string

	// auxiliary readers record missing headings at info level; they serve property bundles
	// that most files leave out.
	auxiliary bool
}

// aux returns a reader over the same row for auxiliary property columns.
func (f *fields) aux() *fields {
	a := *f
	a.auxiliary = true
	return &a
}

func (f *fields) optional(heading string) string {
	return f.aux().String(heading)
}

func (f *fields) issue(code string, severity ingestion.Severity, heading, msg string) {
	f.pass.m.reporter.Report(ingestion.Issue{
		Stage:    stage,
		Code:     code,
		Severity: severity,
		Message:  msg,
		Group:    f.pass.group.Key,
		Heading:  heading,
		RecordID: f.id,
		Row:      f.index + 1,
		Line:     f.line,
	})
}

// raw returns the trimmed value of heading and whether the heading exists in the group.
func (f *fields) raw(heading string) (string, bool) {
	v, ok := f.row[heading]
	if !ok {
		if f.pass.once("missing:" + heading) {
			severity := ingestion.SeverityWarning
			switch {
			case loadBearing[heading]:
				severity = ingestion.SeverityError
			case f.auxiliary:
				severity = ingestion.SeverityInfo
			}
			f.issue(ingestion.CodeFieldMissing, severity, heading,
				fmt.Sprintf("heading %s not found in %s section", heading, section(heading)))
		}
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Has reports whether the heading is present with a non-empty value, without reporting.
func (f *fields) Has(heading string) bool {
	return strings.TrimSpace(f.row[heading]) != ""
}

func (f *fields) String(heading string) string {
	v, _ := f.raw(heading)
	return v
}

// Float parses a plain number without unit conversion. Empty values are NaN without an issue;
// "Inf" and "NaN" spellings are unparsable like any other non-number.
func (f *fields) Float(heading string) float64 {
	v, ok := f.raw(heading)
	if !ok || v == "" {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		f.issue(ingestion.CodeFieldUnparsable, ingestion.SeverityWarning, heading,
			fmt.Sprintf("value %q is not a number", v))
		return math.NaN()
	}
	return n
}

// Measure parses a number and normalises it with the unit the group declares for heading.
func (f *fields) Measure(heading string) float64 {
	unit, declared := f.pass.group.Unit(heading)
	if !declared && f.pass.group.HasHeading(heading) && f.pass.once("nounit:"+heading) {
		f.issue(ingestion.CodeUnitUnrecognized, ingestion.SeverityWarning, heading,
			"no unit declared; values not converted")
	}
	return f.MeasureIn(heading, unit)
}

// MeasureIn parses a number and normalises it from the given unit.
func (f *fields) MeasureIn(heading, unit string) float64 {
	v := f.Float(heading)
	n, err := units.Normalize(v, unit)
	if units.IsUnrecognized(err) && f.pass.once("unit:"+heading+":"+unit) {
		f.issue(ingestion.CodeUnitUnrecognized, ingestion.SeverityWarning, heading,
			fmt.Sprintf("unit %q not recognised; value not converted", unit))
	}
	return n
}

func (f *fields) Int(heading string) int {
	v, ok := f.raw(heading)
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.issue(ingestion.CodeFieldUnparsable, ingestion.SeverityWarning, heading,
			fmt.Sprintf("value %q is not an integer", v))
		return 0
	}
	return n
}

// Bool is true for Y or yes in any case.
func (f *fields) Bool(heading string) bool {
	v, _ := f.raw(heading)
	return strings.EqualFold(v, "Y") || strings.EqualFold(v, "yes")
}

// Date parses a date using the format the group declares in its UNIT record for heading.
func (f *fields) Date(heading string) time.Time {
	v, ok := f.raw(heading)
	if !ok || v == "" {
		return time.Time{}
	}
	unit, _ := f.pass.group.Unit(heading)
	t, err := ParseDate(v, unit)
	if err != nil {
		f.issue(ingestion.CodeFieldUnparsable, ingestion.SeverityWarning, heading,
			fmt.Sprintf("value %q does not match date format %q", v, unit))
		return time.Time{}
	}
	return t
}

// section is the heading prefix before the first underscore (GEOL for GEOL_TOP).
func section(heading string) string {
	if i := strings.IndexByte(heading, '_'); i > 0 {
		return heading[:i]
	}
	return heading
}

// fallbackLayouts are tried when a date column declares no format.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006",
	time.RFC3339,
}

// ParseDate parses an AGS date value. format is the AGS UNIT entry of the column
// (yyyy-mm-dd, dd/mm/yyyy, yyyy-mm-ddThh:mm ...); an empty format tries common layouts.
func ParseDate(value, format string) (time.Time, error) {
	if strings.TrimSpace(format) == "" {
		var err error
		for _, layout := range fallbackLayouts {
			t, perr := time.Parse(layout, value)
			if perr == nil {
				return t, nil
			}
			err = perr
		}
		return time.Time{}, err
	}
	return time.Parse(DateLayout(format), value)
}

// DateLayout translates an AGS date format into a Go reference layout. "mm" is minutes when it
// follows an hour field, months otherwise.
func DateLayout(format string) string {
	var b strings.Builder
	lower := strings.ToLower(format)
	if len(lower) != len(format) {
		lower = format
	}
	afterHour := false
	for i := 0; i < len(lower); {
		switch {
		case strings.HasPrefix(lower[i:], "yyyy"):
			b.WriteString("2006")
			i += 4
			afterHour = false
		case strings.HasPrefix(lower[i:], "yy"):
			b.WriteString("06")
			i += 2
			afterHour = false
		case strings.HasPrefix(lower[i:], "dd"):
			b.WriteString("02")
			i += 2
			afterHour = false
		case strings.HasPrefix(lower[i:], "hh"):
			b.WriteString("15")
			i += 2
			afterHour = true
		case strings.HasPrefix(lower[i:], "mm"):
			if afterHour {
				b.WriteString("04")
			} else {
				b.WriteString("01")
			}
			i += 2
		case strings.HasPrefix(lower[i:], "ss"):
			b.WriteString("05")
			i += 2
		default:
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
