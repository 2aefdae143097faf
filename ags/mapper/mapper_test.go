package mapper

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
	"github.com/teranos/qntx-ags/errors"
	qntxtest "github.com/teranos/qntx-ags/internal/testing"
)

// newGroup builds a group whose rows carry the full heading set.
func newGroup(key string, headings []string, units map[string]string, rows ...[]string) *parser.Group {
	g := &parser.Group{Key: key, Headings: headings, Units: units, Types: map[string]string{}}
	if g.Units == nil {
		g.Units = map[string]string{}
	}
	for i, values := range rows {
		row := parser.Row{}
		for j, h := range headings {
			row[h] = values[j]
		}
		g.Rows = append(g.Rows, row)
		g.Lines = append(g.Lines, 10+i)
	}
	return g
}

func geol(units map[string]string, rows ...[]string) *parser.Group {
	return newGroup("GEOL",
		[]string{"LOCA_ID", "GEOL_TOP", "GEOL_BASE", "GEOL_DESC", "GEOL_LEG", "GEOL_GEOL", "GEOL_GEO2"},
		units, rows...)
}

var metres = map[string]string{"GEOL_TOP": "m", "GEOL_BASE": "m"}

func newMapper(t *testing.T) (*Mapper, *ingestion.Collector) {
	t.Helper()
	collector := ingestion.NewCollector(nil)
	return New(Config{BlankGeology: "UNKNOWN"}, collector), collector
}

func issuesWithCode(issues []ingestion.Issue, code string) []ingestion.Issue {
	var out []ingestion.Issue
	for _, issue := range issues {
		if issue.Code == code {
			out = append(out, issue)
		}
	}
	return out
}

func TestMap_SampleFile(t *testing.T) {
	table, tokIssues := parser.Tokenize(qntxtest.SampleAGSLines())
	require.Empty(t, tokIssues)

	m, collector := newMapper(t)
	result, err := m.Map(table)
	require.NoError(t, err)

	require.Len(t, result.Strata, 3)
	require.Len(t, result.ContaminantSamples, 2, "BH2 sample has no depth and is dropped")
	require.Len(t, result.Boreholes, 2)

	bh1 := result.Boreholes[0]
	assert.Equal(t, "BH1", bh1.ID)
	assert.InDelta(t, 523145.20, bh1.Top.X, 1e-9)
	assert.InDelta(t, 178432.10, bh1.Top.Y, 1e-9)
	assert.InDelta(t, 12.5, bh1.Top.Z, 1e-9)
	assert.InDelta(t, -7.5, bh1.Bottom.Z, 1e-9)
	assert.Equal(t, bh1.Top.X, bh1.Bottom.X, "vertical fallback reuses the top easting")
	assert.InDelta(t, 20.0, bh1.Depth(), 1e-9)
	assert.Len(t, bh1.Strata, 2)
	assert.Len(t, bh1.ContaminantSamples, 2)

	methodology, ok := bh1.Methodology()
	require.True(t, ok)
	assert.Equal(t, "CP", methodology.Type)
	assert.Equal(t, "Water strike at 4.2m, sealed", methodology.Remarks)
	ref, ok := bh1.Reference()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), ref.StartDate)
	_, ok = bh1.Location()
	assert.False(t, ok, "no location columns carry values")

	bh2 := result.Boreholes[1]
	assert.InDelta(t, 105.5, bh2.Top.X, 1e-9)
	assert.InDelta(t, 220.25, bh2.Top.Y, 1e-9)
	assert.InDelta(t, -5.0, bh2.Bottom.Z, 1e-9)
	assert.Len(t, bh2.Strata, 1)
	assert.Empty(t, bh2.ContaminantSamples)

	assert.Equal(t, "MG", result.Strata[0].ObservedGeology)
	assert.Equal(t, "UNKNOWN", result.Strata[1].ObservedGeology)
	require.NotNil(t, result.Strata[0].Reference)
	assert.Equal(t, "MGR", result.Strata[0].Reference.LexiconCode)
	assert.Nil(t, result.Strata[2].Reference)

	arsenic := result.ContaminantSamples[0]
	assert.InDelta(t, 0.5, arsenic.Top, 1e-9)
	assert.InDelta(t, 12e-6, arsenic.ResultValue, 1e-15)
	assert.Equal(t, "mg/kg", arsenic.ResultUnit)
	assert.InDelta(t, 0.5e-6, arsenic.Detection.DetectionLimit, 1e-15)
	assert.Equal(t, 1, arsenic.Analysis.DilutionFactor)
	assert.Equal(t, "ACME Labs", arsenic.Analysis.LabName)
	assert.True(t, arsenic.Result.Detected)
	assert.False(t, arsenic.Result.Organic)
	assert.True(t, arsenic.Result.Reportable)
	assert.Equal(t, time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC), arsenic.Test.AnalysisDate)
	assert.Equal(t, "S1", arsenic.Reference.ID)

	lead := result.ContaminantSamples[1]
	assert.InDelta(t, 2.0, lead.Top, 1e-9, "SPEC_DPTH used when SAMP_TOP is empty")
	assert.InDelta(t, 850e-9, lead.ResultValue, 1e-15)
	assert.True(t, math.IsNaN(lead.Detection.DetectionLimit))

	skipped := issuesWithCode(collector.Issues(), ingestion.CodeRowSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "ERES", skipped[0].Group)
	assert.Equal(t, "BH2", skipped[0].RecordID)
	assert.Equal(t, 3, skipped[0].Row)
	assert.False(t, collector.HasErrors())
}

func TestMapBoreholes_NoCoordinatesStillBuilt(t *testing.T) {
	loca := newGroup("LOCA",
		[]string{"LOCA_ID", "LOCA_NATE", "LOCA_NATN", "LOCA_LOCX", "LOCA_LOCY", "LOCA_GL", "LOCA_FDEP"},
		map[string]string{"LOCA_NATE": "m", "LOCA_NATN": "m", "LOCA_LOCX": "m", "LOCA_LOCY": "m", "LOCA_GL": "m", "LOCA_FDEP": "m"},
		[]string{"BH9", "", "", "", "", "5.0", "3.0"},
	)
	m, collector := newMapper(t)

	boreholes, err := m.MapBoreholes(parser.NewRawTable(loca), []ground.Stratum{}, []ground.ContaminantSample{})
	require.NoError(t, err)
	require.Len(t, boreholes, 1)

	b := boreholes[0]
	assert.Equal(t, "BH9", b.ID)
	assert.True(t, math.IsNaN(b.Top.X))
	assert.True(t, math.IsNaN(b.Top.Y))
	assert.InDelta(t, 2.0, b.Bottom.Z, 1e-9)

	fallbacks := issuesWithCode(collector.Warnings(), ingestion.CodeGeometryFallback)
	require.Len(t, fallbacks, 2, "top coordinates missing and bottom assumed vertical")
	assert.Equal(t, "BH9", fallbacks[0].RecordID)
}

func TestMapBoreholes_LoneLocalOrdinateLeavesTopUnknown(t *testing.T) {
	loca := newGroup("LOCA",
		[]string{"LOCA_ID", "LOCA_NATE", "LOCA_NATN", "LOCA_LOCX", "LOCA_LOCY", "LOCA_GL", "LOCA_FDEP"},
		map[string]string{"LOCA_NATE": "m", "LOCA_NATN": "m", "LOCA_LOCX": "m", "LOCA_LOCY": "m", "LOCA_GL": "m", "LOCA_FDEP": "m"},
		[]string{"BH7", "", "", "12", "", "5.0", "3.0"},
		[]string{"BH8", "400", "", "", "7", "5.0", "3.0"},
	)
	m, collector := newMapper(t)

	boreholes, err := m.MapBoreholes(parser.NewRawTable(loca), []ground.Stratum{}, []ground.ContaminantSample{})
	require.NoError(t, err)
	require.Len(t, boreholes, 2)

	for _, b := range boreholes {
		assert.True(t, math.IsNaN(b.Top.X), "%s top easting", b.ID)
		assert.True(t, math.IsNaN(b.Top.Y), "%s top northing", b.ID)
		assert.True(t, math.IsNaN(b.Bottom.X), "%s bottom easting", b.ID)
		assert.True(t, math.IsNaN(b.Bottom.Y), "%s bottom northing", b.ID)
		assert.InDelta(t, 2.0, b.Bottom.Z, 1e-9)
	}

	fallbacks := issuesWithCode(collector.Warnings(), ingestion.CodeGeometryFallback)
	require.Len(t, fallbacks, 4)
	assert.Contains(t, fallbacks[0].Message, "left unknown")
}

func TestMapBoreholes_BottomCoordinateFallbacks(t *testing.T) {
	headings := []string{"LOCA_ID", "LOCA_NATE", "LOCA_NATN", "LOCA_GL", "LOCA_FDEP", "LOCA_ETRV", "LOCA_NTRV", "LOCA_XTRL", "LOCA_YTRL"}
	loca := newGroup("LOCA", headings, nil,
		[]string{"INCL", "100", "200", "10", "4", "101", "202", "", ""},
		[]string{"LOCAL", "100", "200", "10", "4", "", "", "5", "6"},
		[]string{"VERT", "100", "200", "10", "4", "", "", "", ""},
	)
	m, _ := newMapper(t)

	boreholes, err := m.MapBoreholes(parser.NewRawTable(loca), []ground.Stratum{}, []ground.ContaminantSample{})
	require.NoError(t, err)
	require.Len(t, boreholes, 3)

	assert.Equal(t, ground.Point{X: 101, Y: 202, Z: 6}, boreholes[0].Bottom)
	assert.Equal(t, ground.Point{X: 5, Y: 6, Z: 6}, boreholes[1].Bottom)
	assert.Equal(t, ground.Point{X: 100, Y: 200, Z: 6}, boreholes[2].Bottom)
}

func TestMapStrata_DropsRowWithoutBase(t *testing.T) {
	m, collector := newMapper(t)
	table := parser.NewRawTable(geol(metres,
		[]string{"BH1", "0.0", "1.0", "Topsoil", "001", "TS", ""},
		[]string{"BH1", "1.0", "", "Clay", "201", "LC", ""},
		[]string{"BH1", "0", "Inf", "Sand", "301", "SA", ""},
		[]string{"BH1", "NaN", "1", "Gravel", "401", "GR", ""},
	))

	strata, err := m.MapStrata(table)
	require.NoError(t, err)
	require.Len(t, strata, 1)
	assert.Equal(t, 0.0, strata[0].Top)
	assert.Equal(t, 1.0, strata[0].Bottom)

	skipped := issuesWithCode(collector.Warnings(), ingestion.CodeRowSkipped)
	require.Len(t, skipped, 3)
	assert.Equal(t, "BH1", skipped[0].RecordID)
	assert.Contains(t, skipped[0].Message, "BH1")

	unparsable := issuesWithCode(collector.Warnings(), ingestion.CodeFieldUnparsable)
	require.Len(t, unparsable, 2)
	assert.Equal(t, "GEOL_BASE", unparsable[0].Heading)
	assert.Contains(t, unparsable[0].Message, `"Inf"`)
	assert.Equal(t, "GEOL_TOP", unparsable[1].Heading)
}

func TestMapStrata_BlankGeologyDefault(t *testing.T) {
	table := parser.NewRawTable(geol(metres, []string{"BH1", "0", "1", "Made ground", "101", "", ""}))

	m, _ := newMapper(t)
	strata, err := m.MapStrata(table)
	require.NoError(t, err)
	require.Len(t, strata, 1)
	assert.Equal(t, "UNKNOWN", strata[0].ObservedGeology)

	custom := New(Config{BlankGeology: "XX"}, ingestion.NewCollector(nil))
	strata, err = custom.MapStrata(table)
	require.NoError(t, err)
	assert.Equal(t, "XX", strata[0].ObservedGeology)

	defaulted := New(Config{}, ingestion.NewCollector(nil))
	strata, err = defaulted.MapStrata(table)
	require.NoError(t, err)
	assert.Equal(t, DefaultBlankGeology, strata[0].ObservedGeology)
}

func TestMapStrata_MissingLegendTolerated(t *testing.T) {
	m, collector := newMapper(t)
	strata, err := m.MapStrata(parser.NewRawTable(geol(metres, []string{"BH1", "0", "1", "Sand", "", "SA", ""})))
	require.NoError(t, err)
	require.Len(t, strata, 1)

	missing := issuesWithCode(collector.Warnings(), ingestion.CodeFieldMissing)
	require.Len(t, missing, 1)
	assert.Equal(t, "GEOL_LEG", missing[0].Heading)
}

func TestMapStrata_UnitConversion(t *testing.T) {
	tests := []struct {
		unit string
		top  string
		want float64
	}{
		{"cm", "250", 2.5},
		{"ft", "100", 30.48},
		{"mm", "1200", 1.2},
		{"m", "3.25", 3.25},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			units := map[string]string{"GEOL_TOP": tt.unit, "GEOL_BASE": "m"}
			m, collector := newMapper(t)
			strata, err := m.MapStrata(parser.NewRawTable(geol(units, []string{"BH1", tt.top, "40", "", "1", "X", ""})))
			require.NoError(t, err)
			require.Len(t, strata, 1)
			assert.InDelta(t, tt.want, strata[0].Top, 1e-6)
			assert.Empty(t, issuesWithCode(collector.Issues(), ingestion.CodeUnitUnrecognized))
		})
	}
}

func TestMapStrata_UnrecognizedUnitPassesThrough(t *testing.T) {
	units := map[string]string{"GEOL_TOP": "furlong", "GEOL_BASE": "m"}
	m, collector := newMapper(t)
	strata, err := m.MapStrata(parser.NewRawTable(geol(units,
		[]string{"BH1", "2", "3", "", "1", "X", ""},
		[]string{"BH1", "3", "4", "", "1", "X", ""},
	)))
	require.NoError(t, err)
	require.Len(t, strata, 2)
	assert.Equal(t, 2.0, strata[0].Top)

	unrecognized := issuesWithCode(collector.Warnings(), ingestion.CodeUnitUnrecognized)
	require.Len(t, unrecognized, 1, "reported once per heading and unit")
	assert.Equal(t, "GEOL_TOP", unrecognized[0].Heading)
	assert.Contains(t, unrecognized[0].Message, "furlong")
}

func TestMapStrata_MissingHeadingReportedOncePerPass(t *testing.T) {
	g := newGroup("GEOL", []string{"LOCA_ID", "GEOL_TOP", "GEOL_GEOL"}, map[string]string{"GEOL_TOP": "m"},
		[]string{"BH1", "0", "A"},
		[]string{"BH1", "1", "B"},
		[]string{"BH1", "2", "C"},
	)
	m, collector := newMapper(t)
	strata, err := m.MapStrata(parser.NewRawTable(g))
	require.NoError(t, err)
	assert.Empty(t, strata, "GEOL_BASE is load-bearing")

	var base []ingestion.Issue
	for _, issue := range issuesWithCode(collector.Issues(), ingestion.CodeFieldMissing) {
		if issue.Heading == "GEOL_BASE" {
			base = append(base, issue)
		}
	}
	require.Len(t, base, 1)
	assert.Equal(t, ingestion.SeverityError, base[0].Severity)
	assert.Contains(t, base[0].Message, "GEOL section")
	assert.Len(t, issuesWithCode(collector.Issues(), ingestion.CodeRowSkipped), 3)
}

func TestMapBoreholes_LinksByID(t *testing.T) {
	loca := newGroup("LOCA", []string{"LOCA_ID", "LOCA_NATE", "LOCA_NATN", "LOCA_GL", "LOCA_FDEP"}, nil,
		[]string{"BH1", "1", "2", "3", "4"})
	strata := []ground.Stratum{
		{ID: "BH1", Top: 0, Bottom: 1, ObservedGeology: "A"},
		{ID: "BH2", Top: 0, Bottom: 1, ObservedGeology: "B"},
	}
	samples := []ground.ContaminantSample{{ID: "BH2", Top: 1}}

	m, _ := newMapper(t)
	boreholes, err := m.MapBoreholes(parser.NewRawTable(loca), strata, samples)
	require.NoError(t, err)
	require.Len(t, boreholes, 1)
	require.Len(t, boreholes[0].Strata, 1)
	assert.Equal(t, "BH1", boreholes[0].Strata[0].ID)
	assert.Equal(t, "A", boreholes[0].Strata[0].ObservedGeology)
	assert.Empty(t, boreholes[0].ContaminantSamples)
}

func TestMapContaminantSamples_RowUnitOverridesColumnUnit(t *testing.T) {
	eres := newGroup("ERES",
		[]string{"LOCA_ID", "SAMP_TOP", "ERES_CODE", "ERES_NAME", "ERES_RVAL", "ERES_RUNI", "SAMP_TYPE"},
		map[string]string{"SAMP_TOP": "m", "ERES_RVAL": "mg/kg"},
		[]string{"BH1", "0.5", "7440-38-2", "Arsenic", "10", "g/kg", "ES"},
		[]string{"BH1", "0.5", "7440-38-2", "Arsenic", "10", "", "ES"},
		[]string{"BH1", "0.5", "7440-38-2", "Arsenic", "10", "ppb", "ES"},
	)
	m, collector := newMapper(t)
	samples, err := m.MapContaminantSamples(parser.NewRawTable(eres))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.InDelta(t, 0.01, samples[0].ResultValue, 1e-12)
	assert.InDelta(t, 10e-6, samples[1].ResultValue, 1e-15, "column unit used when the row gives none")
	assert.Equal(t, 10.0, samples[2].ResultValue)

	unrecognized := issuesWithCode(collector.Warnings(), ingestion.CodeUnitUnrecognized)
	require.Len(t, unrecognized, 1)
	assert.Equal(t, "ERES_RVAL", unrecognized[0].Heading)
}

func TestMapContaminantSamples_DetectionUnitOverride(t *testing.T) {
	eres := newGroup("ERES",
		[]string{"LOCA_ID", "SAMP_TOP", "ERES_CODE", "ERES_NAME", "ERES_RVAL", "ERES_RUNI", "ERES_RDLM", "ERES_DUNI"},
		map[string]string{"SAMP_TOP": "m", "ERES_RVAL": "mg/kg", "ERES_RDLM": "mg/kg"},
		[]string{"BH1", "0.5", "7440-38-2", "Arsenic", "10", "", "5", "g/kg"},
		[]string{"BH1", "0.5", "7440-38-2", "Arsenic", "10", "", "5", ""},
	)
	m, _ := newMapper(t)
	samples, err := m.MapContaminantSamples(parser.NewRawTable(eres))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.InDelta(t, 5e-3, samples[0].Detection.DetectionLimit, 1e-15, "ERES_DUNI overrides the column unit")
	assert.InDelta(t, 5e-6, samples[1].Detection.DetectionLimit, 1e-18, "column unit used without ERES_DUNI")
}

func TestMap_MissingGroups(t *testing.T) {
	m, collector := newMapper(t)
	result, err := m.Map(parser.NewRawTable())
	require.NoError(t, err)
	assert.NotNil(t, result.Strata)
	assert.Empty(t, result.Boreholes)

	structural := issuesWithCode(collector.Issues(), ingestion.CodeStructural)
	require.Len(t, structural, 3)
	assert.Equal(t, "GEOL", structural[0].Group)
	assert.Equal(t, "ERES", structural[1].Group)
	assert.Equal(t, "LOCA", structural[2].Group)
}

func TestMap_ContractViolations(t *testing.T) {
	m, _ := newMapper(t)

	_, err := m.Map(nil)
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))

	_, err = New(Config{}, nil).Map(parser.NewRawTable())
	assert.True(t, errors.IsContractViolation(err))

	_, err = m.MapBoreholes(parser.NewRawTable(), nil, []ground.ContaminantSample{})
	assert.True(t, errors.IsContractViolation(err))
}

func TestMap_Idempotent(t *testing.T) {
	table, _ := parser.Tokenize(qntxtest.SampleAGSLines())
	m, _ := newMapper(t)

	first, err := m.Map(table)
	require.NoError(t, err)
	second, err := m.Map(table)
	require.NoError(t, err)

	// YAML renders NaN consistently, unlike reflect.DeepEqual.
	a, err := yaml.Marshal(first)
	require.NoError(t, err)
	b, err := yaml.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestDateLayout(t *testing.T) {
	tests := []struct {
		format string
		value  string
		want   time.Time
	}{
		{"yyyy-mm-dd", "2023-04-10", time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)},
		{"dd/mm/yyyy", "10/04/2023", time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)},
		{"yyyy-mm-ddThh:mm", "2023-04-10T13:45", time.Date(2023, 4, 10, 13, 45, 0, 0, time.UTC)},
		{"yyyy-mm-ddThh:mm:ss", "2023-04-10T13:45:09", time.Date(2023, 4, 10, 13, 45, 9, 0, time.UTC)},
		{"hh:mm", "07:30", time.Date(0, 1, 1, 7, 30, 0, 0, time.UTC)},
		{"", "2023-04-10", time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := ParseDate(tt.value, tt.format)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseDate("April 10", "yyyy-mm-dd")
	assert.Error(t, err)
}
