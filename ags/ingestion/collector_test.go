package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollector_KeepsOrderAndSplitsBySeverity(t *testing.T) {
	c := NewCollector(nil)
	c.Report(Issue{Code: CodeFieldMissing, Severity: SeverityWarning, Message: "a"})
	c.Report(Issue{Code: CodeRowSkipped, Severity: SeverityError, Message: "b"})
	c.Report(Issue{Code: CodeTokenizer, Severity: SeverityInfo, Message: "c"})
	c.Report(Issue{Code: CodeFieldMissing, Severity: SeverityWarning, Message: "d"})

	issues := c.Issues()
	require.Len(t, issues, 4)
	assert.Equal(t, "a", issues[0].Message)
	assert.Equal(t, "d", issues[3].Message)

	assert.Len(t, c.Warnings(), 2)
	assert.Len(t, c.Errors(), 1)
	assert.True(t, c.HasErrors())
	assert.Equal(t, 2, c.CountByCode()[CodeFieldMissing])
}

func TestCollector_IssuesReturnsCopy(t *testing.T) {
	c := NewCollector(nil)
	c.Report(Issue{Message: "original"})

	got := c.Issues()
	got[0].Message = "mutated"

	assert.Equal(t, "original", c.Issues()[0].Message)
}

func TestCollector_MirrorsToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewCollector(zap.New(core).Sugar())

	c.Report(Issue{Stage: "map", Code: CodeUnitUnrecognized, Severity: SeverityWarning,
		Message: "unit furlong not recognised", Group: "GEOL", Heading: "GEOL_TOP", RecordID: "BH1", Row: 3})
	c.Report(Issue{Stage: "map", Code: CodeRowSkipped, Severity: SeverityError, Message: "skipped"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "GEOL_TOP", entries[0].ContextMap()["heading"])
	assert.Equal(t, "BH1", entries[0].ContextMap()["borehole_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestIssue_String(t *testing.T) {
	tests := []struct {
		name  string
		issue Issue
		want  string
	}{
		{
			name:  "no location",
			issue: Issue{Severity: SeverityWarning, Code: CodeStructural, Message: "no LOCA group"},
			want:  "warning structural: no LOCA group",
		},
		{
			name: "full location",
			issue: Issue{Severity: SeverityError, Code: CodeRowSkipped, Message: "missing base",
				Group: "GEOL", Heading: "GEOL_BASE", RecordID: "BH1", Row: 2},
			want: "error row_skipped (GEOL.GEOL_BASE [BH1] row 2): missing base",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.String())
		})
	}
}

func TestReporterFunc(t *testing.T) {
	var got []Issue
	var r Reporter = ReporterFunc(func(i Issue) { got = append(got, i) })
	r.Report(Issue{Code: CodeEdition})
	require.Len(t, got, 1)
	assert.Equal(t, CodeEdition, got[0].Code)
}
