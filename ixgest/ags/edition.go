package ags

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
)

const (
	groupTransmission = "TRAN"
	headingEdition    = "TRAN_AGS"
)

// checkEdition reads the AGS edition declared in TRAN_AGS and reports a file older than
// minimum. Heading names differ between AGS 3 and AGS 4, so an old file usually maps poorly;
// it is still mapped. Returns the declared edition, empty when absent.
func checkEdition(table *parser.RawTable, minimum string, reporter ingestion.Reporter) string {
	declared := ""
	if tran, ok := table.Group(groupTransmission); ok && len(tran.Rows) > 0 {
		declared = strings.TrimSpace(tran.Rows[0][headingEdition])
	}

	issue := func(severity ingestion.Severity, msg string) {
		reporter.Report(ingestion.Issue{
			Stage:    stage,
			Code:     ingestion.CodeEdition,
			Severity: severity,
			Message:  msg,
			Group:    groupTransmission,
			Heading:  headingEdition,
		})
	}

	if minimum == "" {
		return declared
	}
	if declared == "" {
		issue(ingestion.SeverityInfo, "AGS edition not declared; assuming a supported edition")
		return declared
	}

	version, err := semver.NewVersion(declared)
	if err != nil {
		issue(ingestion.SeverityWarning, "AGS edition "+declared+" is not a version number")
		return declared
	}
	floor, err := semver.NewVersion(minimum)
	if err != nil {
		return declared
	}
	if version.LessThan(floor) {
		issue(ingestion.SeverityWarning, "AGS edition "+declared+" is older than the supported "+minimum+"; headings may not map")
	}
	return declared
}
