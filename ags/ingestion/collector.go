package ingestion

import (
	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/logger"
)

// Collector is a Reporter that keeps every issue in arrival order and mirrors each one to a
// structured logger at the matching level.
type Collector struct {
	issues []Issue
	logger *zap.SugaredLogger
}

// NewCollector creates a collector. A nil logger disables log mirroring.
func NewCollector(log *zap.SugaredLogger) *Collector {
	return &Collector{logger: log}
}

// Report implements Reporter.
func (c *Collector) Report(issue Issue) {
	c.issues = append(c.issues, issue)
	if c.logger == nil {
		return
	}

	fields := []interface{}{
		logger.FieldIssueCode, issue.Code,
		"stage", issue.Stage,
	}
	if issue.Group != "" {
		fields = append(fields, logger.FieldGroup, issue.Group)
	}
	if issue.Heading != "" {
		fields = append(fields, logger.FieldHeading, issue.Heading)
	}
	if issue.RecordID != "" {
		fields = append(fields, logger.FieldBorehole, issue.RecordID)
	}
	if issue.Row > 0 {
		fields = append(fields, logger.FieldRow, issue.Row)
	}
	if issue.Line > 0 {
		fields = append(fields, logger.FieldLine, issue.Line)
	}

	switch issue.Severity {
	case SeverityError:
		c.logger.Errorw(issue.Message, fields...)
	case SeverityWarning:
		c.logger.Warnw(issue.Message, fields...)
	default:
		c.logger.Debugw(issue.Message, fields...)
	}
}

// Issues returns every issue reported so far.
func (c *Collector) Issues() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Warnings returns the warning-severity issues.
func (c *Collector) Warnings() []Issue {
	return c.filter(SeverityWarning)
}

// Errors returns the error-severity issues.
func (c *Collector) Errors() []Issue {
	return c.filter(SeverityError)
}

// HasErrors reports whether any error-severity issue was recorded.
func (c *Collector) HasErrors() bool {
	for _, issue := range c.issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountByCode tallies issues per code.
func (c *Collector) CountByCode() map[string]int {
	counts := make(map[string]int)
	for _, issue := range c.issues {
		counts[issue.Code]++
	}
	return counts
}

func (c *Collector) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range c.issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}
