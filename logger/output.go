package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
//	0 (default) - results, errors, final status
//	1 (-v)      - + per-file progress, issue listings
//	2 (-vv)     - + timing, config values, database stats
//	3 (-vvv)    - + SQL statements, tokenizer line decisions

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	OutputResults    OutputCategory = iota // Query results, command output
	OutputErrors                           // Errors with hints
	OutputUserStatus                       // Final success/failure status

	OutputProgress // Per-file progress ("ingested site.ags: 12 boreholes")
	OutputIssues   // Individual ingestion issues

	OutputTiming  // Operation timing
	OutputConfig  // Config values loaded/applied
	OutputDBStats // Database statistics

	OutputSQLQueries // Individual SQL statements
	OutputTokenizer  // Per-line tokenizer decisions
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputProgress: VerbosityInfo,
	OutputIssues:   VerbosityInfo,

	OutputTiming:  VerbosityDebug,
	OutputConfig:  VerbosityDebug,
	OutputDBStats: VerbosityDebug,

	OutputSQLQueries: VerbosityTrace,
	OutputTokenizer:  VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:    "results",
	OutputErrors:     "errors",
	OutputUserStatus: "status",
	OutputProgress:   "progress",
	OutputIssues:     "issues",
	OutputTiming:     "timing",
	OutputConfig:     "config",
	OutputDBStats:    "db-stats",
	OutputSQLQueries: "sql",
	OutputTokenizer:  "tokenizer",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
