package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldImportID  = "import_id"
	FieldComponent = "component"
	FieldOperation = "operation"

	// AGS structure
	FieldGroup     = "group"
	FieldHeading   = "heading"
	FieldSection   = "section"
	FieldUnit      = "unit"
	FieldRow       = "row"
	FieldLine      = "line"
	FieldBorehole  = "borehole_id"
	FieldIssueCode = "issue_code"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount      = "count"
	FieldTotalCount = "total_count"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"

	// Segment symbol (sym.IX, sym.DB, ...)
	FieldSymbol = "symbol"
)

type contextKey string

const (
	importIDKey  contextKey = "logger_import_id"
	componentKey contextKey = "logger_component"
)

// WithImportID adds an import run ID to the context for logging
func WithImportID(ctx context.Context, importID string) context.Context {
	return context.WithValue(ctx, importIDKey, importID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if importID, ok := ctx.Value(importIDKey).(string); ok && importID != "" {
		fields = append(fields, FieldImportID, importID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	m := mapper.New(cfg, reporter, logger.ComponentLogger("ags.mapper"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	fileLogger := logger.ChildLogger(baseLogger, logger.FieldFile, path)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
