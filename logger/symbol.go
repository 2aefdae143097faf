package logger

import (
	"github.com/teranos/qntx-ags/sym"
)

// Symbol-aware logging helpers.
// These log with the segment symbol as a structured field, not in the message,
// which keeps messages clean and logs queryable by segment.

// IxInfow logs an info message with the ix symbol (⨳)
func IxInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, withSymbol(sym.IX, keysAndValues)...)
	}
}

// IxWarnw logs a warning message with the ix symbol (⨳)
func IxWarnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, withSymbol(sym.IX, keysAndValues)...)
	}
}

// DBInfow logs an info message with the database symbol (⊔)
func DBInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, withSymbol(sym.DB, keysAndValues)...)
	}
}

func withSymbol(symbol string, keysAndValues []interface{}) []interface{} {
	return append([]interface{}{FieldSymbol, symbol}, keysAndValues...)
}
