// Package sym defines the symbols qntx-ags prints for its segments (am, ix, ax, so, db).
// They appear in CLI headings and as a structured log field so logs can be filtered by segment.
package sym

// Segment glyphs.
const (
	AM = "≡" // am - configuration
	IX = "⨳" // ix - ingest AGS files
	AX = "⋈" // ax - query ingested boreholes, strata and samples
	SO = "⟶" // so - export
	DB = "⊔" // database/storage layer
)

// SymbolToCommand maps glyph strings to their text command equivalents.
var SymbolToCommand = map[string]string{
	AM: "am",
	IX: "ix",
	AX: "ax",
	SO: "so",
}

// CommandToSymbol maps text commands to their canonical glyph strings.
var CommandToSymbol = map[string]string{
	"am": AM,
	"ix": IX,
	"ax": AX,
	"so": SO,
}

// CommandDescriptions provides one-line explanations used in CLI help.
var CommandDescriptions = map[string]string{
	"am": "Configuration - blank geology default, encoding, database path",
	"ix": "Ingest - parse AGS files into boreholes, strata and contaminant samples",
	"ax": "Expand - query ingested ground model",
	"so": "Therefore - export the ground model",
}
