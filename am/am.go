// Package am loads qntx-ags configuration from TOML files and AGS_* environment variables.
//
// Precedence, lowest to highest: built-in defaults, /etc/qntx-ags/am.toml,
// ~/.qntx-ags/am.toml, the nearest am.toml found walking up from the working directory,
// environment variables.
package am

// Config represents the qntx-ags configuration
type Config struct {
	Import   ImportConfig   `mapstructure:"import" toml:"import" json:"import" yaml:"import"`
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ImportConfig configures AGS parsing and mapping
type ImportConfig struct {
	BlankGeology  string `mapstructure:"blank_geology" toml:"blank_geology" json:"blank_geology" yaml:"blank_geology"`         // code for strata without GEOL_GEOL
	Encoding      string `mapstructure:"encoding" toml:"encoding" json:"encoding" yaml:"encoding"`                             // utf-8, windows-1252 or latin1
	MinAGSVersion string `mapstructure:"min_ags_version" toml:"min_ags_version" json:"min_ags_version" yaml:"min_ags_version"` // oldest accepted TRAN_AGS edition
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// WatchConfig configures `ix --watch`
type WatchConfig struct {
	DebounceMS        int    `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`                                     // quiet period before a changed file is ingested
	MaxFilesPerMinute int    `mapstructure:"max_files_per_minute" toml:"max_files_per_minute" json:"max_files_per_minute" yaml:"max_files_per_minute"` // 0 = unlimited
	MetricsAddr       string `mapstructure:"metrics_addr" toml:"metrics_addr" json:"metrics_addr" yaml:"metrics_addr"`                                 // Prometheus listen address, empty = off
}

// LogConfig configures logger output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// Supported import encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "latin1"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// EnvPrefix prefixes every environment override (AGS_DATABASE_PATH for database.path).
const EnvPrefix = "AGS"
