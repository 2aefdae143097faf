package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultBlankGeology      = "UNKNOWN"
	DefaultEncoding          = EncodingUTF8
	DefaultMinAGSVersion     = "4.0.0"
	DefaultDatabasePath      = "qntx-ags.db"
	DefaultWatchDebounceMS   = 500
	DefaultMaxFilesPerMinute = 60
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("import.blank_geology", DefaultBlankGeology)
	v.SetDefault("import.encoding", DefaultEncoding)
	v.SetDefault("import.min_ags_version", DefaultMinAGSVersion)

	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("watch.debounce_ms", DefaultWatchDebounceMS)
	v.SetDefault("watch.max_files_per_minute", DefaultMaxFilesPerMinute)
	v.SetDefault("watch.metrics_addr", "")

	v.SetDefault("log.json", false)
}

// BindEnvVars binds every known key to its AGS_* variable so Unmarshal sees overrides even for
// keys that no file sets.
func BindEnvVars(v *viper.Viper) {
	for _, key := range Keys() {
		v.BindEnv(key)
	}
}

// Keys lists every configuration key in dotted form.
func Keys() []string {
	return []string{
		"import.blank_geology",
		"import.encoding",
		"import.min_ags_version",
		"database.path",
		"watch.debounce_ms",
		"watch.max_files_per_minute",
		"watch.metrics_addr",
		"log.json",
	}
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetBlankGeology returns the blank-geology code (default: UNKNOWN)
func (c *Config) GetBlankGeology() string {
	if c.Import.BlankGeology == "" {
		return DefaultBlankGeology
	}
	return c.Import.BlankGeology
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Import: {Encoding: %s, MinAGSVersion: %s}, Watch: {DebounceMS: %d}}",
		c.Database.Path, c.Import.Encoding, c.Import.MinAGSVersion, c.Watch.DebounceMS)
}
