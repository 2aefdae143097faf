package am

import (
	"net"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/qntx-ags/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Import.Encoding) {
	case "", EncodingUTF8, "utf8", EncodingWindows1252, "cp1252", EncodingLatin1, "iso-8859-1":
	default:
		return errors.Newf("import.encoding must be one of utf-8, windows-1252, latin1, got %q", c.Import.Encoding)
	}

	if c.Import.MinAGSVersion != "" {
		if _, err := semver.NewVersion(c.Import.MinAGSVersion); err != nil {
			return errors.Wrapf(err, "import.min_ags_version %q is not a version", c.Import.MinAGSVersion)
		}
	}

	// Debounce: 0 = ingest on the first event, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MaxFilesPerMinute < 0 {
		return errors.Newf("watch.max_files_per_minute must be >= 0, got %d", c.Watch.MaxFilesPerMinute)
	}
	if addr := c.Watch.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return errors.Wrapf(err, "watch.metrics_addr %q is not host:port", addr)
		}
	}

	return nil
}
