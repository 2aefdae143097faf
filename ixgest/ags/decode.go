package ags

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/errors"
)

// charset returns the decoder for a configured encoding name, or nil for UTF-8.
func charset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, errors.NewInvalidRequestError("unsupported encoding %q", name)
	}
}

// decode converts raw file bytes to UTF-8. Files exported from older spreadsheet tools are
// often Windows-1252 despite the UTF-8 default; invalid UTF-8 is re-decoded as Windows-1252
// and reported.
func decode(raw []byte, name string, reporter ingestion.Reporter) ([]byte, error) {
	enc, err := charset(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		if utf8.Valid(raw) {
			return raw, nil
		}
		reporter.Report(ingestion.Issue{
			Stage:    stage,
			Code:     ingestion.CodeEncoding,
			Severity: ingestion.SeverityWarning,
			Message:  "content is not valid UTF-8; decoded as windows-1252",
			Hints:    []string{"set import.encoding in am.toml to silence this warning"},
		})
		enc = charmap.Windows1252
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, errors.Wrap(err, "charset decode")
	}
	return out, nil
}
