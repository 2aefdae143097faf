package am

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/teranos/qntx-ags/errors"
)

// CheckFile strictly decodes an am.toml and returns the keys it sets that qntx-ags does not
// know. Viper silently ignores such keys, so a typo like `blank_geolgy` would otherwise go
// unnoticed. The decoded values are validated as well.
func CheckFile(path string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)

	if err := cfg.Validate(); err != nil {
		return unknown, errors.Wrapf(err, "invalid %s", path)
	}
	return unknown, nil
}
