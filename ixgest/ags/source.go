package ags

// Source resolution for AGS ingestion.
// Uses hashicorp/go-getter so `ix` accepts:
//   - Local paths: site.ags, ./logs/site.ags, ~/data/site.ags
//   - HTTP(S) URLs: https://example.com/exports/site.ags
//   - Object stores: s3::https://..., gcs::https://...

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/errors"
)

// Source is a resolved AGS input.
type Source struct {
	// LocalPath is the file to read, either the original path or the downloaded copy
	LocalPath string
	// OriginalInput is what the user passed
	OriginalInput string
	// IsRemote is true when the file was fetched
	IsRemote bool

	cleanup func()
}

// Cleanup removes any downloaded copy. Safe to call multiple times.
func (s *Source) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// ResolveSource turns input into a readable local file, downloading remote sources into a
// temporary directory. The returned Source must be cleaned up.
func ResolveSource(ctx context.Context, input string, log *zap.SugaredLogger) (*Source, error) {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}

	detected, err := getter.Detect(input, pwd, getter.Detectors)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to detect source type of %s", input)
	}
	log.Debugw("go-getter detected source", "input", input, "detected", detected)

	if IsRemote(detected) {
		return fetch(ctx, input, detected, log)
	}

	localPath := strings.TrimPrefix(input, "file://")
	if strings.HasPrefix(localPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to expand home directory")
		}
		localPath = filepath.Join(home, localPath[2:])
	}
	if !filepath.IsAbs(localPath) {
		localPath = filepath.Join(pwd, localPath)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, errors.Wrapf(err, "AGS source %s", input)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidRequestError("%s is a directory; use directory ingestion", input)
	}

	return &Source{LocalPath: localPath, OriginalInput: input, cleanup: func() {}}, nil
}

// IsRemote reports whether a detected go-getter URL points off the local filesystem.
func IsRemote(detected string) bool {
	forced, rest := splitForced(detected)
	if forced != "" && forced != "file" {
		return true
	}
	u, err := url.Parse(rest)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Scheme != "file"
}

// splitForced separates a go-getter forced getter prefix such as "s3::".
func splitForced(src string) (string, string) {
	if i := strings.Index(src, "::"); i > 0 && !strings.Contains(src[:i], "/") {
		return src[:i], src[i+2:]
	}
	return "", src
}

func fetch(ctx context.Context, input, detected string, log *zap.SugaredLogger) (*Source, error) {
	tempDir, err := os.MkdirTemp("", "qntx-ags-ix-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	dst := filepath.Join(tempDir, remoteName(detected))

	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Mode:    getter.ClientModeFile,
		Getters: getter.Getters,
	}

	log.Infow("Fetching AGS file", "input", input, "destination", dst)
	if err := client.Get(); err != nil {
		os.RemoveAll(tempDir)
		return nil, errors.Wrapf(err, "failed to fetch %s", input)
	}

	return &Source{
		LocalPath:     dst,
		OriginalInput: input,
		IsRemote:      true,
		cleanup: func() {
			log.Debugw("Cleaning up fetched AGS file", "path", tempDir)
			os.RemoveAll(tempDir)
		},
	}, nil
}

// remoteName picks a file name for a download from the last URL path segment.
func remoteName(detected string) string {
	_, rest := splitForced(detected)
	name := "download" + Extension
	if u, err := url.Parse(rest); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			name = base
		}
	}
	return strings.NewReplacer(":", "-", "@", "-", " ", "-").Replace(name)
}
