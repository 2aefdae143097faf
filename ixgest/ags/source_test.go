package ags

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/errors"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		detected string
		want     bool
	}{
		{"file:///data/site.ags", false},
		{"/data/site.ags", false},
		{"https://example.com/site.ags", true},
		{"s3::https://s3.amazonaws.com/bucket/site.ags", true},
		{"gcs::https://www.googleapis.com/storage/v1/bucket/site.ags", true},
	}
	for _, tt := range tests {
		t.Run(tt.detected, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRemote(tt.detected))
		})
	}
}

func TestRemoteName(t *testing.T) {
	assert.Equal(t, "site.ags", remoteName("https://example.com/exports/site.ags?token=1"))
	assert.Equal(t, "site.ags", remoteName("s3::https://s3.amazonaws.com/bucket/site.ags"))
	assert.Equal(t, "download.ags", remoteName("https://example.com/"))
}

func TestResolveSource_Local(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.ags")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	src, err := ResolveSource(context.Background(), path, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer src.Cleanup()
	assert.Equal(t, path, src.LocalPath)
	assert.False(t, src.IsRemote)

	_, err = ResolveSource(context.Background(), dir, zap.NewNop().Sugar())
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = ResolveSource(context.Background(), filepath.Join(dir, "missing.ags"), zap.NewNop().Sugar())
	assert.Error(t, err)
}
