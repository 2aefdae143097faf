package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, AGSEdition, info.AGSEdition)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v0.3.0", CommitHash: "0123456789abcdef", BuildTime: "2026-10-01"}
	assert.Equal(t, "qntx-ags v0.3.0 (commit 0123456, built 2026-10-01)", info.String())
	assert.Equal(t, "0123456", info.Short())

	dev := Info{Version: "dev", CommitHash: "dev", BuildTime: "unknown"}
	assert.Equal(t, "qntx-ags dev (commit dev, built unknown)", dev.String())
	assert.Equal(t, "dev", dev.Short())
}
