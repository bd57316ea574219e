package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	i := Info{Version: "1.2.3", GitCommit: "abcdefg", BuildTime: "2024-04-27T15:04:05Z", GoVersion: "go1.25.5", Platform: "linux/amd64"}
	assert.Equal(t, "docwriter version 1.2.3 (commit: abcdefg) built at 2024-04-27T15:04:05Z with go1.25.5 on linux/amd64", i.String())
}

func TestGet(t *testing.T) {
	i := Get()
	assert.Equal(t, runtime.Version(), i.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, i.Platform)
	assert.NotEmpty(t, i.Version)
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	got := fromBuildInfo(Info{Version: "dev", GitCommit: "none", BuildTime: "unknown"}, bi)
	assert.Equal(t, Info{Version: "v0.3.0", GitCommit: "deadbeef", BuildTime: "2026-01-02T03:04:05Z"}, got)

	pinned := Info{Version: "1.0.0", GitCommit: "cafe", BuildTime: "yesterday"}
	assert.Equal(t, pinned, fromBuildInfo(pinned, bi))

	devel := fromBuildInfo(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", devel.Version)
}
