package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildUsesVCSStamp(t *testing.T) {
	info := fromBuild(&debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}})

	assert.Equal(t, "0123456789abcdef0123", info.GitCommit)
	assert.Equal(t, "2024-05-01T10:00:00Z", info.BuildDate)
	assert.True(t, info.Modified)
	assert.Contains(t, info.Short(), "0123456789ab-dirty")
	assert.Contains(t, info.String(), "Build Date: 2024-05-01T10:00:00Z")
}

func TestFromBuildPrefersLinkerValues(t *testing.T) {
	oldCommit, oldDate := GitCommit, BuildDate
	GitCommit, BuildDate = "abc123", "yesterday"
	t.Cleanup(func() { GitCommit, BuildDate = oldCommit, oldDate })

	info := fromBuild(&debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffff"},
		{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
	}})

	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, "yesterday", info.BuildDate)
	assert.Equal(t, "dev (abc123, "+info.Platform+")", info.Short())
}

func TestFromBuildWithoutInfo(t *testing.T) {
	info := fromBuild(nil)
	assert.Equal(t, "unknown", info.GitCommit)
	assert.Equal(t, "unknown", info.BuildDate)
	assert.Equal(t, "dev", info.Version)
}
