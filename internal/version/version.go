// Package version reports what build of pollcmd is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release tag, set with -ldflags "-X pollcmd/internal/version.Version=..."
	Version = "dev"

	// GitCommit and BuildDate fall back to the VCS stamp Go embeds in the binary
	GitCommit = ""
	BuildDate = ""
)

// Info represents version information
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns version information for this binary
func GetInfo() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuild(bi)
}

func fromBuild(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return info.orUnknown()
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info.orUnknown()
}

func (i Info) orUnknown() Info {
	if i.GitCommit == "" {
		i.GitCommit = "unknown"
	}
	if i.BuildDate == "" {
		i.BuildDate = "unknown"
	}
	return i
}

// String renders the info for the version subcommand
func (i Info) String() string {
	return fmt.Sprintf("Version: %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nPlatform: %s",
		i.Version, i.commit(), i.BuildDate, i.GoVersion, i.Platform)
}

// Short is the one-line form used for --version and startup logs
func (i Info) Short() string {
	return fmt.Sprintf("%s (%s, %s)", i.Version, i.commit(), i.Platform)
}

func (i Info) commit() string {
	c := i.GitCommit
	if len(c) > 12 {
		c = c[:12]
	}
	if i.Modified {
		c += "-dirty"
	}
	return c
}
