package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Version is the application version (set at build time with -ldflags)
	Version = "dev"

	// BuildTime is the build time (set at build time)
	BuildTime = "unknown"

	// GitCommit is the git commit hash (set at build time)
	GitCommit = "unknown"
)

// Info holds version information reported by the CLI and the health endpoint
type Info struct {
	Version   string `json:"version" yaml:"version"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

var (
	once sync.Once
	info Info
)

// Get returns version information. Development builds fall back to the
// VCS stamps embedded by the Go toolchain.
func Get() Info {
	once.Do(func() {
		info = Info{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			GoVersion: runtime.Version(),
		}
		if Version != "dev" {
			return
		}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = setting.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = setting.Value
				}
			}
		}
	})
	return info
}

// String returns a formatted version string
func String() string {
	i := Get()
	return fmt.Sprintf("metaregistry %s (build time: %s, commit: %s, go: %s)",
		i.Version, i.BuildTime, i.GitCommit, i.GoVersion)
}
