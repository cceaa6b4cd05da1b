// Package version holds build metadata, populated via -ldflags at release
// time and from Go build info otherwise.
package version

import "runtime/debug"

var (
	// GitRelease is the release tag (set via -ldflags).
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = ""
	// GitCommitDate is the commit timestamp.
	GitCommitDate = ""
	// GoInfo is the Go toolchain version used for the build.
	GoInfo = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if GoInfo == "" {
		GoInfo = info.GoVersion
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "" {
				GitCommit = setting.Value
			}
		case "vcs.time":
			if GitCommitDate == "" {
				GitCommitDate = setting.Value
			}
		}
	}
}
