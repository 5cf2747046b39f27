// Package misc keeps build time information about the program.
package misc

import (
	"runtime/debug"
	"strings"
)

// Set by the linker: -X cellsplit/misc.version=... -X cellsplit/misc.gitHash=...
var (
	version = ""
	gitHash = ""
)

const appName = "cellsplit"

// GetAppName returns program name used for logs, reports and panic files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module build info.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}
	return "dev"
}

// GetGitHash returns VCS revision the program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
