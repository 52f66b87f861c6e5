package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Version information (set via -ldflags during build)
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// resolveOnce guards the one-time .version file fallback for binaries built
// without ldflags.
var resolveOnce sync.Once

// GetVersion returns the current version string. A binary built without
// ldflags falls back to the .version file next to the executable.
func GetVersion() string {
	resolveOnce.Do(func() {
		if Version == "dev" {
			LoadVersionFromFile()
		}
	})
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", GetVersion(), Build, GitCommit)
}

// LoadVersionFromFile reads the version from a .version file next to the
// executable. The compiled-in version stands when the file is absent or empty.
func LoadVersionFromFile() string {
	exePath, err := os.Executable()
	if err != nil {
		return Version
	}
	return loadVersionFrom(filepath.Dir(exePath))
}

func loadVersionFrom(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, ".version"))
	if err != nil {
		return Version
	}

	version := strings.TrimSpace(string(data))
	if version != "" {
		Version = version
	}
	return Version
}
