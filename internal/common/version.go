package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Version information (set via -ldflags during build, or overlaid from a
// .version file at startup)
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// versionFile mirrors the .version TOML written at release time.
type versionFile struct {
	Version string `toml:"version"`
	Build   string `toml:"build"`
	Commit  string `toml:"commit"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// LoadVersionFromFile overlays version info from a .version file next to
// the executable, falling back to the working directory. Missing or
// malformed files leave the compiled-in values untouched.
func LoadVersionFromFile() string {
	paths := []string{".version"}
	if exePath, err := os.Executable(); err == nil {
		paths = append([]string{filepath.Join(filepath.Dir(exePath), ".version")}, paths...)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var vf versionFile
		if err := toml.Unmarshal(data, &vf); err != nil {
			// Older releases wrote the bare version string.
			if v := strings.TrimSpace(string(data)); v != "" && !strings.ContainsAny(v, "\n=") {
				Version = v
				return Version
			}
			continue
		}

		if vf.Version != "" {
			Version = vf.Version
		}
		if vf.Build != "" {
			Build = vf.Build
		}
		if vf.Commit != "" {
			GitCommit = vf.Commit
		}
		return Version
	}

	return Version
}
