package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo describes the application version as recorded in the build
// metadata.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
}

// GetVersion returns the application version from the build metadata.
func GetVersion() (*VersionInfo, error) {
	v := &VersionInfo{Semantic: "devel"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("failed reading build info")
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Semantic = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.Commit = setting.Value
		case "vcs.modified":
			v.Dirty = setting.Value == "true"
		}
	}

	return v, nil
}

// String returns a human-readable representation of the version.
func (v *VersionInfo) String() string {
	out := v.Semantic
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		out = fmt.Sprintf("%s (%s)", out, commit)
	}
	if v.Dirty {
		out += " dirty"
	}

	return out
}
