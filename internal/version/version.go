package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X" at release time. Otherwise they are filled in from
// the module build info when available.
var (
	Version   = "dev"
	Revision  = "unknown"
	BuildDate = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Revision == "unknown" {
				Revision = s.Value
			}
		case "vcs.time":
			if BuildDate == "unknown" {
				BuildDate = s.Value
			}
		}
	}
}

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("%s (revision %s, built %s, %s %s/%s)",
		Version, Revision, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
