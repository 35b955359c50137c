package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

// Version is set at build time:
//
//	go build -ldflags "-X query-proxy/internal/version.Version=1.2.3" ./cmd
var Version string

const fallback = "1.0.0"

var resolved = sync.OnceValue(func() string {
	return resolve(Version, debug.ReadBuildInfo)
})

// Get returns the semantic version of the running binary. The value is
// computed once per process.
func Get() string {
	return resolved()
}

func resolve(linked string, buildInfo func() (*debug.BuildInfo, bool)) string {
	if v := strings.TrimPrefix(strings.TrimSpace(linked), "v"); v != "" {
		return v
	}
	if bi, ok := buildInfo(); ok && bi != nil {
		v := bi.Main.Version
		if v != "" && v != "(devel)" {
			return strings.TrimPrefix(v, "v")
		}
	}
	return fallback
}
