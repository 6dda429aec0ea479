package startup

import (
	"fmt"
	"runtime"
	"time"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo is the version payload served on /version and /health.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

const banner = `
------------------------------------------------------------
   ____
  / ___|_____   _____ _ __ ___
 | |   / _ \ \ / / _ \ '__/ __|
 | |__| (_) \ V /  __/ |  \__ \
  \____\___/ \_/ \___|_|  |___/
`

func printBanner() {
	fmt.Print(banner + "\n")
	info := GetBuildInfo()
	logKeyValues(12,
		"Version", info.Version,
		"Commit", info.Commit,
		"Build Time", info.BuildTime,
		"Started", time.Now().Format(time.RFC1123),
	)

	section("SYSTEM INFORMATION")
	logKeyValues(16,
		"Go version", info.GoVersion,
		"OS/Arch", info.OS+"/"+info.Arch,
		"CPUs available", fmt.Sprint(runtime.NumCPU()),
		"GOMAXPROCS", fmt.Sprint(runtime.GOMAXPROCS(0)),
	)
}
