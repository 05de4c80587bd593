// Package version holds build information, set with -ldflags -X.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.3.0"
	Commit    = ""
	BuildDate = ""
)

// String renders the multi-line version banner.
func String() string {
	return fmt.Sprintf("Version:    %s\nCommit:     %s\nBuild Date: %s\nGo Version: %s\nOS/Arch:    %s/%s\n",
		Version, emptyAsNA(Commit), emptyAsNA(BuildDate), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
