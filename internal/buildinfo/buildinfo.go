// Package buildinfo exposes version data stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/textkeeper/internal/buildinfo.buildVersion=v1.0.0"
package buildinfo

import (
	"fmt"
	"io"
	"runtime"
)

const notAvailable = "N/A"

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Date      string `json:"date" yaml:"date"`
	Commit    string `json:"commit" yaml:"commit"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the stamped build data, with N/A for missing values.
func Get() Info {
	return Info{
		Version:   orNA(buildVersion),
		Date:      orNA(buildDate),
		Commit:    orNA(buildCommit),
		GoVersion: runtime.Version(),
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// PrintBuildData writes the build data in a human readable form.
func PrintBuildData(w io.Writer) {
	i := Get()
	fmt.Fprintf(w, "Build version: %s\n", i.Version)
	fmt.Fprintf(w, "Build date: %s\n", i.Date)
	fmt.Fprintf(w, "Build commit: %s\n", i.Commit)
	fmt.Fprintf(w, "Go: %s\n", i.GoVersion)
}
