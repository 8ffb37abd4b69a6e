// Package buildinfo exposes version metadata for the CLI. Values can be
// overridden at build time via -ldflags. Values set in the cli package
// (cli.Version/cli.Date) are honored for external build scripts, and the
// module version recorded by `go install` is used when nothing else is set.
package buildinfo

import (
	"runtime/debug"
	"strings"

	"github.com/flarebyte/jsforge/cli"
)

var (
	// Version is the semantic version or custom string.
	Version = ""
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time in RFC3339 or similar (optional). Falls back to cli.Date.
	Date = ""
	// BuiltBy is an optional builder identifier (optional).
	BuiltBy = ""
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Resolved returns the version string alone.
func Resolved() string {
	if Version != "" {
		return Version
	}
	if cli.Version != "" {
		return cli.Version
	}
	if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}

// Summary returns a concise single-line version string.
func Summary() string {
	v := Resolved()
	d := Date
	if d == "" {
		d = cli.Date
	}

	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
