package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/jsforge/internal/buildinfo"
)

var (
	flagShort bool
	flagJSON  bool
)

// VersionCmd implements `jsforge version`.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagShort {
			_, err := fmt.Fprintln(out, buildinfo.Resolved())
			return err
		}
		if !flagJSON {
			_, err := fmt.Fprintf(out, "jsforge %s\n", buildinfo.Summary())
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "jsforge version: %s\n", buildinfo.Summary())
		return encodeJSON(out, map[string]any{
			"version":   buildinfo.Resolved(),
			"commit":    buildinfo.Commit,
			"date":      buildinfo.Date,
			"built_by":  buildinfo.BuiltBy,
			"go":        runtime.Version(),
			"go_os":     runtime.GOOS,
			"go_arch":   runtime.GOARCH,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
