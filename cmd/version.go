package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is stamped with -ldflags "-X .../cmd.version=v1.2.3".
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "quizwatch", buildVersion(version, debug.ReadBuildInfo))
	},
}

// buildVersion prefers the stamped version, then the module version from
// `go install`, then "(devel)".
func buildVersion(stamped string, info func() (*debug.BuildInfo, bool)) string {
	if stamped != "" {
		return stamped
	}
	if bi, ok := info(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}
