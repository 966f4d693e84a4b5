package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
	buildDirty   = "false"
)

// SetVersion records the build metadata injected through ldflags in main.
func SetVersion(version, commit, date, dirty string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
	if dirty != "" {
		buildDirty = dirty
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		v := buildVersion
		if buildDirty == "true" {
			v += "-dirty"
		}
		fmt.Printf("setup-cuda %s (commit %s, built %s, %s/%s)\n", v, buildCommit, buildDate, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
