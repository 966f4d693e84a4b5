package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjun0812/setup-cuda/pkg/envs"
	"github.com/mjun0812/setup-cuda/pkg/installer"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

var envSystem bool

var envCmd = &cobra.Command{
	Use:          "env [version]",
	Short:        "Print environment exports for an installed CUDA toolkit",
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	Long: `Print environment exports for an installed CUDA toolkit.

The version is resolved against the toolkits present on this machine, so
no network access is needed. Without a version the newest installed
toolkit is used.

Examples:
  eval "$(setup-cuda env)"           # Activate the newest installed toolkit
  eval "$(setup-cuda env 12.4)"      # Activate CUDA 12.4
  sudo setup-cuda env 12.4 --system  # Persist to /etc/environment`,
	RunE: runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolVar(&envSystem, "system", false, "Write the variables to /etc/environment (requires root)")
}

func runEnv(cmd *cobra.Command, args []string) error {
	request := version.Latest
	if len(args) == 1 {
		request = args[0]
	}

	p := platform.Current()
	installed := installer.InstalledVersions(p)
	if len(installed) == 0 {
		return fmt.Errorf("no CUDA toolkit installed (looked under %s)", installer.InstallRoot("*", p))
	}

	// Install roots only carry major.minor, so a full release request like
	// 12.4.1 is matched on its major.minor.
	if v, err := version.Parse(version.Normalize(request)); err == nil {
		request = v.MajorMinor()
	}

	resolved, ok, err := version.Resolve(request, installed)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("CUDA %s is not installed (installed: %s)", request, strings.Join(installed, ", "))
	}

	env := envs.ForRoot(installer.InstallRoot(resolved, p), p)

	if envSystem {
		return envs.MergeToSystemEnvironment(env.Vars)
	}

	envs.PrintEnvs(env)
	return env.WriteGithubFiles()
}
