package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/spf13/cobra"

	"github.com/mjun0812/setup-cuda/pkg/cache"
	"github.com/mjun0812/setup-cuda/pkg/distro"
	"github.com/mjun0812/setup-cuda/pkg/envs"
	"github.com/mjun0812/setup-cuda/pkg/installer"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/verify"
)

var (
	installMethod   string
	installDistro   string
	installCacheDir string
	installDryRun   bool
	installYes      bool
	installKeep     bool
	installNoEnv    bool
	installCheck    bool
)

var installCmd = &cobra.Command{
	Use:          "install <version>",
	Short:        "Install a CUDA toolkit version",
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
	Long: `Install a CUDA toolkit version.

The version may be partial: a major version or major.minor resolves to the
newest matching release, and "latest" resolves to the newest release
overall.

Examples:
  setup-cuda install 12.4.1               # Install an exact release
  setup-cuda install 12 --method network  # Newest 12.x from the package repos
  setup-cuda install latest --dry-run     # Show the steps without running them
  setup-cuda install 11.8 --yes           # Skip the confirmation prompt
  setup-cuda install 12.4 --check         # Verify nvcc after installing`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVar(&installMethod, "method", "auto", "Installation method: auto, network or local")
	installCmd.Flags().StringVar(&installDistro, "distro", "", "Override the detected distribution as id:version (e.g. ubuntu:22.04)")
	installCmd.Flags().StringVar(&installCacheDir, "cache-dir", "", "Cache downloaded installers here for reinstalls (\"default\" for the user cache dir)")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show the install steps without executing them")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip the confirmation prompt")
	installCmd.Flags().BoolVar(&installKeep, "keep-installer", false, "Keep the downloaded installer")
	installCmd.Flags().BoolVar(&installNoEnv, "no-env", false, "Skip environment export after installation")
	installCmd.Flags().BoolVar(&installCheck, "check", false, "Verify nvcc reports the installed version after install")
}

func runInstall(cmd *cobra.Command, args []string) error {
	method, err := installer.ParseMethod(installMethod)
	if err != nil {
		return err
	}

	opts := []installer.Option{
		installer.WithMethod(method),
		installer.WithDryRun(installDryRun),
		installer.WithYes(installYes),
		installer.WithKeepInstaller(installKeep),
		installer.WithHTTPTimeout(fetchTimeout),
	}
	if workDir != "" {
		opts = append(opts, installer.WithWorkDir(workDir))
	}
	if installCacheDir != "" {
		dir := installCacheDir
		if dir == "default" {
			dir = cache.DefaultDir()
		}
		opts = append(opts, installer.WithCacheDir(dir))
	}
	if installDistro != "" {
		d, err := parseDistroFlag(installDistro)
		if err != nil {
			return err
		}
		opts = append(opts, installer.WithDistro(d))
	}

	inst := installer.New(opts...)

	var result *installer.Result
	var installErr error
	task.StartTask(fmt.Sprintf("cuda@%s", args[0]), func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		result, installErr = inst.Install(ctx, args[0], t)
		return result, installErr
	})
	if installErr != nil {
		return installErr
	}

	if exitCode := clicky.WaitForGlobalCompletion(); exitCode != 0 {
		return fmt.Errorf("installation failed with exit code %d", exitCode)
	}

	if installDryRun {
		fmt.Printf("Would install CUDA %s to %s:\n", result.Version, result.Root)
		for _, step := range result.Plan {
			fmt.Printf("  %s\n", step)
		}
		return nil
	}

	if installCheck {
		fmt.Println("\n🔍 Verifying installation...")
		if err := runPostInstallCheck(result); err != nil {
			// The toolkit is installed even when nvcc verification fails
			fmt.Printf("⚠️  Installation verification failed: %v\n", err)
		}
	}

	if !installNoEnv {
		env := envs.ForRoot(result.Root, platform.Current())
		if err := env.WriteGithubFiles(); err != nil {
			return err
		}
		fmt.Println()
		envs.PrintEnvs(env)
	}

	return nil
}

// runPostInstallCheck probes the freshly installed root's nvcc.
func runPostInstallCheck(result *installer.Result) error {
	path := verify.CompilerPath(result.Root, platform.Current())
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("nvcc not found at %s", path)
	}

	c, err := verify.Probe(path)
	if err != nil {
		return err
	}
	if !verify.Matches(c.Release, result.Version) {
		return fmt.Errorf("nvcc at %s reports release %s, expected %s", c.Path, c.Release, result.Version)
	}

	fmt.Printf("✅ nvcc reports release %s\n", c.Release)
	return nil
}

// parseDistroFlag parses an "id" or "id:version" override, e.g. "ubuntu:22.04".
func parseDistroFlag(s string) (distro.Distro, error) {
	id, ver, _ := strings.Cut(s, ":")
	id = strings.ToLower(strings.TrimSpace(id))
	ver = strings.TrimSpace(ver)
	if id == "" {
		return distro.Distro{}, fmt.Errorf("invalid --distro value %q (expected id or id:version)", s)
	}
	if ver == "" {
		ver = "unknown"
	}
	return distro.Distro{ID: id, VersionID: ver, Name: id}, nil
}
