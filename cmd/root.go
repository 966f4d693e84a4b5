package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/mjun0812/setup-cuda/pkg/config"
	"github.com/mjun0812/setup-cuda/pkg/platform"
)

var (
	osOverride   string
	archOverride string
	workDir      string
	configFile   string
	fetchTimeout time.Duration
	settings     *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "setup-cuda",
	Short: "Install the NVIDIA CUDA toolkit",
	Long: `setup-cuda resolves CUDA toolkit versions against NVIDIA's published
release indexes and installs the matching toolkit, either through the
native package repositories or the standalone installer.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Apply clicky flags after command line parsing
		clicky.Flags.UseFlags()

		// Set global platform overrides from CLI flags
		platform.SetGlobalOverrides(osOverride, archOverride)

		var err error
		settings, err = config.LoadSettings(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if (settings.Platform != platform.Platform{}) && osOverride == runtime.GOOS && archOverride == runtime.GOARCH {
			platform.SetGlobalOverrides(settings.Platform.OS, settings.Platform.Arch)
		}
		if workDir == "" {
			workDir = settings.WorkDir
		}
		if !cmd.Flags().Changed("timeout") && settings.FetchTimeout > 0 {
			fetchTimeout = time.Duration(settings.FetchTimeout)
		}

		logger.V(3).Infof("Target platform %s", platform.Current())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "tasks", "!format")

	rootCmd.PersistentFlags().StringVar(&osOverride, "os", runtime.GOOS, "Target OS (linux, windows)")
	rootCmd.PersistentFlags().StringVar(&archOverride, "arch", runtime.GOARCH, "Target architecture (x86_64, arm64)")
	rootCmd.PersistentFlags().StringVar(&workDir, "work-dir", "", "Directory installers are downloaded to (kept when set)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to setup-cuda.yaml config file")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "timeout", config.DefaultFetchTimeout, "Timeout for catalog and manifest fetches")
}
