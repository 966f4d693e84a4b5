package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjun0812/setup-cuda/pkg/catalog"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"github.com/mjun0812/setup-cuda/pkg/locator"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

var resolveURL bool

var resolveCmd = &cobra.Command{
	Use:          "resolve <version>",
	Short:        "Resolve a version request to a full CUDA release",
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
	Long: `Resolve a version request to a full CUDA release.

A major or major.minor request resolves to the newest matching release,
and "latest" resolves to the newest release overall.

Examples:
  setup-cuda resolve 12           # Newest 12.x release
  setup-cuda resolve 12.4         # Newest 12.4.x release
  setup-cuda resolve latest       # Newest release overall
  setup-cuda resolve 12.4 --url   # Also print the installer URL`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveURL, "url", false, "Also print the standalone installer URL for the target platform")
}

func runResolve(cmd *cobra.Command, args []string) error {
	client := setupcudahttp.GetHttpClient(setupcudahttp.WithTimeout(fetchTimeout))
	available := catalog.New(catalog.WithClient(client)).Build(cmd.Context())

	resolved, ok, err := version.Resolve(args[0], available)
	if err != nil {
		return err
	}
	if !ok {
		return version.EnhanceNotFound(args[0], available)
	}

	fmt.Println(resolved)

	if resolveURL {
		p := platform.Current()
		if err := p.Validate(); err != nil {
			return err
		}
		inst, err := locator.New(locator.WithClient(client)).Standalone(cmd.Context(), resolved, p)
		if err != nil {
			return err
		}
		fmt.Println(inst.URL)
	}
	return nil
}
