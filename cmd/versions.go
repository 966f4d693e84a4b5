package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjun0812/setup-cuda/pkg/catalog"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

var (
	versionsLimit int
	versionsExpr  string
)

var versionsCmd = &cobra.Command{
	Use:          "versions",
	Short:        "List all published CUDA releases",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	Long: `List all published CUDA releases in ascending order.

The catalog is assembled from NVIDIA's release manifests and download
archive, merged with a pinned list of releases that predate them.

Examples:
  setup-cuda versions                                    # Every known release
  setup-cuda versions --limit 5                          # The five newest
  setup-cuda versions --expr "version.startsWith('12')"  # Only 12.x`,
	RunE: runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 0, "Print only the newest N releases")
	versionsCmd.Flags().StringVar(&versionsExpr, "expr", "", "CEL expression filtering releases (e.g. \"major >= 11 && minor < 4\")")
}

func runVersions(cmd *cobra.Command, args []string) error {
	client := setupcudahttp.GetHttpClient(setupcudahttp.WithTimeout(fetchTimeout))
	available := catalog.New(catalog.WithClient(client)).Build(cmd.Context())

	filtered, err := version.ApplyVersionExpr(available, versionsExpr)
	if err != nil {
		return err
	}
	if versionsLimit > 0 && versionsLimit < len(filtered) {
		filtered = filtered[len(filtered)-versionsLimit:]
	}

	for _, v := range filtered {
		fmt.Println(v)
	}
	return nil
}
