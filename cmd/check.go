package cmd

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/spf13/cobra"

	"github.com/mjun0812/setup-cuda/pkg/installer"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/verify"
)

// CompilerStatus is one discovered nvcc binary and its reported release.
type CompilerStatus struct {
	Compiler string `json:"compiler" pretty:"label=Compiler"`
	Version  string `json:"version,omitempty" pretty:"label=Version"`
	Status   string `json:"status" pretty:"label=Status"`
}

// CompilerStatusList renders discovered compilers as a table.
type CompilerStatusList struct {
	Compilers []CompilerStatus `json:"compilers" pretty:"table"`
}

var checkCmd = &cobra.Command{
	Use:          "check [version]",
	Short:        "Check the installed CUDA compiler version",
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	Long: `Check the installed CUDA compiler version.

Runs every nvcc found in PATH and under the CUDA install roots and reports
the toolkit release each one belongs to. With a version argument, exits
non-zero unless one of them matches.

Examples:
  setup-cuda check          # Report every nvcc on this machine
  setup-cuda check 12.4     # Fail unless a 12.4 toolkit is present`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	requested := ""
	if len(args) == 1 {
		requested = args[0]
	}

	var rows []CompilerStatus
	var matched bool
	var checkErr error
	task.StartTask("cuda-check", func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		rows, matched, checkErr = collectCompilerStatus(requested, t)
		return rows, checkErr
	})
	if checkErr != nil {
		return checkErr
	}

	result, err := clicky.Format(CompilerStatusList{Compilers: rows})
	if err != nil {
		return err
	}
	cmd.Println(result)

	if requested != "" && !matched {
		return fmt.Errorf("no installed CUDA toolkit matches %s", requested)
	}
	return nil
}

func collectCompilerStatus(requested string, t *task.Task) ([]CompilerStatus, bool, error) {
	p := platform.Current()

	var roots []string
	for _, v := range installer.InstalledVersions(p) {
		roots = append(roots, installer.InstallRoot(v, p))
	}

	candidates := verify.Discover(p, roots...)
	if len(candidates) == 0 {
		return nil, false, fmt.Errorf("nvcc not found in PATH or under any CUDA install root")
	}

	var rows []CompilerStatus
	matched := false
	working := 0
	for _, path := range candidates {
		t.V(3).Infof("Probing %s", path)

		c, err := verify.Probe(path)
		if err != nil {
			rows = append(rows, CompilerStatus{Compiler: path, Status: fmt.Sprintf("error: %v", err)})
			continue
		}

		working++
		row := CompilerStatus{Compiler: c.Path, Version: c.Release, Status: "ok"}
		if requested != "" {
			if verify.Matches(c.Release, requested) {
				matched = true
			} else {
				row.Status = fmt.Sprintf("mismatch (want %s)", requested)
			}
		}
		rows = append(rows, row)
	}

	if working == 0 {
		return rows, false, fmt.Errorf("no working nvcc found (%d candidates failed)", len(candidates))
	}
	return rows, matched, nil
}
