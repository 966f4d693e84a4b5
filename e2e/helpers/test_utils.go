package helpers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	. "github.com/onsi/gomega"

	setupcuda "github.com/mjun0812/setup-cuda"
	"github.com/mjun0812/setup-cuda/mock"
	"github.com/mjun0812/setup-cuda/pkg/catalog"
	"github.com/mjun0812/setup-cuda/pkg/config"
	"github.com/mjun0812/setup-cuda/pkg/installer"
	"github.com/mjun0812/setup-cuda/pkg/locator"
)

// TestContext holds the fixture server and scratch space for a single test
type TestContext struct {
	Server  *httptest.Server
	WorkDir string
	Cleanup func()
}

// CreateInstallTestEnvironment starts the fixture server and a scratch
// work directory for installer downloads
func CreateInstallTestEnvironment() (*TestContext, error) {
	workDir, err := os.MkdirTemp("", "setup-cuda-e2e-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	server := StartFixtureServer()

	cleanup := func() {
		server.Close()
		os.RemoveAll(workDir)
	}

	return &TestContext{
		Server:  server,
		WorkDir: workDir,
		Cleanup: cleanup,
	}, nil
}

// InstallResult holds information about an installation attempt
type InstallResult struct {
	Result   *setupcuda.Result
	Duration time.Duration
	Error    error
}

// RunDryRunInstall performs a dry-run installation through the public API,
// wired against the fixture endpoints
func RunDryRunInstall(testCtx *TestContext, scenario InstallScenario) *InstallResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	loc := locator.New(
		locator.WithClient(testCtx.Server.Client()),
		locator.WithBaseURL(testCtx.Server.URL),
		locator.WithReposURL(testCtx.Server.URL+"/repos/"),
		locator.WithOverrides(&config.Overrides{Versions: map[string]config.Override{}}),
	)
	cat := catalog.New(
		catalog.WithSources(mock.NewCatalogSource("releases").WithVersions(CatalogVersions...)),
		catalog.WithLegacy(),
	)

	opts := []setupcuda.Option{
		installer.WithLocator(loc),
		installer.WithCatalog(cat),
		setupcuda.WithMethod(scenario.Method),
		setupcuda.WithPlatform(scenario.Platform),
		setupcuda.WithWorkDir(testCtx.WorkDir),
		setupcuda.WithDryRun(true),
		setupcuda.WithYes(true),
		setupcuda.WithSudo(false),
	}
	if scenario.Distro != nil {
		opts = append(opts, setupcuda.WithDistro(*scenario.Distro))
	}

	result, err := setupcuda.InstallWithContext(ctx, scenario.Version, opts...)

	return &InstallResult{
		Result:   result,
		Duration: time.Since(start),
		Error:    err,
	}
}

// ValidatePlan performs comprehensive validation of a dry-run install plan
// Caller should check for result.Error before calling this function
func ValidatePlan(result *InstallResult, scenario InstallScenario) {
	Expect(result.Error).ToNot(HaveOccurred(), "Dry-run install should succeed")
	Expect(result.Result).ToNot(BeNil(), "Install result should not be nil")

	Expect(result.Result.Version).To(Equal(scenario.Resolved),
		fmt.Sprintf("Request %s should resolve to %s", scenario.Version, scenario.Resolved))
	Expect(result.Result.Method).To(Equal(scenario.Method), "Method should match the requested strategy")
	Expect(result.Result.Root).To(Equal(scenario.Root), "Install root should follow the platform convention")
	Expect(result.Result.Plan).ToNot(BeEmpty(), "Dry-run should record planned steps")

	plan := strings.Join(result.Result.Plan, "\n")
	for _, want := range scenario.PlanWants {
		Expect(plan).To(ContainSubstring(want),
			fmt.Sprintf("Plan for %s should contain %q", scenario.Name, want))
	}
	for _, reject := range scenario.PlanRejects {
		Expect(plan).ToNot(ContainSubstring(reject),
			fmt.Sprintf("Plan for %s should not contain %q", scenario.Name, reject))
	}
}

// ValidateNoDownloadsPerformed checks the dry-run left the work directory
// untouched
func ValidateNoDownloadsPerformed(testCtx *TestContext) {
	entries, err := os.ReadDir(testCtx.WorkDir)
	Expect(err).ToNot(HaveOccurred(), "Work directory should be readable")
	Expect(entries).To(BeEmpty(), "Dry-run should not download anything")
}
