package setupcuda

import (
	"context"
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"

	"github.com/mjun0812/setup-cuda/pkg/catalog"
	"github.com/mjun0812/setup-cuda/pkg/installer"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

// Re-export commonly used types for the public API
type (
	Result = installer.Result
	Method = installer.Method
	Option = installer.Option
)

// Re-export installation methods
const (
	MethodAuto    = installer.MethodAuto
	MethodNetwork = installer.MethodNetwork
	MethodLocal   = installer.MethodLocal
)

// Re-export installer options
var (
	WithMethod        = installer.WithMethod
	WithPlatform      = installer.WithPlatform
	WithDistro        = installer.WithDistro
	WithWorkDir       = installer.WithWorkDir
	WithCacheDir      = installer.WithCacheDir
	WithSudo          = installer.WithSudo
	WithDryRun        = installer.WithDryRun
	WithYes           = installer.WithYes
	WithKeepInstaller = installer.WithKeepInstaller
	WithHTTPTimeout   = installer.WithHTTPTimeout
)

// Install resolves a version request against the published CUDA releases
// and installs the matching toolkit.
// This is the main public API for programmatic installation.
//
// Example:
//
//	result, err := setupcuda.Install("12.4",
//	    setupcuda.WithMethod(setupcuda.MethodNetwork),
//	    setupcuda.WithYes(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Root)
func Install(request string, opts ...Option) (*Result, error) {
	inst := installer.New(opts...)

	var result *Result
	var installErr error

	task.StartTask(fmt.Sprintf("cuda@%s", request), func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		result, installErr = inst.Install(ctx, request, t)
		return result, installErr
	})

	clicky.WaitForGlobalCompletion()

	return result, installErr
}

// InstallWithContext installs a CUDA toolkit version with a context for
// cancellation and timeout control.
func InstallWithContext(ctx context.Context, request string, opts ...Option) (*Result, error) {
	inst := installer.New(opts...)
	return inst.Install(ctx, request, &task.Task{})
}

// Versions returns every published CUDA release, ascending.
func Versions(ctx context.Context) ([]string, error) {
	versions := catalog.New().Build(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return versions, nil
}

// Resolve resolves a version request against the published CUDA releases.
// ok reports whether the request matched; an unknown version is not an
// error.
func Resolve(ctx context.Context, request string) (resolved string, ok bool, err error) {
	available, err := Versions(ctx)
	if err != nil {
		return "", false, err
	}
	return version.Resolve(request, available)
}
