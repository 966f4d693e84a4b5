package installer

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/flanksource/clicky/task"

	"github.com/mjun0812/setup-cuda/pkg/platform"
)

// runner executes install commands with a sudo prefix decided once. In
// dry-run mode commands are recorded and logged but never executed.
type runner struct {
	sudo   bool
	dryRun bool
	task   *task.Task
	plan   []string
}

func newRunner(opts Options, p platform.Platform, t *task.Task) *runner {
	if t == nil {
		t = &task.Task{}
	}
	return &runner{
		sudo:   opts.Sudo && !p.IsWindows() && runtime.GOOS != "windows" && os.Geteuid() != 0,
		dryRun: opts.DryRun,
		task:   t,
	}
}

func (r *runner) run(name string, args ...string) error {
	argv := append([]string{name}, args...)
	if r.sudo {
		argv = append([]string{"sudo"}, argv...)
	}
	display := strings.Join(argv, " ")
	r.plan = append(r.plan, display)

	if r.dryRun {
		r.task.Infof("[dry-run] %s", display)
		return nil
	}

	r.task.Infof("Running %s", display)
	cmd := exec.Command(argv[0], argv[1:]...)

	// Connect stdin/stdout/stderr for interactive password prompts
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", display, err)
	}
	return nil
}

// note records a non-command step (downloads) in the plan.
func (r *runner) note(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	r.plan = append(r.plan, line)
	if r.dryRun {
		r.task.Infof("[dry-run] %s", line)
	}
}

// Paths the NVIDIA standalone installer writes its log to, in the order
// they are worth checking.
var installerLogPaths = []string{
	"/var/log/cuda-installer.log",
	"/tmp/cuda-installer.log",
}

const logTailLines = 20

// installerLogTail returns the tail of the NVIDIA installer log,
// best-effort. An empty string means no log was found.
func installerLogTail() string {
	for _, path := range installerLogPaths {
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			continue
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) > logTailLines {
			lines = lines[len(lines)-logTailLines:]
		}
		return fmt.Sprintf("%s:\n%s", path, strings.Join(lines, "\n"))
	}
	return ""
}

// promptForConfirmation asks the user for confirmation
func promptForConfirmation(message string) bool {
	fmt.Print(message)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// displayInstallWarning shows a warning about system-wide installation
func displayInstallWarning(version string, method Method, root string) {
	fmt.Printf("\n⚠️  SYSTEM-WIDE INSTALLATION REQUIRED\n")
	fmt.Printf("   Toolkit: CUDA %s\n", version)
	fmt.Printf("   Method: %s\n", method)
	fmt.Printf("   Target: %s\n", root)
	fmt.Printf("   Requires: administrator privileges\n\n")
}
