package installer

import (
	"os"

	"github.com/flanksource/clicky/task"
)

// cleanupManager tracks downloaded installer artifacts and removes them
// after installation, unless the caller asked to keep them or pointed the
// work dir somewhere deliberate.
type cleanupManager struct {
	keep  bool
	files []string
	task  *task.Task
}

func newCleanupManager(opts Options, t *task.Task) *cleanupManager {
	return &cleanupManager{
		keep: opts.KeepInstaller || opts.WorkDir != os.TempDir(),
		task: t,
	}
}

// AddFile adds a file to be cleaned up
func (cm *cleanupManager) AddFile(path string) {
	if path != "" {
		cm.files = append(cm.files, path)
	}
}

// Cleanup performs the actual cleanup
func (cm *cleanupManager) Cleanup() {
	if cm.keep {
		for _, path := range cm.files {
			if cm.task != nil {
				cm.task.V(3).Infof("Keeping downloaded file %s", path)
			}
		}
		return
	}

	for _, path := range cm.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && cm.task != nil {
			cm.task.V(4).Infof("Failed to clean up %s: %v", path, err)
		}
	}
}
