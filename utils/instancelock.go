package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const instanceLockFilename = ".ecessbot.lock"

// InstanceLock keeps a second bot process from writing to the same data directory
type InstanceLock struct {
	lockFile *flock.Flock
	lockPath string
}

func NewInstanceLock(dataDir string) (*InstanceLock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	lockPath := filepath.Join(dataDir, instanceLockFilename)
	return &InstanceLock{
		lockFile: flock.New(lockPath),
		lockPath: lockPath,
	}, nil
}

// TryLock returns an error if another instance already holds the lock
func (l *InstanceLock) TryLock() error {
	locked, err := l.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another ecessbot instance is already using %s", filepath.Dir(l.lockPath))
	}
	return nil
}

// Unlock releases the lock and removes the lock file
func (l *InstanceLock) Unlock() error {
	if err := l.lockFile.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (l *InstanceLock) Path() string {
	return l.lockPath
}
