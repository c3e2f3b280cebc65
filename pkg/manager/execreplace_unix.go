//go:build !windows
// +build !windows

package manager

import (
	"os"
	"syscall"
)

// execReplace replaces the current process image with path.
func execReplace(path string, argv []string) error {
	return syscall.Exec(path, argv, os.Environ())
}
