//go:build windows
// +build windows

package manager

import "os"

// startPTYResizeWatcher is a no-op on Windows, which has no SIGWINCH.
func startPTYResizeWatcher(_ *os.File) (stop func()) {
	return func() {}
}
