//go:build windows
// +build windows

package manager

// flushTTYInput is a no-op on Windows.
func flushTTYInput() {}
