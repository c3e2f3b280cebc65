//go:build !windows && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !windows,!linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

package manager

// flushInputQueue has no portable ioctl here; flushTTYInput's drain loop does the work.
func flushInputQueue(fd int) error {
	return nil
}
