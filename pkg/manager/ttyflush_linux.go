//go:build linux
// +build linux

package manager

import "golang.org/x/sys/unix"

// flushInputQueue is tcflush(fd, TCIFLUSH).
func flushInputQueue(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
}
