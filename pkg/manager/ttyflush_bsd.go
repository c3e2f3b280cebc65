//go:build darwin || dragonfly || freebsd || netbsd || openbsd
// +build darwin dragonfly freebsd netbsd openbsd

package manager

import "golang.org/x/sys/unix"

// fread selects the input queue for TIOCFLUSH (FREAD in <sys/fcntl.h>).
const fread = 0x1

// flushInputQueue is tcflush(fd, TCIFLUSH): the BSDs take a pointer to the queue mask.
func flushInputQueue(fd int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, fread)
}
