//go:build !windows
// +build !windows

package manager

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// flushTTYInput best-effort discards unread input queued on the controlling terminal
// (stray keypresses from the selector, terminal replies) so ssh does not receive it as
// typed characters. It never fails; without /dev/tty it does nothing.
func flushTTYInput() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		return
	}
	defer func() { _ = tty.Close() }()

	fd := int(tty.Fd())
	if fd < 0 {
		return
	}

	_ = flushInputQueue(fd)

	// Short non-blocking drain for bytes that land right after the flush.
	_ = unix.SetNonblock(fd, true)
	defer func() { _ = unix.SetNonblock(fd, false) }()

	deadline := time.Now().Add(150 * time.Millisecond)
	buf := make([]byte, 512)
	for time.Now().Before(deadline) {
		n, rerr := unix.Read(fd, buf)
		if n > 0 {
			deadline = time.Now().Add(50 * time.Millisecond)
			continue
		}
		if rerr != nil {
			break
		}
		if n == 0 {
			break
		}
	}
}
