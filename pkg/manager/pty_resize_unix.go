//go:build !windows
// +build !windows

package manager

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// startPTYResizeWatcher keeps the PTY size in sync with the current terminal size until
// the returned stop func is called. If stdout is not a TTY it only waits for stop.
func startPTYResizeWatcher(ptmx *os.File) (stop func()) {
	if ptmx == nil {
		return func() {}
	}

	winchCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(winchCh, syscall.SIGWINCH)

	go func() {
		defer signal.Stop(winchCh)
		for {
			select {
			case <-done:
				return
			case <-winchCh:
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					continue
				}
				if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil && rows > 0 && cols > 0 {
					_ = pty.Setsize(ptmx, &pty.Winsize{
						Rows: uint16(rows),
						Cols: uint16(cols),
					})
				}
			}
		}
	}()
	return func() { close(done) }
}
