//go:build windows
// +build windows

package manager

import (
	"errors"
	"os"
	"os/exec"
)

// execReplace has no exec(2) to lean on here: it runs path in the foreground and exits
// with its status.
func execReplace(path string, argv []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		os.Exit(ee.ExitCode())
	}
	if err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
