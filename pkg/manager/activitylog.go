package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultActivityLogFilename = "activity.log"

// ActivityLog appends one timestamped line per store mutation and connection to
// <app dir>/activity.log. Writes are best-effort and never surface errors to the UI.
// A nil *ActivityLog discards everything.
type ActivityLog struct {
	path string
}

// NewActivityLog returns a log writing to path, or to the default location when empty.
func NewActivityLog(path string) *ActivityLog {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(DefaultAppDir(), defaultActivityLogFilename)
	}
	return &ActivityLog{path: expandPath(path)}
}

// Path returns the log file location ("" for a nil log).
func (a *ActivityLog) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Printf writes one line, prefixed with an RFC3339 UTC timestamp.
func (a *ActivityLog) Printf(format string, args ...any) {
	if a == nil || a.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\r\n")
	_, _ = fmt.Fprintf(f, "%s %s\n", now().UTC().Format(time.RFC3339), msg)
}

// Added records a new profile.
func (a *ActivityLog) Added(p Profile) {
	a.Printf("add name=%s host=%s port=%d user=%s", logValue(p.Name), logValue(p.Host), p.EffectivePort(), logValue(p.User))
}

// Deleted records a removed profile.
func (a *ActivityLog) Deleted(p Profile) {
	a.Printf("delete name=%s host=%s", logValue(p.Name), logValue(p.Host))
}

// Loaded records a store load that skipped lines or hit a read error.
func (a *ActivityLog) Loaded(path string, rep LoadReport) {
	if rep.Skipped == 0 && rep.Err == nil {
		return
	}
	line := fmt.Sprintf("load path=%s loaded=%d skipped=%d", logValue(path), rep.Loaded, rep.Skipped)
	if rep.Err != nil {
		line += " err=" + logValue(rep.Err.Error())
	}
	a.Printf("%s", line)
}

// SaveFailed records a store write failure.
func (a *ActivityLog) SaveFailed(err error) {
	if err == nil {
		return
	}
	a.Printf("save status=failure err=%s", logValue(err.Error()))
}

// Imported records a successful import.
func (a *ActivityLog) Imported(path string, added, updated int, replace bool) {
	a.Printf("import file=%s added=%d updated=%d replace=%t status=success", logValue(path), added, updated, replace)
}

// ImportFailed records an import that could not be read or parsed.
func (a *ActivityLog) ImportFailed(path string, err error) {
	if err == nil {
		return
	}
	a.Printf("import file=%s status=failure err=%s", logValue(path), logValue(err.Error()))
}

// ConnectStart records that ssh is about to be started.
func (a *ActivityLog) ConnectStart(p Profile, cmdline string) {
	a.Printf("connect name=%s cmd=%s status=started", logValue(p.Name), logValue(cmdline))
}

// Connect records how a session ended.
func (a *ActivityLog) Connect(p Profile, cmdline string, err error) {
	if err != nil {
		a.Printf("connect name=%s cmd=%s status=failure err=%s", logValue(p.Name), logValue(cmdline), logValue(err.Error()))
		return
	}
	a.Printf("connect name=%s cmd=%s status=success", logValue(p.Name), logValue(cmdline))
}

// logValue keeps each record on one line and space-free.
func logValue(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\r\n\"\\") {
		return strconv.Quote(s)
	}
	return s
}
