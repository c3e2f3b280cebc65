package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultSSHCommand is the program launched for a connection.
const DefaultSSHCommand = "ssh"

// ErrSSHNotFound is returned when the ssh program cannot be located on PATH.
var ErrSSHNotFound = errors.New("ssh command not found")

// BuildSSHCommand returns the argv for connecting to p:
//
//	ssh -p <port> [-i <key_file>] [<user>@]<host>
//
// sshCommand replaces argv[0]; empty means DefaultSSHCommand. Values are passed as
// separate arguments, so no quoting is applied here (see CommandLine for the shell form).
func BuildSSHCommand(p Profile, sshCommand string) []string {
	if strings.TrimSpace(sshCommand) == "" {
		sshCommand = DefaultSSHCommand
	}
	argv := []string{sshCommand, "-p", strconv.Itoa(p.EffectivePort())}
	if p.KeyFile != "" {
		argv = append(argv, "-i", p.KeyFile)
	}
	return append(argv, p.Target())
}

// ShellQuote wraps s in double quotes, escaping embedded double quotes and backslashes.
func ShellQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// CommandLine renders the shell form of the connect command, quoting every
// user-supplied value:
//
//	ssh -p 22 -i "/path/key" "user@host"
func CommandLine(p Profile, sshCommand string) string {
	if strings.TrimSpace(sshCommand) == "" {
		sshCommand = DefaultSSHCommand
	}
	parts := []string{sshCommand, "-p", strconv.Itoa(p.EffectivePort())}
	if p.KeyFile != "" {
		parts = append(parts, "-i", ShellQuote(p.KeyFile))
	}
	parts = append(parts, ShellQuote(p.Target()))
	return strings.Join(parts, " ")
}

// Launcher hands a profile to an external ssh process and waits for it to exit.
type Launcher interface {
	Launch(ctx context.Context, p Profile) error
}

// ExecLauncher runs ssh as a child process attached to the given stdio.
// When Record is set the session runs inside a PTY and its output is also appended to
// the profile's daily transcript (see RecordedSession).
type ExecLauncher struct {
	SSHCommand string
	Record     bool
	LogOptions LogOptions
	Activity   *ActivityLog

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecLauncher returns a launcher bound to the process stdio.
func NewExecLauncher(sshCommand string, record bool, activity *ActivityLog) *ExecLauncher {
	return &ExecLauncher{
		SSHCommand: sshCommand,
		Record:     record,
		LogOptions: DefaultLogOptions(),
		Activity:   activity,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Argv resolves the ssh binary on PATH and returns the full argv for p.
func (l *ExecLauncher) Argv(p Profile) ([]string, error) {
	argv := BuildSSHCommand(p, l.SSHCommand)
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSSHNotFound, argv[0])
	}
	argv[0] = path
	return argv, nil
}

// Session returns a runnable session for p without starting it. Callers that own the
// terminal (the TUI) set its stdio and call Run.
func (l *ExecLauncher) Session(ctx context.Context, p Profile) (Session, error) {
	argv, err := l.Argv(p)
	if err != nil {
		return nil, err
	}
	var sess Session
	if l.Record {
		info, err := EnsureDailyProfileLog(p.Name, now(), l.LogOptions)
		if err != nil {
			return nil, fmt.Errorf("prepare transcript: %w", err)
		}
		sess = NewRecordedSession(ctx, argv, info.Path)
	} else {
		sess = &plainSession{cmd: exec.CommandContext(ctx, argv[0], argv[1:]...)}
	}
	return &announcedSession{Session: sess, banner: ConnectBanner(p, l.SSHCommand)}, nil
}

// Launch runs ssh for p and blocks until it exits.
func (l *ExecLauncher) Launch(ctx context.Context, p Profile) error {
	sess, err := l.Session(ctx, p)
	if err != nil {
		l.Activity.Connect(p, CommandLine(p, l.SSHCommand), err)
		return err
	}
	sess.SetStdin(l.Stdin)
	sess.SetStdout(l.Stdout)
	sess.SetStderr(l.Stderr)

	l.Activity.ConnectStart(p, CommandLine(p, l.SSHCommand))
	err = sess.Run()
	l.Activity.Connect(p, CommandLine(p, l.SSHCommand), err)
	return err
}

// Session is a prepared ssh process. It matches tea.ExecCommand so the TUI can hand the
// terminal over with tea.Exec.
type Session interface {
	Run() error
	SetStdin(io.Reader)
	SetStdout(io.Writer)
	SetStderr(io.Writer)
}

// announcedSession prints the connect banner and drops stray pending input before
// handing the terminal to ssh.
type announcedSession struct {
	Session
	banner string
	stdout io.Writer
}

func (s *announcedSession) SetStdout(w io.Writer) {
	s.stdout = w
	s.Session.SetStdout(w)
}

func (s *announcedSession) Run() error {
	if s.stdout != nil && s.banner != "" {
		_, _ = io.WriteString(s.stdout, s.banner)
	}
	flushTTYInput()
	return s.Session.Run()
}

type plainSession struct {
	cmd *exec.Cmd
}

func (s *plainSession) Run() error            { return s.cmd.Run() }
func (s *plainSession) SetStdin(r io.Reader)  { s.cmd.Stdin = r }
func (s *plainSession) SetStdout(w io.Writer) { s.cmd.Stdout = w }
func (s *plainSession) SetStderr(w io.Writer) { s.cmd.Stderr = w }

// ExecReplace replaces the current process with ssh for p. It only returns on error.
func ExecReplace(p Profile, sshCommand string) error {
	argv := BuildSSHCommand(p, sshCommand)
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSSHNotFound, argv[0])
	}
	restoreTerminalForExec()
	return execReplace(path, argv)
}

// ConnectBanner is printed before handing the terminal to ssh.
func ConnectBanner(p Profile, sshCommand string) string {
	return fmt.Sprintf("Connecting: %s (%s)\nCommand: %s\n(passwords are never stored; ssh handles authentication)\n\n",
		p.Name, p.Target(), CommandLine(p, sshCommand))
}

// restoreTerminalForExec shows the cursor and resets attributes before exec-replacing
// the process, since a TUI may have hidden them.
func restoreTerminalForExec() {
	_, _ = fmt.Fprint(os.Stdout, "\033[?25h\033[0m")
}
