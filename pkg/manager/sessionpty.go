package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// RecordedSession runs ssh under a PTY and mirrors everything it prints to a transcript
// file as well as to the user's terminal.
type RecordedSession struct {
	ctx            context.Context
	argv           []string
	transcriptPath string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRecordedSession prepares a recorded session for argv, appending to transcriptPath.
func NewRecordedSession(ctx context.Context, argv []string, transcriptPath string) *RecordedSession {
	return &RecordedSession{ctx: ctx, argv: argv, transcriptPath: transcriptPath}
}

func (s *RecordedSession) SetStdin(r io.Reader)  { s.stdin = r }
func (s *RecordedSession) SetStdout(w io.Writer) { s.stdout = w }
func (s *RecordedSession) SetStderr(w io.Writer) { s.stderr = w }

// TranscriptPath is the file the session output is appended to.
func (s *RecordedSession) TranscriptPath() string { return s.transcriptPath }

// Run starts ssh in a PTY, wires the terminal through it and waits for ssh to exit.
func (s *RecordedSession) Run() error {
	if len(s.argv) == 0 {
		return errors.New("empty command")
	}
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	stdin, stdout := s.stdin, s.stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	transcript, err := os.OpenFile(s.transcriptPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer transcript.Close()

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("pty start: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	// Seed the PTY size from the terminal the user is looking at, then keep it in sync.
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, rows, sizeErr := term.GetSize(int(f.Fd())); sizeErr == nil && rows > 0 && cols > 0 {
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		}
	}
	stopResize := startPTYResizeWatcher(ptmx)
	defer stopResize()

	// Local echo and line editing belong to the remote side now.
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if oldState, rawErr := term.MakeRaw(int(f.Fd())); rawErr == nil {
			defer func() { _ = term.Restore(int(f.Fd()), oldState) }()
		}
	}

	// stdin outlives the session (the selector reads it next), so the copy must stop
	// when ssh exits instead of waiting for one more keypress.
	var src io.Reader = stdin
	in, err := cancelreader.NewReader(stdin)
	if err == nil {
		defer func() { _ = in.Close() }()
		src = in
	} else {
		// Not pollable (a regular file, /dev/null): the copy ends at EOF by itself.
		in = nil
	}

	inputDone := make(chan struct{})
	go func() {
		defer close(inputDone)
		_, _ = io.Copy(ptmx, src)
	}()

	// Reading the PTY master fails with EIO once ssh exits; that is the normal end.
	_, _ = io.Copy(io.MultiWriter(stdout, transcript), ptmx)

	waitErr := cmd.Wait()
	if in != nil && in.Cancel() {
		<-inputDone
	}
	return waitErr
}
