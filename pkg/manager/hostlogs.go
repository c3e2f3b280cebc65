package manager

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Recorded session transcripts live under:
//
//	<app dir>/logs/<profile>/YYYY-MM-DD.log
//
// One file per profile per calendar day (local time by default), appended to by every
// recorded session that day. The profile name is sanitized into a directory name.

const (
	// DefaultLogsSubdir is appended under the app directory.
	DefaultLogsSubdir = "logs"

	// DefaultLogExt is the extension used for daily transcripts.
	DefaultLogExt = ".log"

	// DefaultDayFormat controls the transcript filename date format.
	DefaultDayFormat = "2006-01-02"
)

var now = time.Now

// LogOptions controls where transcripts are written.
type LogOptions struct {
	// BaseDir overrides the logs directory. Empty means <app dir>/logs.
	BaseDir string

	// Timezone decides what "day" means for rotation. Nil means local time.
	Timezone *time.Location

	FilePerm os.FileMode
	DirPerm  os.FileMode
}

// DefaultLogOptions returns 0600 files in 0700 directories under the app directory.
func DefaultLogOptions() LogOptions {
	return LogOptions{
		FilePerm: 0o600,
		DirPerm:  0o700,
	}
}

// ProfileLogInfo describes one daily transcript.
type ProfileLogInfo struct {
	Profile   string
	Dir       string
	Date      string
	Path      string
	SizeBytes int64
}

// ProfileLogsBaseDir resolves the transcripts root.
func ProfileLogsBaseDir(opts LogOptions) string {
	if strings.TrimSpace(opts.BaseDir) != "" {
		return expandPath(opts.BaseDir)
	}
	return filepath.Join(DefaultAppDir(), DefaultLogsSubdir)
}

// ProfileLogDir returns the transcript directory for a profile.
func ProfileLogDir(name string, opts LogOptions) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("profile name is required")
	}
	return filepath.Join(ProfileLogsBaseDir(opts), sanitizeNameToFilename(name)), nil
}

// DailyProfileLogPath returns the transcript path for name on the day of t.
func DailyProfileLogPath(name string, t time.Time, opts LogOptions) (string, error) {
	dir, err := ProfileLogDir(name, opts)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dayOf(t, opts)+DefaultLogExt), nil
}

// EnsureDailyProfileLog creates the transcript (and its directories) if needed.
func EnsureDailyProfileLog(name string, t time.Time, opts LogOptions) (ProfileLogInfo, error) {
	opts = normalizeLogOptions(opts)
	p, err := DailyProfileLogPath(name, t, opts)
	if err != nil {
		return ProfileLogInfo{}, err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, opts.DirPerm); err != nil {
		return ProfileLogInfo{}, fmt.Errorf("mkdir logs dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, opts.FilePerm)
	if err != nil {
		return ProfileLogInfo{}, fmt.Errorf("create log file: %w", err)
	}
	_ = f.Close()

	info := ProfileLogInfo{
		Profile: strings.TrimSpace(name),
		Dir:     dir,
		Date:    dayOf(t, opts),
		Path:    p,
	}
	if st, err := os.Stat(p); err == nil {
		info.SizeBytes = st.Size()
	}
	return info, nil
}

// ListProfileLogFiles lists a profile's transcripts, newest first.
func ListProfileLogFiles(name string, opts LogOptions) ([]string, error) {
	dir, err := ProfileLogDir(name, opts)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), DefaultLogExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	// YYYY-MM-DD sorts lexicographically.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// ReadLastNLines returns up to n trailing lines of path, oldest first.
func ReadLastNLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	f, err := os.Open(expandPath(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return ring, err
	}
	return ring, nil
}

func dayOf(t time.Time, opts LogOptions) string {
	if t.IsZero() {
		t = now()
	}
	loc := opts.Timezone
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DefaultDayFormat)
}

func normalizeLogOptions(opts LogOptions) LogOptions {
	if opts.FilePerm == 0 {
		opts.FilePerm = 0o600
	}
	if opts.DirPerm == 0 {
		opts.DirPerm = 0o700
	}
	return opts
}

// sanitizeNameToFilename turns a profile name into a filesystem-safe directory name.
func sanitizeNameToFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
		"\t", "_",
		"\n", "_",
	)
	name = replacer.Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "._-")
	if name == "" {
		return "profile"
	}
	return name
}
