package manager

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// On-disk layout:
//
//	<home>/.wt_ssh_manager/hosts.db        profile records (see codec.go)
//	<home>/.wt_ssh_manager/config.yaml     optional settings
//	<home>/.wt_ssh_manager/activity.log    activity log
//	<home>/.wt_ssh_manager/logs/<name>/    recorded session transcripts
//
// <home> is %USERPROFILE% on Windows and $HOME elsewhere.

const (
	defaultAppDirName    = ".wt_ssh_manager"
	defaultStoreFilename = "hosts.db"
)

// HomeDir returns the running user's home directory using the platform's environment
// variable, falling back to os.UserHomeDir and finally ".".
func HomeDir() string {
	env := "HOME"
	if runtime.GOOS == "windows" {
		env = "USERPROFILE"
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return "."
}

// DefaultAppDir returns the dedicated application directory under the home directory.
func DefaultAppDir() string {
	return filepath.Join(HomeDir(), defaultAppDirName)
}

// DefaultStorePath returns the full path to hosts.db.
func DefaultStorePath() string {
	return filepath.Join(DefaultAppDir(), defaultStoreFilename)
}

// ErrStoreWrite wraps every failure to write the store file.
var ErrStoreWrite = errors.New("write store")

// Store persists the whole profile collection in a single flat file.
//
// There is no locking: two running instances race and the later Save wins.
type Store struct {
	path string
}

// NewStore returns a store backed by path, or by DefaultStorePath when path is empty.
// The parent directory is created (0700) if missing; failure to create it is not fatal
// here and surfaces on the first Save.
func NewStore(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultStorePath()
	}
	path = expandPath(path)
	_ = os.MkdirAll(filepath.Dir(path), 0o700)
	return &Store{path: path}
}

// Path returns the store file location.
func (s *Store) Path() string { return s.path }

// Dir returns the directory holding the store file.
func (s *Store) Dir() string { return filepath.Dir(s.path) }

// LoadReport describes what Load found on disk.
type LoadReport struct {
	Loaded  int
	Skipped int   // non-empty lines that did not decode
	Err     error // open/read error other than a missing file
}

// Load reads all profiles, sorted by name case-insensitively. A missing or unreadable
// file yields an empty (or partial) collection; malformed lines are skipped.
func (s *Store) Load() []Profile {
	profiles, _ := s.LoadWithReport()
	return profiles
}

// LoadWithReport is Load plus a summary of skipped lines and read errors.
func (s *Store) LoadWithReport() ([]Profile, LoadReport) {
	var rep LoadReport
	f, err := os.Open(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			rep.Err = fmt.Errorf("open store %s: %w", s.path, err)
		}
		return []Profile{}, rep
	}
	defer f.Close()

	profiles, skipped, err := readRecords(f)
	if err != nil {
		rep.Err = fmt.Errorf("read store %s: %w", s.path, err)
	}
	SortProfiles(profiles)
	rep.Loaded = len(profiles)
	rep.Skipped = skipped
	return profiles, rep
}

// readRecords decodes every non-empty line of r. On a read error it returns what was
// decoded so far.
func readRecords(r io.Reader) ([]Profile, int, error) {
	br := bufio.NewReader(r)
	profiles := []Profile{}
	skipped := 0
	for {
		line, err := br.ReadString('\n')
		if line = strings.TrimSuffix(line, "\n"); line != "" {
			if p, ok := DecodeRecord(line); ok {
				profiles = append(profiles, p)
			} else {
				skipped++
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return profiles, skipped, nil
			}
			return profiles, skipped, err
		}
	}
}

// Save rewrites the store with one record per profile, in the given order.
// The new contents are written to a temp file in the same directory and renamed over
// the store, so a crash leaves either the old or the new file.
func (s *Store) Save(profiles []Profile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create store dir %s: %w", ErrStoreWrite, dir, err)
	}

	var b strings.Builder
	for _, p := range profiles {
		b.WriteString(EncodeRecord(p))
	}

	tmp := s.path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write temp file %s: %w", ErrStoreWrite, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: atomic rename to %s: %w", ErrStoreWrite, s.path, err)
	}
	return nil
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		p = filepath.Join(HomeDir(), p[1:])
	}
	return os.ExpandEnv(p)
}
