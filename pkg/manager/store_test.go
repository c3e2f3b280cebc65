package manager

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "app", "hosts.db"))
}

func writeStoreFile(t *testing.T, s *Store, content string) {
	t.Helper()
	if err := os.WriteFile(s.Path(), []byte(content), 0o600); err != nil {
		t.Fatalf("write store: %v", err)
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	s := newTestStore(t)
	if st, err := os.Stat(filepath.Dir(s.Path())); err != nil || !st.IsDir() {
		t.Fatalf("expected store dir to exist, err=%v", err)
	}
}

func TestDefaultStorePath_UnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	want := filepath.Join(home, ".wt_ssh_manager", "hosts.db")
	if got := DefaultStorePath(); got != want {
		t.Fatalf("DefaultStorePath = %q, want %q", got, want)
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	got, rep := s.LoadWithReport()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", got)
	}
	if rep.Err != nil {
		t.Fatalf("missing file must not be an error, got %v", rep.Err)
	}
}

func TestLoad_SkipsMalformedAndEmptyLines(t *testing.T) {
	s := newTestStore(t)
	writeStoreFile(t, s, "good\th\tu\t22\tk\tn\n\nbad\tonly\tthree\n")

	got, rep := s.LoadWithReport()
	if len(got) != 1 || got[0].Name != "good" {
		t.Fatalf("expected exactly one profile named good, got %#v", got)
	}
	if rep.Skipped != 1 {
		t.Fatalf("expected 1 skipped line, got %d", rep.Skipped)
	}
}

func TestLoad_LastLineWithoutNewline(t *testing.T) {
	s := newTestStore(t)
	writeStoreFile(t, s, "a\th\t\t22\t\t\nb\th\t\tabc\t\t")

	got := s.Load()
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if got[1].Name != "b" || got[1].Port != 22 {
		t.Fatalf("expected b with coerced port 22, got %#v", got[1])
	}
}

func TestLoad_SortsCaseInsensitively(t *testing.T) {
	s := newTestStore(t)
	writeStoreFile(t, s, "beta\th\t\t22\t\t\nAlpha\th\t\t22\t\t\ncharlie\th\t\t22\t\t\nBravo\th\t\t22\t\t\n")

	got := s.Load()
	if got[0].Name != "Alpha" || got[1].Name != "beta" {
		t.Fatalf("expected Alpha before beta, got %q, %q", got[0].Name, got[1].Name)
	}
	for i := 1; i < len(got); i++ {
		if strings.ToLower(got[i-1].Name) > strings.ToLower(got[i].Name) {
			t.Fatalf("not sorted at %d: %q > %q", i, got[i-1].Name, got[i].Name)
		}
	}
}

func TestSaveLoad_Idempotent(t *testing.T) {
	s := newTestStore(t)
	in := []Profile{
		{Name: "zeta", Host: "z.example", Port: 22},
		{Name: "Alpha\tTab", Host: "a.example", User: "root", Port: 2222, KeyFile: `C:\k`, Note: "line1\nline2"},
		{Name: "mid", Host: "m", Port: 22, Note: `back\slash`},
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	first := s.Load()
	if err := s.Save(first); err != nil {
		t.Fatalf("save again: %v", err)
	}
	second := s.Load()

	if len(first) != len(in) || len(second) != len(in) {
		t.Fatalf("expected %d profiles, got %d then %d", len(in), len(first), len(second))
	}
	for _, p := range in {
		i := IndexOf(second, p.Name)
		if i < 0 || second[i] != p {
			t.Fatalf("profile %q lost or changed after reload: %#v", p.Name, second)
		}
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("reload not stable at %d: %#v vs %#v", i, first[i], second[i])
		}
	}
}

func TestSave_WritesCallerOrderAndNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	in := []Profile{{Name: "b", Host: "h", Port: 22}, {Name: "a", Host: "h", Port: 22}}
	if err := s.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "b\th\t\t22\t\t\na\th\t\t22\t\t\n"; string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSave_FailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	s := NewStore(filepath.Join(blocker, "hosts.db"))
	err := s.Save([]Profile{{Name: "a", Host: "h", Port: 22}})
	if !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite when parent is a file, got %v", err)
	}
}

func TestScenario_EmptyStoreThenAdd(t *testing.T) {
	s := newTestStore(t)
	writeStoreFile(t, s, "")

	st := NewState(s.Load())
	if !st.Empty() {
		t.Fatalf("expected empty collection")
	}
	st = Add(st, Draft{Name: "box1", Host: "10.0.0.5"}, s)
	if len(st.Profiles) != 1 || st.Profiles[0].Port != 22 {
		t.Fatalf("expected one profile with port 22, got %#v", st.Profiles)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "box1\t10.0.0.5\t\t22\t\t\n"; string(data) != want {
		t.Fatalf("store = %q, want %q", data, want)
	}
}
