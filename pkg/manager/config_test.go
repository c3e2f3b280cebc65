package manager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadSettings_MissingDefaultIsEmpty(t *testing.T) {
	isolateHome(t)

	s, path, err := LoadSettings("")
	if err != nil {
		t.Fatalf("expected no error for missing default settings, got %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path when defaults are used, got %q", path)
	}
	if s.EffectiveSSHCommand() != DefaultSSHCommand {
		t.Fatalf("expected default ssh command, got %q", s.EffectiveSSHCommand())
	}
}

func TestLoadSettings_MissingExplicitIsError(t *testing.T) {
	isolateHome(t)

	_, _, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing explicit settings file")
	}
}

func TestLoadSettings_ReadsDefaultLocation(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".wt_ssh_manager")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "ssh_command: /usr/local/bin/ssh\ntheme: light\nrecord_sessions: true\nexit_after_connect: true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, path, err := LoadSettings("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != DefaultSettingsPath() {
		t.Fatalf("expected path %q, got %q", DefaultSettingsPath(), path)
	}
	if s.SSHCommand != "/usr/local/bin/ssh" || s.Theme != "light" || !s.RecordSessions || !s.ExitAfterConnect {
		t.Fatalf("unexpected settings: %#v", s)
	}
}

func TestLoadSettings_RejectsBadYAMLAndValues(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("theme: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadSettings(bad); err == nil || !strings.Contains(err.Error(), "parse yaml") {
		t.Fatalf("expected parse error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("theme: neon\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := LoadSettings(invalid)
	if err == nil || !strings.Contains(err.Error(), "theme") {
		t.Fatalf("expected theme validation error, got %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	for _, theme := range []string{"", "dark", "Light", "none"} {
		if err := (Settings{Theme: theme}).Validate(); err != nil {
			t.Fatalf("theme %q: unexpected error %v", theme, err)
		}
	}
	if err := (Settings{SSHCommand: "ssh\t-v"}).Validate(); err == nil {
		t.Fatalf("expected ssh_command with a tab to be rejected")
	}
}

func TestSettingsMarshal_OmitsDefaults(t *testing.T) {
	data, err := Settings{Theme: "none"}.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.TrimSpace(string(data)) != "theme: none" {
		t.Fatalf("unexpected yaml:\n%s", data)
	}
}
