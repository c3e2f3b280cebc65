package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultSettingsFilename = "config.yaml"

// Settings is the optional YAML settings file. Every field may be omitted.
//
// Example YAML:
//
//	ssh_command: /usr/bin/ssh
//	theme: light
//	record_sessions: true
//	exit_after_connect: false
type Settings struct {
	// SSHCommand is the program launched for connections (default "ssh").
	SSHCommand string `yaml:"ssh_command,omitempty"`

	// StorePath overrides the hosts.db location.
	StorePath string `yaml:"store_path,omitempty"`

	// Theme is one of: dark (default), light, none.
	Theme string `yaml:"theme,omitempty"`

	// RecordSessions runs ssh under a PTY and keeps daily transcripts per profile.
	RecordSessions bool `yaml:"record_sessions,omitempty"`

	// ExitAfterConnect leaves the selector and replaces the process with ssh instead of
	// returning to the list when the session ends.
	ExitAfterConnect bool `yaml:"exit_after_connect,omitempty"`
}

// DefaultSettingsPath returns <app dir>/config.yaml.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultAppDir(), defaultSettingsFilename)
}

// LoadSettings reads settings from explicitPath, or from DefaultSettingsPath when empty.
// A missing default file is not an error; a missing explicit file is.
// Returns the settings and the path that was read ("" when defaults were used).
func LoadSettings(explicitPath string) (Settings, string, error) {
	path := expandPath(explicitPath)
	explicit := path != ""
	if !explicit {
		path = DefaultSettingsPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Settings{}, "", nil
		}
		return Settings{}, "", fmt.Errorf("read settings %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, path, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, path, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s, path, nil
}

// Validate checks enumerated values.
func (s Settings) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Theme)) {
	case "", "dark", "light", "none":
	default:
		return fmt.Errorf("theme: invalid value %q (expected: dark|light|none)", s.Theme)
	}
	if strings.ContainsAny(s.SSHCommand, "\n\t") {
		return fmt.Errorf("ssh_command: must be a single program path")
	}
	return nil
}

// EffectiveSSHCommand returns SSHCommand or DefaultSSHCommand.
func (s Settings) EffectiveSSHCommand() string {
	if c := strings.TrimSpace(s.SSHCommand); c != "" {
		return c
	}
	return DefaultSSHCommand
}

// Marshal renders the settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
