// Package manager contains the profile catalog, its on-disk store, the selection/edit
// controller and the ssh launcher for wt-ssh-manager.
package manager

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultPort is used whenever a profile's port is missing or cannot be parsed.
const DefaultPort = 22

// Profile is one saved SSH destination.
//
// Name is the display name and must be unique (case-sensitive) within a collection.
// User, KeyFile and Note may be empty.
type Profile struct {
	Name    string `yaml:"name"`
	Host    string `yaml:"host"`
	User    string `yaml:"user,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	KeyFile string `yaml:"key_file,omitempty"`
	Note    string `yaml:"note,omitempty"`
}

// Target returns the ssh destination: user@host, or just host when no user is set.
func (p Profile) Target() string {
	if p.User != "" {
		return p.User + "@" + p.Host
	}
	return p.Host
}

// EffectivePort returns Port, or DefaultPort when Port is not a usable value.
func (p Profile) EffectivePort() int {
	if p.Port <= 0 {
		return DefaultPort
	}
	return p.Port
}

// Summary renders the one-line list form: "name -> user@host:port  # note".
func (p Profile) Summary() string {
	line := fmt.Sprintf("%s -> %s:%d", p.Name, p.Target(), p.EffectivePort())
	if p.Note != "" {
		line += "  # " + p.Note
	}
	return line
}

// ParsePort parses a port field. It reports false (and returns DefaultPort) when s is
// not an integer.
func ParsePort(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultPort, false
	}
	return n, true
}

// nameLess orders names case-insensitively (byte order of the lowercased names),
// falling back to exact byte order so that ties are deterministic.
func nameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// SortProfiles sorts profiles in place by name, case-insensitively.
func SortProfiles(profiles []Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		return nameLess(profiles[i].Name, profiles[j].Name)
	})
}

// IndexOf returns the index of the profile named exactly name, or -1.
func IndexOf(profiles []Profile, name string) int {
	for i := range profiles {
		if profiles[i].Name == name {
			return i
		}
	}
	return -1
}

// cloneProfiles returns a copy of profiles so transitions never alias caller state.
func cloneProfiles(profiles []Profile) []Profile {
	if profiles == nil {
		return nil
	}
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}
