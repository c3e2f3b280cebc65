package manager

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exchange is the YAML document used by export/import.
//
//	profiles:
//	  - name: box1
//	    host: 10.0.0.5
//	    port: 22
type Exchange struct {
	Profiles []Profile `yaml:"profiles"`
}

// ExportYAML renders profiles as an Exchange document.
func ExportYAML(profiles []Profile) ([]byte, error) {
	out := Exchange{Profiles: cloneProfiles(profiles)}
	if out.Profiles == nil {
		out.Profiles = []Profile{}
	}
	for i := range out.Profiles {
		out.Profiles[i].Port = out.Profiles[i].EffectivePort()
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode profiles: %w", err)
	}
	return data, nil
}

// ParseExchange decodes and validates an Exchange document. Names must be non-empty and
// unique, hosts non-empty; a missing port becomes DefaultPort.
func ParseExchange(data []byte) ([]Profile, error) {
	var ex Exchange
	if err := yaml.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	seen := map[string]struct{}{}
	out := make([]Profile, 0, len(ex.Profiles))
	for i, p := range ex.Profiles {
		p.Name = strings.TrimSpace(p.Name)
		p.Host = strings.TrimSpace(p.Host)
		if p.Name == "" {
			return nil, fmt.Errorf("profiles[%d]: name is required", i)
		}
		if p.Host == "" {
			return nil, fmt.Errorf("profiles[%d](%s): host is required", i, p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("profiles[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}
		p.Port = p.EffectivePort()
		out = append(out, p)
	}
	return out, nil
}

// MergeProfiles overlays incoming onto existing by exact name: matching profiles are
// replaced, new ones appended. With replace, incoming becomes the whole collection.
// The result is sorted. It also reports how many profiles were added and updated.
func MergeProfiles(existing, incoming []Profile, replace bool) (merged []Profile, added, updated int) {
	if replace {
		merged = cloneProfiles(incoming)
		if merged == nil {
			merged = []Profile{}
		}
		SortProfiles(merged)
		return merged, len(merged), 0
	}
	merged = cloneProfiles(existing)
	if merged == nil {
		merged = []Profile{}
	}
	for _, p := range incoming {
		if i := IndexOf(merged, p.Name); i >= 0 {
			merged[i] = p
			updated++
			continue
		}
		merged = append(merged, p)
		added++
	}
	SortProfiles(merged)
	return merged, added, updated
}

// ImportFile reads an Exchange document from path and merges it into the store.
func ImportFile(store *Store, path string, replace bool) (added, updated int, err error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", path, err)
	}
	incoming, err := ParseExchange(data)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	merged, added, updated := MergeProfiles(store.Load(), incoming, replace)
	if err := store.Save(merged); err != nil {
		return 0, 0, err
	}
	return added, updated, nil
}
