package manager

import (
	"fmt"
	"strings"
)

// State is everything the interactive loop owns: the collection, the selection and
// a transient status line shown on the next redraw.
//
// Transitions below are pure: they take a State and return a new one, persisting
// through the Persister they are handed. Nothing here touches the terminal.
type State struct {
	Profiles []Profile
	Selected int
	Status   string

	// SaveErr is the Persister error of the last Add or Delete, nil when it was written.
	SaveErr error
}

// Persister writes the full collection. *Store implements it.
type Persister interface {
	Save(profiles []Profile) error
}

// Status lines produced by transitions.
const (
	StatusNameEmpty     = "name cannot be empty"
	StatusNameExists    = "name already exists"
	StatusHostEmpty     = "host cannot be empty"
	StatusDeleteCancel  = "Delete canceled."
	StatusAddCancel     = "Add canceled."
	statusInvalidPort   = "invalid port, using default 22"
	statusAddedFmt      = "Added: %s"
	statusDeletedFmt    = "Deleted: %s"
	statusSaveFailedFmt = "save failed: %v"
)

// NewState builds the initial state from a loaded collection.
func NewState(profiles []Profile) State {
	if profiles == nil {
		profiles = []Profile{}
	}
	return State{Profiles: profiles}
}

// Empty reports whether there is nothing to select.
func (s State) Empty() bool { return len(s.Profiles) == 0 }

// Clamp forces Selected into [0, len-1], or 0 when the collection is empty.
func (s State) Clamp() State {
	switch {
	case len(s.Profiles) == 0:
		s.Selected = 0
	case s.Selected < 0:
		s.Selected = 0
	case s.Selected >= len(s.Profiles):
		s.Selected = len(s.Profiles) - 1
	}
	return s
}

// Current returns the selected profile, if any.
func (s State) Current() (Profile, bool) {
	s = s.Clamp()
	if s.Empty() {
		return Profile{}, false
	}
	return s.Profiles[s.Selected], true
}

// MoveUp selects the previous profile, stopping at the top.
func MoveUp(s State) State {
	s = s.Clamp()
	if s.Empty() {
		return s
	}
	s.Selected = maxInt(0, s.Selected-1)
	return s
}

// MoveDown selects the next profile, stopping at the bottom.
func MoveDown(s State) State {
	s = s.Clamp()
	if s.Empty() {
		return s
	}
	s.Selected = minInt(len(s.Profiles)-1, s.Selected+1)
	return s
}

// Draft holds the raw answers of the add dialog. Port is the text typed by the user;
// blank means the default.
type Draft struct {
	Name    string
	Host    string
	User    string
	Port    string
	KeyFile string
	Note    string
}

// CheckName validates a proposed name against the collection. It returns the status
// line to show, or "" when the name is acceptable.
func CheckName(profiles []Profile, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return StatusNameEmpty
	}
	if IndexOf(profiles, name) >= 0 {
		return StatusNameExists
	}
	return ""
}

// CheckHost returns StatusHostEmpty for a blank host, otherwise "".
func CheckHost(host string) string {
	if strings.TrimSpace(host) == "" {
		return StatusHostEmpty
	}
	return ""
}

// Profile converts the draft to a profile. The second result is false when a non-blank
// port did not parse and DefaultPort was substituted.
func (d Draft) Profile() (Profile, bool) {
	p := Profile{
		Name:    strings.TrimSpace(d.Name),
		Host:    strings.TrimSpace(d.Host),
		User:    strings.TrimSpace(d.User),
		Port:    DefaultPort,
		KeyFile: strings.TrimSpace(d.KeyFile),
		Note:    strings.TrimSpace(d.Note),
	}
	portOK := true
	if raw := strings.TrimSpace(d.Port); raw != "" {
		p.Port, portOK = ParsePort(raw)
	}
	return p, portOK
}

// Add validates and inserts the draft, re-sorts, persists and selects the new profile.
// Validation failures leave the collection untouched and only set Status.
func Add(s State, d Draft, store Persister) State {
	s = s.Clamp()
	if msg := CheckName(s.Profiles, d.Name); msg != "" {
		s.Status = msg
		return s
	}
	if msg := CheckHost(d.Host); msg != "" {
		s.Status = msg
		return s
	}

	p, portOK := d.Profile()
	profiles := append(cloneProfiles(s.Profiles), p)
	s.SaveErr = nil
	SortProfiles(profiles)

	s.Profiles = profiles
	s.Selected = IndexOf(profiles, p.Name)
	s.Status = fmt.Sprintf(statusAddedFmt, p.Name)
	if !portOK {
		s.Status += " (" + statusInvalidPort + ")"
	}
	if err := persist(store, profiles); err != nil {
		s.SaveErr = err
		s.Status += "; " + fmt.Sprintf(statusSaveFailedFmt, err)
	}
	return s.Clamp()
}

// Delete removes the selected profile when confirm is true. Otherwise it only reports
// the cancellation.
func Delete(s State, confirm bool, store Persister) State {
	s = s.Clamp()
	if s.Empty() {
		return s
	}
	if !confirm {
		s.Status = StatusDeleteCancel
		return s
	}

	name := s.Profiles[s.Selected].Name
	profiles := make([]Profile, 0, len(s.Profiles)-1)
	profiles = append(profiles, s.Profiles[:s.Selected]...)
	profiles = append(profiles, s.Profiles[s.Selected+1:]...)

	s.Profiles = profiles
	s.Status = fmt.Sprintf(statusDeletedFmt, name)
	s.SaveErr = nil
	if err := persist(store, profiles); err != nil {
		s.SaveErr = err
		s.Status += "; " + fmt.Sprintf(statusSaveFailedFmt, err)
	}
	return s.Clamp()
}

// IsAffirmative reports whether a y/N answer confirms.
func IsAffirmative(answer string) bool {
	answer = strings.TrimSpace(answer)
	return answer != "" && (answer[0] == 'y' || answer[0] == 'Y')
}

func persist(store Persister, profiles []Profile) error {
	if store == nil {
		return nil
	}
	return store.Save(profiles)
}

// EventKind enumerates the discrete inputs of the loop.
type EventKind int

const (
	EventNone EventKind = iota
	EventQuit
	EventUp
	EventDown
	EventAdd
	EventDelete
	EventConnect
)

// Event is one discrete key event, with the dialog answers for add/delete.
type Event struct {
	Kind    EventKind
	Draft   Draft
	Confirm bool
}

// Effect tells the loop what to do after a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectQuit
	EffectConnect
)

// Dispatch applies one event. The selection is clamped before every transition.
// EffectConnect is returned only when a profile is selected; use State.Current to
// fetch it.
func Dispatch(s State, ev Event, store Persister) (State, Effect) {
	s = s.Clamp()
	switch ev.Kind {
	case EventQuit:
		return s, EffectQuit
	case EventUp:
		return MoveUp(s), EffectNone
	case EventDown:
		return MoveDown(s), EffectNone
	case EventAdd:
		return Add(s, ev.Draft, store), EffectNone
	case EventDelete:
		return Delete(s, ev.Confirm, store), EffectNone
	case EventConnect:
		if s.Empty() {
			return s, EffectNone
		}
		return s, EffectConnect
	}
	return s, EffectNone
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
