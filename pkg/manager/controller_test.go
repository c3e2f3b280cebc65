package manager

import (
	"errors"
	"strings"
	"testing"
)

type fakePersister struct {
	saves [][]Profile
	err   error
}

func (f *fakePersister) Save(profiles []Profile) error {
	f.saves = append(f.saves, cloneProfiles(profiles))
	return f.err
}

func threeProfiles() []Profile {
	return []Profile{
		{Name: "alpha", Host: "a", Port: 22},
		{Name: "bravo", Host: "b", Port: 22},
		{Name: "charlie", Host: "c", Port: 22},
	}
}

func TestClamp(t *testing.T) {
	if s := (State{Selected: 5}).Clamp(); s.Selected != 0 {
		t.Fatalf("empty clamp: expected 0, got %d", s.Selected)
	}
	if s := (State{Profiles: threeProfiles(), Selected: 9}).Clamp(); s.Selected != 2 {
		t.Fatalf("high clamp: expected 2, got %d", s.Selected)
	}
	if s := (State{Profiles: threeProfiles(), Selected: -3}).Clamp(); s.Selected != 0 {
		t.Fatalf("low clamp: expected 0, got %d", s.Selected)
	}
}

func TestMoveUpDown_StopAtEdges(t *testing.T) {
	s := NewState(threeProfiles())
	s = MoveUp(s)
	if s.Selected != 0 {
		t.Fatalf("MoveUp at top: expected 0, got %d", s.Selected)
	}
	s = MoveDown(MoveDown(MoveDown(s)))
	if s.Selected != 2 {
		t.Fatalf("MoveDown past bottom: expected 2, got %d", s.Selected)
	}
	s = MoveUp(s)
	if s.Selected != 1 {
		t.Fatalf("MoveUp: expected 1, got %d", s.Selected)
	}
	if e := MoveDown(NewState(nil)); e.Selected != 0 || !e.Empty() {
		t.Fatalf("MoveDown on empty: %#v", e)
	}
}

func TestAdd_InsertsSortsSelectsAndPersists(t *testing.T) {
	fp := &fakePersister{}
	s := NewState(threeProfiles())
	s = Add(s, Draft{Name: "Beta", Host: "bh", User: "root", Port: "2222"}, fp)

	if len(s.Profiles) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(s.Profiles))
	}
	if s.Profiles[s.Selected].Name != "Beta" {
		t.Fatalf("expected new profile selected, got %q", s.Profiles[s.Selected].Name)
	}
	if s.Selected != 1 {
		t.Fatalf("expected Beta sorted between alpha and bravo, got index %d", s.Selected)
	}
	if s.Status != "Added: Beta" {
		t.Fatalf("unexpected status %q", s.Status)
	}
	if len(fp.saves) != 1 || len(fp.saves[0]) != 4 {
		t.Fatalf("expected one save of 4 profiles, got %#v", fp.saves)
	}
	if s.Profiles[1].Port != 2222 || s.Profiles[1].User != "root" {
		t.Fatalf("unexpected stored profile %#v", s.Profiles[1])
	}
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	in := threeProfiles()
	s := NewState(in)
	_ = Add(s, Draft{Name: "aaa", Host: "h"}, nil)
	if in[0].Name != "alpha" || len(in) != 3 {
		t.Fatalf("input slice was modified: %#v", in)
	}
}

func TestAdd_RejectsDuplicateAndEmpty(t *testing.T) {
	fp := &fakePersister{}
	base := NewState(threeProfiles())

	cases := []struct {
		draft  Draft
		status string
	}{
		{Draft{Name: "bravo", Host: "x"}, StatusNameExists},
		{Draft{Name: "   ", Host: "x"}, StatusNameEmpty},
		{Draft{Name: "delta", Host: "  "}, StatusHostEmpty},
	}
	for _, tc := range cases {
		s := Add(base, tc.draft, fp)
		if s.Status != tc.status {
			t.Fatalf("draft %#v: status %q, want %q", tc.draft, s.Status, tc.status)
		}
		if len(s.Profiles) != 3 {
			t.Fatalf("draft %#v: collection changed", tc.draft)
		}
	}
	if len(fp.saves) != 0 {
		t.Fatalf("rejected adds must not persist, got %d saves", len(fp.saves))
	}
}

func TestAdd_NamesAreCaseSensitiveUnique(t *testing.T) {
	s := Add(NewState(threeProfiles()), Draft{Name: "Alpha", Host: "x"}, nil)
	if len(s.Profiles) != 4 {
		t.Fatalf("expected Alpha to be accepted next to alpha, status %q", s.Status)
	}
}

func TestAdd_InvalidPortUsesDefault(t *testing.T) {
	s := Add(NewState(nil), Draft{Name: "n", Host: "h", Port: "ssh"}, nil)
	if len(s.Profiles) != 1 || s.Profiles[0].Port != DefaultPort {
		t.Fatalf("expected default port, got %#v", s.Profiles)
	}
	if !strings.Contains(s.Status, "invalid port") {
		t.Fatalf("expected invalid port notice, got %q", s.Status)
	}
}

func TestAdd_SaveFailureKeepsInMemoryChange(t *testing.T) {
	fp := &fakePersister{err: errors.New("disk full")}
	s := Add(NewState(nil), Draft{Name: "n", Host: "h"}, fp)
	if len(s.Profiles) != 1 {
		t.Fatalf("expected in-memory add despite save failure")
	}
	if !strings.Contains(s.Status, "save failed: disk full") {
		t.Fatalf("expected save failure in status, got %q", s.Status)
	}
}

func TestDelete_LastOfThreeMovesSelection(t *testing.T) {
	fp := &fakePersister{}
	s := NewState(threeProfiles())
	s.Selected = 2
	s = Delete(s, true, fp)

	if len(s.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(s.Profiles))
	}
	if s.Selected != 1 {
		t.Fatalf("expected selection 1, got %d", s.Selected)
	}
	if s.Status != "Deleted: charlie" {
		t.Fatalf("unexpected status %q", s.Status)
	}
	if len(fp.saves) != 1 || len(fp.saves[0]) != 2 {
		t.Fatalf("expected one save of 2 profiles, got %#v", fp.saves)
	}
}

func TestDelete_CancelAndEmpty(t *testing.T) {
	fp := &fakePersister{}
	s := Delete(NewState(threeProfiles()), false, fp)
	if len(s.Profiles) != 3 || s.Status != StatusDeleteCancel {
		t.Fatalf("cancel: got %d profiles status %q", len(s.Profiles), s.Status)
	}
	e := Delete(NewState(nil), true, fp)
	if !e.Empty() || e.Status != "" {
		t.Fatalf("delete on empty should be a no-op, got %#v", e)
	}
	if len(fp.saves) != 0 {
		t.Fatalf("expected no saves, got %d", len(fp.saves))
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, a := range []string{"y", "Y", "yes", " Yep"} {
		if !IsAffirmative(a) {
			t.Fatalf("%q should confirm", a)
		}
	}
	for _, a := range []string{"", "n", "N", "no", "x"} {
		if IsAffirmative(a) {
			t.Fatalf("%q should not confirm", a)
		}
	}
}

func TestDispatch(t *testing.T) {
	s := NewState(threeProfiles())

	if _, eff := Dispatch(s, Event{Kind: EventQuit}, nil); eff != EffectQuit {
		t.Fatalf("quit: effect %v", eff)
	}
	next, eff := Dispatch(s, Event{Kind: EventDown}, nil)
	if eff != EffectNone || next.Selected != 1 {
		t.Fatalf("down: selected %d effect %v", next.Selected, eff)
	}
	if _, eff := Dispatch(next, Event{Kind: EventConnect}, nil); eff != EffectConnect {
		t.Fatalf("connect: effect %v", eff)
	}
	if _, eff := Dispatch(NewState(nil), Event{Kind: EventConnect}, nil); eff != EffectNone {
		t.Fatalf("connect on empty must be a no-op, got %v", eff)
	}

	// Out-of-range selection is clamped before the transition.
	wild := State{Profiles: threeProfiles(), Selected: 40}
	next, _ = Dispatch(wild, Event{Kind: EventUp}, nil)
	if next.Selected != 1 {
		t.Fatalf("clamped up: expected 1, got %d", next.Selected)
	}

	next, _ = Dispatch(s, Event{Kind: EventAdd, Draft: Draft{Name: "delta", Host: "d"}}, nil)
	if len(next.Profiles) != 4 {
		t.Fatalf("add via dispatch: expected 4 profiles, got %d", len(next.Profiles))
	}
	next, _ = Dispatch(next, Event{Kind: EventDelete, Confirm: true}, nil)
	if len(next.Profiles) != 3 {
		t.Fatalf("delete via dispatch: expected 3 profiles, got %d", len(next.Profiles))
	}
}

func TestAddDelete_SaveErrReportsPersisterOutcome(t *testing.T) {
	ok := &fakePersister{}
	s := Add(NewState(nil), Draft{Name: "save failed box", Host: "h"}, ok)
	if s.SaveErr != nil {
		t.Fatalf("expected no save error for a written store, got %v", s.SaveErr)
	}
	s = Delete(s, true, ok)
	if s.SaveErr != nil {
		t.Fatalf("expected no save error after delete, got %v", s.SaveErr)
	}

	diskFull := errors.New("disk full")
	bad := &fakePersister{err: diskFull}
	s = Add(NewState(nil), Draft{Name: "n", Host: "h"}, bad)
	if !errors.Is(s.SaveErr, diskFull) {
		t.Fatalf("expected add SaveErr to carry the persister error, got %v", s.SaveErr)
	}
	s = Delete(s, true, bad)
	if !errors.Is(s.SaveErr, diskFull) {
		t.Fatalf("expected delete SaveErr to carry the persister error, got %v", s.SaveErr)
	}

	// A rejected add does not touch the store, so it reports no save outcome.
	s.SaveErr = nil
	if s = Add(s, Draft{Name: "", Host: "h"}, bad); s.SaveErr != nil {
		t.Fatalf("rejected add must not set SaveErr")
	}
}
