package session

import "testing"

func TestRoomActivatesOnlyOnSelfPresenceEcho(t *testing.T) {
	m := NewMUC()
	m.Join("room@conference.example.com", "me")
	if m.IsActive("room@conference.example.com") {
		t.Fatalf("expected room to be inactive before self-presence echo")
	}

	m.UpsertOccupant("room@conference.example.com", Occupant{Nick: "someoneelse"})
	if m.IsActive("room@conference.example.com") {
		t.Fatalf("expected room to stay inactive after another occupant's presence")
	}

	m.Activate("room@conference.example.com")
	if !m.IsActive("room@conference.example.com") {
		t.Fatalf("expected room to be active after Activate")
	}
}

func TestLeaveRemovesRoomEntirely(t *testing.T) {
	m := NewMUC()
	m.Join("room@conference.example.com", "me")
	m.Activate("room@conference.example.com")
	m.Leave("room@conference.example.com")

	if _, ok := m.Room("room@conference.example.com"); ok {
		t.Fatalf("expected room to be gone after Leave")
	}
}

func TestOccupantsSortedByNick(t *testing.T) {
	m := NewMUC()
	m.UpsertOccupant("room@conference.example.com", Occupant{Nick: "zed"})
	m.UpsertOccupant("room@conference.example.com", Occupant{Nick: "alice"})

	occs := m.Occupants("room@conference.example.com")
	if len(occs) != 2 || occs[0].Nick != "alice" || occs[1].Nick != "zed" {
		t.Fatalf("expected occupants sorted by nick, got %+v", occs)
	}
}

func TestRoomSubjectTracking(t *testing.T) {
	m := NewMUC()
	m.Join("room@conference.example.com", "me")
	m.SetSubject("room@conference.example.com", "Tonight's topic", "alice")

	subject, by, ok := m.Subject("room@conference.example.com")
	if !ok || subject != "Tonight's topic" || by != "alice" {
		t.Fatalf("expected subject to be tracked, got subject=%q by=%q ok=%v", subject, by, ok)
	}
}
