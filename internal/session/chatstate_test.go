package session

import (
	"testing"
	"time"
)

func TestNoteIncomingMarksSupportsChatStates(t *testing.T) {
	cs := NewChatSessions(time.Minute)
	if cs.SupportsChatStates("alice@example.com") {
		t.Fatalf("expected new peer to not support chat states")
	}
	cs.NoteIncoming("alice@example.com")
	if !cs.SupportsChatStates("alice@example.com") {
		t.Fatalf("expected peer to support chat states after NoteIncoming")
	}
}

func TestGoneTimeoutExpiresAfterIdle(t *testing.T) {
	cs := NewChatSessions(time.Minute)
	start := time.Now()
	cs.NoteMessageSent("alice@example.com", start)

	if got := cs.Expired(start.Add(30 * time.Second)); len(got) != 0 {
		t.Fatalf("expected no expiry before the gone-timeout, got %v", got)
	}

	expired := cs.Expired(start.Add(90 * time.Second))
	if len(expired) != 1 || expired[0] != "alice@example.com" {
		t.Fatalf("expected alice to expire to gone, got %v", expired)
	}
	if cs.LastSentState("alice@example.com") != StateGone {
		t.Fatalf("expected last sent state to become StateGone")
	}
}

func TestExpiredOnlyFiresOnce(t *testing.T) {
	cs := NewChatSessions(time.Minute)
	start := time.Now()
	cs.NoteMessageSent("alice@example.com", start)

	first := cs.Expired(start.Add(2 * time.Minute))
	second := cs.Expired(start.Add(3 * time.Minute))

	if len(first) != 1 {
		t.Fatalf("expected first Expired call to report alice, got %v", first)
	}
	if len(second) != 0 {
		t.Fatalf("expected second Expired call to report nothing, got %v", second)
	}
}

func TestNoteMessageSentResetsToActive(t *testing.T) {
	cs := NewChatSessions(time.Minute)
	now := time.Now()
	cs.NoteComposing("alice@example.com", now)
	if cs.LastSentState("alice@example.com") != StateComposing {
		t.Fatalf("expected composing state to be recorded")
	}
	cs.NoteMessageSent("alice@example.com", now)
	if cs.LastSentState("alice@example.com") != StateActive {
		t.Fatalf("expected sending a message to reset state to active")
	}
}
