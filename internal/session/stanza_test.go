package session

import (
	"encoding/xml"
	"strings"
	"testing"

	"mellium.im/xmpp/jid"
)

func TestEscapeBodyOrderPreventsDoubleEscaping(t *testing.T) {
	got := escapeBody("A & B < C > D")
	want := "A &amp; B &lt; C &gt; D"
	if got != want {
		t.Fatalf("escapeBody: got %q, want %q", got, want)
	}
}

func TestEscapeBodyDoesNotReEscapeAmpersandEntities(t *testing.T) {
	// If '&' escaping ran after '<'/'>' escaping, the ampersand
	// introduced by those steps would itself get escaped, corrupting
	// the stanza. Verify a literal "<" produces exactly one "&lt;".
	got := escapeBody("<")
	want := "&lt;"
	if got != want {
		t.Fatalf("escapeBody(%q): got %q, want %q", "<", got, want)
	}
}

func TestBuildChatMessageOmitsChatStateWhenUnset(t *testing.T) {
	to := jid.MustParse("alice@example.com")
	msg := BuildChatMessage("m1", to, "hi", "")
	if msg.ChatState != nil {
		t.Fatalf("expected nil ChatState, got %+v", msg.ChatState)
	}
	if msg.Body == nil || msg.Body.Text != "hi" {
		t.Fatalf("expected body %q, got %+v", "hi", msg.Body)
	}
}

func TestBuildChatMessageSetsDynamicChatStateName(t *testing.T) {
	to := jid.MustParse("alice@example.com")
	msg := BuildChatMessage("m1", to, "hi", StateComposing)
	if msg.ChatState == nil {
		t.Fatalf("expected non-nil ChatState")
	}
	if msg.ChatState.XMLName.Local != "composing" || msg.ChatState.XMLName.Space != nsChatStates {
		t.Fatalf("unexpected chat-state XML name: %+v", msg.ChatState.XMLName)
	}

	out, err := xml.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(out), "composing") || !strings.Contains(string(out), nsChatStates) {
		t.Fatalf("expected marshaled stanza to contain the composing element, got: %s", out)
	}
}

func TestBuildPresenceOmitsPriorityWhenNil(t *testing.T) {
	p := BuildPresence(Away, "brb", nil, "", "")
	if p.Priority != nil {
		t.Fatalf("expected nil Priority, got %+v", p.Priority)
	}
	if p.Show == nil || p.Show.Text != "away" {
		t.Fatalf("expected show=away, got %+v", p.Show)
	}
}

func TestBuildPresenceIncludesPriorityWhenSet(t *testing.T) {
	var prio int8 = 10
	p := BuildPresence(Online, "", &prio, "", "")
	if p.Priority == nil || p.Priority.Text != 10 {
		t.Fatalf("expected priority 10, got %+v", p.Priority)
	}
}

func TestBuildPresenceIncludesCapsOnlyWhenVerSet(t *testing.T) {
	p := BuildPresence(Online, "", nil, "", "")
	if p.Caps != nil {
		t.Fatalf("expected nil Caps when ver is empty, got %+v", p.Caps)
	}
	p2 := BuildPresence(Online, "", nil, "http://example.com/caps", "abc=")
	if p2.Caps == nil || p2.Caps.Ver != "abc=" {
		t.Fatalf("expected caps with ver=abc=, got %+v", p2.Caps)
	}
}
