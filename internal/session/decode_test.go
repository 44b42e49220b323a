package session

import (
	"encoding/xml"
	"strings"
	"testing"
)

func decodeFirstStanza(t *testing.T, raw string) Stanza {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			t.Fatalf("unexpected decode error before finding a start element: %v", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeStanza(dec, start)
		}
	}
}

func TestDecodeStanzaMessageWithBody(t *testing.T) {
	st := decodeFirstStanza(t, `<message from='alice@example.com/phone' to='bob@example.com' id='m1' type='chat'><body>hi there</body></message>`)
	if st.Name != "message" || st.Type != "chat" || st.ID != "m1" {
		t.Fatalf("unexpected envelope: %+v", st)
	}
	if !st.HasBody {
		t.Fatalf("expected HasBody to be true")
	}
	if st.From.String() != "alice@example.com/phone" {
		t.Fatalf("unexpected From: %v", st.From)
	}
}

func TestDecodeStanzaChatStateOnlyHasNoBody(t *testing.T) {
	st := decodeFirstStanza(t, `<message from='alice@example.com/phone' to='bob@example.com'><composing xmlns='http://jabber.org/protocol/chatstates'/></message>`)
	if st.HasBody {
		t.Fatalf("expected no body on a chat-state-only message")
	}
	if st.ChildName != "composing" || st.ChildNS != nsChatStates {
		t.Fatalf("unexpected child: name=%q ns=%q", st.ChildName, st.ChildNS)
	}
}

func TestDecodeStanzaIQChildNamespace(t *testing.T) {
	st := decodeFirstStanza(t, `<iq type='get' id='c2s1' from='example.com'><ping xmlns='urn:xmpp:ping'/></iq>`)
	if st.ChildNS != nsPing || st.ChildName != "ping" {
		t.Fatalf("expected ping child, got name=%q ns=%q", st.ChildName, st.ChildNS)
	}
}
