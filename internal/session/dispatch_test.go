package session

import "testing"

func TestDispatchPrefersExactTypeAndNamespaceOverNameOnly(t *testing.T) {
	d := NewDispatcher()
	var generalFired, specificFired bool
	d.Handle("iq", "", "", "", func(*Session, Stanza) { generalFired = true })
	d.Handle("iq", "result", nsRoster, "", func(*Session, Stanza) { specificFired = true })

	ok := d.Dispatch(nil, Stanza{Name: "iq", Type: "result", ChildNS: nsRoster})
	if !ok {
		t.Fatalf("expected a handler to match")
	}
	if !specificFired || generalFired {
		t.Fatalf("expected the more specific handler to win: specific=%v general=%v", specificFired, generalFired)
	}
}

func TestDispatchIDPrefixOutranksTypeAndNamespace(t *testing.T) {
	d := NewDispatcher()
	var byTypeNS, byID bool
	d.Handle("iq", "result", nsDiscoInfo, "", func(*Session, Stanza) { byTypeNS = true })
	d.Handle("iq", "result", nsDiscoInfo, "capsreq", func(*Session, Stanza) { byID = true })

	d.Dispatch(nil, Stanza{Name: "iq", Type: "result", ChildNS: nsDiscoInfo, ID: "capsreq-1-abcd"})
	if !byID || byTypeNS {
		t.Fatalf("expected id-prefix match to outrank type+namespace: byID=%v byTypeNS=%v", byID, byTypeNS)
	}
}

func TestDispatchNoMatchReturnsFalse(t *testing.T) {
	d := NewDispatcher()
	d.Handle("message", "groupchat", "", "", func(*Session, Stanza) {})
	if d.Dispatch(nil, Stanza{Name: "presence"}) {
		t.Fatalf("expected no handler to match a presence stanza")
	}
}

func TestDispatchFallsBackToNameOnlyHandler(t *testing.T) {
	d := NewDispatcher()
	fired := false
	d.Handle("message", "", "", "", func(*Session, Stanza) { fired = true })

	if !d.Dispatch(nil, Stanza{Name: "message", Type: "chat"}) {
		t.Fatalf("expected the name-only handler to match")
	}
	if !fired {
		t.Fatalf("expected handler to run")
	}
}
