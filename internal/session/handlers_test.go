package session

import "testing"

func TestHandleDiscoInfoResultCachesOnHashMatch(t *testing.T) {
	caps := NewCapabilityCache()
	s := &Session{pending: map[string]pendingRequest{}, caps: caps}
	idents := []CapIdentity{{Category: "client", Type: "pc", Name: "Exodus"}}
	feats := []string{nsDiscoInfo, nsPing}
	hash := VerHash(idents, feats, nil)
	s.pending["capsreq-1-aa"] = pendingRequest{kind: pendingDiscoInfo, to: "peer@example.com", expectHash: hash}

	from, err := ParseJID("peer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := []byte(`<iq type='result' id='capsreq-1-aa' from='peer@example.com'>` +
		`<query xmlns='http://jabber.org/protocol/disco#info'>` +
		`<identity category='client' type='pc' name='Exodus'/>` +
		`<feature var='` + nsDiscoInfo + `'/><feature var='` + nsPing + `'/>` +
		`</query></iq>`)
	st := Stanza{Name: "iq", Type: "result", ID: "capsreq-1-aa", From: from, Raw: raw}

	handleDiscoInfoResult(s, st)

	if !caps.Contains(hash) {
		t.Fatalf("expected hash %q to be cached after a matching capsreq result", hash)
	}
	if _, ok := s.pending["capsreq-1-aa"]; ok {
		t.Fatalf("expected the pending entry to be consumed")
	}
}

func TestHandleDiscoInfoResultDropsOnHashMismatch(t *testing.T) {
	caps := NewCapabilityCache()
	s := &Session{pending: map[string]pendingRequest{}, caps: caps}
	s.pending["capsreq-2-bb"] = pendingRequest{kind: pendingDiscoInfo, to: "peer@example.com", expectHash: "bogus-hash"}

	from, err := ParseJID("peer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := []byte(`<iq type='result' id='capsreq-2-bb' from='peer@example.com'>` +
		`<query xmlns='http://jabber.org/protocol/disco#info'>` +
		`<identity category='client' type='pc' name='Exodus'/>` +
		`<feature var='` + nsDiscoInfo + `'/>` +
		`</query></iq>`)
	st := Stanza{Name: "iq", Type: "result", ID: "capsreq-2-bb", From: from, Raw: raw}

	handleDiscoInfoResult(s, st)

	if caps.Contains("bogus-hash") {
		t.Fatalf("expected a mismatched hash not to be cached")
	}
}
