package session

import "testing"

func TestRosterReplaceDiscardsPriorContacts(t *testing.T) {
	r := NewRoster()
	r.Replace([]Contact{{JID: "alice@example.com", Name: "Alice"}})
	r.Replace([]Contact{{JID: "bob@example.com", Name: "Bob"}})

	if _, ok := r.Get("alice@example.com"); ok {
		t.Fatalf("expected alice to be gone after Replace")
	}
	if _, ok := r.Get("bob@example.com"); !ok {
		t.Fatalf("expected bob to be present after Replace")
	}
}

func TestRosterUpsertRemoveSubscription(t *testing.T) {
	r := NewRoster()
	r.Upsert("alice@example.com", "Alice", SubBoth, []string{"friends"})
	if _, ok := r.Get("alice@example.com"); !ok {
		t.Fatalf("expected alice to be present after Upsert")
	}
	r.Upsert("alice@example.com", "Alice", "remove", nil)
	if _, ok := r.Get("alice@example.com"); ok {
		t.Fatalf("expected alice to be removed after subscription=remove push")
	}
}

func TestDerivedPresencePrefersHighestPriority(t *testing.T) {
	r := NewRoster()
	r.Replace([]Contact{{JID: "alice@example.com"}})
	r.AddResource("alice@example.com", "phone", Away, "commuting", 1)
	r.AddResource("alice@example.com", "laptop", Chat, "at my desk", 5)

	c, ok := r.Get("alice@example.com")
	if !ok {
		t.Fatalf("expected alice to be present")
	}
	presence, status, resource := c.derivedPresence()
	if presence != Chat || resource != "laptop" || status != "at my desk" {
		t.Fatalf("expected laptop/chat to win by priority, got presence=%v resource=%q status=%q", presence, resource, status)
	}
}

func TestDerivedPresenceOfflineWithNoResources(t *testing.T) {
	r := NewRoster()
	r.Replace([]Contact{{JID: "alice@example.com"}})
	c, _ := r.Get("alice@example.com")
	presence, _, _ := c.derivedPresence()
	if presence != Offline {
		t.Fatalf("expected Offline with no resources, got %v", presence)
	}
}

func TestRemoveResourceDropsContactToOffline(t *testing.T) {
	r := NewRoster()
	r.Replace([]Contact{{JID: "alice@example.com"}})
	r.AddResource("alice@example.com", "phone", Online, "", 0)
	r.RemoveResource("alice@example.com", "phone")

	c, _ := r.Get("alice@example.com")
	presence, _, _ := c.derivedPresence()
	if presence != Offline {
		t.Fatalf("expected Offline after removing only resource, got %v", presence)
	}
}

func TestHasPendingOutAnywhere(t *testing.T) {
	r := NewRoster()
	if r.HasPendingOutAnywhere() {
		t.Fatalf("expected no pending requests on empty roster")
	}
	r.SetPendingOut("alice@example.com", true)
	if !r.HasPendingOutAnywhere() {
		t.Fatalf("expected pending request to be visible")
	}
	r.ClearPending("alice@example.com")
	if r.HasPendingOutAnywhere() {
		t.Fatalf("expected no pending requests after ClearPending")
	}
}

func TestAddResourceIgnoresUnknownContact(t *testing.T) {
	r := NewRoster()
	r.AddResource("stranger@example.com", "phone", Online, "", 0)
	if _, ok := r.Get("stranger@example.com"); ok {
		t.Fatalf("expected presence from an unknown JID not to fabricate a roster entry")
	}
}

func TestResetDiscardsAllContacts(t *testing.T) {
	r := NewRoster()
	r.Replace([]Contact{{JID: "alice@example.com"}})
	r.Reset()
	if _, ok := r.Get("alice@example.com"); ok {
		t.Fatalf("expected Reset to discard all contacts")
	}
}

func TestFindByPrefixCaseInsensitive(t *testing.T) {
	r := NewRoster()
	r.Replace([]Contact{
		{JID: "alice@example.com", Name: "Alice"},
		{JID: "bob@example.com", Name: "Bob"},
	})
	got := r.FindByPrefix("AL")
	if len(got) != 1 || got[0].JID != "alice@example.com" {
		t.Fatalf("expected to find alice, got %+v", got)
	}
}
