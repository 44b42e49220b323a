package session

import (
	"testing"
	"time"
)

func TestSubscriptionInboxAddSupersedesStaleRequest(t *testing.T) {
	inbox := NewSubscriptionInbox()
	inbox.Add("alice@example.com", time.Unix(0, 0))
	inbox.Add("alice@example.com", time.Unix(100, 0))

	all := inbox.All()
	if len(all) != 1 || !all[0].ReceivedAt.Equal(time.Unix(100, 0)) {
		t.Fatalf("expected a single, superseded entry, got %+v", all)
	}
}

func TestSubscriptionInboxRemove(t *testing.T) {
	inbox := NewSubscriptionInbox()
	inbox.Add("alice@example.com", time.Now())
	if !inbox.Has("alice@example.com") {
		t.Fatalf("expected pending request to be present")
	}
	inbox.Remove("alice@example.com")
	if inbox.Has("alice@example.com") {
		t.Fatalf("expected pending request to be removed")
	}
}
