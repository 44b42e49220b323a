package session

// Callbacks is the upward-facing interface the session invokes to tell
// the application (the terminal UI, in the out-of-scope collaborator)
// about events it cannot act on itself. Methods run synchronously and
// implementations must not block. Most are invoked from the event pump;
// LoginSuccess and LoginFailed run on the goroutine that called
// Connect, and SubscriptionDecisionResult on the one that called
// AllowSubscription or DenySubscription.
type Callbacks interface {
	// LoginSuccess fires once the session reaches Connected and the
	// initial presence/roster exchange has been kicked off.
	LoginSuccess(account string)
	// LoginFailed fires when authentication or stream negotiation fails.
	LoginFailed(account string, err error)
	// LostConnection fires when a previously Connected session drops
	// unexpectedly (not via explicit Disconnect).
	LostConnection(account string, err error)

	// ContactOnline fires when a contact's derived presence transitions
	// from offline to any available state.
	ContactOnline(jid string, presence SelfPresence, status string)
	// ContactOffline fires when a contact's last available resource goes
	// unavailable.
	ContactOffline(jid string)

	// IncomingMessage fires for a one-to-one chat message with a body.
	IncomingMessage(from, body string)
	// RoomMessage fires for a groupchat message with a body.
	RoomMessage(room, nick, body string)
	// TypingIndicator fires on any chat-state transition from a peer.
	TypingIndicator(from string, state ChatState)

	// RosterReplaced fires after a full roster result or push-driven
	// reload completes.
	RosterReplaced()

	// SubscriptionRequestReceived fires when an inbound "subscribe"
	// presence is added to the subscription inbox.
	SubscriptionRequestReceived(from string)
	// SubscriptionDecisionResult fires once our allow/deny reply is sent.
	SubscriptionDecisionResult(jid string, allowed bool)

	// DiscoInfoResult fires when a disco#info result matches a pending
	// request.
	DiscoInfoResult(from string, identities []CapIdentity, features []string)
	// DiscoItemsResult fires when a disco#items result matches a pending
	// RequestDiscoItems request; MUC service room listings go to
	// RoomListResult instead.
	DiscoItemsResult(from string, items []string)
	// RoomListResult is an alias path for DiscoItemsResult specialized to
	// a MUC service query, kept distinct so the UI can route it without
	// inspecting the request ID itself.
	RoomListResult(service string, rooms []string)

	// SoftwareVersionResult fires when a jabber:iq:version result matches
	// a pending request.
	SoftwareVersionResult(from, name, version, os string)

	// IQError fires when an IQ we sent comes back with type="error".
	IQError(id string, condition string)

	// DeliveryReceipt fires on an inbound XEP-0184 <received/>.
	DeliveryReceipt(from, messageID string)
	// ReadMarker fires on an inbound XEP-0333 <displayed/>.
	ReadMarker(from, messageID string)
	// RoomSubjectChanged fires when a joined room's subject changes.
	RoomSubjectChanged(room, subject, by string)
}
