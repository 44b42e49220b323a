package session

import (
	"time"

	"mellium.im/xmpp/stanza"
)

// SendMessage sends a one-to-one chat message to to, returning the
// stanza id so the caller can correlate a later delivery receipt.
func (s *Session) SendMessage(to, body string) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return "", err
	}
	out := s.hooks.PreChatSend(to, body)

	// Unlike composing/paused/gone, the active state on a sent message is
	// unconditional: it is not gated on the peer having demonstrated
	// chat-state support (only the standalone notifications are).
	state := StateActive
	if !s.opts.ChatStatesEnabled {
		state = ""
	}
	id := s.nextID("msg")
	msg := BuildChatMessage(id, toJID, out, state)
	if err := s.xsess.Encode(s.ctx, msg); err != nil {
		return "", err
	}
	s.chats.NoteMessageSent(to, time.Now())
	s.noteActivity(time.Now())
	s.hooks.PostChatSend(to, out)
	return id, nil
}

// SendGroupMessage sends a groupchat body to room; per XEP-0045, the
// message is reflected back to us by the MUC service rather than
// displayed locally, so no local echo happens here.
func (s *Session) SendGroupMessage(room, body string) (string, error) {
	return s.SendRoomMessage(room, body)
}

// SendRoomMessage is the Commands entry point for posting to a joined
// room.
func (s *Session) SendRoomMessage(room, body string) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}
	if !s.muc.IsActive(room) {
		return "", ErrNotInRoom
	}
	roomJID, err := ParseJID(room)
	if err != nil {
		return "", err
	}
	out := s.hooks.PreRoomSend(room, body)
	id := s.nextID("muc")
	msg := BuildGroupChatMessage(id, roomJID, out)
	if err := s.xsess.Encode(s.ctx, msg); err != nil {
		return "", err
	}
	s.noteActivity(time.Now())
	s.hooks.PostRoomSend(room, out)
	return id, nil
}

// SendChatState sends a bare chat-state notification to to, when the
// peer has demonstrated chat-state support and chat states are
// enabled.
func (s *Session) SendChatState(to string, state ChatState) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	if !s.opts.ChatStatesEnabled || !s.chats.SupportsChatStates(to) {
		return nil
	}
	if s.chats.LastSentState(to) == state {
		return nil
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return err
	}
	if err := s.xsess.Encode(s.ctx, BuildChatStateMessage(toJID, state)); err != nil {
		return err
	}
	if state == StateComposing {
		s.chats.NoteComposing(to, time.Now())
		s.noteActivity(time.Now())
	} else if state == StateGone {
		s.chats.NoteWindowClosed(to)
	}
	return nil
}

// SetPresence updates our own presence and broadcasts it.
func (s *Session) SetPresence(show SelfPresence, status string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	s.selfPresence = show
	s.selfStatus = status
	if show == Offline {
		return s.xsess.Encode(s.ctx, BuildUnavailablePresence(nil))
	}
	prio := s.priorityPointer()
	return s.xsess.Encode(s.ctx, BuildPresence(show, status, prio, "", ""))
}

// JoinRoom sends MUC join presence for room/nick, optionally with
// password, and records the pending join in the MUC model. The join is
// only marked Active once our own presence is echoed back.
func (s *Session) JoinRoom(room, nick, password string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	roomJID, err := ParseJID(room)
	if err != nil {
		return err
	}
	presence, err := BuildRoomJoinPresence(roomJID, nick, password)
	if err != nil {
		return err
	}
	s.muc.Join(bareString(roomJID), nick)
	return s.xsess.Encode(s.ctx, presence)
}

// LeaveRoom sends unavailable presence to room/nick and drops the room
// from the local model.
func (s *Session) LeaveRoom(room string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	roomJID, err := ParseJID(room)
	if err != nil {
		return err
	}
	r, ok := s.muc.Room(bareString(roomJID))
	if !ok {
		return ErrNotInRoom
	}
	presence, err := BuildRoomLeavePresence(roomJID, r.Nick)
	if err != nil {
		return err
	}
	if err := s.xsess.Encode(s.ctx, presence); err != nil {
		return err
	}
	s.muc.Leave(bareString(roomJID))
	return nil
}

// ChangeNick leaves under the old nick implicitly (per XEP-0045 §7.6,
// the server sends an unavailable for the old nick and an available
// for the new one) by sending join presence under newNick.
func (s *Session) ChangeNick(room, newNick string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	if !s.muc.IsActive(room) {
		return ErrNotInRoom
	}
	roomJID, err := ParseJID(room)
	if err != nil {
		return err
	}
	presence, err := BuildRoomJoinPresence(roomJID, newNick, "")
	if err != nil {
		return err
	}
	if err := s.xsess.Encode(s.ctx, presence); err != nil {
		return err
	}
	s.muc.SetNick(bareString(roomJID), newNick)
	return nil
}

// Subscribe sends a presence subscription request to to, recording it
// as pending-out so a duplicate send can be suppressed by the caller.
func (s *Session) Subscribe(to string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return err
	}
	s.roster.SetPendingOut(bareString(toJID), true)
	return s.xsess.Encode(s.ctx, BuildSubscriptionPresence(toJID, stanza.SubscribePresence))
}

// Unsubscribe cancels our subscription to to's presence.
func (s *Session) Unsubscribe(to string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return err
	}
	return s.xsess.Encode(s.ctx, BuildSubscriptionPresence(toJID, stanza.UnsubscribePresence))
}

// AllowSubscription approves a pending inbound subscription request.
func (s *Session) AllowSubscription(from string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	fromJID, err := ParseJID(from)
	if err != nil {
		return err
	}
	bare := bareString(fromJID)
	s.subs.Remove(bare)
	if err := s.xsess.Encode(s.ctx, BuildSubscriptionPresence(fromJID, stanza.SubscribedPresence)); err != nil {
		return err
	}
	s.roster.SetSubscription(bare, SubFrom)
	s.callbacks.SubscriptionDecisionResult(bare, true)
	return nil
}

// DenySubscription rejects a pending inbound subscription request.
func (s *Session) DenySubscription(from string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	fromJID, err := ParseJID(from)
	if err != nil {
		return err
	}
	bare := bareString(fromJID)
	s.subs.Remove(bare)
	if err := s.xsess.Encode(s.ctx, BuildSubscriptionPresence(fromJID, stanza.UnsubscribedPresence)); err != nil {
		return err
	}
	s.callbacks.SubscriptionDecisionResult(bare, false)
	return nil
}

// AddContact sends a roster-set adding contact, fire-and-forget per
// RFC 6121 §2.3; the roster model updates on the resulting push.
func (s *Session) AddContact(contact, name string, groups []string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	contactJID, err := ParseJID(contact)
	if err != nil {
		return err
	}
	id := s.nextID("rosteradd")
	return s.xsess.Encode(s.ctx, BuildAddContactRequest(id, contactJID, name, groups))
}

// RemoveContact sends a roster-set with subscription="remove".
func (s *Session) RemoveContact(contact string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	contactJID, err := ParseJID(contact)
	if err != nil {
		return err
	}
	id := s.nextID("rosterdel")
	return s.xsess.Encode(s.ctx, BuildRemoveContactRequest(id, contactJID))
}

// SendReceipt acknowledges delivery of messageID per XEP-0184.
func (s *Session) SendReceipt(to, messageID string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return err
	}
	return s.xsess.Encode(s.ctx, BuildReceiptMessage(toJID, messageID))
}

// SendDisplayedMarker acknowledges that messageID was displayed, per
// XEP-0333.
func (s *Session) SendDisplayedMarker(to, messageID string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return err
	}
	return s.xsess.Encode(s.ctx, BuildDisplayedMarkerMessage(toJID, messageID))
}

// RequestDiscoInfo issues a disco#info query to to, returning the
// stanza id for correlation when the result arrives.
func (s *Session) RequestDiscoInfo(to, node string) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return "", err
	}
	id := s.nextID("discoinforeq")
	s.pending[id] = pendingRequest{kind: pendingDiscoInfo, to: to}
	return id, s.xsess.Encode(s.ctx, BuildDiscoInfoRequest(id, toJID, node))
}

// RequestDiscoItems issues a disco#items query to to.
func (s *Session) RequestDiscoItems(to, node string) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return "", err
	}
	id := s.nextID("discoitemsreq")
	s.pending[id] = pendingRequest{kind: pendingDiscoItems, to: to}
	return id, s.xsess.Encode(s.ctx, BuildDiscoItemsRequest(id, toJID, node))
}

// RequestRoomList issues a disco#items query against a MUC service,
// routed to Callbacks.RoomListResult instead of DiscoItemsResult.
func (s *Session) RequestRoomList(service string) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}
	serviceJID, err := ParseJID(service)
	if err != nil {
		return "", err
	}
	id := s.nextID("confreq")
	s.pending[id] = pendingRequest{kind: pendingRoomList, to: service}
	return id, s.xsess.Encode(s.ctx, BuildDiscoItemsRequest(id, serviceJID, ""))
}

// RequestSoftwareVersion issues a jabber:iq:version query to to.
func (s *Session) RequestSoftwareVersion(to string) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}
	toJID, err := ParseJID(to)
	if err != nil {
		return "", err
	}
	id := s.nextID("verreq")
	s.pending[id] = pendingRequest{kind: pendingVersion, to: to}
	return id, s.xsess.Encode(s.ctx, BuildVersionRequest(id, toJID))
}
