package session

import (
	"encoding/xml"
	"strings"
	"time"

	"mellium.im/xmpp/stanza"
)

// registerBuiltinHandlers wires the builtin handler set described in
// spec §4.6, plus the [EXPANSION] receipt/chat-marker handlers, into
// the dispatch registry. Extensions may register additional handlers
// afterward; the registry prefers the highest-scoring match regardless
// of order, and on an exact tie the builtin registered first wins, so a
// later handler takes over only when it is strictly more specific.
func (s *Session) registerBuiltinHandlers() {
	s.disp.Handle("iq", "result", nsRoster, "roster", handleRosterResult)
	s.disp.Handle("iq", "set", nsRoster, "", handleRosterPush)
	s.disp.Handle("iq", "get", nsPing, "", handlePingRequest)
	s.disp.Handle("iq", "get", "jabber:iq:version", "", handleVersionRequest)
	s.disp.Handle("iq", "get", nsDiscoInfo, "", handleDiscoInfoRequest)
	s.disp.Handle("iq", "get", nsDiscoItems, "", handleDiscoItemsRequest)
	s.disp.Handle("iq", "result", nsDiscoInfo, "", handleDiscoInfoResult)
	s.disp.Handle("iq", "result", nsDiscoItems, "", handleDiscoItemsResult)
	s.disp.Handle("iq", "result", "jabber:iq:version", "", handleVersionResult)
	s.disp.Handle("iq", "error", "", "", handleIQError)

	s.disp.Handle("presence", "", nsMUC, "", handlePresenceMUC)
	s.disp.Handle("presence", "", "", "", handlePresence)

	s.disp.Handle("message", "groupchat", "", "", handleGroupChatMessage)
	s.disp.Handle("message", "", nsReceipts, "", handleReceipt)
	s.disp.Handle("message", "", nsChatMarkers, "", handleDisplayedMarker)
	s.disp.Handle("message", "", nsChatStates, "", handleChatMessage)
	s.disp.Handle("message", "", "", "", handleChatMessage)
}

// rosterPushItem/rosterPushQuery mirror stanza.go's outbound roster
// shapes for decoding an inbound roster result/push.
type rosterPushItem struct {
	JID          string   `xml:"jid,attr"`
	Name         string   `xml:"name,attr"`
	Subscription string   `xml:"subscription,attr"`
	Group        []string `xml:"group"`
}

type rosterPushQuery struct {
	XMLName xml.Name         `xml:"jabber:iq:roster query"`
	Item    []rosterPushItem `xml:"item"`
}

type rosterPushIQ struct {
	XMLName xml.Name        `xml:"iq"`
	Query   rosterPushQuery `xml:"query"`
}

func decodeRosterItems(raw []byte) []Contact {
	var env rosterPushIQ
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil
	}
	out := make([]Contact, 0, len(env.Query.Item))
	for _, it := range env.Query.Item {
		out = append(out, Contact{
			JID:          it.JID,
			Name:         it.Name,
			Subscription: Subscription(it.Subscription),
			Groups:       it.Group,
		})
	}
	return out
}

func handleRosterResult(s *Session, st Stanza) {
	items := decodeRosterItems(st.Raw)
	s.roster.Replace(items)
	s.callbacks.RosterReplaced()
}

func handleRosterPush(s *Session, st Stanza) {
	items := decodeRosterItems(st.Raw)
	for _, it := range items {
		s.roster.Upsert(it.JID, it.Name, it.Subscription, it.Groups)
	}
	_ = s.xsess.Encode(s.ctx, BuildEmptyIQResult(st.ID, st.From))
	s.callbacks.RosterReplaced()
}

func handlePingRequest(s *Session, st Stanza) {
	_ = s.xsess.Encode(s.ctx, BuildPingResult(st.ID, st.From))
}

func handleVersionRequest(s *Session, st Stanza) {
	_ = s.xsess.Encode(s.ctx, BuildVersionResult(st.ID, st.From))
}

type discoInfoReqIQ struct {
	XMLName xml.Name `xml:"iq"`
	Query   struct {
		Node string `xml:"node,attr"`
	} `xml:"query"`
}

func handleDiscoInfoRequest(s *Session, st Stanza) {
	var env discoInfoReqIQ
	_ = xml.Unmarshal(st.Raw, &env)
	identities := []CapIdentity{{Category: "client", Type: "console", Name: clientName}}
	features := []string{nsDiscoInfo, nsDiscoItems, nsChatStates, nsPing, "jabber:iq:version", nsReceipts, nsChatMarkers, nsMUC}
	_ = s.xsess.Encode(s.ctx, BuildDiscoInfoResult(st.ID, st.From, identities, features))
}

func handleDiscoItemsRequest(s *Session, st Stanza) {
	_ = s.xsess.Encode(s.ctx, BuildDiscoItemsResult(st.ID, st.From))
}

type discoInfoResIQ struct {
	XMLName xml.Name `xml:"iq"`
	Query   struct {
		Identity []discoIdentity `xml:"identity"`
		Feature  []discoFeature  `xml:"feature"`
	} `xml:"query"`
}

func handleDiscoInfoResult(s *Session, st Stanza) {
	req, ok := s.pending[st.ID]
	if !ok {
		return
	}
	delete(s.pending, st.ID)
	var env discoInfoResIQ
	_ = xml.Unmarshal(st.Raw, &env)

	idents := make([]CapIdentity, 0, len(env.Query.Identity))
	for _, i := range env.Query.Identity {
		idents = append(idents, CapIdentity{Category: i.Category, Type: i.Type, Name: i.Name})
	}
	feats := make([]string, 0, len(env.Query.Feature))
	for _, f := range env.Query.Feature {
		feats = append(feats, f.Var)
	}

	if strings.HasPrefix(st.ID, "capsreq") {
		if hash := VerHash(idents, feats, nil); len(idents) > 0 && hash == req.expectHash {
			s.caps.Add(hash, idents[0], feats, nil)
		}
		return
	}

	s.callbacks.DiscoInfoResult(st.From.String(), idents, feats)
}

type discoItemsResIQ struct {
	XMLName xml.Name `xml:"iq"`
	Query   struct {
		Item []struct {
			JID  string `xml:"jid,attr"`
			Name string `xml:"name,attr"`
		} `xml:"item"`
	} `xml:"query"`
}

func handleDiscoItemsResult(s *Session, st Stanza) {
	req, ok := s.pending[st.ID]
	if !ok {
		return
	}
	delete(s.pending, st.ID)
	var env discoItemsResIQ
	_ = xml.Unmarshal(st.Raw, &env)
	items := make([]string, 0, len(env.Query.Item))
	for _, it := range env.Query.Item {
		items = append(items, it.JID)
	}
	switch req.kind {
	case pendingRoomList:
		s.callbacks.RoomListResult(req.to, items)
	case pendingDiscoItems:
		s.callbacks.DiscoItemsResult(st.From.String(), items)
	}
}

type versionResIQ struct {
	XMLName xml.Name `xml:"iq"`
	Query   struct {
		Name    string `xml:"name"`
		Version string `xml:"version"`
		OS      string `xml:"os"`
	} `xml:"query"`
}

func handleVersionResult(s *Session, st Stanza) {
	if _, ok := s.pending[st.ID]; !ok {
		return
	}
	delete(s.pending, st.ID)
	var env versionResIQ
	_ = xml.Unmarshal(st.Raw, &env)
	s.callbacks.SoftwareVersionResult(st.From.String(), env.Query.Name, env.Query.Version, env.Query.OS)
}

type errorCondition struct {
	XMLName xml.Name `xml:"error"`
	Inner   []struct {
		XMLName xml.Name
	} `xml:",any"`
}

func handleIQError(s *Session, st Stanza) {
	delete(s.pending, st.ID)
	var env struct {
		XMLName xml.Name       `xml:"iq"`
		Error   errorCondition `xml:"error"`
	}
	_ = xml.Unmarshal(st.Raw, &env)
	cond := "unknown"
	if len(env.Error.Inner) > 0 {
		cond = env.Error.Inner[0].XMLName.Local
	}
	s.callbacks.IQError(st.ID, cond)
}

func handlePresence(s *Session, st Stanza) {
	if isUnqualified(st.From) {
		return
	}
	bare := bareString(st.From)
	resource := st.From.Resourcepart()

	switch stanza.PresenceType(st.Type) {
	case stanza.SubscribePresence:
		s.subs.Add(bare, time.Now())
		s.callbacks.SubscriptionRequestReceived(bare)
	case stanza.SubscribedPresence:
		s.roster.ClearPending(bare)
		s.roster.SetSubscription(bare, SubTo)
	case stanza.UnsubscribedPresence:
		s.roster.ClearPending(bare)
	case stanza.UnavailablePresence:
		wasOnline := len(presenceResources(s, bare)) > 0
		s.roster.RemoveResource(bare, resource)
		if wasOnline && len(presenceResources(s, bare)) == 0 {
			s.callbacks.ContactOffline(bare)
		}
	case "": // available
		if _, ok := s.roster.Get(bare); !ok {
			return
		}
		show, status, prio := decodeAvailablePresence(st.Raw)
		wasOffline := len(presenceResources(s, bare)) == 0
		s.roster.AddResource(bare, resource, show, status, prio)
		if wasOffline {
			s.callbacks.ContactOnline(bare, show, status)
		}
		if capVer := decodeCapsVer(st.Raw); capVer != "" && !s.caps.Contains(capVer) {
			id := s.nextID("capsreq")
			s.pending[id] = pendingRequest{kind: pendingDiscoInfo, to: st.From.String(), expectHash: capVer}
			_ = s.xsess.Encode(s.ctx, BuildDiscoInfoRequest(id, st.From, ""))
		}
	}
}

func presenceResources(s *Session, bare string) map[string]*Resource {
	c, ok := s.roster.Get(bare)
	if !ok {
		return nil
	}
	return c.Resources
}

type presenceBody struct {
	XMLName  xml.Name `xml:"presence"`
	Show     string   `xml:"show"`
	Status   string   `xml:"status"`
	Priority int8     `xml:"priority"`
	Caps     struct {
		Ver string `xml:"ver,attr"`
	} `xml:"c"`
}

func decodeAvailablePresence(raw []byte) (SelfPresence, string, int8) {
	var p presenceBody
	_ = xml.Unmarshal(raw, &p)
	return ParsePresence(p.Show), p.Status, p.Priority
}

func decodeCapsVer(raw []byte) string {
	var p presenceBody
	_ = xml.Unmarshal(raw, &p)
	return p.Caps.Ver
}

func handlePresenceMUC(s *Session, st Stanza) {
	room := bareString(st.From)
	nick := st.From.Resourcepart()
	if nick == "" {
		return
	}

	if stanza.PresenceType(st.Type) == stanza.UnavailablePresence {
		s.muc.RemoveOccupant(room, nick)
		if s.muc.IsActive(room) {
			if r, ok := s.muc.Room(room); ok && r.Nick == nick {
				s.muc.Leave(room)
			}
		}
		return
	}

	var env struct {
		XMLName xml.Name `xml:"presence"`
		Show    string   `xml:"show"`
		Status  string   `xml:"status"`
		X       struct {
			Item struct {
				Affiliation string `xml:"affiliation,attr"`
				Role        string `xml:"role,attr"`
				JID         string `xml:"jid,attr"`
			} `xml:"item"`
		} `xml:"x"`
	}
	_ = xml.Unmarshal(st.Raw, &env)

	occ := Occupant{
		Nick:        nick,
		JID:         env.X.Item.JID,
		Affiliation: Affiliation(env.X.Item.Affiliation),
		Role:        Role(env.X.Item.Role),
		Presence:    ParsePresence(env.Show),
		Status:      env.Status,
	}
	s.muc.UpsertOccupant(room, occ)

	if r, ok := s.muc.Room(room); ok && r.Nick == nick {
		s.muc.Activate(room)
	}
}

type chatMessageBody struct {
	XMLName xml.Name `xml:"message"`
	Body    string   `xml:"body"`
	Subject string   `xml:"subject"`
}

func handleChatMessage(s *Session, st Stanza) {
	switch st.ChildName {
	case string(StateActive), string(StateComposing), string(StatePaused), string(StateInactive), string(StateGone):
		if st.ChildNS == nsChatStates {
			peer := st.From.String()
			s.chats.NoteIncoming(peer)
			s.callbacks.TypingIndicator(peer, ChatState(st.ChildName))
			if !st.HasBody {
				return
			}
		}
	}
	if !st.HasBody {
		return
	}
	var body chatMessageBody
	_ = xml.Unmarshal(st.Raw, &body)
	from := st.From.String()
	displayed := s.hooks.PreChatDisplay(from, body.Body)
	s.callbacks.IncomingMessage(from, displayed)
	s.hooks.PostChatDisplay(from, displayed)
}

func handleGroupChatMessage(s *Session, st Stanza) {
	room := bareString(st.From)
	nick := st.From.Resourcepart()

	var body chatMessageBody
	_ = xml.Unmarshal(st.Raw, &body)

	if body.Subject != "" {
		s.muc.SetSubject(room, body.Subject, nick)
		s.callbacks.RoomSubjectChanged(room, body.Subject, nick)
		return
	}
	if !st.HasBody || nick == "" {
		return
	}
	s.callbacks.RoomMessage(room, nick, body.Body)
}

type receiptBody struct {
	XMLName  xml.Name `xml:"message"`
	Received struct {
		ID string `xml:"id,attr"`
	} `xml:"received"`
}

func handleReceipt(s *Session, st Stanza) {
	var body receiptBody
	_ = xml.Unmarshal(st.Raw, &body)
	if body.Received.ID == "" {
		return
	}
	s.callbacks.DeliveryReceipt(st.From.String(), body.Received.ID)
}

type displayedBody struct {
	XMLName   xml.Name `xml:"message"`
	Displayed struct {
		ID string `xml:"id,attr"`
	} `xml:"displayed"`
}

func handleDisplayedMarker(s *Session, st Stanza) {
	var body displayedBody
	_ = xml.Unmarshal(st.Raw, &body)
	if body.Displayed.ID == "" {
		return
	}
	s.callbacks.ReadMarker(st.From.String(), body.Displayed.ID)
}
