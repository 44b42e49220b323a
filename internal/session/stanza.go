package session

import (
	"encoding/xml"
	"fmt"

	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"
)

// Namespaces used by the stanza builders and the handler dispatch
// registry. Kept together here since both sides of the wire agree on
// them.
const (
	nsRoster      = "jabber:iq:roster"
	nsChatStates  = "http://jabber.org/protocol/chatstates"
	nsMUC         = "http://jabber.org/protocol/muc"
	nsPing        = "urn:xmpp:ping"
	nsVersion     = "jabber:iq:version"
	nsDiscoInfo   = "http://jabber.org/protocol/disco#info"
	nsDiscoItems  = "http://jabber.org/protocol/disco#items"
	nsCaps        = "http://jabber.org/protocol/caps"
	nsReceipts    = "urn:xmpp:receipts"
	nsChatMarkers = "urn:xmpp:chat-markers:0"
)

// clientName and clientVersion are reported in response to XEP-0092
// software version queries.
const (
	clientName    = "Profanity"
	clientVersion = "0.15.0dev"
)

// chatStateElem is the XEP-0085 chat-state child, e.g. <active/>.
type chatStateElem struct {
	XMLName xml.Name `xml:""`
}

func chatStateElement(state ChatState) chatStateElem {
	return chatStateElem{XMLName: xml.Name{Space: nsChatStates, Local: string(state)}}
}

// messageBody is the <body> child of a message stanza. Text holds body
// text already escaped by escapeBody and is written to the wire verbatim.
type messageBody struct {
	XMLName xml.Name `xml:"body"`
	Text    string   `xml:",innerxml"`
}

// escapeBody XML-escapes a message body. Each rune is examined once, so
// the "&" of an entity produced for "<" or ">" is never escaped again.
func escapeBody(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		switch r {
		case '&':
			b = append(b, "&amp;"...)
		case '<':
			b = append(b, "&lt;"...)
		case '>':
			b = append(b, "&gt;"...)
		default:
			b = append(b, string(r)...)
		}
	}
	return string(b)
}

// chatMessage is an outbound one-to-one or groupchat message, optionally
// carrying a chat-state child and/or a body.
type chatMessage struct {
	stanza.Message
	Body      *messageBody   `xml:"body,omitempty"`
	ChatState *chatStateElem `xml:",omitempty"`
}

// BuildChatMessage constructs a one-to-one chat message with an escaped
// body and, when state is non-empty, a chat-state child.
func BuildChatMessage(id string, to jid.JID, body string, state ChatState) chatMessage {
	m := chatMessage{
		Message: stanza.Message{
			ID:   id,
			To:   to,
			Type: stanza.ChatMessage,
		},
		Body: &messageBody{Text: escapeBody(body)},
	}
	if state != "" {
		cs := chatStateElement(state)
		m.ChatState = &cs
	}
	return m
}

// BuildGroupChatMessage constructs a groupchat message to a room JID.
func BuildGroupChatMessage(id string, room jid.JID, body string) chatMessage {
	return chatMessage{
		Message: stanza.Message{
			ID:   id,
			To:   room,
			Type: stanza.GroupChatMessage,
		},
		Body: &messageBody{Text: escapeBody(body)},
	}
}

// BuildChatStateMessage constructs a message stanza carrying only a
// chat-state child -- no body. Used for composing/paused/inactive/gone
// notifications per XEP-0085.
func BuildChatStateMessage(to jid.JID, state ChatState) chatMessage {
	cs := chatStateElement(state)
	return chatMessage{
		Message: stanza.Message{
			To:   to,
			Type: stanza.ChatMessage,
		},
		ChatState: &cs,
	}
}

// receiptElem is the XEP-0184 <received/> acknowledgment child.
type receiptElem struct {
	XMLName xml.Name `xml:"urn:xmpp:receipts received"`
	ID      string   `xml:"id,attr"`
}

// BuildReceiptMessage acknowledges delivery of messageID per XEP-0184.
func BuildReceiptMessage(to jid.JID, messageID string) struct {
	stanza.Message
	Received receiptElem `xml:"urn:xmpp:receipts received"`
} {
	return struct {
		stanza.Message
		Received receiptElem `xml:"urn:xmpp:receipts received"`
	}{
		Message:  stanza.Message{To: to, Type: stanza.ChatMessage},
		Received: receiptElem{ID: messageID},
	}
}

// displayedElem is the XEP-0333 <displayed/> read-marker child.
type displayedElem struct {
	XMLName xml.Name `xml:"urn:xmpp:chat-markers:0 displayed"`
	ID      string   `xml:"id,attr"`
}

// BuildDisplayedMarkerMessage acknowledges that messageID was displayed
// to the user per XEP-0333.
func BuildDisplayedMarkerMessage(to jid.JID, messageID string) struct {
	stanza.Message
	Displayed displayedElem `xml:"urn:xmpp:chat-markers:0 displayed"`
} {
	return struct {
		stanza.Message
		Displayed displayedElem `xml:"urn:xmpp:chat-markers:0 displayed"`
	}{
		Message:   stanza.Message{To: to, Type: stanza.ChatMessage},
		Displayed: displayedElem{ID: messageID},
	}
}

// showElem is the <show/> child of a presence stanza.
type showElem struct {
	XMLName xml.Name `xml:"show"`
	Text    string   `xml:",chardata"`
}

// statusElem is the <status/> child of a presence stanza. Text holds
// status text already escaped by escapeBody and is written verbatim.
type statusElem struct {
	XMLName xml.Name `xml:"status"`
	Text    string   `xml:",innerxml"`
}

// priorityElem is the <priority/> child of a presence stanza.
type priorityElem struct {
	XMLName xml.Name `xml:"priority"`
	Text    int      `xml:",chardata"`
}

// capsElem is the XEP-0115 entity-capabilities child advertised in
// outbound available presence.
type capsElem struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/caps c"`
	Hash    string   `xml:"hash,attr"`
	Node    string   `xml:"node,attr"`
	Ver     string   `xml:"ver,attr"`
}

// availablePresence is an outbound presence stanza with the optional
// show/status/priority/caps children. No "priority" is sent at all when
// priority is unset (Profanity's jabber_update_presence omits it too).
type availablePresence struct {
	stanza.Presence
	Show     *showElem
	Status   *statusElem
	Priority *priorityElem
	Caps     *capsElem
}

// BuildPresence constructs an outbound available-presence stanza. prio
// is a pointer so that "no priority configured" (nil) can be
// distinguished from priority 0.
func BuildPresence(show SelfPresence, status string, prio *int8, capsNode, capsVer string) availablePresence {
	p := availablePresence{Presence: stanza.Presence{}}
	if s := show.show(); s != "" {
		p.Show = &showElem{Text: s}
	}
	if status != "" {
		p.Status = &statusElem{Text: escapeBody(status)}
	}
	if prio != nil {
		p.Priority = &priorityElem{Text: int(*prio)}
	}
	if capsVer != "" {
		p.Caps = &capsElem{Hash: "sha-1", Node: capsNode, Ver: capsVer}
	}
	return p
}

// BuildUnavailablePresence constructs a plain unavailable presence for
// going offline, optionally directed at to. Leaving a room uses
// BuildRoomLeavePresence instead.
func BuildUnavailablePresence(to *jid.JID) stanza.Presence {
	p := stanza.Presence{Type: stanza.UnavailablePresence}
	if to != nil {
		p.To = *to
	}
	return p
}

// BuildSubscriptionPresence constructs a directed presence of the given
// subscription-control type ("subscribe", "subscribed", "unsubscribe",
// "unsubscribed").
func BuildSubscriptionPresence(to jid.JID, typ stanza.PresenceType) stanza.Presence {
	return stanza.Presence{To: to, Type: typ}
}

// mucJoinX is the MUC namespace child of room-join presence, optionally
// carrying a room password.
type mucJoinX struct {
	XMLName  xml.Name `xml:"http://jabber.org/protocol/muc x"`
	Password string   `xml:"password,omitempty"`
}

// roomJoinPresence is outbound presence directed at room@service/nick.
type roomJoinPresence struct {
	stanza.Presence
	X mucJoinX `xml:"http://jabber.org/protocol/muc x"`
}

// BuildRoomJoinPresence constructs join presence to roomJID/nick,
// optionally with a room password.
func BuildRoomJoinPresence(room jid.JID, nick, password string) (roomJoinPresence, error) {
	full, err := room.Bare().WithResource(nick)
	if err != nil {
		return roomJoinPresence{}, fmt.Errorf("session: invalid room nick: %w", err)
	}
	return roomJoinPresence{
		Presence: stanza.Presence{To: full},
		X:        mucJoinX{Password: password},
	}, nil
}

// BuildRoomLeavePresence constructs unavailable presence to roomJID/nick.
func BuildRoomLeavePresence(room jid.JID, nick string) (stanza.Presence, error) {
	full, err := room.Bare().WithResource(nick)
	if err != nil {
		return stanza.Presence{}, fmt.Errorf("session: invalid room nick: %w", err)
	}
	return stanza.Presence{To: full, Type: stanza.UnavailablePresence}, nil
}

// rosterQueryEmpty is the empty roster query payload of a roster
// get/result IQ.
type rosterQueryEmpty struct {
	XMLName xml.Name `xml:"jabber:iq:roster query"`
}

type rosterGetIQ struct {
	stanza.IQ
	Query rosterQueryEmpty `xml:"jabber:iq:roster query"`
}

// BuildRosterRequest constructs the roster-get IQ, id "roster".
func BuildRosterRequest() rosterGetIQ {
	return rosterGetIQ{IQ: stanza.IQ{ID: "roster", Type: stanza.GetIQ}}
}

type rosterSetItem struct {
	JID          string   `xml:"jid,attr"`
	Name         string   `xml:"name,attr,omitempty"`
	Subscription string   `xml:"subscription,attr,omitempty"`
	Group        []string `xml:"group,omitempty"`
}

type rosterSetQuery struct {
	XMLName xml.Name      `xml:"jabber:iq:roster query"`
	Item    rosterSetItem `xml:"item"`
}

type rosterSetIQ struct {
	stanza.IQ
	Query rosterSetQuery `xml:"jabber:iq:roster query"`
}

// BuildAddContactRequest constructs a roster-set IQ adding or updating a
// contact. Per RFC 6121 §2.3 this is fire-and-forget: the server answers
// with an IQ result plus an asynchronous roster push.
func BuildAddContactRequest(id string, contact jid.JID, name string, groups []string) rosterSetIQ {
	return rosterSetIQ{
		IQ: stanza.IQ{ID: id, Type: stanza.SetIQ},
		Query: rosterSetQuery{
			Item: rosterSetItem{JID: contact.Bare().String(), Name: name, Group: groups},
		},
	}
}

// BuildRemoveContactRequest constructs a roster-set IQ with
// subscription="remove", per RFC 6121 §2.4.
func BuildRemoveContactRequest(id string, contact jid.JID) rosterSetIQ {
	return rosterSetIQ{
		IQ: stanza.IQ{ID: id, Type: stanza.SetIQ},
		Query: rosterSetQuery{
			Item: rosterSetItem{JID: contact.Bare().String(), Subscription: "remove"},
		},
	}
}

// pingElem is the XEP-0199 <ping/> payload.
type pingElem struct {
	XMLName xml.Name `xml:"urn:xmpp:ping ping"`
}

type pingIQ struct {
	stanza.IQ
	Ping pingElem `xml:"urn:xmpp:ping ping"`
}

// BuildPingRequest constructs the outbound keepalive ping, id "c2s1" per
// spec.md.
func BuildPingRequest() pingIQ {
	return pingIQ{IQ: stanza.IQ{ID: "c2s1", Type: stanza.GetIQ}}
}

// discoInfoQuery is the disco#info query payload, optionally scoped to a
// node (used when requesting a cached capability hash's full info).
type discoInfoQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#info query"`
	Node    string   `xml:"node,attr,omitempty"`
}

type discoInfoIQ struct {
	stanza.IQ
	Query discoInfoQuery `xml:"http://jabber.org/protocol/disco#info query"`
}

// BuildDiscoInfoRequest constructs a disco#info get IQ to jid, optionally
// scoped to node. id starts with "discoinforeq" for a plain query, or
// "capsreq" when resolving a capability hash (per spec.md §4.1).
func BuildDiscoInfoRequest(id string, to jid.JID, node string) discoInfoIQ {
	return discoInfoIQ{
		IQ:    stanza.IQ{ID: id, To: to, Type: stanza.GetIQ},
		Query: discoInfoQuery{Node: node},
	}
}

type discoItemsQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#items query"`
	Node    string   `xml:"node,attr,omitempty"`
}

type discoItemsIQ struct {
	stanza.IQ
	Query discoItemsQuery `xml:"http://jabber.org/protocol/disco#items query"`
}

// BuildDiscoItemsRequest constructs a disco#items get IQ. id starts
// with "confreq" when listing a MUC service's rooms, "discoitemsreq"
// otherwise.
func BuildDiscoItemsRequest(id string, to jid.JID, node string) discoItemsIQ {
	return discoItemsIQ{
		IQ:    stanza.IQ{ID: id, To: to, Type: stanza.GetIQ},
		Query: discoItemsQuery{Node: node},
	}
}

type versionQuery struct {
	XMLName xml.Name `xml:"jabber:iq:version query"`
}

type versionRequestIQ struct {
	stanza.IQ
	Query versionQuery `xml:"jabber:iq:version query"`
}

// BuildVersionRequest constructs an outbound software-version get IQ.
func BuildVersionRequest(id string, to jid.JID) versionRequestIQ {
	return versionRequestIQ{
		IQ:    stanza.IQ{ID: id, To: to, Type: stanza.GetIQ},
		Query: versionQuery{},
	}
}

type versionResult struct {
	XMLName xml.Name `xml:"jabber:iq:version query"`
	Name    string   `xml:"name"`
	Version string   `xml:"version"`
}

type versionResultIQ struct {
	stanza.IQ
	Query versionResult `xml:"jabber:iq:version query"`
}

// BuildVersionResult answers an inbound version query with our own
// identity strings, copying id and swapping to/from.
func BuildVersionResult(id string, to jid.JID) versionResultIQ {
	return versionResultIQ{
		IQ:    stanza.IQ{ID: id, To: to, Type: stanza.ResultIQ},
		Query: versionResult{Name: clientName, Version: clientVersion},
	}
}

// BuildEmptyIQResult constructs a bare IQ result with no payload, used
// both to answer pings and to acknowledge roster pushes.
func BuildEmptyIQResult(id string, to jid.JID) stanza.IQ {
	return stanza.IQ{ID: id, To: to, Type: stanza.ResultIQ}
}

// BuildPingResult answers an inbound ping with an empty IQ result.
func BuildPingResult(id string, to jid.JID) stanza.IQ {
	return BuildEmptyIQResult(id, to)
}

type discoIdentity struct {
	XMLName  xml.Name `xml:"identity"`
	Category string   `xml:"category,attr"`
	Type     string   `xml:"type,attr"`
	Name     string   `xml:"name,attr,omitempty"`
}

type discoFeature struct {
	XMLName xml.Name `xml:"feature"`
	Var     string   `xml:"var,attr"`
}

type discoInfoResultQuery struct {
	XMLName    xml.Name        `xml:"http://jabber.org/protocol/disco#info query"`
	Node       string          `xml:"node,attr,omitempty"`
	Identities []discoIdentity `xml:"identity"`
	Features   []discoFeature  `xml:"feature"`
}

type discoInfoResultIQ struct {
	stanza.IQ
	Query discoInfoResultQuery `xml:"http://jabber.org/protocol/disco#info query"`
}

// BuildDiscoInfoResult answers an inbound disco#info query with our own
// identity and feature set.
func BuildDiscoInfoResult(id string, to jid.JID, identities []CapIdentity, features []string) discoInfoResultIQ {
	idents := make([]discoIdentity, 0, len(identities))
	for _, i := range identities {
		idents = append(idents, discoIdentity{Category: i.Category, Type: i.Type, Name: i.Name})
	}
	feats := make([]discoFeature, 0, len(features))
	for _, f := range features {
		feats = append(feats, discoFeature{Var: f})
	}
	return discoInfoResultIQ{
		IQ:    stanza.IQ{ID: id, To: to, Type: stanza.ResultIQ},
		Query: discoInfoResultQuery{Identities: idents, Features: feats},
	}
}

type discoItemsResultQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#items query"`
}

type discoItemsResultIQ struct {
	stanza.IQ
	Query discoItemsResultQuery `xml:"http://jabber.org/protocol/disco#items query"`
}

// BuildDiscoItemsResult answers an inbound disco#items query with an
// empty item list -- the core process does not host child services.
func BuildDiscoItemsResult(id string, to jid.JID) discoItemsResultIQ {
	return discoItemsResultIQ{
		IQ:    stanza.IQ{ID: id, To: to, Type: stanza.ResultIQ},
		Query: discoItemsResultQuery{},
	}
}
