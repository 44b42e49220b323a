package session

import "github.com/AriadnaRaffo/profanity-go/internal/config"

// Commands is the downward-facing surface the command-line/slash-command
// layer (out of scope here) drives the session through. Every method
// that sends a stanza (all error-returning methods except Connect and
// SetAutoaway) returns ErrNotConnected when the session is not in the
// Connected state. SetAutoaway and the read accessors (Status through
// RoomRoster) work in any state.
type Commands interface {
	Connect(account Account) error
	Disconnect() error

	SendMessage(to, body string) (id string, err error)
	SendGroupMessage(room, body string) (id string, err error)
	SendChatState(to string, state ChatState) error

	SetPresence(show SelfPresence, status string) error

	JoinRoom(room, nick, password string) error
	LeaveRoom(room string) error
	ChangeNick(room, newNick string) error
	SendRoomMessage(room, body string) (id string, err error)

	Subscribe(to string) error
	Unsubscribe(to string) error
	AllowSubscription(from string) error
	DenySubscription(from string) error

	AddContact(contact, name string, groups []string) error
	RemoveContact(contact string) error

	SendReceipt(to, messageID string) error
	SendDisplayedMarker(to, messageID string) error

	RequestDiscoInfo(to, node string) (id string, err error)
	RequestDiscoItems(to, node string) (id string, err error)
	RequestRoomList(service string) (id string, err error)
	RequestSoftwareVersion(to string) (id string, err error)

	SetAutoaway(mode string, minutes int, message string) error

	Status() ConnectionStatus
	SelfBareJID() string
	SelfPresence() SelfPresence
	SubscriptionRequests() []SubscriptionRequest
	FindContactsByPrefix(prefix string) []Contact
	Rooms() []Room
	RoomRoster(room string) []Occupant
}

// Account identifies the credentials and connection options a Connect
// call uses. Password retrieval/storage is the out-of-scope config
// layer's concern; Commands only ever receives the resolved secret.
type Account struct {
	JID      string
	Password string
	Options  config.Options
}
