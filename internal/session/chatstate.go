package session

import (
	"sync"
	"time"
)

// ChatSession tracks the XEP-0085 chat-state conversation with a single
// peer (bare or full JID, whichever the peer's messages arrive from).
type ChatSession struct {
	Peer             string
	SupportsStates   bool // true once the peer has sent us any chat-state element
	LastSentState    ChatState
	LastActivityAt   time.Time
	goneDeadlineAt   time.Time
	goneDeadlineSet  bool
}

// ChatSessions is the local model of all open one-to-one chat windows'
// XEP-0085 state, keyed by peer JID string.
type ChatSessions struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession
	// goneAfter is the idle duration after which an active conversation
	// degrades to StateGone, configured from config.Options.GoneMinutes.
	goneAfter time.Duration
}

// NewChatSessions creates a model with the given gone-timeout.
func NewChatSessions(goneAfter time.Duration) *ChatSessions {
	return &ChatSessions{sessions: make(map[string]*ChatSession), goneAfter: goneAfter}
}

func (cs *ChatSessions) get(peer string) *ChatSession {
	s, ok := cs.sessions[peer]
	if !ok {
		s = &ChatSession{Peer: peer, LastSentState: StateActive}
		cs.sessions[peer] = s
	}
	return s
}

// NoteIncoming records that a chat-state-carrying stanza arrived from
// peer, marking the session as chat-state-capable (spec invariant: once
// a peer demonstrates support, we keep sending them states for the rest
// of the session).
func (cs *ChatSessions) NoteIncoming(peer string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s := cs.get(peer)
	s.SupportsStates = true
}

// SupportsChatStates reports whether peer has ever sent us a chat-state
// element.
func (cs *ChatSessions) SupportsChatStates(peer string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.sessions[peer]
	return ok && s.SupportsStates
}

// NoteMessageSent records that we sent a body-bearing message to peer:
// the conversation is active and the gone-timer resets.
func (cs *ChatSessions) NoteMessageSent(peer string, now time.Time) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s := cs.get(peer)
	s.LastSentState = StateActive
	s.LastActivityAt = now
	s.goneDeadlineAt = now.Add(cs.goneAfter)
	s.goneDeadlineSet = cs.goneAfter > 0
}

// NoteComposing records local typing activity in peer's window.
func (cs *ChatSessions) NoteComposing(peer string, now time.Time) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s := cs.get(peer)
	s.LastSentState = StateComposing
	s.LastActivityAt = now
}

// NoteWindowClosed records that the user closed peer's chat window:
// the next outbound state to send, if any, is "gone".
func (cs *ChatSessions) NoteWindowClosed(peer string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s := cs.get(peer)
	s.LastSentState = StateGone
}

// LastSentState returns the last chat-state we sent to peer.
func (cs *ChatSessions) LastSentState(peer string) ChatState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.sessions[peer]
	if !ok {
		return StateActive
	}
	return s.LastSentState
}

// Reset discards every tracked chat session, called when the connection
// drops unexpectedly so a reconnect starts from a clean model (spec
// §4.7).
func (cs *ChatSessions) Reset() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.sessions = make(map[string]*ChatSession)
}

// Expired returns the peers whose gone-deadline has passed as of now,
// for the event pump's timer tick to degrade to StateGone and clear
// their deadlines.
func (cs *ChatSessions) Expired(now time.Time) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var out []string
	for peer, s := range cs.sessions {
		if s.goneDeadlineSet && !now.Before(s.goneDeadlineAt) {
			out = append(out, peer)
			s.goneDeadlineSet = false
			s.LastSentState = StateGone
		}
	}
	return out
}
