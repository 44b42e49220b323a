package session

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"mellium.im/sasl"
	"mellium.im/xmpp"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"

	"github.com/AriadnaRaffo/profanity-go/internal/config"
	"github.com/AriadnaRaffo/profanity-go/internal/logging"
)

// pendingKind identifies what a tracked outbound IQ id is waiting for,
// so the generic iq/result dispatch can route the answer to the right
// Callbacks method.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingDiscoInfo
	pendingDiscoItems
	pendingRoomList
	pendingVersion
	pendingRoster
)

type pendingRequest struct {
	kind pendingKind
	to   string

	// expectHash is set only for capsreq-id disco#info requests: the
	// "ver" advertised in the triggering presence, which the computed
	// VerHash must match before the result is cached (spec §4.2).
	expectHash string
}

// Session is the XMPP session layer: it owns the transport connection,
// the single-threaded stanza pump, the handler dispatch registry, and
// every local model (roster, MUC, capability cache, chat sessions,
// subscription inbox). It implements Commands for the command-surface
// caller and drives Callbacks for the application layer.
type Session struct {
	mu     sync.Mutex
	status ConnectionStatus
	log    *logging.Logger

	account Account
	opts    config.Options
	selfJID jid.JID

	xsess  *xmpp.Session
	ctx    context.Context
	cancel context.CancelFunc

	selfPresence SelfPresence
	selfStatus   string
	selfPriority *int8

	roster *Roster
	muc    *MUC
	caps   *CapabilityCache
	chats  *ChatSessions
	subs   *SubscriptionInbox
	disp   *Dispatcher

	callbacks Callbacks
	hooks     Hooks

	pending map[string]pendingRequest

	stanzaCh  chan Stanza
	readErrCh chan error

	idCounter uint64

	// lastActivityAt and autoAwayActive drive the ticker's idle-based
	// presence transition (§2, §4.7 set_autoaway): lastActivityAt resets
	// on every outbound message/composing notification, and
	// autoAwayActive tracks whether the session itself (rather than the
	// user) currently owns the away/xa presence.
	lastActivityAt time.Time
	autoAwayActive bool
}

// NewSession constructs a Session wired with the given dependencies.
// caps may be shared across reconnects/sessions to amortize disco
// lookups, per spec §3's cache lifecycle note.
func NewSession(callbacks Callbacks, hooks Hooks, caps *CapabilityCache, log *logging.Logger) *Session {
	if hooks == nil {
		hooks = NoOpHooks{}
	}
	if caps == nil {
		caps = NewCapabilityCache()
	}
	s := &Session{
		status:    Started,
		roster:    NewRoster(),
		muc:       NewMUC(),
		caps:      caps,
		subs:      NewSubscriptionInbox(),
		disp:      NewDispatcher(),
		callbacks: callbacks,
		hooks:     hooks,
		pending:   make(map[string]pendingRequest),
		stanzaCh:  make(chan Stanza, 64),
		readErrCh: make(chan error, 1),
		log:       log,
	}
	s.registerBuiltinHandlers()
	s.hooks.OnStart()
	return s
}

// Status returns the current connection lifecycle state.
func (s *Session) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st ConnectionStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Session) requireConnected() error {
	if s.Status() != Connected {
		return ErrNotConnected
	}
	return nil
}

// nextID returns a locally-unique stanza id, used for requests whose
// replies we correlate via the pending map.
func (s *Session) nextID(prefix string) string {
	s.mu.Lock()
	s.idCounter++
	n := s.idCounter
	s.mu.Unlock()
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("%s-%d-%s", prefix, n, hex.EncodeToString(buf[:]))
}

// Connect negotiates a stream to account's server, binds a resource,
// sends initial presence, and requests the roster; the autoping
// described in §4.7 is sent from Run's ticker. It returns once Connected (or on
// failure, Disconnected); the caller must then invoke Run to drive the
// event pump.
func (s *Session) Connect(account Account) error {
	st := s.Status()
	if st != Disconnected && st != Started {
		return ErrAlreadyConnected
	}
	s.account = account
	s.opts = account.Options
	s.setStatus(Connecting)

	j, err := ParseJID(account.JID)
	if err != nil {
		s.setStatus(Disconnected)
		return err
	}
	if s.opts.Resource != "" {
		if j, err = j.WithResource(s.opts.Resource); err != nil {
			s.setStatus(Disconnected)
			return fmt.Errorf("session: invalid resource: %w", err)
		}
	}

	domain := j.Domain().String()
	if s.opts.AltDomain != "" {
		domain = s.opts.AltDomain
	}
	addr := net.JoinHostPort(domain, strconv.Itoa(5222))

	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		s.setStatus(Disconnected)
		s.callbacks.LoginFailed(account.JID, err)
		return nil
	}

	tlsConfig := &tls.Config{ServerName: j.Domain().String(), MinVersion: tls.VersionTLS12}
	negotiator := xmpp.NewNegotiator(func(_ *xmpp.Session, _ *xmpp.StreamConfig) xmpp.StreamConfig {
		return xmpp.StreamConfig{
			Features: []xmpp.StreamFeature{
				xmpp.StartTLS(tlsConfig),
				xmpp.SASL("", account.Password, sasl.ScramSha256Plus, sasl.ScramSha256, sasl.ScramSha1Plus, sasl.ScramSha1, sasl.Plain),
				xmpp.BindResource(),
			},
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	xsess, err := xmpp.NewSession(ctx, j.Domain(), j, conn, 0, negotiator)
	if err != nil {
		cancel()
		_ = conn.Close()
		s.setStatus(Disconnected)
		s.callbacks.LoginFailed(account.JID, err)
		return nil
	}

	s.xsess = xsess
	s.ctx = ctx
	s.cancel = cancel
	s.selfJID = xsess.LocalAddr()
	s.chats = NewChatSessions(time.Duration(s.opts.GoneMinutes) * time.Minute)
	s.lastActivityAt = time.Now()
	s.autoAwayActive = false
	s.setStatus(Connected)

	go s.readLoop()

	s.hooks.OnConnect(account.JID)
	s.log.Info("connected as %s", s.selfJID)

	prio := s.priorityPointer()
	pres := BuildPresence(Online, "", prio, "", "")
	s.selfPresence = Online
	_ = s.xsess.Encode(s.ctx, pres)

	reqID := s.nextID("roster")
	s.pending[reqID] = pendingRequest{kind: pendingRoster}
	_ = s.xsess.Encode(s.ctx, BuildRosterRequest())

	s.callbacks.LoginSuccess(account.JID)
	return nil
}

// SelfBareJID returns the session's own bare JID, or "" whenever the
// session is neither Connected nor Disconnecting.
func (s *Session) SelfBareJID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Connected && s.status != Disconnecting {
		return ""
	}
	return bareString(s.selfJID)
}

// SelfPresence returns the presence most recently set via SetPresence
// (or Connect's initial Online).
func (s *Session) SelfPresence() SelfPresence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfPresence
}

// SubscriptionRequests returns every inbound presence subscription
// request awaiting an allow/deny decision, sorted by requester JID.
func (s *Session) SubscriptionRequests() []SubscriptionRequest {
	return s.subs.All()
}

// FindContactsByPrefix returns roster contacts whose JID or name starts
// with prefix, case-insensitively, sorted by JID.
func (s *Session) FindContactsByPrefix(prefix string) []Contact {
	return s.roster.FindByPrefix(prefix)
}

// Rooms returns every room the session has joined or attempted to join,
// sorted by JID.
func (s *Session) Rooms() []Room {
	return s.muc.Rooms()
}

// RoomRoster returns the occupant list of room, sorted by nick, or nil
// if room is not known.
func (s *Session) RoomRoster(room string) []Occupant {
	return s.muc.Occupants(room)
}

// noteActivity records outbound user activity, reviving the session
// from a self-initiated auto-away the next time the ticker evaluates
// it.
func (s *Session) noteActivity(now time.Time) {
	s.mu.Lock()
	s.lastActivityAt = now
	s.mu.Unlock()
}

// SetAutoaway configures idle-based presence auto-away. mode is one of
// config's AutoawayMode values; minutes is the idle threshold; message
// is the status text sent with the away/xa presence.
func (s *Session) SetAutoaway(mode string, minutes int, message string) error {
	if err := s.opts.SetAutoawayMode(mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreferenceValue, err)
	}
	if minutes < 0 {
		return ErrValueOutOfRange
	}
	s.opts.AutoawayMinutes = minutes
	s.opts.AutoawayMessage = message
	if s.opts.AutoawayMode == config.AutoawayOff && s.autoAwayActive {
		s.revertAutoaway()
	}
	return nil
}

// evaluateAutoaway is called on each ticker tick: it transitions into
// away/xa once the session has been idle past the configured threshold,
// and reverts once fresh activity is observed.
func (s *Session) evaluateAutoaway(now time.Time) {
	if s.opts.AutoawayMode == config.AutoawayOff || s.opts.AutoawayMinutes <= 0 {
		return
	}
	idle := now.Sub(s.lastActivityAt)
	threshold := time.Duration(s.opts.AutoawayMinutes) * time.Minute

	if !s.autoAwayActive && idle >= threshold {
		if s.selfPresence != Online && s.selfPresence != Chat {
			return
		}
		target := Away
		if s.opts.AutoawayMode == config.AutoawayXa {
			target = Xa
		}
		s.autoAwayActive = true
		s.selfPresence = target
		if s.xsess != nil {
			prio := s.priorityPointer()
			_ = s.xsess.Encode(s.ctx, BuildPresence(target, s.opts.AutoawayMessage, prio, "", ""))
		}
		return
	}
	if s.autoAwayActive && idle < threshold {
		s.revertAutoaway()
	}
}

// revertAutoaway restores Online presence once a session-initiated
// auto-away is no longer warranted.
func (s *Session) revertAutoaway() {
	s.autoAwayActive = false
	s.selfPresence = Online
	if s.xsess == nil {
		return
	}
	prio := s.priorityPointer()
	_ = s.xsess.Encode(s.ctx, BuildPresence(Online, "", prio, "", ""))
}

func (s *Session) priorityPointer() *int8 {
	if !s.opts.PriorityByPresenceSet {
		return nil
	}
	p := s.opts.PriorityFor(int(s.selfPresence))
	return &p
}

// Disconnect sends unavailable presence, closes the stream, and
// transitions to Disconnected.
func (s *Session) Disconnect() error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	s.setStatus(Disconnecting)
	_ = s.xsess.Encode(s.ctx, BuildUnavailablePresence(nil))
	_ = s.xsess.Close()
	s.cancel()
	s.hooks.OnDisconnect(s.account.JID)
	s.setStatus(Disconnected)
	s.hooks.OnShutdown()
	return nil
}

// readLoop is the one place actual concurrency exists: mellium's
// TokenReader blocks on network I/O, so it runs on its own goroutine
// and feeds decoded Stanza values to stanzaCh, which Run drains
// synchronously -- preserving run-to-completion dispatch and no
// concurrent model mutation on the Go side.
func (s *Session) readLoop() {
	tr := s.xsess.TokenReader()
	defer func() {
		if c, ok := tr.(io.Closer); ok {
			_ = c.Close()
		}
	}()
	for {
		tok, err := tr.Token()
		if err != nil {
			s.readErrCh <- err
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "message", "presence", "iq":
			st := decodeStanza(tr, start)
			s.stanzaCh <- st
		}
	}
}

// Run drives the cooperative event pump: it blocks, dispatching each
// inbound stanza to completion before processing the next, and firing
// chat-state gone-timeouts on a tick. It returns when the session
// disconnects, either via Disconnect or a transport error.
func (s *Session) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	lastPing := time.Now()
	for {
		select {
		case st, ok := <-s.stanzaCh:
			if !ok {
				return
			}
			s.disp.Dispatch(s, st)
		case err := <-s.readErrCh:
			wasConnected := s.Status() == Connected
			s.setStatus(Disconnected)
			if wasConnected {
				// Clear roster/MUC/chat-session state so a reconnect starts
				// clean; the capability cache is process-wide and survives.
				s.roster.Reset()
				s.muc.Reset()
				s.chats.Reset()
				s.callbacks.LostConnection(s.account.JID, err)
			}
			return
		case now := <-ticker.C:
			for _, peer := range s.chats.Expired(now) {
				if s.chats.SupportsChatStates(peer) {
					if to, err := ParseJID(peer); err == nil {
						_ = s.xsess.Encode(s.ctx, BuildChatStateMessage(to, StateGone))
					}
				}
			}
			if s.opts.AutopingSeconds > 0 && now.Sub(lastPing) >= time.Duration(s.opts.AutopingSeconds)*time.Second {
				lastPing = now
				_ = s.xsess.Encode(s.ctx, BuildPingRequest())
			}
			s.evaluateAutoaway(now)
		}
	}
}
