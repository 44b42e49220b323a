package session

import (
	"strings"

	"mellium.im/xmpp/jid"
)

// Stanza is the generalized inbound stanza view handlers dispatch on. It
// carries the envelope fields common to message/presence/iq plus enough
// about the first payload child to let the registry pattern-match
// without every handler re-parsing the envelope. Raw carries the full
// decoded XML so a matched handler can further unmarshal its own
// payload shape.
type Stanza struct {
	Name      string // "message", "presence", or "iq"
	Type      string // type attribute, "" if absent
	ID        string
	From      jid.JID
	To        jid.JID
	ChildName string // local name of the first payload child, if any
	ChildNS   string // namespace of the first payload child, if any
	HasBody   bool   // message stanzas only: a <body> child is present
	Raw       []byte
}

// HandlerFunc processes a matched inbound stanza. It runs to completion
// before the pump processes anything else, per spec §5.
type HandlerFunc func(*Session, Stanza)

// handlerKey is the registration pattern a handler is matched against.
// Any field left as its zero value is a wildcard for that dimension.
type handlerKey struct {
	name    string // stanza element name; never a wildcard
	typ     string // type attribute; "" means wildcard
	ns      string // child namespace; "" means wildcard
	idPrefix string // id prefix to require; "" means wildcard
}

type registration struct {
	key     handlerKey
	handler HandlerFunc
}

// Dispatcher is the handler registry described in spec §4.6, generalized
// from mellium.im/xmpp/mux.ServeMux's tiered (name, type, namespace)
// matching to also allow an id-prefix dimension, since spec.md ties some
// handlers (disco results, caps lookups) to request IDs we generated.
type Dispatcher struct {
	regs []registration
}

// NewDispatcher creates an empty registry.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Handle registers fn for stanzas matching name (required), and
// optionally type, ns, and idPrefix (pass "" for any of these to leave
// them as wildcards).
func (d *Dispatcher) Handle(name, typ, ns, idPrefix string, fn HandlerFunc) {
	d.regs = append(d.regs, registration{
		key:     handlerKey{name: name, typ: typ, ns: ns, idPrefix: idPrefix},
		handler: fn,
	})
}

// specificity scores how precisely reg matches st: higher wins. A
// registration that does not match at all scores -1. The ordering
// realizes spec's tie-break: exact (type, ns, id) beats (type, ns) beats
// (name) alone.
func specificity(reg registration, st Stanza) int {
	k := reg.key
	if k.name != st.Name {
		return -1
	}
	score := 1
	if k.typ != "" {
		if k.typ != st.Type {
			return -1
		}
		score += 4
	}
	if k.ns != "" {
		if k.ns != st.ChildNS {
			return -1
		}
		score += 2
	}
	if k.idPrefix != "" {
		if !strings.HasPrefix(st.ID, k.idPrefix) {
			return -1
		}
		score += 8
	}
	return score
}

// Dispatch finds the best-matching registered handler for st and runs
// it. If more than one registration ties on specificity, the one
// registered first wins, so builtin handlers should be registered
// before any extension-supplied ones that might overlap.
func (d *Dispatcher) Dispatch(sess *Session, st Stanza) bool {
	best := -1
	bestIdx := -1
	for i, reg := range d.regs {
		sc := specificity(reg, st)
		if sc > best {
			best = sc
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return false
	}
	d.regs[bestIdx].handler(sess, st)
	return true
}
