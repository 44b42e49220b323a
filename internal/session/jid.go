package session

import (
	"strings"

	"mellium.im/xmpp/jid"
)

// ParseJID parses s into a JID. It never panics on malformed or
// unqualified (no "@") input; an unqualified JID (a bare domain, such as
// a MUC service or the server itself) parses successfully and callers
// must not assume a localpart is present.
func ParseJID(s string) (jid.JID, error) {
	j, err := jid.Parse(strings.TrimSpace(s))
	if err != nil {
		return jid.JID{}, ErrInvalidJID
	}
	return j, nil
}

// bareString returns the bare-JID string form, the canonical key used by
// the Roster, MUC, and ChatState models.
func bareString(j jid.JID) string {
	return j.Bare().String()
}

// isUnqualified reports whether j has no localpart, meaning it names a
// server or service rather than a user account. Handlers treat presence
// and messages from unqualified senders as not belonging to any Contact.
func isUnqualified(j jid.JID) bool {
	return j.Localpart() == ""
}
