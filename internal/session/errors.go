package session

import "errors"

// Local state errors returned synchronously from command-surface calls.
// The UI is expected to display these; the session never panics on them.
var (
	// ErrNotConnected is returned by any stanza-sending command-surface call
	// made while the session is not in the Connected state.
	ErrNotConnected = errors.New("session: not connected")

	// ErrNotInRoom is returned when a MUC operation targets a room the
	// session has not joined.
	ErrNotInRoom = errors.New("session: not in room")

	// ErrNoSuchAccount is returned when an operation names an account the
	// session has no record of.
	ErrNoSuchAccount = errors.New("session: no such account")

	// ErrValueOutOfRange is returned when a numeric argument of a
	// command-surface call falls outside its allowed range (SetAutoaway's
	// idle minutes). The config.Options setters report their own range
	// errors.
	ErrValueOutOfRange = errors.New("session: value out of range")

	// ErrInvalidPreferenceValue is returned when a preference is set to a
	// value outside its enumerated set.
	ErrInvalidPreferenceValue = errors.New("session: invalid preference value")

	// ErrAlreadyConnected is returned by Connect when the session is neither
	// Disconnected nor Started.
	ErrAlreadyConnected = errors.New("session: already connected or connecting")

	// ErrInvalidJID is returned when a caller-supplied JID string fails to
	// parse.
	ErrInvalidJID = errors.New("session: invalid JID")
)
