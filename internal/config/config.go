// Package config holds the in-memory preference set the session state
// machine is configured through. Loading and saving these values to a
// file is the terminal client's job, not this package's: Options is the
// knob panel the session actually reads, analogous to Profanity's
// preferences.h enumerated options but without the TOML-backed
// persistence layer.
package config

import "fmt"

// AutoawayMode selects how idle time maps to an automatic away
// transition.
type AutoawayMode string

const (
	AutoawayOff  AutoawayMode = "off"
	AutoawayIdle AutoawayMode = "idle"
	AutoawayAway AutoawayMode = "away"
	AutoawayXa   AutoawayMode = "xa"
)

// Options is the full set of session-relevant preferences. The zero
// value disables autoping and chat states; DefaultOptions gives the
// usual starting point: autoping at Profanity's historical 120s
// interval, chat states on, no configured priority (omitted on the
// wire), no autoaway.
type Options struct {
	Resource  string
	AltDomain string

	AutopingSeconds   int
	ReconnectSeconds  int
	GoneMinutes       int
	ChatStatesEnabled bool

	AutoawayMode    AutoawayMode
	AutoawayMinutes int
	AutoawayMessage string

	// PriorityByPresenceSet is true once any SetPriority call has been
	// made; until then priority is omitted from outbound presence
	// entirely (see stanza.go's BuildPresence prio *int8 contract).
	PriorityByPresenceSet bool
	priorities            map[int]int8 // keyed by SelfPresence, set via SetPriority
}

// DefaultOptions returns the preference set a fresh account starts
// with, matching Profanity's documented defaults.
func DefaultOptions() Options {
	return Options{
		AutopingSeconds:   120,
		ReconnectSeconds:  30,
		GoneMinutes:       10,
		ChatStatesEnabled: true,
		AutoawayMode:      AutoawayOff,
		priorities:        make(map[int]int8),
	}
}

// SetPriority records the priority to send while in the presence
// identified by presenceKey, validating the XMPP priority range
// [-128, 127]. presenceKey is the int value of the caller's
// session.SelfPresence constant; config does not import the session
// package to avoid a dependency cycle (session already imports
// config), so it treats the key opaquely.
func (o *Options) SetPriority(presenceKey int, value int) error {
	if value < -128 || value > 127 {
		return fmt.Errorf("config: priority %d out of range [-128, 127]", value)
	}
	if o.priorities == nil {
		o.priorities = make(map[int]int8)
	}
	o.priorities[presenceKey] = int8(value)
	o.PriorityByPresenceSet = true
	return nil
}

// PriorityFor returns the configured priority for presenceKey, or 0 if
// none was set for that specific presence.
func (o *Options) PriorityFor(presenceKey int) int8 {
	if o.priorities == nil {
		return 0
	}
	return o.priorities[presenceKey]
}

// SetAutoawayMode validates and sets the autoaway mode.
func (o *Options) SetAutoawayMode(mode string) error {
	switch AutoawayMode(mode) {
	case AutoawayOff, AutoawayIdle, AutoawayAway, AutoawayXa:
		o.AutoawayMode = AutoawayMode(mode)
		return nil
	default:
		return fmt.Errorf("config: invalid autoaway mode %q", mode)
	}
}

// SetAutopingSeconds validates and sets the keepalive ping interval.
// 0 disables autoping.
func (o *Options) SetAutopingSeconds(n int) error {
	if n < 0 || n > 86400 {
		return fmt.Errorf("config: autoping seconds %d out of range", n)
	}
	o.AutopingSeconds = n
	return nil
}
