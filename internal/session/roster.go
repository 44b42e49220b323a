package session

import (
	"sort"
	"strings"
	"sync"
)

// Resource is a single connected client of a Contact's bare JID.
type Resource struct {
	Name     string
	Presence SelfPresence
	Status   string
	Priority int8
}

// Contact is one entry in the roster: a bare JID with its subscription
// state, groups, and the set of resources currently known to be online
// under it.
type Contact struct {
	JID          string // bare JID, canonical key
	Name         string
	Subscription Subscription
	PendingOut   bool // true while a subscription request is outstanding
	Groups       []string
	Resources    map[string]*Resource
}

// derivedPresence returns the Contact's effective presence: the
// highest-priority available resource, or Offline if none. Ties are
// broken by resource name so the result is deterministic.
func (c *Contact) derivedPresence() (SelfPresence, string, string) {
	if len(c.Resources) == 0 {
		return Offline, "", ""
	}
	var names []string
	for n := range c.Resources {
		names = append(names, n)
	}
	sort.Strings(names)

	best := names[0]
	for _, n := range names[1:] {
		if c.Resources[n].Priority > c.Resources[best].Priority {
			best = n
		}
	}
	r := c.Resources[best]
	return r.Presence, r.Status, best
}

// Roster is the local model of the user's contact list, built from the
// initial roster IQ result and kept current by presence and roster-push
// stanzas. Handlers mutate it from the event pump, and command-surface
// calls (Subscribe, AllowSubscription) mutate it from the caller's
// goroutine; the mutex serializes those accesses and reads such as a UI
// rendering a snapshot while the pump is mid-tick.
type Roster struct {
	mu       sync.RWMutex
	contacts map[string]*Contact
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{contacts: make(map[string]*Contact)}
}

// Replace discards the current contact set and installs items fetched
// from a roster IQ result or a full roster push, matching the "roster
// result replaces wholesale" semantics of RFC 6121 §2.1.
func (r *Roster) Replace(items []Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = make(map[string]*Contact, len(items))
	for i := range items {
		it := items[i]
		if it.Resources == nil {
			it.Resources = make(map[string]*Resource)
		}
		r.contacts[it.JID] = &it
	}
}

// Upsert inserts or updates a single contact (from an incremental
// roster push). A subscription of "remove" deletes the contact instead,
// per RFC 6121 §2.5.
func (r *Roster) Upsert(jidStr, name string, sub Subscription, groups []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub == "remove" {
		delete(r.contacts, jidStr)
		return
	}
	c, ok := r.contacts[jidStr]
	if !ok {
		c = &Contact{JID: jidStr, Resources: make(map[string]*Resource)}
		r.contacts[jidStr] = c
	}
	c.Name = name
	c.Subscription = sub
	c.Groups = groups
}

// SetSubscription updates just the subscription state of an existing
// contact, inserting a bare entry if the contact was not yet known (the
// roster can lag a presence subscription ack).
func (r *Roster) SetSubscription(jidStr string, sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[jidStr]
	if !ok {
		c = &Contact{JID: jidStr, Resources: make(map[string]*Resource)}
		r.contacts[jidStr] = c
	}
	c.Subscription = sub
}

// SetPendingOut marks jidStr as having an outstanding outbound
// subscription request.
func (r *Roster) SetPendingOut(jidStr string, pending bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[jidStr]
	if !ok {
		c = &Contact{JID: jidStr, Resources: make(map[string]*Resource)}
		r.contacts[jidStr] = c
	}
	c.PendingOut = pending
}

// ClearPending clears the PendingOut flag, called once the subscription
// ack (subscribed/unsubscribed) arrives.
func (r *Roster) ClearPending(jidStr string) {
	r.SetPendingOut(jidStr, false)
}

// HasPendingOutAnywhere reports whether any contact (not a particular
// JID) has an outstanding outbound subscription request.
func (r *Roster) HasPendingOutAnywhere() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.contacts {
		if c.PendingOut {
			return true
		}
	}
	return false
}

// AddResource records a resource becoming available under jidStr. The
// roster is authoritative (spec §4.3): presence from a JID the roster
// does not already know is ignored rather than fabricating an entry,
// so this is a no-op unless jidStr is an existing contact.
func (r *Roster) AddResource(jidStr, resource string, presence SelfPresence, status string, priority int8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[jidStr]
	if !ok {
		return
	}
	if c.Resources == nil {
		c.Resources = make(map[string]*Resource)
	}
	c.Resources[resource] = &Resource{Name: resource, Presence: presence, Status: status, Priority: priority}
}

// RemoveResource drops a resource on receipt of unavailable presence.
func (r *Roster) RemoveResource(jidStr, resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[jidStr]
	if !ok {
		return
	}
	delete(c.Resources, resource)
}

// ResourceFor returns the named resource of jidStr, if present.
func (r *Roster) ResourceFor(jidStr, resource string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[jidStr]
	if !ok {
		return Resource{}, false
	}
	res, ok := c.Resources[resource]
	if !ok {
		return Resource{}, false
	}
	return *res, true
}

// Get returns a copy of the contact for jidStr.
func (r *Roster) Get(jidStr string) (Contact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[jidStr]
	if !ok {
		return Contact{}, false
	}
	return *c, true
}

// ContactsByPresence returns contacts whose derived presence equals p,
// sorted by JID for deterministic display order.
func (r *Roster) ContactsByPresence(p SelfPresence) []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Contact
	for _, c := range r.contacts {
		pr, _, _ := c.derivedPresence()
		if pr == p {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}

// ContactsByGroup returns contacts belonging to group, sorted by JID.
func (r *Roster) ContactsByGroup(group string) []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Contact
	for _, c := range r.contacts {
		for _, g := range c.Groups {
			if g == group {
				out = append(out, *c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}

// FindByPrefix returns contacts whose JID or Name starts with prefix
// (case-insensitive), sorted by JID, for command-line tab completion.
func (r *Roster) FindByPrefix(prefix string) []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix = strings.ToLower(prefix)
	var out []Contact
	for _, c := range r.contacts {
		if strings.HasPrefix(strings.ToLower(c.JID), prefix) || strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}

// Reset discards every contact, called when the connection drops
// unexpectedly so a reconnect starts from a clean model (spec §4.7).
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = make(map[string]*Contact)
}

// All returns every contact, sorted by JID.
func (r *Roster) All() []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}
