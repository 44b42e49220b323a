package session

import (
	"crypto/sha1" // #nosec -- XEP-0115 mandates SHA-1 for the legacy "ver" hash
	"encoding/base64"
	"sort"
	"strings"
	"sync"
)

// CapIdentity is a disco#info identity (category/type/name/lang).
type CapIdentity struct {
	Category string
	Type     string
	Name     string
	Lang     string
}

// string renders the identity the way XEP-0115 §5.1 step 2 requires:
// "category/type/lang/name".
func (i CapIdentity) string() string {
	return i.Category + "/" + i.Type + "/" + i.Lang + "/" + i.Name
}

// FormField is a single field of a data-form extension included in a
// disco#info response (XEP-0128), used by the ver-hash computation's
// extended-form step.
type FormField struct {
	Var    string
	Values []string
}

// Form is an extension data form carrying a FORM_TYPE field plus other
// fields, per XEP-0115 §5.1 step 3.
type Form struct {
	FormType string
	Fields   []FormField
}

// CapabilityEntry is the cached feature set advertised by an entity
// under a single capability hash.
type CapabilityEntry struct {
	Identity CapIdentity
	Features []string
	Forms    []Form
}

// CapabilityCache is a process-wide mapping from XEP-0115 verification
// hash to the identity/feature set it represents. It persists across
// sessions (see spec §3 "Lifecycle ownership") to amortize discovery;
// callers share one instance for the process lifetime.
type CapabilityCache struct {
	mu      sync.RWMutex
	entries map[string]CapabilityEntry
}

// NewCapabilityCache creates an empty cache.
func NewCapabilityCache() *CapabilityCache {
	return &CapabilityCache{entries: make(map[string]CapabilityEntry)}
}

// Contains reports whether hash has a cached entry.
func (c *CapabilityCache) Contains(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[hash]
	return ok
}

// Add stores (or replaces) the entry for hash.
func (c *CapabilityCache) Add(hash string, identity CapIdentity, features []string, forms []Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = CapabilityEntry{Identity: identity, Features: features, Forms: forms}
}

// Get returns the entry for hash and whether it was present.
func (c *CapabilityCache) Get(hash string) (CapabilityEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[hash]
	return e, ok
}

// VerHash computes the XEP-0115 §5.1 verification string for a set of
// identities, features, and extension forms. It is stable under any
// permutation of its inputs: identities, features, forms (by
// FormType), form fields (by Var) and field values are all sorted here.
func VerHash(identities []CapIdentity, features []string, forms []Form) string {
	var b strings.Builder

	identStrs := make([]string, len(identities))
	for i, id := range identities {
		identStrs[i] = id.string()
	}
	sort.Strings(identStrs)
	for _, s := range identStrs {
		b.WriteString(s)
		b.WriteByte('<')
	}

	feats := append([]string(nil), features...)
	sort.Strings(feats)
	for _, f := range feats {
		b.WriteString(f)
		b.WriteByte('<')
	}

	sortedForms := append([]Form(nil), forms...)
	sort.Slice(sortedForms, func(i, j int) bool { return sortedForms[i].FormType < sortedForms[j].FormType })
	for _, f := range sortedForms {
		b.WriteString(f.FormType)
		b.WriteByte('<')

		fields := append([]FormField(nil), f.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Var < fields[j].Var })
		for _, field := range fields {
			b.WriteString(field.Var)
			b.WriteByte('<')
			values := append([]string(nil), field.Values...)
			sort.Strings(values)
			for _, v := range values {
				b.WriteString(v)
				b.WriteByte('<')
			}
		}
	}

	sum := sha1.Sum([]byte(b.String())) // #nosec -- ver hash, not a security boundary
	return base64.StdEncoding.EncodeToString(sum[:])
}
