package session

import "testing"

func TestVerHashStableUnderPermutation(t *testing.T) {
	identities := []CapIdentity{
		{Category: "client", Type: "console", Name: "Profanity"},
	}
	features := []string{nsDiscoInfo, nsPing, nsChatStates}
	reversed := []string{nsChatStates, nsPing, nsDiscoInfo}

	h1 := VerHash(identities, features, nil)
	h2 := VerHash(identities, reversed, nil)

	if h1 != h2 {
		t.Fatalf("expected permutation-stable hash, got %q and %q", h1, h2)
	}
}

func TestVerHashDiffersOnFeatureChange(t *testing.T) {
	identities := []CapIdentity{{Category: "client", Type: "console", Name: "Profanity"}}
	h1 := VerHash(identities, []string{nsDiscoInfo}, nil)
	h2 := VerHash(identities, []string{nsDiscoInfo, nsPing}, nil)
	if h1 == h2 {
		t.Fatalf("expected different hashes for different feature sets")
	}
}

func TestCapabilityCacheAddContainsGet(t *testing.T) {
	c := NewCapabilityCache()
	hash := "abc123"
	if c.Contains(hash) {
		t.Fatalf("expected empty cache to not contain %q", hash)
	}
	ident := CapIdentity{Category: "client", Type: "console", Name: "Profanity"}
	c.Add(hash, ident, []string{nsPing}, nil)

	if !c.Contains(hash) {
		t.Fatalf("expected cache to contain %q after Add", hash)
	}
	entry, ok := c.Get(hash)
	if !ok {
		t.Fatalf("expected Get to find %q", hash)
	}
	if entry.Identity != ident {
		t.Fatalf("expected identity %+v, got %+v", ident, entry.Identity)
	}
}
