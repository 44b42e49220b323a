package session

import "testing"

func TestParsePresenceFallsBackToOnline(t *testing.T) {
	if got := ParsePresence("somethingweird"); got != Online {
		t.Fatalf("expected unrecognized show to fall back to Online, got %v", got)
	}
	if got := ParsePresence(""); got != Online {
		t.Fatalf("expected empty show to be Online, got %v", got)
	}
	if got := ParsePresence("dnd"); got != Dnd {
		t.Fatalf("expected dnd to parse as Dnd, got %v", got)
	}
}

func TestValidPriorityRange(t *testing.T) {
	cases := []struct {
		p    int
		want bool
	}{
		{-128, true},
		{127, true},
		{-129, false},
		{128, false},
		{0, true},
	}
	for _, c := range cases {
		if got := validPriority(c.p); got != c.want {
			t.Fatalf("validPriority(%d) = %v, want %v", c.p, got, c.want)
		}
	}
}
