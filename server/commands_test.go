package server

import "testing"

func TestParseNamePattern(t *testing.T) {
	tests := []struct {
		pattern string
		needle  string
		mode    nameMatching
	}{
		{"joe", "joe", matchEquals},
		{"joe%", "joe", matchStartsWith},
		{"%joe", "joe", matchEndsWith},
		{"%joe%", "joe", matchContains},
	}
	for _, tt := range tests {
		needle, mode := parseNamePattern(tt.pattern)
		if needle != tt.needle || mode != tt.mode {
			t.Errorf("parseNamePattern(%q) = %q, %v, want %q, %v", tt.pattern, needle, mode, tt.needle, tt.mode)
		}
	}
}

func TestNameMatching(t *testing.T) {
	tests := []struct {
		mode   nameMatching
		name   string
		needle string
		want   bool
	}{
		{matchEquals, "joe", "joe", true},
		{matchEquals, "joey", "joe", false},
		{matchStartsWith, "joey", "joe", true},
		{matchStartsWith, "bigjoe", "joe", false},
		{matchEndsWith, "bigjoe", "joe", true},
		{matchEndsWith, "joey", "joe", false},
		{matchContains, "a joe y", "joe", true},
		{matchContains, "jane", "joe", false},
	}
	for _, tt := range tests {
		if got := tt.mode.matches(tt.name, tt.needle); got != tt.want {
			t.Errorf("%v.matches(%q, %q) = %v, want %v", tt.mode, tt.name, tt.needle, got, tt.want)
		}
	}
}

func TestRing(t *testing.T) {
	r := newRing[int](3)
	if r.len() != 0 {
		t.Fatalf("empty ring len = %d", r.len())
	}
	if r.get(0) != nil {
		t.Fatal("get on empty ring must be nil")
	}

	r.push(1)
	r.push(2)
	r.push(3)
	r.push(4)

	if r.len() != 3 {
		t.Fatalf("ring len = %d, want 3", r.len())
	}
	if got := *r.get(0); got != 4 {
		t.Errorf("newest = %d, want 4", got)
	}
	if got := *r.get(2); got != 2 {
		t.Errorf("oldest = %d, want 2", got)
	}
	if r.get(3) != nil {
		t.Error("overwritten element must be nil")
	}

	r.clear()
	if r.len() != 0 || r.get(0) != nil {
		t.Error("clear must empty the ring")
	}
}
