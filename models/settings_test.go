package models

import (
	"testing"
	"time"
)

func TestDecodeBranches(t *testing.T) {
	if got := DecodeBranches(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := DecodeBranches([]byte("not json")); got != nil {
		t.Fatalf("expected nil for invalid json, got %v", got)
	}
	got := DecodeBranches([]byte(`["SP01"," RJ02 ",""]`))
	if len(got) != 2 || got[0] != "SP01" || got[1] != "RJ02" {
		t.Fatalf("unexpected branches %v", got)
	}
}

func TestEncodeBranches_RoundTrip(t *testing.T) {
	raw := EncodeBranches([]string{"SP01", "RJ02"})
	got := DecodeBranches(raw)
	if len(got) != 2 || got[0] != "SP01" || got[1] != "RJ02" {
		t.Fatalf("round trip lost branches: %v", got)
	}
	if string(EncodeBranches(nil)) != "[]" {
		t.Fatalf("nil branches must encode as empty list, got %s", EncodeBranches(nil))
	}
}

func TestSettingsDefaults(t *testing.T) {
	s := ReplenishmentSettings{SyncIntervalMinutes: 0}
	if s.SyncInterval() != time.Minute {
		t.Fatalf("interval must clamp to 1 minute, got %s", s.SyncInterval())
	}
	if !s.IsEnabled() {
		t.Fatal("nil enabled flag must default to enabled")
	}
	if s.WantsMockGateway() {
		t.Fatal("nil mock flag must default to real gateway")
	}
}

func TestPriorityForAbcClass(t *testing.T) {
	cases := map[string]int{"A": 1, "B": 2, "C": 3, "": 3, "X": 3}
	for class, want := range cases {
		if got := PriorityForAbcClass(class); got != want {
			t.Fatalf("class %q: expected %d, got %d", class, want, got)
		}
	}
}
