package veil

import (
	"encoding/hex"
	"testing"
)

func TestHashStrategy_Deterministic(t *testing.T) {
	s := HashStrategy()

	h1 := s.Mask("alice@example.com", nil)
	h2 := s.Mask("alice@example.com", nil)

	if h1 != h2 {
		t.Errorf("equal inputs produced different fingerprints: %v vs %v", h1, h2)
	}
}

func TestHashStrategy_DistinctInputs(t *testing.T) {
	s := HashStrategy()

	h1 := s.Mask("alice@example.com", nil)
	h2 := s.Mask("bob@example.com", nil)

	if h1 == h2 {
		t.Errorf("distinct inputs produced the same fingerprint: %v", h1)
	}
}

func TestHashStrategy_Format(t *testing.T) {
	s := HashStrategy()

	fp, ok := s.Mask("payload", nil).(string)
	if !ok {
		t.Fatalf("Mask() returned non-string")
	}
	if len(fp) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(fp))
	}
	if _, err := hex.DecodeString(fp); err != nil {
		t.Errorf("fingerprint %q is not hex: %v", fp, err)
	}
}

func TestHashStrategy_NeverEchoesInput(t *testing.T) {
	s := HashStrategy()

	input := "payload"
	if fp := s.Mask(input, nil); fp == input {
		t.Error("fingerprint equals input")
	}
}

func TestHashStrategy_PassesNonStrings(t *testing.T) {
	s := HashStrategy()

	if result := s.Mask(42, nil); result != 42 {
		t.Errorf("Mask(42) = %v, want pass-through", result)
	}
}
