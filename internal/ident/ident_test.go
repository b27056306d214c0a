package ident

import "testing"

func TestNewUnique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if id.IsZero() {
			t.Fatal("New returned an empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id after %d draws: %s", i, id)
		}
		seen[id] = true
	}
}

func TestIsZero(t *testing.T) {
	var id ID
	if !id.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if ID("x").IsZero() {
		t.Error("non-empty id should not report IsZero")
	}
}
