package storage

import (
	"context"
	"testing"

	"github.com/louisbranch/morphsheet/internal/character"
)

func TestSnapshotOf(t *testing.T) {
	c, err := character.New()
	if err != nil {
		t.Fatalf("new character: %v", err)
	}
	c.Name = "Kimberly Hart"
	c.Level = 4

	snap, err := SnapshotOf(c)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.ID != c.ID || snap.Name != "Kimberly Hart" || snap.Level != 4 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Data) == 0 {
		t.Fatal("empty payload")
	}

	decoded, err := character.Decode(snap.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Name != c.Name {
		t.Fatalf("payload lost the name: %q", decoded.Name)
	}
}

func TestLoadCharacterOrDefaultMissing(t *testing.T) {
	store := newMemStore()
	def, err := character.New()
	if err != nil {
		t.Fatalf("new character: %v", err)
	}

	got, degraded := LoadCharacterOrDefault(context.Background(), store, "nope", def)
	if got != def {
		t.Fatal("missing snapshot should return the default")
	}
	if degraded {
		t.Fatal("a missing snapshot is not a degraded load")
	}
}

func TestLoadCharacterOrDefaultCorrupt(t *testing.T) {
	store := newMemStore()
	store.byID["draft"] = Snapshot{ID: "draft", Data: []byte("not json")}
	def, err := character.New()
	if err != nil {
		t.Fatalf("new character: %v", err)
	}

	got, degraded := LoadCharacterOrDefault(context.Background(), store, "draft", def)
	if got != def {
		t.Fatal("corrupt snapshot should return the default")
	}
	if !degraded {
		t.Fatal("corrupt snapshot should be flagged")
	}
}

func TestLoadCharacterOrDefaultRoundTrip(t *testing.T) {
	store := newMemStore()
	saved, err := character.New()
	if err != nil {
		t.Fatalf("new character: %v", err)
	}
	saved.Name = "Zack Taylor"
	snap, err := SnapshotOf(saved)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	store.byID[saved.ID] = snap

	def, err := character.New()
	if err != nil {
		t.Fatalf("new character: %v", err)
	}
	got, degraded := LoadCharacterOrDefault(context.Background(), store, saved.ID, def)
	if degraded {
		t.Fatal("healthy load flagged as degraded")
	}
	if got.Name != "Zack Taylor" {
		t.Fatalf("loaded %q", got.Name)
	}
}
