package session

import "testing"

func TestEdgeMoveConsumeOnce(t *testing.T) {
	var e EdgeMove
	p := newFakePlayer(0, 0)
	resolve := func(name string) (float64, float64, bool) {
		if name == "SP_East" {
			return 100, 200, true
		}
		return 0, 0, false
	}

	e.Prepare("SP_East")
	if !e.Pending() {
		t.Fatal("expected a pending edge move after Prepare")
	}

	if !e.Consume(resolve, p) {
		t.Fatal("expected the edge move to apply")
	}
	if p.x != 100 || p.y != 200 {
		t.Fatalf("expected player at 100,200, got %v,%v", p.x, p.y)
	}
	if e.Pending() {
		t.Fatal("edge move must clear after consumption")
	}

	if e.Consume(resolve, p) {
		t.Fatal("second consume must be a no-op")
	}
	if len(p.teleports) != 1 {
		t.Fatalf("expected exactly one teleport, got %d", len(p.teleports))
	}
}

func TestEdgeMoveMissingSpawnPoint(t *testing.T) {
	var e EdgeMove
	p := newFakePlayer(5, 5)
	resolve := func(string) (float64, float64, bool) { return 0, 0, false }

	e.Prepare("SP_Nowhere")
	if e.Consume(resolve, p) {
		t.Fatal("unresolved spawn point must not move the player")
	}
	if e.Pending() {
		t.Fatal("pending must clear even when the spawn point is missing")
	}
	if len(p.teleports) != 0 {
		t.Fatalf("player must not move, got %d teleports", len(p.teleports))
	}
}

func TestEdgeMoveOverwriteAndReset(t *testing.T) {
	var e EdgeMove
	e.Prepare("SP_A")
	e.Prepare("SP_B")
	if e.SpawnPoint() != "SP_B" {
		t.Fatalf("later prepare must overwrite, got %q", e.SpawnPoint())
	}

	e.Reset()
	if e.Pending() || e.SpawnPoint() != "" {
		t.Fatal("reset must clear all pending state")
	}
	if e.Consume(func(string) (float64, float64, bool) { return 1, 1, true }, newFakePlayer(0, 0)) {
		t.Fatal("nothing to consume after reset")
	}
}
