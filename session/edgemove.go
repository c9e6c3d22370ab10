package session

import "log"

// EdgeMove records a pending cross-scene repositioning request. It is set by
// a scene-boundary trigger before a transition and consumed exactly once
// after the next load; it is never persisted.
type EdgeMove struct {
	pending    bool
	spawnPoint string
}

// Prepare records a pending request, overwriting any previous one.
func (e *EdgeMove) Prepare(spawnPoint string) {
	e.pending = true
	e.spawnPoint = spawnPoint
}

// Pending reports whether a request is waiting to be consumed.
func (e *EdgeMove) Pending() bool {
	return e.pending
}

// SpawnPoint returns the pending target spawn point id.
func (e *EdgeMove) SpawnPoint() string {
	return e.spawnPoint
}

// Consume applies the pending request, if any, by resolving the spawn point
// and teleporting the player there. The pending flag is cleared even when
// the spawn point cannot be resolved; a missing spawn point is not retried.
// It reports whether the player was actually moved.
func (e *EdgeMove) Consume(resolve func(name string) (x, y float64, ok bool), p Player) bool {
	if !e.pending {
		return false
	}
	name := e.spawnPoint
	e.pending = false
	e.spawnPoint = ""
	if p == nil || resolve == nil {
		return false
	}
	x, y, ok := resolve(name)
	if !ok {
		log.Printf("session: spawn point %q not found, skipping edge move", name)
		return false
	}
	p.Teleport(x, y)
	return true
}

// Reset forcibly clears any pending state. Used when gameplay state is
// wiped, e.g. on returning to the main menu.
func (e *EdgeMove) Reset() {
	e.pending = false
	e.spawnPoint = ""
}
