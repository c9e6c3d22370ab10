package session

import "log"

// Category identifies one of the per-session singleton gameplay objects.
type Category int

const (
	CategoryPlayer Category = iota
	CategoryInventory
	CategoryPauseMenu
	CategoryHotbar
	CategoryItemDB
	CategoryMoney
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryInventory:
		return "inventory"
	case CategoryPauseMenu:
		return "pause_menu"
	case CategoryHotbar:
		return "hotbar"
	case CategoryItemDB:
		return "item_db"
	case CategoryMoney:
		return "money"
	}
	return "unknown"
}

// Entity is the ownership handle for a spawned singleton. The registry
// exclusively owns handles; Dispose releases whatever the object holds
// (physics bodies, UI, ...).
type Entity interface {
	Dispose()
}

// Player is what the session core needs from the player object.
type Player interface {
	Entity
	Position() (x, y float64)
	// Teleport repositions the player with physics simulation bracketed off
	// around the move, so the solver never sees the jump.
	Teleport(x, y float64)
	Health() (cur, max int)
	SetHealth(cur int)
	SetCheckpoint(x, y float64)
	SetInputEnabled(enabled bool)
	// ApplySaveData applies the player-specific portion of a save record
	// (health and the like).
	ApplySaveData(rec *SaveRecord)
}

// Wallet is the currency manager's mutable face, needed for the death
// penalty. Its snapshot stays opaque.
type Wallet interface {
	Balance() int
	SetBalance(amount int)
}

// Factory builds one singleton instance. A nil factory marks the category
// as unconfigured; spawning it is then a silent no-op.
type Factory func() Entity

// PlayerFactory builds the player at a position.
type PlayerFactory func(x, y float64) Player

// Registry creates, tracks, and tears down the singleton gameplay objects.
type Registry struct {
	factories     map[Category]Factory
	playerFactory PlayerFactory
	cameraBind    func(Player)

	live   map[Category]Entity
	player Player
}

func NewRegistry() *Registry {
	return &Registry{
		factories: map[Category]Factory{},
		live:      map[Category]Entity{},
	}
}

// RegisterFactory installs the factory for a category. Registering nil
// leaves the category unconfigured.
func (r *Registry) RegisterFactory(cat Category, f Factory) {
	if f == nil {
		return
	}
	r.factories[cat] = f
}

func (r *Registry) RegisterPlayerFactory(f PlayerFactory) {
	r.playerFactory = f
}

// SetCameraBind installs the hook invoked after every player spawn so the
// camera can re-acquire its follow target.
func (r *Registry) SetCameraBind(bind func(Player)) {
	r.cameraBind = bind
}

// Ensure instantiates the category if and only if no live instance exists.
// It returns the live handle either way. With no factory configured it
// returns nil without complaint; the feature is optional in that
// configuration.
func (r *Registry) Ensure(cat Category) Entity {
	if e, ok := r.live[cat]; ok {
		return e
	}
	f, ok := r.factories[cat]
	if !ok {
		return nil
	}
	e := f()
	if e == nil {
		return nil
	}
	r.live[cat] = e
	return e
}

// SpawnPlayer always destroys any existing player first; the player is
// recreated rather than reused because a new save may put it in a different
// scene at a different position. The new player's checkpoint is initialized
// to the spawn position and the camera is rebound.
func (r *Registry) SpawnPlayer(x, y float64) Player {
	if r.playerFactory == nil {
		return nil
	}
	if r.player != nil {
		r.player.Dispose()
		r.player = nil
		delete(r.live, CategoryPlayer)
	}
	p := r.playerFactory(x, y)
	if p == nil {
		return nil
	}
	p.SetCheckpoint(x, y)
	r.player = p
	r.live[CategoryPlayer] = p
	if r.cameraBind != nil {
		r.cameraBind(p)
	}
	return p
}

// Player returns the live player handle, if any.
func (r *Registry) Player() Player {
	return r.player
}

// Get returns the live handle for a category, if any.
func (r *Registry) Get(cat Category) Entity {
	return r.live[cat]
}

// Provider returns the category's live instance as a SnapshotProvider when
// it implements one.
func (r *Registry) Provider(cat Category) SnapshotProvider {
	if e, ok := r.live[cat]; ok {
		if p, ok := e.(SnapshotProvider); ok {
			return p
		}
	}
	return nil
}

// Wallet returns the money manager's wallet face, if spawned.
func (r *Registry) Wallet() Wallet {
	if e, ok := r.live[CategoryMoney]; ok {
		if w, ok := e.(Wallet); ok {
			return w
		}
	}
	return nil
}

// Teardown destroys every live instance and clears all handles. Calling it
// with nothing spawned is a no-op.
func (r *Registry) Teardown() {
	if len(r.live) == 0 {
		return
	}
	for cat, e := range r.live {
		if e != nil {
			e.Dispose()
		}
		delete(r.live, cat)
	}
	r.player = nil
	log.Printf("session: gameplay objects torn down")
}
