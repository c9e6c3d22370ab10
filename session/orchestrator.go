package session

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// SceneDirector is the scene/transition boundary the orchestrator drives.
type SceneDirector interface {
	// LoadSceneAsync starts loading a scene and returns a handle that
	// settles exactly once. The scene becomes active when the handle
	// settles successfully.
	LoadSceneAsync(id SceneID) *Await
	ActiveScene() SceneID
	// FindSpawnPoint resolves a spawn point id in the active scene.
	FindSpawnPoint(name string) (x, y float64, ok bool)
	// SubscribeActivated registers an activation observer and returns its
	// unsubscribe. Observers fire exactly once per completed load.
	SubscribeActivated(fn func(SceneID)) (unsubscribe func())
}

// Save reasons logged with every save event.
const (
	SaveReasonManual       = "Manual"
	SaveReasonAuto         = "Auto"
	SaveReasonDeathRespawn = "Death Respawn"
)

// Config wires an Orchestrator. Store, Scenes, and Registry are required;
// the rest degrade gracefully when absent.
type Config struct {
	Store    SaveStore
	Scenes   SceneDirector
	Registry *Registry
	// Fader may be nil; transitions then run without visual fades.
	Fader Fader
	// Missions is the optional mission-progress provider.
	Missions SnapshotProvider
	// ResetEncounter resets any boss-encounter state tied to the current
	// scene. May be nil.
	ResetEncounter func()

	MenuScene  SceneID
	IntroScene SceneID
	// StartScene and StartX/StartY shape the default record for a new game.
	StartScene     SceneID
	StartX, StartY float64
	MaxHealth      int

	// Now overrides the save-timestamp clock. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator owns the authoritative in-memory save state and sequences
// every scene transition, spawn, and respawn. The surrounding shell must
// construct exactly one and drive it from the game tick; all shared state
// here is mutated only on that single logical thread.
type Orchestrator struct {
	store    SaveStore
	scenes   SceneDirector
	reg      *Registry
	pipeline *Pipeline
	edge     EdgeMove
	missions SnapshotProvider

	resetEncounter func()

	menuScene  SceneID
	introScene SceneID
	startScene SceneID
	startX     float64
	startY     float64
	maxHealth  int

	slot int
	save *SaveRecord

	lastSpawnPoint string
	unsubscribe    func()
	now            func() time.Time
}

// New wires an orchestrator and subscribes it to scene activations. The
// caller constructs exactly one per process; rejecting duplicates is the
// constructing code's job, not a runtime self-check.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil || cfg.Scenes == nil || cfg.Registry == nil {
		return nil, errors.New("session: store, scenes, and registry are required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxHealth := cfg.MaxHealth
	if maxHealth <= 0 {
		maxHealth = 100
	}
	o := &Orchestrator{
		store:          cfg.Store,
		scenes:         cfg.Scenes,
		reg:            cfg.Registry,
		pipeline:       NewPipeline(cfg.Fader),
		missions:       cfg.Missions,
		resetEncounter: cfg.ResetEncounter,
		menuScene:      cfg.MenuScene,
		introScene:     cfg.IntroScene,
		startScene:     cfg.StartScene,
		startX:         cfg.StartX,
		startY:         cfg.StartY,
		maxHealth:      maxHealth,
		slot:           -1,
		now:            now,
	}
	o.unsubscribe = cfg.Scenes.SubscribeActivated(o.onSceneActivated)
	return o, nil
}

// Close unsubscribes the orchestrator from scene activations.
func (o *Orchestrator) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
}

// Update advances any in-flight sequence by one tick.
func (o *Orchestrator) Update() {
	o.pipeline.Update()
}

// Busy reports whether a sequence is in flight.
func (o *Orchestrator) Busy() bool {
	return o.pipeline.Active()
}

// CurrentSave returns the in-memory save record, or nil while no slot is
// active. Callers must treat it as read-only.
func (o *Orchestrator) CurrentSave() *SaveRecord {
	return o.save
}

// Slot returns the active slot index, or -1.
func (o *Orchestrator) Slot() int {
	return o.slot
}

// Player returns the live player handle, if any.
func (o *Orchestrator) Player() Player {
	return o.reg.Player()
}

// Entity returns the live handle for a singleton category, if any.
func (o *Orchestrator) Entity(cat Category) Entity {
	return o.reg.Get(cat)
}

// StartNewGame creates and persists a default record for slot, then runs
// the enter-intro transition. Nothing is spawned yet; spawning happens on
// gameplay entry after the intro.
func (o *Orchestrator) StartNewGame(slot int) error {
	if o.pipeline.Active() {
		log.Printf("session: start new game rejected, sequence in flight")
		return ErrSequenceActive
	}
	o.slot = slot
	o.save = NewSaveRecord(slot, o.startScene, o.startX, o.startY, o.maxHealth)
	o.save.SavedAt = o.now()
	if err := o.store.Save(slot, o.save); err != nil {
		log.Printf("session: persisting new game for slot %d: %v", slot, err)
	}
	return o.pipeline.Begin(Transition{
		Load: func() *Await { return o.scenes.LoadSceneAsync(o.introScene) },
	})
}

// FinishIntro runs the enter-gameplay transition for the already selected
// slot.
func (o *Orchestrator) FinishIntro() error {
	if o.pipeline.Active() {
		log.Printf("session: finish intro rejected, sequence in flight")
		return ErrSequenceActive
	}
	if o.save == nil {
		log.Printf("session: finish intro with no active save")
		return ErrNoSave
	}
	return o.pipeline.Begin(o.gameplayEntry())
}

// LoadGame enters gameplay for slot. A slot with no record behaves exactly
// like StartNewGame for that slot.
func (o *Orchestrator) LoadGame(slot int) error {
	if o.pipeline.Active() {
		log.Printf("session: load game rejected, sequence in flight")
		return ErrSequenceActive
	}
	if !o.store.Exists(slot) {
		log.Printf("session: slot %d has no save, starting new game", slot)
		return o.StartNewGame(slot)
	}
	rec, err := o.store.Load(slot)
	if err != nil {
		log.Printf("session: loading slot %d: %v, starting new game", slot, err)
		return o.StartNewGame(slot)
	}
	o.slot = slot
	o.save = rec
	return o.pipeline.Begin(o.gameplayEntry())
}

// gameplayEntry is the shared enter-gameplay transition for the
// new-game-after-intro and load-game paths.
func (o *Orchestrator) gameplayEntry() Transition {
	return Transition{
		Load:     func() *Await { return o.scenes.LoadSceneAsync(o.save.SceneID) },
		PostLoad: o.enterGameplay,
	}
}

// enterGameplay spawns the gameplay singletons in dependency order and
// applies the save record. The player goes first because later categories
// may reference it; inventory precedes any snapshot application to it.
func (o *Orchestrator) enterGameplay() {
	p := o.reg.SpawnPlayer(o.save.X, o.save.Y)
	o.reg.Ensure(CategoryInventory)
	o.reg.Ensure(CategoryPauseMenu)
	o.reg.Ensure(CategoryHotbar)
	o.reg.Ensure(CategoryItemDB)
	o.reg.Ensure(CategoryMoney)

	o.applySnapshots()
	if p != nil {
		p.ApplySaveData(o.save)
	}
}

// applySnapshots routes saved snapshots to their providers. Each is applied
// once, and only when both the provider and the snapshot are present;
// application is idempotent on the provider side.
func (o *Orchestrator) applySnapshots() {
	if inv := o.reg.Provider(CategoryInventory); inv != nil && o.save.Inventory != nil {
		inv.Apply(o.save.Inventory)
	}
	if cur := o.reg.Provider(CategoryMoney); cur != nil && o.save.Currency != nil {
		cur.Apply(o.save.Currency)
	}
	if o.missions != nil && o.save.Missions != nil {
		o.missions.Apply(o.save.Missions)
	}
}

// SaveGameEvent captures the current session state into the active record
// and persists it. With no active slot it is a no-op. Every field is
// captured independently and only when its source exists; a persistence
// failure is logged and surfaced but never interrupts gameplay.
func (o *Orchestrator) SaveGameEvent(reason string) error {
	if o.slot < 0 || o.save == nil {
		log.Printf("session: save requested with no active slot (%s)", reason)
		return nil
	}
	if id := o.scenes.ActiveScene(); id != SceneNone {
		o.save.SceneID = id
	}
	if p := o.reg.Player(); p != nil {
		o.save.X, o.save.Y = p.Position()
		cur, max := p.Health()
		o.save.Health = cur
		o.save.MaxHealth = max
	}
	if inv := o.reg.Provider(CategoryInventory); inv != nil {
		o.save.Inventory = inv.Snapshot()
	}
	if cur := o.reg.Provider(CategoryMoney); cur != nil {
		o.save.Currency = cur.Snapshot()
	}
	if o.missions != nil {
		o.save.Missions = o.missions.Snapshot()
	}
	o.save.SavedAt = o.now()
	if err := o.store.Save(o.slot, o.save); err != nil {
		log.Printf("session: saving slot %d (%s): %v", o.slot, reason, err)
		return fmt.Errorf("session: save slot %d: %w", o.slot, err)
	}
	log.Printf("session: saved slot %d (%s)", o.slot, reason)
	return nil
}

// PrepareEdgeMove records a pending cross-scene repositioning to the named
// spawn point.
func (o *Orchestrator) PrepareEdgeMove(spawnPoint string) {
	o.lastSpawnPoint = spawnPoint
	o.edge.Prepare(spawnPoint)
}

// LoadSceneFromEdge records the pending edge move, then transitions to the
// target scene; its post-load step consumes the edge move and rebinds the
// camera to the player.
func (o *Orchestrator) LoadSceneFromEdge(id SceneID, spawnPoint string) error {
	if o.pipeline.Active() {
		log.Printf("session: edge transition rejected, sequence in flight")
		return ErrSequenceActive
	}
	o.PrepareEdgeMove(spawnPoint)
	return o.pipeline.Begin(Transition{
		Load: func() *Await { return o.scenes.LoadSceneAsync(id) },
		PostLoad: func() {
			p := o.reg.Player()
			o.edge.Consume(o.scenes.FindSpawnPoint, p)
			if p != nil && o.reg.cameraBind != nil {
				o.reg.cameraBind(p)
			}
		},
	})
}

// QuitToMenu transitions back to the main menu. Teardown of the gameplay
// singletons happens through the menu scene's activation notification, the
// same path as any other way of reaching the menu.
func (o *Orchestrator) QuitToMenu() error {
	if o.pipeline.Active() {
		log.Printf("session: quit to menu rejected, sequence in flight")
		return ErrSequenceActive
	}
	return o.pipeline.Begin(Transition{
		Load: func() *Await { return o.scenes.LoadSceneAsync(o.menuScene) },
	})
}

// ResetGameplayState clears last-spawn-point memory and any pending edge
// move. Used when gameplay is abandoned without a full teardown trigger.
func (o *Orchestrator) ResetGameplayState() {
	o.lastSpawnPoint = ""
	o.edge.Reset()
}

// onSceneActivated fires once per completed load. Gameplay singletons must
// not outlive a return to the menu.
func (o *Orchestrator) onSceneActivated(id SceneID) {
	if id != o.menuScene {
		return
	}
	o.reg.Teardown()
	o.ResetGameplayState()
}
