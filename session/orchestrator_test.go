package session

import (
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	recs    map[int]*SaveRecord
	loadErr error
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[int]*SaveRecord{}}
}

func (s *fakeStore) Exists(slot int) bool {
	_, ok := s.recs[slot]
	return ok
}

func (s *fakeStore) Load(slot int) (*SaveRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	rec, ok := s.recs[slot]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) Save(slot int, rec *SaveRecord) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *rec
	s.recs[slot] = &cp
	return nil
}

// fakeDirector activates scenes synchronously unless manual completion is
// requested.
type fakeDirector struct {
	active      SceneID
	loads       []SceneID
	loadErr     error
	manual      bool
	complete    func(error)
	spawnPoints map[string][2]float64
	subs        map[int]func(SceneID)
	nextSub     int
}

func newFakeDirector() *fakeDirector {
	return &fakeDirector{
		active:      SceneNone,
		spawnPoints: map[string][2]float64{},
		subs:        map[int]func(SceneID){},
	}
}

func (d *fakeDirector) LoadSceneAsync(id SceneID) *Await {
	d.loads = append(d.loads, id)
	settle := func(err error) {
		if err != nil {
			return
		}
		d.active = id
		for _, fn := range d.subs {
			fn(id)
		}
	}
	if d.manual {
		a, complete := NewAwait(settle)
		d.complete = complete
		return a
	}
	if d.loadErr != nil {
		return Completed(d.loadErr)
	}
	settle(nil)
	return Completed(nil)
}

func (d *fakeDirector) ActiveScene() SceneID { return d.active }

func (d *fakeDirector) FindSpawnPoint(name string) (float64, float64, bool) {
	p, ok := d.spawnPoints[name]
	return p[0], p[1], ok
}

func (d *fakeDirector) SubscribeActivated(fn func(SceneID)) func() {
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() { delete(d.subs, id) }
}

type fakeProvider struct {
	snap    Snapshot
	applied []Snapshot
}

func (p *fakeProvider) Snapshot() Snapshot { return p.snap }
func (p *fakeProvider) Apply(s Snapshot)   { p.applied = append(p.applied, s) }

const (
	testMenuScene  SceneID = 0
	testIntroScene SceneID = 1
	testStartScene SceneID = 2
	testOtherScene SceneID = 3
)

var testNow = time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

type harness struct {
	orch     *Orchestrator
	store    *fakeStore
	scenes   *fakeDirector
	reg      *Registry
	players  []*fakePlayer
	money    *fakeMoney
	inv      *fakeProvider
	binds    int
	missions *fakeProvider
	resets   int
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{
		store:    newFakeStore(),
		scenes:   newFakeDirector(),
		reg:      NewRegistry(),
		money:    &fakeMoney{},
		inv:      &fakeProvider{},
		missions: &fakeProvider{},
	}
	h.reg.RegisterPlayerFactory(func(x, y float64) Player {
		p := newFakePlayer(x, y)
		h.players = append(h.players, p)
		return p
	})
	h.reg.RegisterFactory(CategoryMoney, func() Entity { return h.money })
	h.reg.RegisterFactory(CategoryInventory, func() Entity {
		return struct {
			*fakeEntity
			*fakeProvider
		}{&fakeEntity{}, h.inv}
	})
	h.reg.SetCameraBind(func(Player) { h.binds++ })

	cfg := Config{
		Store:          h.store,
		Scenes:         h.scenes,
		Registry:       h.reg,
		Missions:       h.missions,
		ResetEncounter: func() { h.resets++ },
		MenuScene:      testMenuScene,
		IntroScene:     testIntroScene,
		StartScene:     testStartScene,
		StartX:         64,
		StartY:         128,
		MaxHealth:      100,
		Now:            func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	orch, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.orch = orch
	return h
}

func (h *harness) player() *fakePlayer {
	if len(h.players) == 0 {
		return nil
	}
	return h.players[len(h.players)-1]
}

func TestNewRequiresCoreDependencies(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no_store", func(c *Config) { c.Store = nil }},
		{"no_scenes", func(c *Config) { c.Scenes = nil }},
		{"no_registry", func(c *Config) { c.Registry = nil }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Config{Store: newFakeStore(), Scenes: newFakeDirector(), Registry: NewRegistry()}
			c.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Fatal("expected an error for a missing core dependency")
			}
		})
	}
}

func TestStartNewGame(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.orch.StartNewGame(0); err != nil {
		t.Fatalf("StartNewGame failed: %v", err)
	}
	if h.orch.Busy() {
		t.Fatal("synchronous transition should have completed")
	}
	if h.scenes.ActiveScene() != testIntroScene {
		t.Fatalf("expected the intro scene, got %v", h.scenes.ActiveScene())
	}
	if h.player() != nil {
		t.Fatal("nothing spawns before the intro finishes")
	}

	rec, err := h.store.Load(0)
	if err != nil {
		t.Fatalf("new game must persist immediately: %v", err)
	}
	if rec.SceneID != testStartScene || rec.X != 64 || rec.Y != 128 {
		t.Fatalf("unexpected default record: %+v", rec)
	}
	if rec.Health != 100 || rec.MaxHealth != 100 {
		t.Fatalf("new record must start at full health: %+v", rec)
	}
	if !rec.SavedAt.Equal(testNow) {
		t.Fatalf("expected saved_at %v, got %v", testNow, rec.SavedAt)
	}
}

func TestFinishIntroEntersGameplay(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.orch.FinishIntro(); !errors.Is(err, ErrNoSave) {
		t.Fatalf("expected ErrNoSave before any slot, got %v", err)
	}

	if err := h.orch.StartNewGame(1); err != nil {
		t.Fatalf("StartNewGame failed: %v", err)
	}
	if err := h.orch.FinishIntro(); err != nil {
		t.Fatalf("FinishIntro failed: %v", err)
	}
	if h.scenes.ActiveScene() != testStartScene {
		t.Fatalf("expected the start scene, got %v", h.scenes.ActiveScene())
	}
	p := h.player()
	if p == nil {
		t.Fatal("expected the player to spawn")
	}
	if p.x != 64 || p.y != 128 {
		t.Fatalf("expected spawn at 64,128, got %v,%v", p.x, p.y)
	}
	if h.binds != 1 {
		t.Fatalf("expected one camera bind, got %d", h.binds)
	}
	if h.reg.Get(CategoryInventory) == nil || h.reg.Get(CategoryMoney) == nil {
		t.Fatal("expected the gameplay singletons to spawn")
	}
}

func TestLoadGameEmptySlotStartsNewGame(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.orch.LoadGame(2); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if h.scenes.ActiveScene() != testIntroScene {
		t.Fatalf("empty slot must behave like a new game, got scene %v", h.scenes.ActiveScene())
	}
	if !h.store.Exists(2) {
		t.Fatal("empty slot must gain a default record")
	}
}

func TestLoadGameAppliesSavedState(t *testing.T) {
	h := newHarness(t, nil)
	h.store.recs[0] = &SaveRecord{
		Slot:      0,
		SceneID:   testOtherScene,
		X:         300,
		Y:         400,
		Health:    40,
		MaxHealth: 100,
		Inventory: Snapshot(`[{"item_id":"torch","count":2}]`),
		Currency:  Snapshot("77"),
		Missions:  Snapshot(`{"m1":"active"}`),
	}

	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if h.scenes.ActiveScene() != testOtherScene {
		t.Fatalf("expected the saved scene, got %v", h.scenes.ActiveScene())
	}
	p := h.player()
	if p == nil {
		t.Fatal("expected the player to spawn")
	}
	if p.x != 300 || p.y != 400 {
		t.Fatalf("expected the saved position, got %v,%v", p.x, p.y)
	}
	if p.health != 40 || p.maxHealth != 100 {
		t.Fatalf("expected the saved health, got %d/%d", p.health, p.maxHealth)
	}
	if len(h.inv.applied) != 1 {
		t.Fatalf("inventory snapshot must apply exactly once, got %d", len(h.inv.applied))
	}
	if h.money.balance != 77 {
		t.Fatalf("expected currency 77, got %d", h.money.balance)
	}
	if len(h.missions.applied) != 1 {
		t.Fatalf("mission snapshot must apply exactly once, got %d", len(h.missions.applied))
	}
}

func TestLoadGameSkipsAbsentSnapshots(t *testing.T) {
	h := newHarness(t, nil)
	h.store.recs[0] = &SaveRecord{Slot: 0, SceneID: testStartScene, MaxHealth: 100, Health: 100}

	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if len(h.inv.applied) != 0 || len(h.missions.applied) != 0 {
		t.Fatal("absent snapshots must not be applied")
	}
}

func TestSaveGameEvent(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.orch.SaveGameEvent(SaveReasonManual); err != nil {
		t.Fatalf("save with no slot must be a quiet no-op, got %v", err)
	}
	if h.store.saves != 0 {
		t.Fatal("no slot means nothing to persist")
	}

	h.store.recs[0] = &SaveRecord{Slot: 0, SceneID: testStartScene, Health: 100, MaxHealth: 100}
	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}

	p := h.player()
	p.Teleport(500, 600)
	p.SetHealth(55)
	h.money.balance = 90
	h.inv.snap = Snapshot(`[{"item_id":"rope","count":1}]`)
	h.missions.snap = Snapshot(`{"m1":"complete"}`)

	if err := h.orch.SaveGameEvent(SaveReasonManual); err != nil {
		t.Fatalf("SaveGameEvent failed: %v", err)
	}

	rec := h.store.recs[0]
	if rec.X != 500 || rec.Y != 600 {
		t.Fatalf("expected the live position captured, got %v,%v", rec.X, rec.Y)
	}
	if rec.Health != 55 {
		t.Fatalf("expected health 55, got %d", rec.Health)
	}
	if string(rec.Currency) != "90" {
		t.Fatalf("expected currency snapshot 90, got %q", rec.Currency)
	}
	if !rec.Inventory.Equal(h.inv.snap) || !rec.Missions.Equal(h.missions.snap) {
		t.Fatal("expected the live snapshots captured")
	}
	if !rec.SavedAt.Equal(testNow) {
		t.Fatalf("expected saved_at %v, got %v", testNow, rec.SavedAt)
	}
}

func TestSaveGameEventPersistFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.store.recs[0] = &SaveRecord{Slot: 0, SceneID: testStartScene, Health: 100, MaxHealth: 100}
	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}

	h.store.saveErr = errors.New("disk full")
	err := h.orch.SaveGameEvent(SaveReasonAuto)
	if err == nil {
		t.Fatal("a persistence failure must surface")
	}
	if h.orch.CurrentSave() == nil {
		t.Fatal("the in-memory record must survive a persistence failure")
	}
}

func TestLoadSceneFromEdge(t *testing.T) {
	h := newHarness(t, nil)
	h.store.recs[0] = &SaveRecord{Slot: 0, SceneID: testStartScene, X: 10, Y: 10, Health: 100, MaxHealth: 100}
	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	bindsBefore := h.binds
	h.scenes.spawnPoints["SP_West"] = [2]float64{32, 640}

	if err := h.orch.LoadSceneFromEdge(testOtherScene, "SP_West"); err != nil {
		t.Fatalf("LoadSceneFromEdge failed: %v", err)
	}
	if h.scenes.ActiveScene() != testOtherScene {
		t.Fatalf("expected the edge target scene, got %v", h.scenes.ActiveScene())
	}
	p := h.player()
	if p.x != 32 || p.y != 640 {
		t.Fatalf("expected the player at the target spawn point, got %v,%v", p.x, p.y)
	}
	if h.binds != bindsBefore+1 {
		t.Fatal("camera must rebind after a cross-scene move")
	}
	if len(h.players) != 1 {
		t.Fatalf("edge moves must not respawn the player, got %d spawns", len(h.players))
	}
	if p.disposed != 0 {
		t.Fatal("the player must survive a cross-scene move")
	}
}

func TestMenuActivationTearsDownGameplay(t *testing.T) {
	h := newHarness(t, nil)
	h.store.recs[0] = &SaveRecord{Slot: 0, SceneID: testStartScene, Health: 100, MaxHealth: 100}
	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	p := h.player()
	if p == nil {
		t.Fatal("expected a live player")
	}

	if err := h.orch.QuitToMenu(); err != nil {
		t.Fatalf("QuitToMenu failed: %v", err)
	}
	if h.scenes.ActiveScene() != testMenuScene {
		t.Fatalf("expected the menu scene, got %v", h.scenes.ActiveScene())
	}
	if p.disposed != 1 {
		t.Fatalf("player must be disposed on menu entry, got %d", p.disposed)
	}
	if h.orch.Player() != nil {
		t.Fatal("no player may survive a return to the menu")
	}
	if h.money.disposed != 1 {
		t.Fatalf("money manager must be disposed on menu entry, got %d", h.money.disposed)
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	h := newHarness(t, nil)
	h.store.recs[0] = &SaveRecord{Slot: 0, SceneID: testStartScene, Health: 100, MaxHealth: 100}
	if err := h.orch.LoadGame(0); err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	p := h.player()

	h.orch.Close()
	h.scenes.LoadSceneAsync(testMenuScene)
	if p.disposed != 0 {
		t.Fatal("a closed orchestrator must not react to scene activations")
	}
}

func TestCommandsRejectedWhileBusy(t *testing.T) {
	h := newHarness(t, nil)
	h.scenes.manual = true

	if err := h.orch.StartNewGame(0); err != nil {
		t.Fatalf("StartNewGame failed: %v", err)
	}
	if !h.orch.Busy() {
		t.Fatal("expected an in-flight sequence")
	}

	cases := []struct {
		name string
		call func() error
	}{
		{"start_new_game", func() error { return h.orch.StartNewGame(1) }},
		{"finish_intro", func() error { return h.orch.FinishIntro() }},
		{"load_game", func() error { return h.orch.LoadGame(0) }},
		{"edge", func() error { return h.orch.LoadSceneFromEdge(testOtherScene, "SP_East") }},
		{"quit_to_menu", func() error { return h.orch.QuitToMenu() }},
		{"respawn", func() error { return h.orch.Respawn() }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.call(); !errors.Is(err, ErrSequenceActive) {
				t.Fatalf("expected ErrSequenceActive, got %v", err)
			}
		})
	}

	h.scenes.complete(nil)
	h.orch.Update()
	if h.orch.Busy() {
		t.Fatal("sequence should complete once the load settles")
	}
	if h.scenes.ActiveScene() != testIntroScene {
		t.Fatalf("expected the intro scene, got %v", h.scenes.ActiveScene())
	}
}
