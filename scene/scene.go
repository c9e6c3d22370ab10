// Package scene loads level files into scenes keyed by stable numeric ids
// and tracks which scene is active. Loads are asynchronous: LoadSceneAsync
// parses off-thread and the scene is activated on the game tick that first
// observes completion, so all shared state mutates on one logical thread.
package scene

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"

	"github.com/milk9111/hollowmere/session"
)

// Source registers one scene file under a stable id.
type Source struct {
	ID   session.SceneID
	Name string
	File string
}

// SpawnPoint is a named position declared in the scene file.
type SpawnPoint struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Edge is a scene-boundary volume. Crossing it triggers an edge move into
// the target scene at the named spawn point.
type Edge struct {
	ID          string          `json:"id"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	W           float64         `json:"w"`
	H           float64         `json:"h"`
	TargetScene session.SceneID `json:"target_scene"`
	SpawnPoint  string          `json:"spawn_point"`
}

// LayerMeta mirrors the level editor's per-layer flags.
type LayerMeta struct {
	Physics bool `json:"physics"`
}

type sceneFile struct {
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Layers      [][]int      `json:"layers"`
	LayerMeta   []LayerMeta  `json:"layer_meta,omitempty"`
	SpawnPoints []SpawnPoint `json:"spawn_points,omitempty"`
	Edges       []Edge       `json:"edges,omitempty"`
	BossScript  string       `json:"boss_script,omitempty"`
}

// Scene is a loaded level plus the lookup tables resolved at load time.
// Spawn points are keyed by id here so nothing ever scans live objects by
// name.
type Scene struct {
	ID     session.SceneID
	Name   string
	Width  int
	Height int
	Layers []Layer
	// BossScript names an optional encounter script for this scene.
	BossScript string

	spawnPoints map[string]SpawnPoint
	edges       []Edge
}

// Layer is one tile layer with its physics flag.
type Layer struct {
	Tiles   []int
	Physics bool
}

// Edges returns the scene's boundary volumes.
func (s *Scene) Edges() []Edge {
	if s == nil {
		return nil
	}
	return s.edges
}

// FindSpawnPoint resolves a spawn point by id.
func (s *Scene) FindSpawnPoint(name string) (float64, float64, bool) {
	if s == nil {
		return 0, 0, false
	}
	sp, ok := s.spawnPoints[name]
	if !ok {
		return 0, 0, false
	}
	return sp.X, sp.Y, true
}

// Manager owns the scene registry and the active scene. It implements
// session.SceneDirector.
type Manager struct {
	fsys    fs.FS
	sources map[session.SceneID]Source

	current *Scene

	nextSub     int
	subscribers map[int]func(session.SceneID)
}

// NewManager builds a manager over the level filesystem with the given
// registered sources.
func NewManager(fsys fs.FS, sources ...Source) *Manager {
	m := &Manager{
		fsys:        fsys,
		sources:     map[session.SceneID]Source{},
		subscribers: map[int]func(session.SceneID){},
	}
	for _, src := range sources {
		m.sources[src.ID] = src
	}
	return m
}

// Current returns the active scene, or nil before the first load.
func (m *Manager) Current() *Scene {
	return m.current
}

// ActiveScene returns the active scene id, or session.SceneNone.
func (m *Manager) ActiveScene() session.SceneID {
	if m.current == nil {
		return session.SceneNone
	}
	return m.current.ID
}

// FindSpawnPoint resolves a spawn point id in the active scene.
func (m *Manager) FindSpawnPoint(name string) (float64, float64, bool) {
	return m.current.FindSpawnPoint(name)
}

// LoadSceneAsync starts loading the scene. The returned handle settles
// exactly once; activation and observer notification happen on the polling
// side when completion is first observed.
func (m *Manager) LoadSceneAsync(id session.SceneID) *session.Await {
	src, ok := m.sources[id]
	if !ok {
		return session.Completed(fmt.Errorf("scene: unknown scene id %d", id))
	}
	var loaded *Scene
	aw, complete := session.NewAwait(func(err error) {
		if err != nil {
			return
		}
		m.activate(loaded)
	})
	go func() {
		s, err := load(m.fsys, src)
		loaded = s
		complete(err)
	}()
	return aw
}

func (m *Manager) activate(s *Scene) {
	m.current = s
	for _, fn := range m.subscribers {
		fn(s.ID)
	}
	log.Printf("scene: %q (%d) active", s.Name, s.ID)
}

// SubscribeActivated registers an activation observer and returns its
// unsubscribe. Observers fire exactly once per completed load.
func (m *Manager) SubscribeActivated(fn func(session.SceneID)) func() {
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		delete(m.subscribers, id)
	}
}

func load(fsys fs.FS, src Source) (*Scene, error) {
	data, err := fs.ReadFile(fsys, src.File)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", src.File, err)
	}
	var f sceneFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene: unmarshal %s: %w", src.File, err)
	}

	s := &Scene{
		ID:          src.ID,
		Name:        src.Name,
		Width:       f.Width,
		Height:      f.Height,
		BossScript:  f.BossScript,
		spawnPoints: make(map[string]SpawnPoint, len(f.SpawnPoints)),
		edges:       f.Edges,
	}
	for i, layer := range f.Layers {
		physics := i < len(f.LayerMeta) && f.LayerMeta[i].Physics
		s.Layers = append(s.Layers, Layer{Tiles: layer, Physics: physics})
	}
	for _, sp := range f.SpawnPoints {
		s.spawnPoints[sp.ID] = sp
	}
	return s, nil
}
