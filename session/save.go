package session

import (
	"bytes"
	"errors"
	"time"
)

// SceneID is the stable identifier for a scene. Scene files can be renamed;
// ids in save records stay valid.
type SceneID int

// SceneNone is reported while no scene has been activated yet.
const SceneNone SceneID = -1

var (
	// ErrSlotNotFound is returned by a SaveStore when a slot has no record.
	ErrSlotNotFound = errors.New("session: save slot not found")
	// ErrSequenceActive rejects a sequence-triggering command while another
	// sequence is still in flight.
	ErrSequenceActive = errors.New("session: a sequence is already in flight")
	// ErrNoSave rejects commands that need an active slot before any slot
	// has been selected.
	ErrNoSave = errors.New("session: no active save")
	// ErrRespawnPrecondition is returned when a respawn is requested without
	// a save record or a live player.
	ErrRespawnPrecondition = errors.New("session: respawn preconditions not met")
)

// Snapshot is an opaque serialized capture of one subsystem's state. The
// orchestrator routes snapshots between providers and the save record but
// never inspects them.
type Snapshot []byte

// Equal compares two snapshots byte-wise.
func (s Snapshot) Equal(other Snapshot) bool {
	return bytes.Equal(s, other)
}

// SnapshotProvider is implemented independently by the inventory, currency,
// and mission subsystems.
type SnapshotProvider interface {
	Snapshot() Snapshot
	Apply(Snapshot)
}

// SaveStore persists save records by slot index. Save must overwrite
// atomically; a persistence failure is surfaced but treated as non-fatal by
// the orchestrator.
type SaveStore interface {
	Exists(slot int) bool
	// Load returns ErrSlotNotFound (possibly wrapped) when the slot is empty.
	Load(slot int) (*SaveRecord, error)
	Save(slot int, rec *SaveRecord) error
}

// SaveRecord is the sole unit of persisted state, one per slot. It is
// mutated only by the orchestrator's save command while a slot is active.
type SaveRecord struct {
	Slot      int       `json:"slot"`
	Name      string    `json:"name"`
	SceneID   SceneID   `json:"scene_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"max_health"`
	Inventory Snapshot  `json:"inventory,omitempty"`
	Currency  Snapshot  `json:"currency,omitempty"`
	Missions  Snapshot  `json:"missions,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// NewSaveRecord builds the default record for a fresh slot.
func NewSaveRecord(slot int, scene SceneID, x, y float64, maxHealth int) *SaveRecord {
	return &SaveRecord{
		Slot:      slot,
		Name:      defaultSlotName(slot),
		SceneID:   scene,
		X:         x,
		Y:         y,
		Health:    maxHealth,
		MaxHealth: maxHealth,
	}
}

func defaultSlotName(slot int) string {
	names := []string{"Slot A", "Slot B", "Slot C"}
	if slot >= 0 && slot < len(names) {
		return names[slot]
	}
	return "Slot"
}
