// Package savefile persists save records as one JSON file per slot.
package savefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/milk9111/hollowmere/session"
)

// Store writes save records under a directory, one file per slot. Saves are
// atomic: records are written to a temp file and renamed into place.
type Store struct {
	dir string
}

// NewStore creates the save directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("savefile: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("slot_%d.json", slot))
}

// Exists reports whether a record is stored for slot.
func (s *Store) Exists(slot int) bool {
	_, err := os.Stat(s.path(slot))
	return err == nil
}

// Load reads the record for slot. An empty slot yields
// session.ErrSlotNotFound.
func (s *Store) Load(slot int) (*session.SaveRecord, error) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("savefile: slot %d: %w", slot, session.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("savefile: read slot %d: %w", slot, err)
	}
	var rec session.SaveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("savefile: unmarshal slot %d: %w", slot, err)
	}
	return &rec, nil
}

// Save overwrites the record for slot atomically.
func (s *Store) Save(slot int, rec *session.SaveRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("savefile: marshal slot %d: %w", slot, err)
	}
	tmp, err := os.CreateTemp(s.dir, "slot_*.tmp")
	if err != nil {
		return fmt.Errorf("savefile: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("savefile: write slot %d: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("savefile: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("savefile: replace slot %d: %w", slot, err)
	}
	return nil
}
