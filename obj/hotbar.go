package obj

import (
	"github.com/milk9111/hollowmere/prefabs"
)

// Hotbar is the quick-use bar. It references the inventory and item
// database but owns neither; slot bindings come from the hotbar prefab.
type Hotbar struct {
	inv      *Inventory
	db       *ItemDB
	bindings []string
	selected int
}

func NewHotbar(spec *prefabs.HotbarSpec, inv *Inventory, db *ItemDB) *Hotbar {
	slots := 4
	var bind []string
	if spec != nil {
		if spec.Slots > 0 {
			slots = spec.Slots
		}
		bind = spec.Bind
	}
	bindings := make([]string, slots)
	copy(bindings, bind)
	return &Hotbar{inv: inv, db: db, bindings: bindings}
}

// Select picks the active slot.
func (h *Hotbar) Select(slot int) {
	if slot >= 0 && slot < len(h.bindings) {
		h.selected = slot
	}
}

// Selected returns the active slot index.
func (h *Hotbar) Selected() int {
	return h.selected
}

// SlotItem returns the item bound to a slot and how many the inventory
// holds.
func (h *Hotbar) SlotItem(slot int) (Item, int, bool) {
	if slot < 0 || slot >= len(h.bindings) || h.bindings[slot] == "" {
		return Item{}, 0, false
	}
	id := h.bindings[slot]
	var item Item
	if h.db != nil {
		item, _ = h.db.Lookup(id)
	}
	count := 0
	if h.inv != nil {
		count = h.inv.Count(id)
	}
	return item, count, true
}

// Bind assigns an item to a slot.
func (h *Hotbar) Bind(slot int, itemID string) {
	if slot >= 0 && slot < len(h.bindings) {
		h.bindings[slot] = itemID
	}
}

func (h *Hotbar) Dispose() {
	h.inv = nil
	h.db = nil
}
