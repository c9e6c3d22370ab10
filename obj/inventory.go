package obj

import (
	"encoding/json"
	"log"

	"github.com/milk9111/hollowmere/session"
)

// ItemStack is one inventory slot.
type ItemStack struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// Inventory owns the player's items. Its snapshot is the full slot list, so
// applying the same snapshot twice lands in the same state.
type Inventory struct {
	slots []ItemStack
	db    *ItemDB
}

// NewInventory creates an empty inventory. db may be nil; stack limits are
// then unenforced.
func NewInventory(db *ItemDB) *Inventory {
	return &Inventory{db: db}
}

// Add inserts count of an item, stacking onto an existing slot when
// possible. It returns the amount actually added.
func (inv *Inventory) Add(itemID string, count int) int {
	if count <= 0 {
		return 0
	}
	maxStack := 0
	if inv.db != nil {
		if item, ok := inv.db.Lookup(itemID); ok {
			maxStack = item.MaxStack
		}
	}
	for i := range inv.slots {
		if inv.slots[i].ItemID != itemID {
			continue
		}
		if maxStack > 0 && inv.slots[i].Count+count > maxStack {
			added := maxStack - inv.slots[i].Count
			inv.slots[i].Count = maxStack
			return added
		}
		inv.slots[i].Count += count
		return count
	}
	if maxStack > 0 && count > maxStack {
		count = maxStack
	}
	inv.slots = append(inv.slots, ItemStack{ItemID: itemID, Count: count})
	return count
}

// Count returns how many of an item the inventory holds.
func (inv *Inventory) Count(itemID string) int {
	for _, s := range inv.slots {
		if s.ItemID == itemID {
			return s.Count
		}
	}
	return 0
}

// Slots returns a copy of the slot list.
func (inv *Inventory) Slots() []ItemStack {
	return append([]ItemStack(nil), inv.slots...)
}

// Snapshot serializes the slot list.
func (inv *Inventory) Snapshot() session.Snapshot {
	data, err := json.Marshal(inv.slots)
	if err != nil {
		log.Printf("inventory: snapshot: %v", err)
		return nil
	}
	return data
}

// Apply replaces the slot list wholesale; applying the same snapshot twice
// is a no-op.
func (inv *Inventory) Apply(snap session.Snapshot) {
	if snap == nil {
		return
	}
	var slots []ItemStack
	if err := json.Unmarshal(snap, &slots); err != nil {
		log.Printf("inventory: apply snapshot: %v", err)
		return
	}
	inv.slots = slots
}

func (inv *Inventory) Dispose() {
	inv.slots = nil
}
