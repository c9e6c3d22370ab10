package obj

import (
	"github.com/milk9111/hollowmere/prefabs"
)

// Item is one item definition from the item database.
type Item struct {
	ID          string
	Name        string
	MaxStack    int
	Description string
}

// ItemDB holds the item definitions loaded from the items prefab spec.
type ItemDB struct {
	items map[string]Item
}

// NewItemDB builds the database from a loaded spec.
func NewItemDB(spec *prefabs.ItemsSpec) *ItemDB {
	db := &ItemDB{items: map[string]Item{}}
	if spec == nil {
		return db
	}
	for _, it := range spec.Items {
		if it.ID == "" {
			continue
		}
		db.items[it.ID] = Item{
			ID:          it.ID,
			Name:        it.Name,
			MaxStack:    it.MaxStack,
			Description: it.Description,
		}
	}
	return db
}

// Lookup resolves an item definition by id.
func (db *ItemDB) Lookup(id string) (Item, bool) {
	it, ok := db.items[id]
	return it, ok
}

// Len returns the number of known items.
func (db *ItemDB) Len() int {
	return len(db.items)
}

func (db *ItemDB) Dispose() {}
