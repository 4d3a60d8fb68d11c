package game

import (
	"encoding/json"
	"errors"
	"iter"

	"github.com/pixil98/go-rotmg/internal/rotmg"
)

const DefaultInventorySize = 20

var ErrInventoryFull = errors.New("inventory is full")

// Inventory holds item instances in a fixed number of slots.
type Inventory struct {
	slots []*rotmg.ItemInstance
}

// NewInventory creates an empty inventory. A size below one gets the default.
func NewInventory(size int) *Inventory {
	if size < 1 {
		size = DefaultInventorySize
	}
	return &Inventory{
		slots: make([]*rotmg.ItemInstance, size),
	}
}

// AddItem puts item in the first empty slot and returns the slot index.
func (inv *Inventory) AddItem(item *rotmg.ItemInstance) (int, error) {
	for i, s := range inv.slots {
		if s == nil {
			inv.slots[i] = item
			return i, nil
		}
	}
	return -1, ErrInventoryFull
}

// Remove removes an item instance from the inventory.
// Returns the removed instance, or nil if not found.
func (inv *Inventory) Remove(instanceID string) *rotmg.ItemInstance {
	for i, s := range inv.slots {
		if s != nil && s.InstanceID == instanceID {
			inv.slots[i] = nil
			return s
		}
	}
	return nil
}

// Get returns an item instance by ID, or nil if not found.
func (inv *Inventory) Get(instanceID string) *rotmg.ItemInstance {
	for _, s := range inv.slots {
		if s != nil && s.InstanceID == instanceID {
			return s
		}
	}
	return nil
}

// Contains checks if an item instance is in the inventory.
func (inv *Inventory) Contains(instanceID string) bool {
	return inv.Get(instanceID) != nil
}

// Slot returns the item in slot i, or nil.
func (inv *Inventory) Slot(i int) *rotmg.ItemInstance {
	if i < 0 || i >= len(inv.slots) {
		return nil
	}
	return inv.slots[i]
}

func (inv *Inventory) Size() int { return len(inv.slots) }

// Len counts the occupied slots.
func (inv *Inventory) Len() int {
	n := 0
	for _, s := range inv.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Items iterates the occupied slots in slot order.
func (inv *Inventory) Items() iter.Seq2[int, *rotmg.ItemInstance] {
	return func(yield func(int, *rotmg.ItemInstance) bool) {
		for i, s := range inv.slots {
			if s == nil {
				continue
			}
			if !yield(i, s) {
				return
			}
		}
	}
}

// MarshalJSON writes every slot, empty ones as null.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(inv.slots)
}
