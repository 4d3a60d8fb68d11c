package player

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

// DefaultCategory is where classes and equipment are looked up.
const DefaultCategory = "rotmg"

var ErrNoClass = errors.New("no class selected")

// Registry is the read side of the asset manager.
type Registry interface {
	Get(category, key string) (any, bool)
	GetAll(category string) iter.Seq[any]
}

// Manager holds the player's state: the selected class and the inventory.
// It is passed to whatever spawns characters; there is no global selection.
type Manager struct {
	mu        sync.RWMutex
	assets    Registry
	category  string
	invSize   int
	selected  *rotmg.Player
	inventory *game.Inventory
}

type ManagerOpt func(*Manager)

func WithCategory(category string) ManagerOpt {
	return func(m *Manager) {
		m.category = category
	}
}

func WithInventorySize(n int) ManagerOpt {
	return func(m *Manager) {
		m.invSize = n
	}
}

func NewManager(assets Registry, opts ...ManagerOpt) *Manager {
	m := &Manager{
		assets:   assets,
		category: DefaultCategory,
		invSize:  game.DefaultInventorySize,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.inventory = game.NewInventory(m.invSize)
	return m
}

// SelectClass selects the class stored under key and replaces the inventory
// with the class's starting equipment. Characters already spawned keep the
// class they were spawned with.
func (m *Manager) SelectClass(ctx context.Context, key string) error {
	v, ok := m.assets.Get(m.category, key)
	if !ok {
		return fmt.Errorf("class %q not found", key)
	}
	class, ok := v.(*rotmg.Player)
	if !ok {
		return fmt.Errorf("%q is not a player class", key)
	}

	inv := game.NewInventory(m.invSize)
	for slot, code := range class.Equipment {
		if code < 0 {
			continue
		}
		equip, ok := m.equipmentByType(code)
		if !ok {
			slog.WarnContext(ctx, "skipping starting equipment", "class", key, "slot", slot, "type", fmt.Sprintf("0x%x", code))
			continue
		}
		if _, err := inv.AddItem(equip.CreateInstance()); err != nil {
			return fmt.Errorf("adding starting equipment: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.selected = class
	m.inventory = inv
	return nil
}

// Selected returns a copy of the selected class.
func (m *Manager) Selected() (rotmg.Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.selected == nil {
		return rotmg.Player{}, false
	}
	return *m.selected, true
}

// GiveItem creates an instance of the equipment stored under key and adds
// it to the inventory.
func (m *Manager) GiveItem(key string) (*rotmg.ItemInstance, int, error) {
	v, ok := m.assets.Get(m.category, key)
	if !ok {
		return nil, -1, fmt.Errorf("equipment %q not found", key)
	}
	equip, ok := v.(*rotmg.Equipment)
	if !ok {
		return nil, -1, fmt.Errorf("%q is not equipment", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item := equip.CreateInstance()
	slot, err := m.inventory.AddItem(item)
	if err != nil {
		return nil, -1, err
	}
	return item, slot, nil
}

// RemoveItem takes an item out of the inventory.
func (m *Manager) RemoveItem(instanceID string) (*rotmg.ItemInstance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.inventory.Remove(instanceID)
	return item, item != nil
}

// Inventory returns the inventory slots, nil where empty.
func (m *Manager) Inventory() []*rotmg.ItemInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*rotmg.ItemInstance, m.inventory.Size())
	for i, item := range m.inventory.Items() {
		out[i] = item
	}
	return out
}

// Spawn creates a character of the selected class at pos and adds it to w.
// The character gets its own copy of the class.
func (m *Manager) Spawn(w *game.World, pos mgl32.Vec2) (*game.Character, error) {
	class, ok := m.Selected()
	if !ok {
		return nil, ErrNoClass
	}

	c := game.NewCharacter(class, pos)
	w.Spawn(c)
	return c, nil
}

func (m *Manager) equipmentByType(code int) (*rotmg.Equipment, bool) {
	for v := range m.assets.GetAll(m.category) {
		if e, ok := v.(*rotmg.Equipment); ok && e.Type == code {
			return e, true
		}
	}
	return nil, false
}
