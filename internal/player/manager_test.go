package player

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/rotmg"
	"github.com/pixil98/go-testutil"
)

type mockRegistry struct {
	keys    []string
	records map[string]any
}

func (r *mockRegistry) add(key string, v any) {
	r.keys = append(r.keys, key)
	r.records[key] = v
}

func (r *mockRegistry) Get(category, key string) (any, bool) {
	if category != DefaultCategory {
		return nil, false
	}
	v, ok := r.records[key]
	return v, ok
}

func (r *mockRegistry) GetAll(category string) iter.Seq[any] {
	return func(yield func(any) bool) {
		if category != DefaultCategory {
			return
		}
		for _, k := range r.keys {
			if !yield(r.records[k]) {
				return
			}
		}
	}
}

func testRegistry() *mockRegistry {
	r := &mockRegistry{records: map[string]any{}}
	r.add("Dagger", &rotmg.Equipment{XMLObject: rotmg.XMLObject{Type: 0xa00, ID: "Dagger"}})
	r.add("Cloak", &rotmg.Equipment{XMLObject: rotmg.XMLObject{Type: 0xa01, ID: "Cloak"}, Soulbound: true})
	r.add("Rogue", &rotmg.Player{
		XMLObject: rotmg.XMLObject{Type: 0x300, ID: "Rogue"},
		SlotTypes: []int{2, 14, 6, 9},
		Equipment: []int{0xa00, 0xa01, 0xfff, -1},
	})
	r.add("Wizard", &rotmg.Player{
		XMLObject: rotmg.XMLObject{Type: 0x301, ID: "Wizard"},
		SlotTypes: []int{17, 11, 6, 9},
		Equipment: []int{-1, -1, -1, -1},
	})
	return r
}

func TestManager_SelectClass(t *testing.T) {
	tests := map[string]struct {
		key      string
		expErr   string
		expItems []string
	}{
		"starting equipment": {
			key:      "Rogue",
			expItems: []string{"Dagger", "Cloak"},
		},
		"no equipment": {
			key: "Wizard",
		},
		"missing": {
			key:    "Priest",
			expErr: `class "Priest" not found`,
		},
		"not a class": {
			key:    "Dagger",
			expErr: `"Dagger" is not a player class`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewManager(testRegistry())

			err := m.SelectClass(context.Background(), tt.key)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				_, ok := m.Selected()
				testutil.AssertEqual(t, "selected", ok, false)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			class, ok := m.Selected()
			testutil.AssertEqual(t, "selected", ok, true)
			testutil.AssertEqual(t, "class", class.ID, tt.key)

			var items []string
			for _, item := range m.Inventory() {
				if item != nil {
					items = append(items, item.Key)
				}
			}
			testutil.AssertEqual(t, "items", len(items), len(tt.expItems))
			for i := range tt.expItems {
				testutil.AssertEqual(t, "item", items[i], tt.expItems[i])
			}
		})
	}
}

func TestManager_GiveItem(t *testing.T) {
	m := NewManager(testRegistry(), WithInventorySize(2))

	item, slot, err := m.GiveItem("Cloak")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "slot", slot, 0)
	testutil.AssertEqual(t, "soulbound", item.Soulbound, true)

	if _, _, err := m.GiveItem("Cloak"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = m.GiveItem("Cloak")
	testutil.AssertEqual(t, "full", errors.Is(err, game.ErrInventoryFull), true)

	_, _, err = m.GiveItem("Rogue")
	testutil.AssertErrorContains(t, err, `"Rogue" is not equipment`)

	removed, ok := m.RemoveItem(item.InstanceID)
	testutil.AssertEqual(t, "removed", ok, true)
	testutil.AssertEqual(t, "removed id", removed.InstanceID, item.InstanceID)
	testutil.AssertEqual(t, "freed slot", m.Inventory()[0] == nil, true)
}

func TestManager_Spawn(t *testing.T) {
	m := NewManager(testRegistry())
	w := game.NewWorld()

	_, err := m.Spawn(w, mgl32.Vec2{})
	testutil.AssertEqual(t, "no class", errors.Is(err, ErrNoClass), true)

	if err := m.SelectClass(context.Background(), "Rogue"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rogue, err := m.Spawn(w, mgl32.Vec2{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.SelectClass(context.Background(), "Wizard"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wizard, err := m.Spawn(w, mgl32.Vec2{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w.Tick(time.Millisecond)
	testutil.AssertEqual(t, "world", w.Len(), 2)
	testutil.AssertEqual(t, "rogue keeps class", rogue.Class().ID, "Rogue")
	testutil.AssertEqual(t, "wizard class", wizard.Class().ID, "Wizard")
	testutil.AssertEqual(t, "position", rogue.Position(), mgl32.Vec2{1, 2})
}
