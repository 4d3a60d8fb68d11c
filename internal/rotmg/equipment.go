package rotmg

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
)

// Tier of equipment without a tier (untiered, set and limited items).
const Untiered = -1

// ProjectileSpec describes what a weapon fires.
type ProjectileSpec struct {
	ObjectID   string  `json:"objectId"`
	Speed      float64 `json:"speed"`
	MinDamage  int     `json:"minDamage"`
	MaxDamage  int     `json:"maxDamage"`
	LifetimeMS int     `json:"lifetimeMs"`
}

// StatBonus is a stat change applied while an item is equipped.
type StatBonus struct {
	Stat   string `json:"stat"`
	Amount int    `json:"amount"`
}

// Equipment is an item definition.
type Equipment struct {
	XMLObject

	SlotType    int              `json:"slotType"`
	Tier        int              `json:"tier"`
	BagType     int              `json:"bagType"`
	RateOfFire  float64          `json:"rateOfFire,omitempty"`
	FeedPower   int              `json:"feedPower,omitempty"`
	Soulbound   bool             `json:"soulbound,omitempty"`
	Consumable  bool             `json:"consumable,omitempty"`
	Projectiles []ProjectileSpec `json:"projectiles,omitempty"`
	Bonuses     []StatBonus      `json:"bonuses,omitempty"`
}

func (e *Equipment) Kind() Kind { return KindEquipment }

func (e *Equipment) Validate() error {
	el := errors.NewErrorList()
	el.Add(e.XMLObject.Validate())
	if e.SlotType < 0 {
		el.Add(fmt.Errorf("equipment %q slot type %d is invalid", e.ID, e.SlotType))
	}
	for i, p := range e.Projectiles {
		if p.MinDamage > p.MaxDamage {
			el.Add(fmt.Errorf("equipment %q projectile %d: min damage above max damage", e.ID, i))
		}
	}
	return el.Err()
}

// TierLabel renders the tier the way the game shows it.
func (e *Equipment) TierLabel() string {
	if e.Tier == Untiered {
		return "UT"
	}
	return fmt.Sprintf("T%d", e.Tier)
}

// ItemInstance is a mutable runtime copy of an equipment definition, such as
// an item sitting in an inventory.
type ItemInstance struct {
	InstanceID string     `json:"instanceId"`
	Equipment  *Equipment `json:"-"`
	Key        string     `json:"key"`

	Soulbound bool `json:"soulbound"`
	// Uses counts remaining uses of consumables, 0 otherwise.
	Uses int `json:"uses,omitempty"`
}

// CreateInstance makes a new item from the definition.
func (e *Equipment) CreateInstance() *ItemInstance {
	item := &ItemInstance{
		InstanceID: uuid.New().String(),
		Equipment:  e,
		Key:        e.ID,
		Soulbound:  e.Soulbound,
	}
	if e.Consumable {
		item.Uses = 1
	}
	return item
}
