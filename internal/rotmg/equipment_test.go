package rotmg

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestEquipment_TierLabel(t *testing.T) {
	tests := map[string]struct {
		tier int
		exp  string
	}{
		"tiered":   {tier: 12, exp: "T12"},
		"zero":     {tier: 0, exp: "T0"},
		"untiered": {tier: Untiered, exp: "UT"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := &Equipment{Tier: tt.tier}
			testutil.AssertEqual(t, "label", e.TierLabel(), tt.exp)
		})
	}
}

func TestEquipment_Validate(t *testing.T) {
	tests := map[string]struct {
		equip  Equipment
		expErr string
	}{
		"valid": {
			equip: Equipment{XMLObject: XMLObject{ID: "Dagger", Type: 0xa00}},
		},
		"missing id": {
			equip:  Equipment{XMLObject: XMLObject{Type: 0xa00}},
			expErr: "object id is required",
		},
		"bad damage": {
			equip: Equipment{
				XMLObject:   XMLObject{ID: "Dagger", Type: 0xa00},
				Projectiles: []ProjectileSpec{{MinDamage: 30, MaxDamage: 10}},
			},
			expErr: "min damage above max damage",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.equip.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestEquipment_CreateInstance(t *testing.T) {
	potion := &Equipment{XMLObject: XMLObject{ID: "Health Potion"}, Consumable: true, Soulbound: true}

	a := potion.CreateInstance()
	b := potion.CreateInstance()

	testutil.AssertEqual(t, "key", a.Key, "Health Potion")
	testutil.AssertEqual(t, "uses", a.Uses, 1)
	testutil.AssertEqual(t, "soulbound", a.Soulbound, true)
	testutil.AssertEqual(t, "definition", a.Equipment, potion)
	testutil.AssertEqual(t, "distinct ids", a.InstanceID != b.InstanceID, true)
}
