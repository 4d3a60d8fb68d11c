package rotmg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type rawTexture struct {
	File  string `xml:"File"`
	Index string `xml:"Index"`
}

type rawStatValue struct {
	Value int `xml:",chardata"`
	Max   int `xml:"max,attr"`
}

type rawStatBonus struct {
	Effect string `xml:",chardata"`
	Stat   string `xml:"stat,attr"`
	Amount int    `xml:"amount,attr"`
}

type rawProjectile struct {
	ObjectID   string  `xml:"ObjectId"`
	Speed      float64 `xml:"Speed"`
	MinDamage  int     `xml:"MinDamage"`
	MaxDamage  int     `xml:"MaxDamage"`
	Damage     int     `xml:"Damage"`
	LifetimeMS int     `xml:"LifetimeMS"`
}

// rawObject is the union of every element the supported variants read.
type rawObject struct {
	Type        string `xml:"type,attr"`
	ID          string `xml:"id,attr"`
	Class       string `xml:"Class"`
	DisplayID   string `xml:"DisplayId"`
	Description string `xml:"Description"`
	Size        int    `xml:"Size"`

	Texture         *rawTexture `xml:"Texture"`
	AnimatedTexture *rawTexture `xml:"AnimatedTexture"`

	// Equipment
	SlotType        int             `xml:"SlotType"`
	Tier            *int            `xml:"Tier"`
	BagType         int             `xml:"BagType"`
	RateOfFire      float64         `xml:"RateOfFire"`
	FeedPower       int             `xml:"FeedPower"`
	Soulbound       *struct{}       `xml:"Soulbound"`
	Consumable      *struct{}       `xml:"Consumable"`
	Projectiles     []rawProjectile `xml:"Projectile"`
	ActivateOnEquip []rawStatBonus  `xml:"ActivateOnEquip"`

	// Player
	SlotTypes      string       `xml:"SlotTypes"`
	Equipment      string       `xml:"Equipment"`
	MaxHitPoints   rawStatValue `xml:"MaxHitPoints"`
	MaxMagicPoints rawStatValue `xml:"MaxMagicPoints"`
	Attack         rawStatValue `xml:"Attack"`
	Defense        rawStatValue `xml:"Defense"`
	Speed          rawStatValue `xml:"Speed"`
	Dexterity      rawStatValue `xml:"Dexterity"`
	HpRegen        rawStatValue `xml:"HpRegen"`
	MpRegen        rawStatValue `xml:"MpRegen"`

	// Projectile
	AngleCorrection int     `xml:"AngleCorrection"`
	Rotation        float64 `xml:"Rotation"`
}

// variantBuilder finishes a variant from the shared base and the raw element.
type variantBuilder func(base XMLObject, raw *rawObject) (Object, error)

// variants maps the <Class> discriminator to the variant it produces.
// Classes not listed become a plain *XMLObject.
var variants = map[string]variantBuilder{
	"Equipment":  buildEquipment,
	"Player":     buildPlayer,
	"Projectile": buildProjectile,
}

// decodeObjects parses an <Objects> document one <Object> at a time. Broken
// markup fails the whole document; an <Object> that does not decode or build
// is reported in skipped and left out.
func decodeObjects(data []byte) (objs []Object, skipped []error, err error) {
	d := xml.NewDecoder(bytes.NewReader(data))

	for i := 0; ; {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decoding objects: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Object" {
			continue
		}
		index := i
		i++

		var raw rawObject
		if err := d.DecodeElement(&raw, &start); err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil, nil, fmt.Errorf("decoding objects: %w", err)
			}
			// Whatever is left of the element is passed over by the
			// loop, which only acts on <Object> start tags.
			skipped = append(skipped, fmt.Errorf("object %d (%q): %w", index, objectID(start, raw), err))
			continue
		}

		obj, err := buildObject(&raw)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("object %d (%q): %w", index, raw.ID, err))
			continue
		}
		objs = append(objs, obj)
	}

	return objs, skipped, nil
}

// objectID names a partially decoded element for a skip message.
func objectID(start xml.StartElement, raw rawObject) string {
	if raw.ID != "" {
		return raw.ID
	}
	for _, a := range start.Attr {
		if a.Name.Local == "id" {
			return a.Value
		}
	}
	return ""
}

func buildObject(raw *rawObject) (Object, error) {
	code, err := parseTypeCode(raw.Type)
	if err != nil {
		return nil, err
	}

	base := XMLObject{
		Type:        code,
		ID:          strings.TrimSpace(raw.ID),
		Class:       strings.TrimSpace(raw.Class),
		DisplayID:   strings.TrimSpace(raw.DisplayID),
		Description: strings.TrimSpace(raw.Description),
		Size:        raw.Size,
	}
	if base.Texture, err = raw.Texture.ref(); err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	if base.AnimatedTexture, err = raw.AnimatedTexture.ref(); err != nil {
		return nil, fmt.Errorf("animated texture: %w", err)
	}

	var obj Object
	if build, ok := variants[base.Class]; ok {
		obj, err = build(base, raw)
		if err != nil {
			return nil, err
		}
	} else {
		obj = &base
	}

	if err := obj.Validate(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (t *rawTexture) ref() (*TextureRef, error) {
	if t == nil {
		return nil, nil
	}
	idx, err := parseTypeCode(t.Index)
	if err != nil {
		return nil, err
	}
	return &TextureRef{File: strings.TrimSpace(t.File), Index: idx}, nil
}

func buildEquipment(base XMLObject, raw *rawObject) (Object, error) {
	e := &Equipment{
		XMLObject:  base,
		SlotType:   raw.SlotType,
		Tier:       Untiered,
		BagType:    raw.BagType,
		RateOfFire: raw.RateOfFire,
		FeedPower:  raw.FeedPower,
		Soulbound:  raw.Soulbound != nil,
		Consumable: raw.Consumable != nil,
	}
	if raw.Tier != nil {
		e.Tier = *raw.Tier
	}

	for _, p := range raw.Projectiles {
		spec := ProjectileSpec{
			ObjectID:   strings.TrimSpace(p.ObjectID),
			Speed:      p.Speed,
			MinDamage:  p.MinDamage,
			MaxDamage:  p.MaxDamage,
			LifetimeMS: p.LifetimeMS,
		}
		if p.Damage != 0 && p.MinDamage == 0 && p.MaxDamage == 0 {
			spec.MinDamage, spec.MaxDamage = p.Damage, p.Damage
		}
		e.Projectiles = append(e.Projectiles, spec)
	}

	for _, b := range raw.ActivateOnEquip {
		if strings.TrimSpace(b.Effect) != "IncrementStat" {
			continue
		}
		e.Bonuses = append(e.Bonuses, StatBonus{Stat: statName(b.Stat), Amount: b.Amount})
	}

	return e, nil
}

func buildPlayer(base XMLObject, raw *rawObject) (Object, error) {
	slots, err := parseCodeList(raw.SlotTypes)
	if err != nil {
		return nil, fmt.Errorf("slot types: %w", err)
	}
	equip, err := parseCodeList(raw.Equipment)
	if err != nil {
		return nil, fmt.Errorf("equipment: %w", err)
	}

	return &Player{
		XMLObject:      base,
		SlotTypes:      slots,
		Equipment:      equip,
		MaxHitPoints:   raw.MaxHitPoints.stat(),
		MaxMagicPoints: raw.MaxMagicPoints.stat(),
		Attack:         raw.Attack.stat(),
		Defense:        raw.Defense.stat(),
		Speed:          raw.Speed.stat(),
		Dexterity:      raw.Dexterity.stat(),
		Vitality:       raw.HpRegen.stat(),
		Wisdom:         raw.MpRegen.stat(),
	}, nil
}

func buildProjectile(base XMLObject, raw *rawObject) (Object, error) {
	return &Projectile{
		XMLObject:       base,
		AngleCorrection: raw.AngleCorrection,
		Rotation:        raw.Rotation,
	}, nil
}

func (v rawStatValue) stat() Stat {
	return Stat{Base: v.Value, Max: v.Max}
}

// statNames maps the numeric stat ids used by ActivateOnEquip.
var statNames = map[string]string{
	"0":  "MaxHitPoints",
	"3":  "MaxMagicPoints",
	"20": "Attack",
	"21": "Defense",
	"22": "Speed",
	"26": "Vitality",
	"27": "Wisdom",
	"28": "Dexterity",
}

func statName(s string) string {
	s = strings.TrimSpace(s)
	if n, ok := statNames[s]; ok {
		return n
	}
	return s
}
