package rotmg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-errors"
)

// Kind identifies the variant of a parsed object definition.
type Kind int

const (
	KindObject Kind = iota
	KindEquipment
	KindPlayer
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindEquipment:
		return "equipment"
	case KindPlayer:
		return "player"
	case KindProjectile:
		return "projectile"
	default:
		return "object"
	}
}

// Object is the closed set of object definitions the structured-object
// loader produces: *XMLObject, *Equipment, *Player and *Projectile.
type Object interface {
	Base() *XMLObject
	Kind() Kind
	Validate() error
}

// TextureRef points at a sprite by sheet name and index.
type TextureRef struct {
	File  string `json:"file"`
	Index int    `json:"index"`
}

// XMLObject holds the fields every object definition shares. Definitions
// are immutable once parsed.
type XMLObject struct {
	Type        int    `json:"type"`
	ID          string `json:"id"`
	Class       string `json:"class"`
	DisplayID   string `json:"displayId,omitempty"`
	Description string `json:"description,omitempty"`

	Texture         *TextureRef `json:"texture,omitempty"`
	AnimatedTexture *TextureRef `json:"animatedTexture,omitempty"`
	Size            int         `json:"size,omitempty"`
}

func (o *XMLObject) Base() *XMLObject { return o }
func (o *XMLObject) Kind() Kind       { return KindObject }

// Validate satisfies storage.ValidatingSpec
func (o *XMLObject) Validate() error {
	el := errors.NewErrorList()
	if o.ID == "" {
		el.Add(fmt.Errorf("object id is required"))
	}
	if o.Type < 0 {
		el.Add(fmt.Errorf("object type code %d is invalid", o.Type))
	}
	return el.Err()
}

// DisplayName is the name shown to users.
func (o *XMLObject) DisplayName() string {
	if o.DisplayID != "" {
		return o.DisplayID
	}
	return o.ID
}

// TypeCode renders the numeric type the way the game files write it.
func (o *XMLObject) TypeCode() string {
	return fmt.Sprintf("0x%x", o.Type)
}

// TextureKey returns the sprite registry key of the object's texture.
func (o *XMLObject) TextureKey() (string, bool) {
	switch {
	case o.Texture != nil:
		return SpriteKey(o.Texture.File, o.Texture.Index), true
	case o.AnimatedTexture != nil:
		return AnimatedSpriteKey(o.AnimatedTexture.File, o.AnimatedTexture.Index, 0, 0, 0, 0), true
	default:
		return "", false
	}
}

// Stat is a player class stat with its starting and maximum value.
type Stat struct {
	Base int `json:"base"`
	Max  int `json:"max"`
}

// Player is a playable class definition.
type Player struct {
	XMLObject

	SlotTypes []int `json:"slotTypes"`
	// Equipment holds the starting item type codes per slot, -1 when empty.
	Equipment []int `json:"equipment"`

	MaxHitPoints   Stat `json:"maxHitPoints"`
	MaxMagicPoints Stat `json:"maxMagicPoints"`
	Attack         Stat `json:"attack"`
	Defense        Stat `json:"defense"`
	Speed          Stat `json:"speed"`
	Dexterity      Stat `json:"dexterity"`
	Vitality       Stat `json:"vitality"`
	Wisdom         Stat `json:"wisdom"`
}

func (p *Player) Kind() Kind { return KindPlayer }

func (p *Player) Validate() error {
	el := errors.NewErrorList()
	el.Add(p.XMLObject.Validate())
	if len(p.Equipment) > 0 && len(p.Equipment) != len(p.SlotTypes) {
		el.Add(fmt.Errorf("player %q has %d equipment entries for %d slots", p.ID, len(p.Equipment), len(p.SlotTypes)))
	}
	return el.Err()
}

// Projectile is a projectile object definition.
type Projectile struct {
	XMLObject

	AngleCorrection int     `json:"angleCorrection,omitempty"`
	Rotation        float64 `json:"rotation,omitempty"`
}

func (p *Projectile) Kind() Kind { return KindProjectile }

// parseTypeCode reads codes written as "0xa00" or "2560".
func parseTypeCode(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing type code %q: %w", s, err)
	}
	return int(v), nil
}

// parseCodeList reads comma separated codes such as "0xa0a, 0xa13, -1".
func parseCodeList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := parseTypeCode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
