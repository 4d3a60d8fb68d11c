package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/render"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

const CharacterProgram = "billboard/texture"

var white = mgl32.Vec4{1, 1, 1, 1}

// Character is a movable entity spawned from a player class. It keeps its
// own copy of the class so later selections never reach it.
type Character struct {
	Base

	class rotmg.Player
	// Velocity in units per second.
	Velocity mgl32.Vec2
}

func NewCharacter(class rotmg.Player, pos mgl32.Vec2) *Character {
	c := &Character{
		Base:  NewBase(pos),
		class: copyPlayer(class),
	}
	if class.Size > 0 {
		c.Scale = float32(class.Size) / 100
	}
	return c
}

// Class returns the class the character was spawned from.
func (c *Character) Class() rotmg.Player {
	return copyPlayer(c.class)
}

func (c *Character) Update(elapsed time.Duration) {
	c.Base.Update(elapsed)
	c.Pos = c.Pos.Add(Scale(c.Velocity, float32(elapsed.Seconds())))
}

// Render draws the class sprite as a textured quad sized to the sprite's
// aspect ratio.
func (c *Character) Render(rc *render.Context) error {
	key, ok := c.class.TextureKey()
	if !ok {
		return fmt.Errorf("class %q has no texture", c.class.ID)
	}

	tex, err := rc.Texture(key)
	if err != nil {
		return err
	}
	prog, err := rc.Program(CharacterProgram)
	if err != nil {
		return err
	}

	quad := render.Rect{}.Expand(halfExtents(tex.Region).X(), halfExtents(tex.Region).Y())
	return drawQuad(rc, quad.TexturedVerts(tex.Region), render.TexturedStride, render.DrawCall{
		Program:   prog,
		Primitive: render.TriangleStrip,
		ModelView: c.ModelView(),
		Color:     white,
		Texture:   tex,
	})
}

// halfExtents fits the region into a unit square keeping its aspect ratio.
func halfExtents(r render.Rect) mgl32.Vec2 {
	longest := max(r.W, r.H)
	if longest <= 0 {
		return mgl32.Vec2{0.5, 0.5}
	}
	return ScaleXY(mgl32.Vec2{0.5, 0.5}, r.W/longest, r.H/longest)
}

func copyPlayer(p rotmg.Player) rotmg.Player {
	p.SlotTypes = slices.Clone(p.SlotTypes)
	p.Equipment = slices.Clone(p.Equipment)
	if p.Texture != nil {
		t := *p.Texture
		p.Texture = &t
	}
	if p.AnimatedTexture != nil {
		t := *p.AnimatedTexture
		p.AnimatedTexture = &t
	}
	return p
}
