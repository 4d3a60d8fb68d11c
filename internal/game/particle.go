package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/render"
)

const (
	ParticleProgram      = "billboard/color"
	DefaultParticleScale = 1.2
)

var (
	particleBase    = render.Rect{}.Expand(0.1, 0.1)
	particleOutline = render.Rect{}.Expand(0.15, 0.15)
	outlineColor    = mgl32.Vec4{0, 0, 0, 1}
)

// Target is what a particle is anchored to.
type Target interface {
	Position() mgl32.Vec2
}

// Point is a fixed target.
type Point mgl32.Vec2

func (p Point) Position() mgl32.Vec2 { return mgl32.Vec2(p) }

// Particle is a short lived visual effect anchored to a target. Its
// position is recomputed from the target every update, so following a
// moving object never drifts.
type Particle struct {
	Base

	target   Target
	lifetime time.Duration
	color    mgl32.Vec4
	// delta is the drift in units per second; z drifts the elevation.
	delta  mgl32.Vec3
	offset mgl32.Vec2
}

type ParticleOpt func(*Particle)

func WithDelta(d mgl32.Vec3) ParticleOpt {
	return func(p *Particle) {
		p.delta = d
	}
}

func WithOffset(o mgl32.Vec2) ParticleOpt {
	return func(p *Particle) {
		p.offset = o
	}
}

func WithParticleScale(s float32) ParticleOpt {
	return func(p *Particle) {
		p.Scale = s
	}
}

func NewParticle(target Target, lifetime time.Duration, color mgl32.Vec4, opts ...ParticleOpt) *Particle {
	p := &Particle{
		Base:     NewBase(target.Position()),
		target:   target,
		lifetime: lifetime,
		color:    color,
	}
	p.Scale = DefaultParticleScale

	for _, opt := range opts {
		opt(p)
	}

	p.Pos = target.Position().Add(p.offset)
	return p
}

// Offset is the accumulated displacement from the target.
func (p *Particle) Offset() mgl32.Vec2 { return p.offset }

func (p *Particle) Lifetime() time.Duration { return p.lifetime }

func (p *Particle) Update(elapsed time.Duration) {
	p.Base.Update(elapsed)

	dt := float32(elapsed.Seconds())
	p.offset = p.offset.Add(Scale(p.delta.Vec2(), dt))
	p.Z += p.delta.Z() * dt
	p.Pos = p.target.Position().Add(p.offset)

	if p.Time > p.lifetime {
		p.Delete()
	}
}

func (p *Particle) CollidesWith(Object) bool   { return false }
func (p *Particle) CanCollideWith(Object) bool { return false }

func (p *Particle) ModelView() mgl32.Mat4 {
	return mgl32.Translate3D(p.Pos.X(), p.Pos.Y(), p.Z).Mul4(mgl32.Scale3D(p.Scale, p.Scale, 1))
}

// Render draws a black outline quad, then the colored quad over it.
func (p *Particle) Render(rc *render.Context) error {
	prog, err := rc.Program(ParticleProgram)
	if err != nil {
		return err
	}

	// Everything is resolved before the first draw, so only a device failure
	// can stop between the outline and the base.
	mv := p.ModelView()
	quads := []struct {
		rect  render.Rect
		color mgl32.Vec4
	}{
		{particleOutline, outlineColor},
		{particleBase, p.color},
	}
	for _, q := range quads {
		err := drawQuad(rc, q.rect.Verts(), render.PositionStride, render.DrawCall{
			Program:   prog,
			Primitive: render.TriangleStrip,
			ModelView: mv,
			Color:     q.color,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
