package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pixil98/go-rotmg/internal/render"
)

// Object is a live world entity. Objects are alive from construction until
// Delete is called; the owning World removes deleted objects when it reaps.
type Object interface {
	ID() string
	Position() mgl32.Vec2
	Elevation() float32
	Update(elapsed time.Duration)
	Render(rc *render.Context) error
	CollidesWith(other Object) bool
	CanCollideWith(other Object) bool
	Deleted() bool
	Delete()
}

// Base holds the spatial state every object shares. Variants embed it and
// supply Render.
type Base struct {
	id      string
	deleted bool

	Pos mgl32.Vec2
	Z   float32
	// Rotation around the view axis in radians.
	Rotation float32
	Scale    float32
	// Time is the accumulated update time since spawn.
	Time time.Duration
}

func NewBase(pos mgl32.Vec2) Base {
	return Base{
		id:    uuid.New().String(),
		Pos:   pos,
		Scale: 1,
	}
}

func (b *Base) ID() string           { return b.id }
func (b *Base) Position() mgl32.Vec2 { return b.Pos }
func (b *Base) Elevation() float32   { return b.Z }
func (b *Base) Deleted() bool        { return b.deleted }
func (b *Base) Delete()              { b.deleted = true }

func (b *Base) Update(elapsed time.Duration) {
	b.Time += elapsed
}

func (b *Base) CollidesWith(Object) bool   { return true }
func (b *Base) CanCollideWith(Object) bool { return true }

// ModelView places the object: translate to position and elevation, rotate,
// then scale in the view plane.
func (b *Base) ModelView() mgl32.Mat4 {
	return mgl32.Translate3D(b.Pos.X(), b.Pos.Y(), b.Z).
		Mul4(mgl32.HomogRotate3DZ(b.Rotation)).
		Mul4(mgl32.Scale3D(b.Scale, b.Scale, 1))
}

// drawQuad uploads one quad to the shared buffer, draws it and finishes the
// buffer whatever the outcome.
func drawQuad(rc *render.Context, verts []float32, stride int, call render.DrawCall) error {
	buf, err := rc.Buffers().Acquire()
	if err != nil {
		return err
	}
	defer buf.Finish()

	if err := buf.Upload(verts, stride); err != nil {
		return err
	}
	return rc.Draw(buf, call)
}
