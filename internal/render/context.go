package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

// Registry categories the context resolves draw resources from.
const (
	ProgramCategory = "programs"
	SpriteCategory  = "sprites"
)

// Registry is the read side of the asset manager.
type Registry interface {
	Get(category, key string) (any, bool)
}

// ResolveError reports a program or texture the registry could not supply.
type ResolveError struct {
	Category string
	Key      string
	Err      error
}

func (e *ResolveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolving %s %q: not found", e.Category, e.Key)
	}
	return fmt.Sprintf("resolving %s %q: %v", e.Category, e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Texture locates the pixels a textured draw samples.
type Texture struct {
	AtlasID int    `json:"atlasId"`
	Image   string `json:"image,omitempty"`
	Region  Rect   `json:"region"`
}

type compiledProgram struct {
	src *rotmg.ProgramSource
	id  ProgramID
}

// Context is what an object's Render receives: the device, the shared
// buffer and resolvers into the asset registry.
type Context struct {
	device   Device
	buffers  *BufferPool
	assets   Registry
	view     mgl32.Mat4
	programs map[string]compiledProgram
}

func NewContext(d Device, assets Registry) *Context {
	return &Context{
		device:   d,
		buffers:  NewBufferPool(d),
		assets:   assets,
		view:     mgl32.Ident4(),
		programs: map[string]compiledProgram{},
	}
}

// Buffers returns the shared buffer pool.
func (c *Context) Buffers() *BufferPool { return c.buffers }

// View returns the view-projection of the current frame.
func (c *Context) View() mgl32.Mat4 { return c.view }

func (c *Context) SetView(m mgl32.Mat4) { c.view = m }

// Program resolves a program by key, compiling it the first time a given
// source is seen. A source replaced by a later load is compiled again.
func (c *Context) Program(key string) (ProgramID, error) {
	v, ok := c.assets.Get(ProgramCategory, key)
	if !ok {
		return 0, &ResolveError{Category: ProgramCategory, Key: key}
	}
	src, ok := v.(*rotmg.ProgramSource)
	if !ok {
		return 0, &ResolveError{Category: ProgramCategory, Key: key, Err: fmt.Errorf("unexpected record %T", v)}
	}

	if p, ok := c.programs[key]; ok && p.src == src {
		return p.id, nil
	}

	id, err := c.device.CompileProgram(key, src.Vertex, src.Fragment)
	if err != nil {
		return 0, &ResolveError{Category: ProgramCategory, Key: key, Err: err}
	}
	c.programs[key] = compiledProgram{src: src, id: id}
	return id, nil
}

// Texture resolves a sprite key into the region it samples.
func (c *Context) Texture(key string) (*Texture, error) {
	v, ok := c.assets.Get(SpriteCategory, key)
	if !ok {
		return nil, &ResolveError{Category: SpriteCategory, Key: key}
	}

	var s *rotmg.Sprite
	switch t := v.(type) {
	case *rotmg.Sprite:
		s = t
	case *rotmg.AnimatedSprite:
		s = &t.Sprite
	default:
		return nil, &ResolveError{Category: SpriteCategory, Key: key, Err: fmt.Errorf("unexpected record %T", v)}
	}

	return &Texture{
		AtlasID: s.AtlasID,
		Image:   s.Image,
		Region:  Rect{X: s.Position.X, Y: s.Position.Y, W: s.Position.W, H: s.Position.H},
	}, nil
}

// Draw issues call with the geometry currently uploaded to buf.
func (c *Context) Draw(buf *Buffer, call DrawCall) error {
	if c.buffers.held != buf {
		return fmt.Errorf("draw from a buffer that is not bound")
	}

	call.Buffer = c.buffers.id
	call.Stride = buf.stride
	call.Count = buf.count
	return c.device.Draw(call)
}
