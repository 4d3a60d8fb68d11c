package render

import "github.com/go-gl/mathgl/mgl32"

// Handles issued by a Device.
type (
	BufferID  int
	ProgramID int
)

// Primitive is the topology of a draw call.
type Primitive int

const (
	TriangleStrip Primitive = iota
	Triangles
)

func (p Primitive) String() string {
	if p == Triangles {
		return "triangles"
	}
	return "triangle-strip"
}

// DrawCall is everything a Device needs to issue one draw.
type DrawCall struct {
	Program   ProgramID
	Buffer    BufferID
	Primitive Primitive
	// Stride is the number of floats per vertex.
	Stride    int
	Count     int
	ModelView mgl32.Mat4
	Color     mgl32.Vec4
	Texture   *Texture
}

// Device is the graphics capability the pipeline draws with. Implementations
// are not required to be safe for concurrent use.
type Device interface {
	NewBuffer() (BufferID, error)
	Upload(buf BufferID, data []float32) error
	CompileProgram(name, vertex, fragment string) (ProgramID, error)
	Draw(call DrawCall) error
	Release(buf BufferID)
}

// Rewinder is implemented by devices that can take back the draws issued
// since a mark. The pipeline uses it to keep a failed object out of the
// frame entirely.
type Rewinder interface {
	Mark() int
	Rewind(mark int)
}
