package render

import "github.com/go-gl/mathgl/mgl32"

// Vertex layouts uploaded by the object renderers.
const (
	PositionStride = 2
	TexturedStride = 4
)

// Rect is an axis aligned rectangle in model space.
type Rect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Expand grows the rectangle by dx and dy on every side.
func (r Rect) Expand(dx, dy float32) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

// Min is the bottom left corner.
func (r Rect) Min() mgl32.Vec2 { return mgl32.Vec2{r.X, r.Y} }

// Max is the top right corner.
func (r Rect) Max() mgl32.Vec2 { return mgl32.Vec2{r.X + r.W, r.Y + r.H} }

// Verts returns the corners as a triangle strip of positions.
func (r Rect) Verts() []float32 {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.W, r.Y+r.H
	return []float32{
		x0, y0,
		x1, y0,
		x0, y1,
		x1, y1,
	}
}

// TexturedVerts interleaves the corners with the matching corners of uv.
func (r Rect) TexturedVerts(uv Rect) []float32 {
	pos := r.Verts()
	tex := uv.Verts()

	out := make([]float32, 0, len(pos)*2)
	for i := 0; i < len(pos); i += 2 {
		out = append(out, pos[i], pos[i+1], tex[i], tex[i+1])
	}
	return out
}
