package game

import "github.com/go-gl/mathgl/mgl32"

// Scale multiplies both components by s.
func Scale(v mgl32.Vec2, s float32) mgl32.Vec2 {
	return v.Mul(s)
}

// ScaleXY multiplies each component by its own factor.
func ScaleXY(v mgl32.Vec2, x, y float32) mgl32.Vec2 {
	return mgl32.Vec2{v.X() * x, v.Y() * y}
}

// MulComponents multiplies a and b component-wise.
func MulComponents(a, b mgl32.Vec2) mgl32.Vec2 {
	return ScaleXY(a, b.X(), b.Y())
}
