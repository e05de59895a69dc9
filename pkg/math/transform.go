// Package math provides 2D math types for light and caster placement.
package math

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a 2D affine transform: two basis vectors and a translation.
// It places casters and lights in world space.
type Transform struct {
	IX mgl32.Vec2 // X basis (right)
	IY mgl32.Vec2 // Y basis (up)
	T  mgl32.Vec2 // translation
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		IX: mgl32.Vec2{1, 0},
		IY: mgl32.Vec2{0, 1},
	}
}

// Translation returns a pure translation transform.
func Translation(x, y float32) Transform {
	t := Identity()
	t.T = mgl32.Vec2{x, y}
	return t
}

// Rotation returns a pure rotation transform (counter-clockwise, radians).
func Rotation(rad float32) Transform {
	s := float32(stdmath.Sin(float64(rad)))
	c := float32(stdmath.Cos(float64(rad)))
	return Transform{
		IX: mgl32.Vec2{c, s},
		IY: mgl32.Vec2{-s, c},
	}
}

// Apply transforms a point: IX*v.X + IY*v.Y + T.
func (t Transform) Apply(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		t.IX[0]*v[0] + t.IY[0]*v[1] + t.T[0],
		t.IX[1]*v[0] + t.IY[1]*v[1] + t.T[1],
	}
}

// ApplyVector transforms a direction, ignoring translation.
func (t Transform) ApplyVector(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		t.IX[0]*v[0] + t.IY[0]*v[1],
		t.IX[1]*v[0] + t.IY[1]*v[1],
	}
}

// Mul composes two transforms: the result applies o first, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		IX: t.ApplyVector(o.IX),
		IY: t.ApplyVector(o.IY),
		T:  t.Apply(o.T),
	}
}

// Translate returns t with an additional local-space translation applied first.
func (t Transform) Translate(x, y float32) Transform {
	out := t
	out.T = t.Apply(mgl32.Vec2{x, y})
	return out
}

// Rotate returns t with an additional local-space rotation applied first.
func (t Transform) Rotate(rad float32) Transform {
	return t.Mul(Rotation(rad))
}

// Position returns the translation component.
func (t Transform) Position() mgl32.Vec2 {
	return t.T
}

// Up returns the local Y basis vector.
func (t Transform) Up() mgl32.Vec2 {
	return t.IY
}

// Right returns the local X basis vector.
func (t Transform) Right() mgl32.Vec2 {
	return t.IX
}
