// Package light implements per-frame dynamic 2D lighting: point and spot
// lights accumulate additively into a lightmap, attenuated per light by a
// shadow mask built from submitted caster polygons.
package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen2d/internal/engine/device"
	pkgmath "github.com/Faultbox/lumen2d/pkg/math"
)

// Kind tags a LightOp as a point or spot light.
type Kind int

const (
	// Point lights radiate in all directions.
	Point Kind = iota
	// Spot lights radiate in a cone along their direction.
	Spot
)

// LightOp holds one submitted light for the current frame. Spot fields are
// meaningful only when Kind is Spot.
type LightOp struct {
	Kind      Kind
	Transform pkgmath.Transform
	Position  mgl32.Vec2
	Color     device.Color
	Range     float32
	Intensity float32
	// Size is the penumbra softness parameter fed to the shadow generator.
	Size float32
	// Depth is a draw-order/attenuation hint, not a z-buffer value.
	Depth float32

	// Spot cone, radians.
	InnerAngle float32
	OuterAngle float32
	Direction  mgl32.Vec2
}
