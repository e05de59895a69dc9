// Package device abstracts the graphics backend consumed by the lighting
// renderer: render targets, clears, blend selection and indexed draws.
// Implementations live in the opengl and soft subpackages.
package device

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is an RGBA color with float channels.
type Color struct {
	R, G, B, A float32
}

// White is the fully lit mask value.
var White = Color{1, 1, 1, 1}

// Black is the fully shadowed mask value.
var Black = Color{0, 0, 0, 1}

// Vertex is a world-space position with a color payload. Caster outlines,
// shadow volumes and light quads all go through the backend in this format.
type Vertex struct {
	Position mgl32.Vec2
	Color    Color
}

// BlendMode selects how a draw combines with the bound target.
type BlendMode int

const (
	// BlendOpaque replaces the destination with the source.
	BlendOpaque BlendMode = iota
	// BlendAlpha is standard source-alpha blending.
	BlendAlpha
	// BlendAdditive sums source and destination for color and alpha.
	// Lightmap accumulation relies on this; contributions are not clamped
	// per light.
	BlendAdditive
)

// Target is an offscreen render target owned by a backend.
type Target interface {
	Size() (width, height int32)
}

// Texture is anything the backend can sample during a lit draw, such as a
// normal map. Targets double as textures.
type Texture interface {
	Size() (width, height int32)
}

// LightParams carries the per-light uniforms for a lit draw.
type LightParams struct {
	Position  mgl32.Vec2
	Range     float32
	Intensity float32
	// Depth is a 2D attenuation hint: the light's height above the plane
	// when shading against a normal map. It is not a z-buffer value.
	Depth float32

	// Spot cone, radians. Ignored unless Spot is set.
	Spot       bool
	InnerAngle float32
	OuterAngle float32
	Direction  mgl32.Vec2
}

// Backend is the graphics device consumed by the lighting renderer.
// All calls happen on the render thread, in call order.
type Backend interface {
	// CreateTarget allocates an offscreen render target.
	CreateTarget(width, height int32) (Target, error)

	// SetTarget binds a render target for subsequent clears and draws.
	SetTarget(t Target)

	// Clear fills the bound target with a color.
	Clear(c Color)

	// SetProjection sets the world-to-clip projection for draws.
	SetProjection(proj mgl32.Mat4)

	// SetInverseTextureSize informs shaders of 1/width, 1/height of the
	// output targets, for texel-accurate mask sampling.
	SetInverseTextureSize(w, h float32)

	// SetShadowsEnabled toggles shadow-mask sampling in lit draws.
	SetShadowsEnabled(enabled bool)

	// SetNormalMap binds a normal map for lit draws, or disables
	// normal-map shading when nil.
	SetNormalMap(tex Texture)

	// SetShadowMask binds the per-light visibility mask sampled by lit draws.
	SetShadowMask(t Target)

	// DrawTriangles draws an indexed triangle list with flat vertex colors.
	DrawTriangles(blend BlendMode, verts []Vertex, indices []uint32)

	// DrawLight draws an indexed triangle list shaded by the light
	// parameters, modulated by the bound shadow mask and normal map.
	DrawLight(params LightParams, blend BlendMode, verts []Vertex, indices []uint32)
}
