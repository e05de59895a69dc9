// Package soft is a CPU implementation of the device backend. It rasterizes
// the same triangle lists the GPU path draws, with matching blend and light
// falloff math, so lighting behavior can be exercised headless.
package soft

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen2d/internal/engine/device"
)

// sampler is implemented by textures the backend can read per pixel.
type sampler interface {
	At(x, y int) device.Color
}

// Backend rasterizes into soft Targets.
type Backend struct {
	target *Target

	proj    mgl32.Mat4
	invProj mgl32.Mat4

	shadowsEnabled bool
	shadowMask     *Target
	normalMap      sampler
}

// New creates a software backend.
func New() *Backend {
	b := &Backend{}
	b.SetProjection(mgl32.Ident4())
	return b
}

// CreateTarget allocates a float RGBA target.
func (b *Backend) CreateTarget(width, height int32) (device.Target, error) {
	return NewTarget(width, height), nil
}

// SetTarget binds a target for clears and draws.
func (b *Backend) SetTarget(t device.Target) {
	b.target, _ = t.(*Target)
}

// Clear fills the bound target.
func (b *Backend) Clear(c device.Color) {
	if b.target != nil {
		b.target.Fill(c)
	}
}

// SetProjection sets the world-to-clip transform.
func (b *Backend) SetProjection(proj mgl32.Mat4) {
	b.proj = proj
	b.invProj = proj.Inv()
}

// SetInverseTextureSize is a no-op for the CPU path, which samples the mask
// by pixel coordinate directly.
func (b *Backend) SetInverseTextureSize(w, h float32) {}

// SetShadowsEnabled toggles mask sampling in lit draws.
func (b *Backend) SetShadowsEnabled(enabled bool) {
	b.shadowsEnabled = enabled
}

// SetNormalMap binds a normal map, or disables normal shading when nil.
func (b *Backend) SetNormalMap(tex device.Texture) {
	if tex == nil {
		b.normalMap = nil
		return
	}
	b.normalMap, _ = tex.(sampler)
}

// SetShadowMask binds the visibility mask sampled by lit draws.
func (b *Backend) SetShadowMask(t device.Target) {
	b.shadowMask, _ = t.(*Target)
}

// DrawTriangles draws an indexed triangle list with flat vertex colors.
func (b *Backend) DrawTriangles(blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	b.draw(blend, verts, indices, nil)
}

// DrawLight draws an indexed triangle list shaded per pixel by the light
// parameters, the bound shadow mask and the normal map.
func (b *Backend) DrawLight(params device.LightParams, blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	b.draw(blend, verts, indices, &params)
}

func (b *Backend) draw(blend device.BlendMode, verts []device.Vertex, indices []uint32, light *device.LightParams) {
	if b.target == nil {
		return
	}
	for i := 0; i+2 < len(indices); i += 3 {
		b.fillTriangle(blend, verts[indices[i]], verts[indices[i+1]], verts[indices[i+2]], light)
	}
}

// toScreen projects a world position into pixel coordinates.
func (b *Backend) toScreen(p mgl32.Vec2) mgl32.Vec2 {
	clip := b.proj.Mul4x1(mgl32.Vec4{p[0], p[1], 0, 1})
	w, h := b.target.Size()
	return mgl32.Vec2{
		(clip[0] + 1) * 0.5 * float32(w),
		(1 - clip[1]) * 0.5 * float32(h),
	}
}

// toWorld maps pixel coordinates back to world space.
func (b *Backend) toWorld(x, y float32) mgl32.Vec2 {
	w, h := b.target.Size()
	ndc := mgl32.Vec4{x/float32(w)*2 - 1, 1 - y/float32(h)*2, 0, 1}
	world := b.invProj.Mul4x1(ndc)
	return mgl32.Vec2{world[0], world[1]}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func (b *Backend) fillTriangle(blend device.BlendMode, v0, v1, v2 device.Vertex, light *device.LightParams) {
	p0 := b.toScreen(v0.Position)
	p1 := b.toScreen(v1.Position)
	p2 := b.toScreen(v2.Position)

	area := edge(p0[0], p0[1], p1[0], p1[1], p2[0], p2[1])
	if area == 0 {
		return
	}

	w, h := b.target.Size()
	minX := clampInt(int(stdmath.Floor(float64(min3(p0[0], p1[0], p2[0])))), 0, int(w)-1)
	maxX := clampInt(int(stdmath.Ceil(float64(max3(p0[0], p1[0], p2[0])))), 0, int(w)-1)
	minY := clampInt(int(stdmath.Floor(float64(min3(p0[1], p1[1], p2[1])))), 0, int(h)-1)
	maxY := clampInt(int(stdmath.Ceil(float64(max3(p0[1], p1[1], p2[1])))), 0, int(h)-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			e0 := edge(p1[0], p1[1], p2[0], p2[1], px, py)
			e1 := edge(p2[0], p2[1], p0[0], p0[1], px, py)
			e2 := edge(p0[0], p0[1], p1[0], p1[1], px, py)
			if area > 0 {
				if e0 < 0 || e1 < 0 || e2 < 0 {
					continue
				}
			} else {
				if e0 > 0 || e1 > 0 || e2 > 0 {
					continue
				}
			}

			// Barycentric color interpolation.
			w0 := e0 / area
			w1 := e1 / area
			w2 := e2 / area
			src := device.Color{
				R: w0*v0.Color.R + w1*v1.Color.R + w2*v2.Color.R,
				G: w0*v0.Color.G + w1*v1.Color.G + w2*v2.Color.G,
				B: w0*v0.Color.B + w1*v1.Color.B + w2*v2.Color.B,
				A: w0*v0.Color.A + w1*v1.Color.A + w2*v2.Color.A,
			}
			if light != nil {
				src = b.shade(*light, src, x, y, px, py)
			}
			b.blendPixel(blend, x, y, src)
		}
	}
}

// shade computes one pixel of a light's contribution: linear range falloff,
// cone falloff for spots, shadow-mask attenuation and optional normal-map
// response.
func (b *Backend) shade(p device.LightParams, tint device.Color, x, y int, px, py float32) device.Color {
	world := b.toWorld(px, py)
	dv := world.Sub(p.Position)
	dist := dv.Len()

	att := float32(0)
	if p.Range > 0 {
		att = 1 - dist/p.Range
	}
	if att <= 0 {
		return device.Color{}
	}
	att *= p.Intensity

	if p.Spot {
		att *= coneFalloff(dv, dist, p)
	}

	if b.shadowsEnabled && b.shadowMask != nil {
		att *= b.shadowMask.At(x, y).R
	}

	if b.normalMap != nil {
		att *= normalResponse(b.normalMap.At(x, y), dv, p.Depth)
	}

	return device.Color{R: tint.R * att, G: tint.G * att, B: tint.B * att, A: tint.A * att}
}

// coneFalloff is 1 inside the inner half-angle, 0 outside the outer one and
// linear in between.
func coneFalloff(dv mgl32.Vec2, dist float32, p device.LightParams) float32 {
	if dist == 0 {
		return 1
	}
	dir := p.Direction
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	cos := dv.Mul(1 / dist).Dot(dir)
	ang := float32(stdmath.Acos(float64(mgl32.Clamp(cos, -1, 1))))
	switch {
	case ang <= p.InnerAngle:
		return 1
	case ang >= p.OuterAngle:
		return 0
	default:
		return (p.OuterAngle - ang) / (p.OuterAngle - p.InnerAngle)
	}
}

// normalResponse evaluates N dot L against an RGB-encoded tangent-space
// normal, treating the light as sitting depth units above the plane.
func normalResponse(encoded device.Color, dv mgl32.Vec2, depth float32) float32 {
	n := mgl32.Vec3{encoded.R*2 - 1, encoded.G*2 - 1, encoded.B*2 - 1}
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	l := mgl32.Vec3{-dv[0], -dv[1], depth}
	if ll := l.Len(); ll > 0 {
		l = l.Mul(1 / ll)
	}
	d := n.Dot(l)
	if d < 0 {
		return 0
	}
	return d
}

func (b *Backend) blendPixel(blend device.BlendMode, x, y int, src device.Color) {
	t := b.target
	i := (y*int(t.width) + x) * 4
	switch blend {
	case device.BlendOpaque:
		t.pix[i] = src.R
		t.pix[i+1] = src.G
		t.pix[i+2] = src.B
		t.pix[i+3] = src.A
	case device.BlendAlpha:
		a := src.A
		t.pix[i] = src.R*a + t.pix[i]*(1-a)
		t.pix[i+1] = src.G*a + t.pix[i+1]*(1-a)
		t.pix[i+2] = src.B*a + t.pix[i+2]*(1-a)
		t.pix[i+3] = a + t.pix[i+3]*(1-a)
	case device.BlendAdditive:
		t.pix[i] += src.R
		t.pix[i+1] += src.G
		t.pix[i+2] += src.B
		t.pix[i+3] += src.A
	}
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
