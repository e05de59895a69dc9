package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen2d/internal/engine/device"
	"github.com/Faultbox/lumen2d/internal/engine/device/soft"
	"github.com/Faultbox/lumen2d/internal/engine/shadow"
	pkgmath "github.com/Faultbox/lumen2d/pkg/math"
)

// fakeTarget is a sized no-storage render target.
type fakeTarget struct {
	width, height int32
}

func (t *fakeTarget) Size() (int32, int32) {
	return t.width, t.height
}

// drawCall records one indexed draw issued to the backend.
type drawCall struct {
	blend   device.BlendMode
	verts   int
	indices int
}

// recordingBackend captures the call sequence without rasterizing anything.
type recordingBackend struct {
	draws  []drawCall
	lights []device.LightParams
	clears []device.Color
}

func (b *recordingBackend) CreateTarget(width, height int32) (device.Target, error) {
	return &fakeTarget{width: width, height: height}, nil
}

func (b *recordingBackend) SetTarget(t device.Target)          {}
func (b *recordingBackend) Clear(c device.Color)               { b.clears = append(b.clears, c) }
func (b *recordingBackend) SetProjection(proj mgl32.Mat4)      {}
func (b *recordingBackend) SetInverseTextureSize(w, h float32) {}
func (b *recordingBackend) SetShadowsEnabled(enabled bool)     {}
func (b *recordingBackend) SetNormalMap(tex device.Texture)    {}
func (b *recordingBackend) SetShadowMask(t device.Target)      {}

func (b *recordingBackend) DrawTriangles(blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	b.draws = append(b.draws, drawCall{blend: blend, verts: len(verts), indices: len(indices)})
}

func (b *recordingBackend) DrawLight(params device.LightParams, blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	b.lights = append(b.lights, params)
	b.draws = append(b.draws, drawCall{blend: blend, verts: len(verts), indices: len(indices)})
}

func (b *recordingBackend) countBlend(blend device.BlendMode) int {
	n := 0
	for _, d := range b.draws {
		if d.blend == blend {
			n++
		}
	}
	return n
}

// leftTriangle is a caster with exactly one edge facing away from a light
// positioned to its left.
var leftTriangle = []mgl32.Vec2{{-15, 0}, {10, -10}, {10, 10}}

func newTestRenderer(t *testing.T, backend device.Backend, gen shadow.Generator, w, h int32) *Renderer {
	t.Helper()
	r, err := NewRenderer(backend, gen, Config{Width: w, Height: h})
	require.NoError(t, err)
	return r
}

func TestNewRendererPoolError(t *testing.T) {
	_, err := NewRenderer(&recordingBackend{}, shadow.NewBatchGenerator(0), Config{
		Width: 4, Height: 4, PoolSize: -1,
	})
	require.ErrorIs(t, err, ErrPoolSize)
}

func TestSubmitCasterArenaOverflow(t *testing.T) {
	r, err := NewRenderer(&recordingBackend{}, shadow.NewBatchGenerator(0), Config{
		Width: 4, Height: 4, ArenaCapacity: 4,
	})
	require.NoError(t, err)

	tri := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
	r.SubmitCaster(pkgmath.Identity(), tri, mgl32.Vec2{}, shadow.TypeSolid)
	assert.Equal(t, 1, r.ops.Len())
	assert.Equal(t, 3, r.arena.Size())

	// Does not fit: dropped whole, no op acquired.
	r.SubmitCaster(pkgmath.Identity(), tri, mgl32.Vec2{}, shadow.TypeSolid)
	assert.Equal(t, 1, r.ops.Len())
	assert.Equal(t, 3, r.arena.Size())

	r.SubmitCaster(pkgmath.Identity(), tri[:1], mgl32.Vec2{}, shadow.TypeSolid)
	assert.Equal(t, 2, r.ops.Len())
	assert.Equal(t, 4, r.arena.Size())
}

func TestSubmitCasterTransforms(t *testing.T) {
	r := newTestRenderer(t, &recordingBackend{}, shadow.NewBatchGenerator(0), 64, 64)

	r.SubmitCaster(pkgmath.Translation(100, 200), leftTriangle, mgl32.Vec2{5, 5}, shadow.TypeIlluminated)
	require.Equal(t, 3, r.arena.Size())

	verts := r.arena.Vertices()
	// t * (v + translation)
	assert.Equal(t, mgl32.Vec2{90, 205}, verts[0].Position)
	assert.Equal(t, device.White, verts[0].Color)

	r.Reset()
	r.SubmitCaster(pkgmath.Translation(100, 200), leftTriangle, mgl32.Vec2{}, shadow.TypeSolid)
	assert.Equal(t, device.Black, r.arena.Vertices()[0].Color)
}

func TestSubmitSpotLightStoresRadians(t *testing.T) {
	r := newTestRenderer(t, &recordingBackend{}, shadow.NewBatchGenerator(0), 64, 64)

	r.SubmitSpotLight(pkgmath.Translation(10, 20), device.White, 15, 45, 300, 1, 4, 30)
	require.Len(t, r.spotLights, 1)

	l := r.spotLights[0]
	assert.Equal(t, Spot, l.Kind)
	assert.Equal(t, mgl32.Vec2{10, 20}, l.Position)
	assert.InDelta(t, float64(mgl32.DegToRad(15)), float64(l.InnerAngle), 1e-6)
	assert.InDelta(t, float64(mgl32.DegToRad(45)), float64(l.OuterAngle), 1e-6)
	// Identity orientation: cone points along +Y.
	assert.Equal(t, mgl32.Vec2{0, 1}, l.Direction)
}

func TestRenderPointBeforeSpot(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(t, backend, shadow.NewBatchGenerator(0), 64, 64)

	// Submitted spot-first, drawn point-first.
	r.SubmitSpotLight(pkgmath.Translation(10, 10), device.White, 10, 40, 100, 1, 4, 30)
	r.SubmitPointLight(pkgmath.Translation(30, 30), device.White, 100, 1, 4, 30)
	r.Render(nil, device.Color{}, false, false)

	require.Len(t, backend.lights, 2)
	assert.False(t, backend.lights[0].Spot)
	assert.True(t, backend.lights[1].Spot)
}

func TestRenderOutOfRangeCasterSkipped(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(t, backend, shadow.NewBatchGenerator(0), 64, 64)

	r.SubmitCaster(pkgmath.Translation(1000, 1000), leftTriangle, mgl32.Vec2{}, shadow.TypeSolid)
	r.SubmitPointLight(pkgmath.Translation(10, 10), device.White, 50, 1, 4, 30)
	r.Render(nil, device.Color{}, true, false)

	// No visible caster: no shadow volumes, no cutouts, light still drawn.
	assert.Equal(t, 0, backend.countBlend(device.BlendAlpha))
	assert.Equal(t, 0, backend.countBlend(device.BlendOpaque))
	assert.Equal(t, 1, backend.countBlend(device.BlendAdditive))
}

func TestRenderAnyVertexInRangeIncludesCaster(t *testing.T) {
	backend := &recordingBackend{}
	r := newTestRenderer(t, backend, shadow.NewBatchGenerator(0), 64, 64)

	// One vertex 30 units from the light, the rest far outside the range.
	spear := []mgl32.Vec2{{40, 10}, {2000, 0}, {2000, 20}}
	r.SubmitCaster(pkgmath.Identity(), spear, mgl32.Vec2{}, shadow.TypeSolid)
	r.SubmitPointLight(pkgmath.Translation(10, 10), device.White, 50, 1, 4, 30)
	r.Render(nil, device.Color{}, true, false)

	// The whole caster is extruded and cut out, not just the near vertex.
	assert.GreaterOrEqual(t, backend.countBlend(device.BlendAlpha), 1)
	assert.Equal(t, 1, backend.countBlend(device.BlendOpaque))
}

func TestRenderFlushAndRetry(t *testing.T) {
	backend := &recordingBackend{}
	// Room for two single-edge casters per batch.
	r := newTestRenderer(t, backend, shadow.NewBatchGenerator(8), 256, 256)

	for i := 0; i < 3; i++ {
		r.SubmitCaster(pkgmath.Translation(float32(150+i*5), 100), leftTriangle, mgl32.Vec2{}, shadow.TypeSolid)
	}
	r.SubmitPointLight(pkgmath.Translation(100, 100), device.White, 200, 1, 0, 30)
	r.Render(nil, device.Color{}, true, false)

	// The third caster overflows the batch: one mid-loop flush plus the
	// final flush.
	assert.Equal(t, 2, backend.countBlend(device.BlendAlpha))
	assert.Equal(t, 3, backend.countBlend(device.BlendOpaque))
}

// TestRenderFlushTransparency renders the same scene with a tiny generator
// batch and an effectively unlimited one and requires identical shadow masks.
func TestRenderFlushTransparency(t *testing.T) {
	const size = 64

	mask := func(batchCapacity int) *soft.Target {
		r := newTestRenderer(t, soft.New(), shadow.NewBatchGenerator(batchCapacity), size, size)
		for i := 0; i < 3; i++ {
			r.SubmitCaster(pkgmath.Translation(float32(30+i*4), float32(20+i*8)),
				leftTriangle, mgl32.Vec2{}, shadow.TypeIlluminated)
		}
		r.SubmitPointLight(pkgmath.Translation(10, 32), device.White, 100, 1, 0, 30)
		r.Render(nil, device.Color{}, true, false)

		target, ok := r.ShadowMask().(*soft.Target)
		require.True(t, ok)
		return target
	}

	small := mask(8)
	big := mask(0)

	lit := 0
	mismatched := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if small.At(x, y) != big.At(x, y) {
				mismatched++
			}
			if small.At(x, y).R > 0 {
				lit++
			}
		}
	}
	assert.Zero(t, mismatched, "flushing changed the rendered mask")
	assert.Greater(t, lit, 0, "scene produced an empty mask")
}

func TestRenderOccludedCasterStaysShadowed(t *testing.T) {
	r := newTestRenderer(t, soft.New(), shadow.NewBatchGenerator(0), 64, 64)

	square := []mgl32.Vec2{{-8, -8}, {8, -8}, {8, 8}, {-8, 8}}
	r.SubmitCaster(pkgmath.Translation(32, 32), square, mgl32.Vec2{}, shadow.TypeOccluded)
	r.SubmitPointLight(pkgmath.Translation(20, 32), device.White, 100, 1, 0, 30)
	r.Render(nil, device.Color{}, true, false)

	target, ok := r.ShadowMask().(*soft.Target)
	require.True(t, ok)
	assert.Zero(t, target.At(32, 32).R, "occluded caster interior must stay in shadow")
}

func TestRenderIlluminatedCutoutIsLit(t *testing.T) {
	r := newTestRenderer(t, soft.New(), shadow.NewBatchGenerator(0), 64, 64)

	square := []mgl32.Vec2{{-8, -8}, {8, -8}, {8, 8}, {-8, 8}}
	r.SubmitCaster(pkgmath.Translation(32, 32), square, mgl32.Vec2{}, shadow.TypeIlluminated)
	r.SubmitPointLight(pkgmath.Translation(20, 32), device.White, 100, 1, 0, 30)
	lightmap := r.Render(nil, device.Color{}, true, false)

	mask, ok := r.ShadowMask().(*soft.Target)
	require.True(t, ok)
	assert.InDelta(t, 1, float64(mask.At(32, 32).R), 1e-5)

	lm, ok := lightmap.(*soft.Target)
	require.True(t, ok)
	assert.Greater(t, lm.At(32, 32).R, float32(0), "illuminated cutout receives light")
}

// TestRenderAdditiveAccumulation checks the unclamped energy model: two
// identical lights on the same pixel contribute exactly twice one light.
func TestRenderAdditiveAccumulation(t *testing.T) {
	r := newTestRenderer(t, soft.New(), shadow.NewBatchGenerator(0), 64, 64)

	submit := func(n int) *soft.Target {
		for i := 0; i < n; i++ {
			r.SubmitPointLight(pkgmath.Translation(32, 32), device.White, 100, 1, 0, 30)
		}
		lm := r.Render(nil, device.Color{}, false, false)
		target, ok := lm.(*soft.Target)
		require.True(t, ok)
		return target
	}

	one := submit(1).At(32, 32)
	require.Greater(t, one.R, float32(0))

	two := submit(2).At(32, 32)
	assert.InDelta(t, float64(one.R)*2, float64(two.R), 1e-4)
	assert.InDelta(t, float64(one.G)*2, float64(two.G), 1e-4)
}

func TestRenderAmbientClear(t *testing.T) {
	r := newTestRenderer(t, soft.New(), shadow.NewBatchGenerator(0), 16, 16)

	ambient := device.Color{R: 0.2, G: 0.3, B: 0.4, A: 1}
	lm := r.Render(nil, ambient, true, false)

	target, ok := lm.(*soft.Target)
	require.True(t, ok)
	got := target.At(8, 8)
	assert.Equal(t, device.Color{R: 0.2, G: 0.3, B: 0.4, A: 0}, got,
		"lightmap clears to ambient with zero alpha")
}

func TestRenderResetsFrameState(t *testing.T) {
	r := newTestRenderer(t, &recordingBackend{}, shadow.NewBatchGenerator(0), 64, 64)

	r.SubmitCaster(pkgmath.Identity(), leftTriangle, mgl32.Vec2{}, shadow.TypeSolid)
	r.SubmitPointLight(pkgmath.Translation(10, 10), device.White, 50, 1, 4, 30)
	r.SubmitSpotLight(pkgmath.Translation(10, 10), device.White, 10, 40, 50, 1, 4, 30)

	lm := r.Render(nil, device.Color{}, true, false)
	assert.Same(t, r.Lightmap(), lm)
	assert.Zero(t, r.arena.Size())
	assert.Zero(t, r.ops.Len())
	assert.Empty(t, r.pointLights)
	assert.Empty(t, r.spotLights)
}

func TestResize(t *testing.T) {
	r := newTestRenderer(t, soft.New(), shadow.NewBatchGenerator(0), 64, 64)

	lm, sm := r.Lightmap(), r.ShadowMask()

	// Same dimensions: targets are reused, not recreated.
	require.NoError(t, r.Resize(64, 64))
	assert.Same(t, lm, r.Lightmap())
	assert.Same(t, sm, r.ShadowMask())

	// New dimensions: fresh targets of the new size.
	require.NoError(t, r.Resize(128, 32))
	assert.NotSame(t, lm, r.Lightmap())
	assert.NotSame(t, sm, r.ShadowMask())
	w, h := r.Lightmap().Size()
	assert.Equal(t, int32(128), w)
	assert.Equal(t, int32(32), h)
}
