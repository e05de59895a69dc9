package light

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen2d/internal/engine/device"
	"github.com/Faultbox/lumen2d/internal/engine/shadow"
	"github.com/Faultbox/lumen2d/internal/logger"
	pkgmath "github.com/Faultbox/lumen2d/pkg/math"
)

// DefaultPoolSize is the initial shadow-op pool size.
const DefaultPoolSize = 256

// Config holds renderer construction parameters.
type Config struct {
	Width, Height int32
	// ArenaCapacity bounds per-frame caster vertices. 0 picks the default.
	ArenaCapacity int
	// PoolSize is the initial shadow-op pool size. 0 picks the default.
	PoolSize int
}

var quadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

// Renderer owns the per-frame lighting state: the vertex arena, the
// shadow-op pool, both light queues and the lightmap/shadow-mask targets.
// Submission and Render all happen on one render thread; Render overwrites
// and returns the same lightmap target every frame.
type Renderer struct {
	backend device.Backend
	gen     shadow.Generator

	arena *VertexArena
	ops   *ShadowOpPool

	pointLights []LightOp
	spotLights  []LightOp

	lightmap   device.Target
	shadowMask device.Target

	width, height int32
	proj          mgl32.Mat4

	// Per-frame scratch, grown once and reused.
	quad    [4]device.Vertex
	visible []int
	fan     []uint32
}

// NewRenderer creates a renderer and allocates its output targets.
func NewRenderer(backend device.Backend, gen shadow.Generator, cfg Config) (*Renderer, error) {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = DefaultPoolSize
	}
	pool, err := NewShadowOpPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating shadow op pool: %w", err)
	}

	r := &Renderer{
		backend: backend,
		gen:     gen,
		arena:   NewVertexArena(cfg.ArenaCapacity),
		ops:     pool,
	}

	width, height := cfg.Width, cfg.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if err := r.Resize(width, height); err != nil {
		return nil, err
	}

	logger.Debug("light renderer created",
		zap.Int("arena_capacity", r.arena.Capacity()),
		zap.Int("pool_size", pool.Cap()),
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	return r, nil
}

// SubmitCaster queues one shadow caster for this frame. Each local vertex is
// transformed as t * (vertex + translation) into the arena; the whole
// submission is dropped when the arena cannot hold it.
func (r *Renderer) SubmitCaster(t pkgmath.Transform, localVerts []mgl32.Vec2, translation mgl32.Vec2, st shadow.Type) {
	slots, ok := r.arena.Reserve(len(localVerts))
	if !ok {
		// Degrade gracefully: a frame never stalls on scene complexity.
		logger.Debug("vertex arena full, caster dropped",
			zap.Int("vertices", len(localVerts)),
			zap.Int("arena_size", r.arena.Size()),
		)
		return
	}

	op := r.ops.Acquire()
	op.Type = st
	op.Count = len(localVerts)
	op.Offset = r.arena.Size() - len(localVerts)

	// The vertex color doubles as the cutout color for the caster's own
	// polygon: illuminated casters punch a lit hole, solid casters a
	// shadow-colored one.
	c := device.Black
	if st == shadow.TypeIlluminated {
		c = device.White
	}
	for i, v := range localVerts {
		slots[i] = device.Vertex{
			Position: t.Apply(v.Add(translation)),
			Color:    c,
		}
	}
}

// SubmitPointLight queues a point light. Its location derives from the
// transform's translation. Range and intensity are not clamped.
func (r *Renderer) SubmitPointLight(t pkgmath.Transform, color device.Color, rng, intensity, size, depth float32) {
	r.pointLights = append(r.pointLights, LightOp{
		Kind:      Point,
		Transform: t,
		Position:  t.Position(),
		Color:     color,
		Range:     rng,
		Intensity: intensity,
		Size:      size,
		Depth:     depth,
	})
}

// SubmitSpotLight queues a spot light. The cone direction derives from the
// transform's Y basis; inner and outer half-angles are given in degrees and
// stored in radians.
func (r *Renderer) SubmitSpotLight(t pkgmath.Transform, color device.Color, innerDeg, outerDeg, rng, intensity, size, depth float32) {
	r.spotLights = append(r.spotLights, LightOp{
		Kind:       Spot,
		Transform:  t,
		Position:   t.Position(),
		Color:      color,
		Range:      rng,
		Intensity:  intensity,
		Size:       size,
		Depth:      depth,
		InnerAngle: mgl32.DegToRad(innerDeg),
		OuterAngle: mgl32.DegToRad(outerDeg),
		Direction:  t.Up(),
	})
}

// Render produces this frame's lightmap from everything submitted since the
// last call, then resets all per-frame state. The returned target is owned
// by the renderer and overwritten in place on the next call.
func (r *Renderer) Render(normalMap device.Texture, ambient device.Color, shadowsEnabled, normalmapEnabled bool) device.Target {
	b := r.backend
	b.SetProjection(r.proj)
	b.SetShadowsEnabled(shadowsEnabled)
	if normalmapEnabled {
		b.SetNormalMap(normalMap)
	} else {
		b.SetNormalMap(nil)
	}

	b.SetTarget(r.lightmap)
	b.Clear(device.Color{R: ambient.R, G: ambient.G, B: ambient.B, A: 0})

	// Fully lit is the default mask when shadows are disabled.
	b.SetTarget(r.shadowMask)
	b.Clear(device.White)

	if shadowsEnabled {
		for i := range r.pointLights {
			r.renderShadows(&r.pointLights[i])
			r.renderLight(&r.pointLights[i])
		}
		for i := range r.spotLights {
			r.renderShadows(&r.spotLights[i])
			r.renderLight(&r.spotLights[i])
		}
	} else {
		for i := range r.pointLights {
			r.renderLight(&r.pointLights[i])
		}
		for i := range r.spotLights {
			r.renderLight(&r.spotLights[i])
		}
	}

	r.Reset()
	return r.lightmap
}

// renderShadows builds the visibility mask for one light.
//
// A caster is visible to the light as soon as any one of its vertices lies
// within the squared range; the rest of its vertices are not tested. When
// no caster is visible the mask is left at the black clear value, so the
// light draws fully shadowed. Candidate bug, kept deliberately; see
// DESIGN.md.
func (r *Renderer) renderShadows(l *LightOp) {
	b := r.backend
	b.SetTarget(r.shadowMask)
	b.Clear(device.Black)
	r.gen.SetLight(l.Position, l.Size)

	rangeSq := l.Range * l.Range
	verts := r.arena.Vertices()
	r.visible = r.visible[:0]

	for i, op := range r.ops.Active() {
		for _, v := range verts[op.Offset : op.Offset+op.Count] {
			dx := v.Position[0] - l.Position[0]
			dy := v.Position[1] - l.Position[1]
			if dx*dx+dy*dy > rangeSq {
				continue
			}
			r.visible = append(r.visible, i)
			if !r.gen.AddShadowVertices(op.Type, verts, op.Offset, op.Count) {
				// Batch full: draw what we have, re-announce the
				// light and retry into the empty batch.
				r.flushShadowBatch()
				r.gen.SetLight(l.Position, l.Size)
				if !r.gen.AddShadowVertices(op.Type, verts, op.Offset, op.Count) {
					logger.Warn("caster exceeds shadow batch capacity",
						zap.Int("vertices", op.Count),
						zap.Int("capacity", r.gen.Capacity()),
					)
				}
			}
			break
		}
	}

	if len(r.visible) == 0 {
		return
	}
	r.flushShadowBatch()

	// Cutout pass: rasterize each visible caster's own polygon over the
	// mask. Occluded casters stay wholly inside shadow.
	for _, i := range r.visible {
		op := r.ops.Active()[i]
		if op.Type == shadow.TypeOccluded {
			continue
		}
		r.drawCutout(op)
	}
}

// flushShadowBatch draws the generator's accumulated shadow volumes.
func (r *Renderer) flushShadowBatch() {
	verts, indices := r.gen.Batch()
	if len(indices) == 0 {
		return
	}
	r.backend.DrawTriangles(device.BlendAlpha, verts, indices)
}

// drawCutout rasterizes one caster outline as a triangle fan against the
// shadow mask. The punch color was fixed per shadow type at submission.
func (r *Renderer) drawCutout(op ShadowOp) {
	r.fan = r.fan[:0]
	off := uint32(op.Offset)
	for i := 1; i < op.Count-1; i++ {
		r.fan = append(r.fan, off, off+uint32(i), off+uint32(i)+1)
	}
	r.backend.DrawTriangles(device.BlendOpaque, r.arena.Vertices(), r.fan)
}

// renderLight additively accumulates one light's contribution into the
// lightmap, sampling the shadow mask built for it.
func (r *Renderer) renderLight(l *LightOp) {
	b := r.backend
	b.SetTarget(r.lightmap)
	b.SetShadowMask(r.shadowMask)

	// Point lights use a quad of side 2*range centered on the light. Spot
	// quads shift forward by range along the local up axis so they start
	// at the light and cover the cone.
	t := l.Transform
	if l.Kind == Spot {
		t = t.Translate(0, l.Range)
	}
	rng := l.Range
	corners := [4]mgl32.Vec2{{-rng, -rng}, {rng, -rng}, {rng, rng}, {-rng, rng}}
	for i, c := range corners {
		r.quad[i] = device.Vertex{Position: t.Apply(c), Color: l.Color}
	}

	params := device.LightParams{
		Position:   l.Position,
		Range:      l.Range,
		Intensity:  l.Intensity,
		Depth:      l.Depth,
		Spot:       l.Kind == Spot,
		InnerAngle: l.InnerAngle,
		OuterAngle: l.OuterAngle,
		Direction:  l.Direction,
	}
	b.DrawLight(params, device.BlendAdditive, r.quad[:], quadIndices[:])
}

// Resize recomputes the projection and reallocates the output targets when
// the dimensions actually change. Calling it with the current dimensions is
// a no-op that preserves the existing targets.
func (r *Renderer) Resize(width, height int32) error {
	if width == r.width && height == r.height {
		return nil
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.width, r.height = width, height
	r.proj = mgl32.Ortho2D(0, float32(width), float32(height), 0)

	if r.lightmap == nil || targetDiffers(r.lightmap, width, height) {
		t, err := r.backend.CreateTarget(width, height)
		if err != nil {
			return fmt.Errorf("creating lightmap target: %w", err)
		}
		r.lightmap = t
	}
	if r.shadowMask == nil || targetDiffers(r.shadowMask, width, height) {
		t, err := r.backend.CreateTarget(width, height)
		if err != nil {
			return fmt.Errorf("creating shadow mask target: %w", err)
		}
		r.shadowMask = t
	}

	r.backend.SetInverseTextureSize(1/float32(width), 1/float32(height))
	logger.Debug("light renderer resized",
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	return nil
}

func targetDiffers(t device.Target, width, height int32) bool {
	w, h := t.Size()
	return w != width || h != height
}

// Reset clears the arena, the op pool and both light queues. It runs at the
// end of every Render; nothing submitted survives into the next frame.
func (r *Renderer) Reset() {
	r.arena.Clear()
	r.ops.Reset()
	r.pointLights = r.pointLights[:0]
	r.spotLights = r.spotLights[:0]
}

// Lightmap returns the accumulated lighting target.
func (r *Renderer) Lightmap() device.Target {
	return r.lightmap
}

// ShadowMask returns the per-light visibility mask target.
func (r *Renderer) ShadowMask() device.Target {
	return r.shadowMask
}
