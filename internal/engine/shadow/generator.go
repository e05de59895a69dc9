// Package shadow provides shadow-volume generation for 2D lights. A
// generator turns flat caster outlines into extruded shadow-volume
// triangles, accumulated in a bounded batch that the renderer flushes.
package shadow

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen2d/internal/engine/device"
)

// Type classifies how a caster interacts with the light that shadows it.
type Type int

const (
	// TypeSolid casters block light and are themselves in shadow.
	TypeSolid Type = iota
	// TypeIlluminated casters block light but are lit themselves.
	TypeIlluminated
	// TypeOccluded casters sit wholly inside their own shadow.
	TypeOccluded
)

// Generator accumulates shadow-volume geometry for one light at a time.
// A batch has a fixed vertex capacity; when a submission does not fit the
// caller must draw the batch, re-announce the light and retry.
type Generator interface {
	// SetLight announces a new light position and penumbra size. This
	// resets the current batch.
	SetLight(position mgl32.Vec2, size float32)

	// FillCount reports the number of vertices in the current batch.
	FillCount() int

	// Capacity reports the batch vertex capacity.
	Capacity() int

	// AddShadowVertices extrudes the caster outline stored at
	// verts[offset:offset+count] into the batch. It returns false,
	// without a partial write, when the result would exceed the batch
	// capacity.
	AddShadowVertices(t Type, verts []device.Vertex, offset, count int) bool

	// Batch returns the accumulated shadow-volume triangle list.
	Batch() (verts []device.Vertex, indices []uint32)
}

// DefaultBatchCapacity is the default batch size in vertices. It comfortably
// exceeds any single caster outline the renderer accepts.
const DefaultBatchCapacity = 16384

// extrudeLength pushes shadow silhouettes well past any screen-space target.
const extrudeLength = 100000.0

// BatchGenerator is the built-in Generator. It extrudes the caster edges
// facing away from the light, widening the volume by the light's penumbra
// size, and batches the resulting quads as indexed triangles.
type BatchGenerator struct {
	capacity int
	verts    []device.Vertex
	indices  []uint32

	lightPos  mgl32.Vec2
	lightSize float32
}

// NewBatchGenerator creates a generator with the given vertex capacity.
// Non-positive capacities fall back to DefaultBatchCapacity.
func NewBatchGenerator(capacity int) *BatchGenerator {
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	return &BatchGenerator{
		capacity: capacity,
		verts:    make([]device.Vertex, 0, capacity),
		indices:  make([]uint32, 0, capacity*3/2),
	}
}

// SetLight announces a new light and resets the batch.
func (g *BatchGenerator) SetLight(position mgl32.Vec2, size float32) {
	g.lightPos = position
	g.lightSize = size
	g.verts = g.verts[:0]
	g.indices = g.indices[:0]
}

// FillCount reports the number of vertices in the current batch.
func (g *BatchGenerator) FillCount() int {
	return len(g.verts)
}

// Capacity reports the batch vertex capacity.
func (g *BatchGenerator) Capacity() int {
	return g.capacity
}

// AddShadowVertices extrudes one caster outline into the batch.
func (g *BatchGenerator) AddShadowVertices(t Type, verts []device.Vertex, offset, count int) bool {
	if count < 3 {
		return true
	}
	outline := verts[offset : offset+count]

	// First pass: count shadow-casting edges so a full submission can be
	// rejected before anything is written.
	edges := 0
	for i := 0; i < count; i++ {
		a := outline[i].Position
		b := outline[(i+1)%count].Position
		if g.castsShadow(a, b) {
			edges++
		}
	}
	if edges == 0 {
		return true
	}
	if len(g.verts)+edges*4 > g.capacity {
		return false
	}

	for i := 0; i < count; i++ {
		a := outline[i].Position
		b := outline[(i+1)%count].Position
		if !g.castsShadow(a, b) {
			continue
		}
		g.extrudeEdge(a, b)
	}
	return true
}

// Batch returns the accumulated shadow-volume triangle list.
func (g *BatchGenerator) Batch() ([]device.Vertex, []uint32) {
	return g.verts, g.indices
}

// castsShadow reports whether the edge a->b faces away from the light.
func (g *BatchGenerator) castsShadow(a, b mgl32.Vec2) bool {
	d := b.Sub(a)
	// Outward normal for counter-clockwise outlines.
	n := mgl32.Vec2{d[1], -d[0]}
	return n.Dot(g.lightPos.Sub(a)) < 0
}

// extrudeEdge appends one silhouette quad for the edge a->b.
func (g *BatchGenerator) extrudeEdge(a, b mgl32.Vec2) {
	da := g.silhouetteDir(a, b)
	db := g.silhouetteDir(b, a)

	base := uint32(len(g.verts))
	shadow := device.Black
	g.verts = append(g.verts,
		device.Vertex{Position: a, Color: shadow},
		device.Vertex{Position: b, Color: shadow},
		device.Vertex{Position: b.Add(db.Mul(extrudeLength)), Color: shadow},
		device.Vertex{Position: a.Add(da.Mul(extrudeLength)), Color: shadow},
	)
	g.indices = append(g.indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

// silhouetteDir returns the extrusion direction for vertex v of an edge,
// rotated away from the other endpoint by the penumbra half-angle of a
// disk light of diameter lightSize.
func (g *BatchGenerator) silhouetteDir(v, other mgl32.Vec2) mgl32.Vec2 {
	dv := v.Sub(g.lightPos)
	dist := dv.Len()
	if dist == 0 {
		return mgl32.Vec2{0, 0}
	}
	dir := dv.Mul(1 / dist)
	if g.lightSize <= 0 {
		return dir
	}

	// Small-angle widening, rotated away from the other endpoint so the
	// volume grows rather than shrinks.
	do := other.Sub(g.lightPos)
	cross := dv[0]*do[1] - dv[1]*do[0]
	if cross == 0 {
		return dir
	}
	theta := float64(g.lightSize * 0.5 / dist)
	if cross > 0 {
		theta = -theta
	}
	sin := float32(stdmath.Sin(theta))
	cos := float32(stdmath.Cos(theta))
	return mgl32.Vec2{dir[0]*cos - dir[1]*sin, dir[0]*sin + dir[1]*cos}
}
