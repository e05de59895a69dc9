package light

import (
	"github.com/Faultbox/lumen2d/internal/engine/device"
)

// DefaultArenaCapacity bounds worst-case per-frame caster memory.
const DefaultArenaCapacity = 1 << 20

// VertexArena is a fixed-capacity append-only buffer of transformed caster
// vertices. It is filled during submission and cleared once per frame;
// nothing is ever reallocated mid-frame.
type VertexArena struct {
	verts []device.Vertex
	size  int
}

// NewVertexArena creates an arena holding up to capacity vertices.
// Non-positive capacities fall back to DefaultArenaCapacity.
func NewVertexArena(capacity int) *VertexArena {
	if capacity <= 0 {
		capacity = DefaultArenaCapacity
	}
	return &VertexArena{verts: make([]device.Vertex, capacity)}
}

// Reserve returns a writable slice of n vertex slots, or false when the
// arena cannot hold n more vertices. A rejected reservation leaves the
// arena untouched.
func (a *VertexArena) Reserve(n int) ([]device.Vertex, bool) {
	if n < 0 || a.size+n > len(a.verts) {
		return nil, false
	}
	s := a.verts[a.size : a.size+n]
	a.size += n
	return s, true
}

// Size returns the number of vertices written this frame.
func (a *VertexArena) Size() int {
	return a.size
}

// Capacity returns the fixed arena capacity.
func (a *VertexArena) Capacity() int {
	return len(a.verts)
}

// Vertices returns the written extent of the arena.
func (a *VertexArena) Vertices() []device.Vertex {
	return a.verts[:a.size]
}

// Clear resets the arena for the next frame. Storage is retained.
func (a *VertexArena) Clear() {
	a.size = 0
}
