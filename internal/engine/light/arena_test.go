package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen2d/internal/engine/device"
)

func TestVertexArenaReserve(t *testing.T) {
	a := NewVertexArena(8)

	s1, ok := a.Reserve(3)
	if !ok {
		t.Fatal("Reserve(3) on empty arena failed")
	}
	if len(s1) != 3 {
		t.Fatalf("expected slice of 3, got %d", len(s1))
	}
	if a.Size() != 3 {
		t.Fatalf("expected size 3, got %d", a.Size())
	}

	s2, ok := a.Reserve(5)
	if !ok {
		t.Fatal("Reserve(5) should fill the arena exactly")
	}
	if a.Size() != 8 {
		t.Fatalf("expected size 8, got %d", a.Size())
	}

	// Reservations are contiguous: writing through the returned slices
	// must land in the arena's written extent, in order.
	s1[0] = device.Vertex{Position: mgl32.Vec2{1, 0}}
	s2[0] = device.Vertex{Position: mgl32.Vec2{2, 0}}
	verts := a.Vertices()
	if verts[0].Position.X() != 1 {
		t.Error("first reservation did not write arena slot 0")
	}
	if verts[3].Position.X() != 2 {
		t.Error("second reservation did not write arena slot 3")
	}
}

func TestVertexArenaOverflow(t *testing.T) {
	a := NewVertexArena(4)

	if _, ok := a.Reserve(3); !ok {
		t.Fatal("Reserve(3) failed")
	}

	// Too large: rejected, arena untouched.
	if _, ok := a.Reserve(2); ok {
		t.Error("Reserve(2) over capacity should fail")
	}
	if a.Size() != 3 {
		t.Errorf("rejected reservation changed size to %d", a.Size())
	}

	// Remaining slot still usable.
	if _, ok := a.Reserve(1); !ok {
		t.Error("Reserve(1) into remaining slot failed")
	}
}

func TestVertexArenaNegative(t *testing.T) {
	a := NewVertexArena(4)
	if _, ok := a.Reserve(-1); ok {
		t.Error("Reserve(-1) should fail")
	}
	if a.Size() != 0 {
		t.Errorf("expected size 0, got %d", a.Size())
	}
}

func TestVertexArenaClear(t *testing.T) {
	a := NewVertexArena(4)
	a.Reserve(4)
	a.Clear()

	if a.Size() != 0 {
		t.Fatalf("expected size 0 after clear, got %d", a.Size())
	}
	if a.Capacity() != 4 {
		t.Errorf("clear changed capacity to %d", a.Capacity())
	}
	if _, ok := a.Reserve(4); !ok {
		t.Error("full reservation after clear failed")
	}
}

func TestVertexArenaDefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		a := NewVertexArena(capacity)
		if a.Capacity() != DefaultArenaCapacity {
			t.Errorf("NewVertexArena(%d): capacity = %d, want %d",
				capacity, a.Capacity(), DefaultArenaCapacity)
		}
	}
}
