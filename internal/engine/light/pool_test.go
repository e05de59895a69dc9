package light

import (
	"errors"
	"testing"

	"github.com/Faultbox/lumen2d/internal/engine/shadow"
)

func TestNewShadowOpPoolSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := NewShadowOpPool(size); !errors.Is(err, ErrPoolSize) {
			t.Errorf("NewShadowOpPool(%d): err = %v, want ErrPoolSize", size, err)
		}
	}

	p, err := NewShadowOpPool(4)
	if err != nil {
		t.Fatalf("NewShadowOpPool(4): %v", err)
	}
	if p.Cap() != 4 {
		t.Errorf("expected cap 4, got %d", p.Cap())
	}
}

func TestShadowOpPoolGrowth(t *testing.T) {
	p, err := NewShadowOpPool(2)
	if err != nil {
		t.Fatal(err)
	}

	// Acquire past the initial size; the pool doubles and all ops remain
	// independently addressable.
	ops := make([]*ShadowOp, 0, 5)
	for i := 0; i < 5; i++ {
		op := p.Acquire()
		op.Offset = i * 10
		ops = append(ops, op)
	}

	if p.Len() != 5 {
		t.Fatalf("expected len 5, got %d", p.Len())
	}
	if p.Cap() < 5 {
		t.Fatalf("expected cap >= 5, got %d", p.Cap())
	}
	for i, op := range ops {
		if op.Offset != i*10 {
			t.Errorf("op %d: offset = %d, want %d", i, op.Offset, i*10)
		}
	}
}

func TestShadowOpPoolActiveOrder(t *testing.T) {
	p, err := NewShadowOpPool(8)
	if err != nil {
		t.Fatal(err)
	}

	types := []shadow.Type{shadow.TypeSolid, shadow.TypeIlluminated, shadow.TypeOccluded}
	for i, st := range types {
		op := p.Acquire()
		op.Type = st
		op.Offset = i
		op.Count = i + 1
	}

	active := p.Active()
	if len(active) != len(types) {
		t.Fatalf("expected %d active ops, got %d", len(types), len(active))
	}
	for i, op := range active {
		if op.Type != types[i] || op.Offset != i || op.Count != i+1 {
			t.Errorf("active[%d] = %+v, out of order", i, op)
		}
	}
}

func TestShadowOpPoolReset(t *testing.T) {
	p, err := NewShadowOpPool(2)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		p.Acquire()
	}
	grown := p.Cap()
	p.Reset()

	if p.Len() != 0 {
		t.Fatalf("expected len 0 after reset, got %d", p.Len())
	}
	if p.Cap() != grown {
		t.Errorf("reset shrank pool: cap %d, want %d", p.Cap(), grown)
	}

	// Storage is reused in order after reset.
	first := p.Acquire()
	if first != &p.ops[0] {
		t.Error("first acquire after reset did not reuse slot 0")
	}
}
