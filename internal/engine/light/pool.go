package light

import (
	"errors"

	"github.com/Faultbox/lumen2d/internal/engine/shadow"
)

// ErrPoolSize is returned when a pool is constructed with a non-positive size.
var ErrPoolSize = errors.New("shadow op pool size must be positive")

// ShadowOp records one caster's contribution for the current frame: its
// shadow type and a contiguous vertex range in the arena.
type ShadowOp struct {
	Type   shadow.Type
	Offset int
	Count  int
}

// ShadowOpPool is a growable pool of reusable ShadowOp records. Acquire
// never fails; Reset logically empties the pool by rewinding a cursor while
// keeping the storage, so steady-state frames allocate nothing.
type ShadowOpPool struct {
	ops    []ShadowOp
	cursor int
}

// NewShadowOpPool creates a pool with the given initial size.
func NewShadowOpPool(size int) (*ShadowOpPool, error) {
	if size <= 0 {
		return nil, ErrPoolSize
	}
	return &ShadowOpPool{ops: make([]ShadowOp, size)}, nil
}

// Acquire returns the next reusable op, doubling the storage when the pool
// is exhausted. Previously returned ops stay valid for the rest of the frame.
func (p *ShadowOpPool) Acquire() *ShadowOp {
	if p.cursor == len(p.ops) {
		p.ops = append(p.ops, make([]ShadowOp, len(p.ops))...)
	}
	op := &p.ops[p.cursor]
	p.cursor++
	return op
}

// Active returns the ops acquired this frame, in allocation order.
func (p *ShadowOpPool) Active() []ShadowOp {
	return p.ops[:p.cursor]
}

// Len returns the number of ops acquired this frame.
func (p *ShadowOpPool) Len() int {
	return p.cursor
}

// Cap returns the current pool storage size.
func (p *ShadowOpPool) Cap() int {
	return len(p.ops)
}

// Reset rewinds the pool cursor. Records are reused, not destructed.
func (p *ShadowOpPool) Reset() {
	p.cursor = 0
}
