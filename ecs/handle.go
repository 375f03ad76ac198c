package ecs

// EntityHandle is the opaque identity of an entity. Zero is the null handle.
type EntityHandle uint64

// ComponentHandle is the opaque identity of a component inside one ComponentTable.
// Zero is the null handle.
type ComponentHandle uint64

// NullEntity and NullComponent are the reserved invalid handles.
const (
	NullEntity    EntityHandle    = 0
	NullComponent ComponentHandle = 0
)

// IsNull reports whether h is the reserved null handle.
func (h EntityHandle) IsNull() bool { return h == NullEntity }

// IsNull reports whether h is the reserved null handle.
func (h ComponentHandle) IsNull() bool { return h == NullComponent }

const firstHandle = 1

// HandleGenerator hands out monotonically increasing identifiers starting at 1.
// The counter is 64 bits wide so wraparound into the null value is not reachable.
type HandleGenerator struct {
	next uint64
}

// NewHandleGenerator creates a generator whose first Next returns 1.
func NewHandleGenerator() *HandleGenerator {
	return &HandleGenerator{next: firstHandle}
}

// Next returns the current value and advances the counter.
func (g *HandleGenerator) Next() uint64 {
	if g.next == 0 {
		g.next = firstHandle
	}
	v := g.next
	g.next++
	return v
}

// Current returns the value the next call to Next will produce.
func (g *HandleGenerator) Current() uint64 {
	if g.next == 0 {
		return firstHandle
	}
	return g.next
}

// Reset returns the counter to its initial value.
func (g *HandleGenerator) Reset() {
	g.next = firstHandle
}
