package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
)

// DefaultPoolCapacity is the per-pool slot count used when none is given.
const DefaultPoolCapacity = 100

type slotRef struct {
	pool       int
	slot       int
	generation uint32
}

// ComponentTable stores components of one type across a growing list of
// SlotPools. Growth appends a new pool and never moves existing ones, so the
// address of a live component is stable until it is removed.
type ComponentTable[T any] struct {
	pools        []*SlotPool[T]
	poolCapacity int
	maxPools     int
	handles      *intmap.Map[ComponentHandle, slotRef]
	generator    *HandleGenerator
}

// TableOption configures a ComponentTable.
type TableOption func(*tableOptions)

type tableOptions struct {
	maxPools int
}

// WithMaxPools caps how many pools a table may grow to. Zero means unbounded.
func WithMaxPools(n int) TableOption {
	return func(o *tableOptions) {
		o.maxPools = n
	}
}

// NewComponentTable creates a table whose pools hold poolCapacity slots each.
func NewComponentTable[T any](poolCapacity int, opts ...TableOption) *ComponentTable[T] {
	if poolCapacity <= 0 {
		poolCapacity = DefaultPoolCapacity
	}
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}

	t := &ComponentTable[T]{
		poolCapacity: poolCapacity,
		maxPools:     o.maxPools,
		handles:      intmap.New[ComponentHandle, slotRef](poolCapacity),
		generator:    NewHandleGenerator(),
	}
	t.pools = []*SlotPool[T]{NewSlotPool[T](poolCapacity)}
	return t
}

// Add stores value for owner in the first pool with room and returns the new
// component's handle and address.
func (t *ComponentTable[T]) Add(owner EntityHandle, value T) (ComponentHandle, *T, error) {
	poolIdx := -1
	for i, pool := range t.pools {
		if !pool.IsFull() {
			poolIdx = i
			break
		}
	}
	if poolIdx == -1 {
		if t.maxPools > 0 && len(t.pools) >= t.maxPools {
			return NullComponent, nil, newError("component table add", uint64(owner), ErrPoolExhausted)
		}
		t.pools = append(t.pools, NewSlotPool[T](t.poolCapacity))
		poolIdx = len(t.pools) - 1
	}

	pool := t.pools[poolIdx]
	slotIdx, ptr, err := pool.Alloc()
	if err != nil {
		return NullComponent, nil, err
	}
	*ptr = value

	handle := ComponentHandle(t.generator.Next())
	pool.bind(slotIdx, handle, owner)
	t.handles.Put(handle, slotRef{
		pool:       poolIdx,
		slot:       slotIdx,
		generation: pool.Generation(slotIdx),
	})
	return handle, ptr, nil
}

// Remove frees the component behind handle. Unknown handles yield ErrBadHandle.
func (t *ComponentTable[T]) Remove(handle ComponentHandle) error {
	ref, ok := t.handles.Get(handle)
	if !ok {
		return newError("component table remove", uint64(handle), ErrBadHandle)
	}
	t.handles.Del(handle)
	if err := t.pools[ref.pool].Free(ref.slot); err != nil {
		return newError("component table remove", uint64(handle), err)
	}
	return nil
}

// Contains reports whether handle refers to a live component.
func (t *ComponentTable[T]) Contains(handle ComponentHandle) bool {
	return t.handles.Has(handle)
}

// Get resolves handle to the component's address.
func (t *ComponentTable[T]) Get(handle ComponentHandle) (*T, error) {
	ref, err := t.resolve("component table get", handle)
	if err != nil {
		return nil, err
	}
	return t.pools[ref.pool].Get(ref.slot)
}

// Owner returns the entity the component was added for.
func (t *ComponentTable[T]) Owner(handle ComponentHandle) (EntityHandle, error) {
	ref, err := t.resolve("component table owner", handle)
	if err != nil {
		return NullEntity, err
	}
	return t.pools[ref.pool].owner(ref.slot), nil
}

func (t *ComponentTable[T]) resolve(op string, handle ComponentHandle) (slotRef, error) {
	ref, ok := t.handles.Get(handle)
	if !ok {
		return slotRef{}, newError(op, uint64(handle), ErrBadHandle)
	}
	pool := t.pools[ref.pool]
	if pool.State(ref.slot) != SlotValid || pool.Generation(ref.slot) != ref.generation {
		return slotRef{}, newError(op, uint64(handle), ErrUseAfterFree)
	}
	return ref, nil
}

// ForEach calls fn for every live component, pool by pool and slot by slot.
func (t *ComponentTable[T]) ForEach(fn func(ComponentHandle, *T)) {
	for h, v := range t.Iter() {
		fn(h, v)
	}
}

// Iter returns an iterator over live components in pool order then slot order.
// The order is not stable across Add and Remove calls.
func (t *ComponentTable[T]) Iter() iter.Seq2[ComponentHandle, *T] {
	return func(yield func(ComponentHandle, *T) bool) {
		for _, pool := range t.pools {
			for slotIdx, value := range pool.Iter() {
				if !yield(pool.handleAt(slotIdx), value) {
					return
				}
			}
		}
	}
}

// Clear drops every pool, starts over with one empty pool and resets the
// table's handle generator.
func (t *ComponentTable[T]) Clear() {
	t.pools = []*SlotPool[T]{NewSlotPool[T](t.poolCapacity)}
	t.handles.Clear()
	t.generator.Reset()
}

// Len returns the number of live components.
func (t *ComponentTable[T]) Len() int {
	return t.handles.Len()
}

// PoolCount returns how many pools back the table.
func (t *ComponentTable[T]) PoolCount() int {
	return len(t.pools)
}

// PoolCapacity returns the slot count of each pool.
func (t *ComponentTable[T]) PoolCapacity() int {
	return t.poolCapacity
}

// NextHandle returns the handle the next Add will issue.
func (t *ComponentTable[T]) NextHandle() ComponentHandle {
	return ComponentHandle(t.generator.Current())
}
