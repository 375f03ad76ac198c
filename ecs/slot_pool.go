package ecs

import "iter"

// SlotState tags whether a slot currently holds a live value.
type SlotState uint8

const (
	SlotInvalid SlotState = iota
	SlotValid
)

func (s SlotState) String() string {
	if s == SlotValid {
		return "valid"
	}
	return "invalid"
}

type slot[T any] struct {
	value      T
	handle     ComponentHandle
	owner      EntityHandle
	state      SlotState
	generation uint32
}

// SlotPool is a fixed-capacity array of T with a LIFO free list.
// The backing array is allocated once, so a pointer returned by Alloc stays
// valid until the slot is freed.
type SlotPool[T any] struct {
	slots     []slot[T]
	freeSlots []int
	nextIndex int
	live      int
}

// NewSlotPool creates a pool holding at most capacity values.
func NewSlotPool[T any](capacity int) *SlotPool[T] {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &SlotPool[T]{
		slots: make([]slot[T], capacity),
	}
}

// Alloc reserves a zeroed slot and returns its index and address.
func (p *SlotPool[T]) Alloc() (int, *T, error) {
	var index int
	if len(p.freeSlots) > 0 {
		index = p.freeSlots[len(p.freeSlots)-1]
		p.freeSlots = p.freeSlots[:len(p.freeSlots)-1]
	} else {
		if p.nextIndex >= len(p.slots) {
			return -1, nil, newError("slot pool alloc", 0, ErrPoolExhausted)
		}
		index = p.nextIndex
		p.nextIndex++
	}

	s := &p.slots[index]
	s.state = SlotValid
	p.live++
	return index, &s.value, nil
}

// Free releases the slot at index. The payload is zeroed and the slot's
// generation advances so stale references can be detected.
func (p *SlotPool[T]) Free(index int) error {
	if index < 0 || index >= p.nextIndex {
		return newError("slot pool free", uint64(index), ErrBadHandle)
	}

	s := &p.slots[index]
	if s.state != SlotValid {
		return newError("slot pool free", uint64(index), ErrUseAfterFree)
	}

	var zero T
	s.value = zero
	s.handle = NullComponent
	s.owner = NullEntity
	s.state = SlotInvalid
	s.generation++
	p.live--

	if index == p.nextIndex-1 {
		p.nextIndex--
		p.trimTail()
		return nil
	}

	p.freeSlots = append(p.freeSlots, index)
	return nil
}

// trimTail lowers the high-water mark past free slots sitting at the top of
// the pool and drops them from the free list.
func (p *SlotPool[T]) trimTail() {
	for p.nextIndex > 0 && p.slots[p.nextIndex-1].state == SlotInvalid {
		p.nextIndex--
	}
	if len(p.freeSlots) == 0 {
		return
	}
	kept := p.freeSlots[:0]
	for _, idx := range p.freeSlots {
		if idx < p.nextIndex {
			kept = append(kept, idx)
		}
	}
	p.freeSlots = kept
}

// Get returns the address of the live value at index.
func (p *SlotPool[T]) Get(index int) (*T, error) {
	if index < 0 || index >= len(p.slots) {
		return nil, newError("slot pool get", uint64(index), ErrBadHandle)
	}
	s := &p.slots[index]
	if s.state != SlotValid {
		return nil, newError("slot pool get", uint64(index), ErrUseAfterFree)
	}
	return &s.value, nil
}

// State returns the validity tag of the slot at index.
func (p *SlotPool[T]) State(index int) SlotState {
	if index < 0 || index >= len(p.slots) {
		return SlotInvalid
	}
	return p.slots[index].state
}

// Generation returns how many times the slot at index has been freed.
func (p *SlotPool[T]) Generation(index int) uint32 {
	if index < 0 || index >= len(p.slots) {
		return 0
	}
	return p.slots[index].generation
}

func (p *SlotPool[T]) bind(index int, handle ComponentHandle, owner EntityHandle) {
	p.slots[index].handle = handle
	p.slots[index].owner = owner
}

func (p *SlotPool[T]) owner(index int) EntityHandle {
	return p.slots[index].owner
}

func (p *SlotPool[T]) handleAt(index int) ComponentHandle {
	return p.slots[index].handle
}

// IsFull reports whether Alloc would fail.
func (p *SlotPool[T]) IsFull() bool {
	return len(p.freeSlots) == 0 && p.nextIndex == len(p.slots)
}

// Len returns the number of live slots.
func (p *SlotPool[T]) Len() int {
	return p.live
}

// Cap returns the fixed slot count.
func (p *SlotPool[T]) Cap() int {
	return len(p.slots)
}

// HighWaterMark returns one past the highest slot index ever handed out and
// not trimmed.
func (p *SlotPool[T]) HighWaterMark() int {
	return p.nextIndex
}

// ForEach calls fn for every live slot in ascending index order.
func (p *SlotPool[T]) ForEach(fn func(index int, value *T)) {
	for i, v := range p.Iter() {
		fn(i, v)
	}
}

// Iter returns an iterator over live slots in ascending index order.
func (p *SlotPool[T]) Iter() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < p.nextIndex; i++ {
			s := &p.slots[i]
			if s.state != SlotValid {
				continue
			}
			if !yield(i, &s.value) {
				return
			}
		}
	}
}
