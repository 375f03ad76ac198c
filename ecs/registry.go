package ecs

import (
	"errors"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/kamstrup/intmap"
)

// ComponentRemover is implemented by every ComponentTable so the registry can
// reclaim an entity's engine components without knowing their types.
type ComponentRemover interface {
	Remove(handle ComponentHandle) error
}

// EntityRegistry maps entity handles to records. Records live in the active
// set until destroyed, then wait in the pending set until Cleanup reclaims
// their components.
type EntityRegistry struct {
	removers  [EngineKindCount]ComponentRemover
	generator *HandleGenerator

	active  *intmap.Map[EntityHandle, *Entity]
	pending *intmap.Map[EntityHandle, *Entity]
	tags    *intmap.Map[uint64, []EntityHandle]

	// order holds active handles in creation order; entries for destroyed
	// entities are dropped during Cleanup.
	order        []EntityHandle
	pendingOrder []EntityHandle

	// epoch changes on Clear; handles issued after it may repeat old ones.
	epoch uint64
}

// NewEntityRegistry creates a registry. removers[kind] is used to reclaim
// components of that kind; a nil remover means the kind is never attached.
func NewEntityRegistry(removers [EngineKindCount]ComponentRemover) *EntityRegistry {
	return &EntityRegistry{
		removers:  removers,
		generator: NewHandleGenerator(),
		active:    intmap.New[EntityHandle, *Entity](256),
		pending:   intmap.New[EntityHandle, *Entity](64),
		tags:      intmap.New[uint64, []EntityHandle](256),
	}
}

// Create allocates a handle and inserts a new record into the active set.
func (r *EntityRegistry) Create(tag string) *Entity {
	e := newEntity(EntityHandle(r.generator.Next()), tag)
	r.active.Put(e.handle, e)
	r.order = append(r.order, e.handle)

	key := tagKey(tag)
	handles, _ := r.tags.Get(key)
	r.tags.Put(key, append(handles, e.handle))
	return e
}

// Destroy moves the record from the active set to the pending set. The record
// and its components are left untouched until Cleanup.
func (r *EntityRegistry) Destroy(handle EntityHandle) error {
	e, ok := r.active.Get(handle)
	if !ok {
		return newError("destroy entity", uint64(handle), ErrBadHandle)
	}
	r.active.Del(handle)
	r.untag(e)
	r.pending.Put(handle, e)
	r.pendingOrder = append(r.pendingOrder, handle)
	return nil
}

// Get returns the active record for handle.
func (r *EntityRegistry) Get(handle EntityHandle) (*Entity, error) {
	e, ok := r.active.Get(handle)
	if !ok {
		return nil, newError("get entity", uint64(handle), ErrBadHandle)
	}
	return e, nil
}

// FindByTag returns the earliest-created active entity carrying tag.
func (r *EntityRegistry) FindByTag(tag string) (*Entity, error) {
	handles, _ := r.tags.Get(tagKey(tag))
	for _, h := range handles {
		if e, ok := r.active.Get(h); ok && e.tag == tag {
			return e, nil
		}
	}
	return nil, &Error{Op: "find entity " + tag, Err: ErrTagNotFound}
}

// IsActive reports whether handle is in the active set.
func (r *EntityRegistry) IsActive(handle EntityHandle) bool {
	return r.active.Has(handle)
}

// IsPending reports whether handle is waiting for Cleanup.
func (r *EntityRegistry) IsPending(handle EntityHandle) bool {
	return r.pending.Has(handle)
}

// Pending returns a record that has been destroyed but not yet cleaned up.
func (r *EntityRegistry) Pending(handle EntityHandle) (*Entity, error) {
	e, ok := r.pending.Get(handle)
	if !ok {
		return nil, newError("get pending entity", uint64(handle), ErrBadHandle)
	}
	return e, nil
}

// ActiveCount returns the number of active entities.
func (r *EntityRegistry) ActiveCount() int {
	return r.active.Len()
}

// PendingCount returns the number of entities awaiting Cleanup.
func (r *EntityRegistry) PendingCount() int {
	return r.pending.Len()
}

// NextHandle returns the handle the next Create will issue.
func (r *EntityRegistry) NextHandle() EntityHandle {
	return EntityHandle(r.generator.Current())
}

// ForEachActive calls fn for every active entity in creation order. Entities
// created during the pass are not visited; entities destroyed during the pass
// are skipped once destroyed. Cleanup may run inside fn; Clear ends the pass.
// Returning an error from fn stops the pass.
func (r *EntityRegistry) ForEachActive(fn func(*Entity) error) error {
	snapshot := slices.Clone(r.order)
	epoch := r.epoch
	for _, h := range snapshot {
		if r.epoch != epoch {
			return nil
		}
		e, ok := r.active.Get(h)
		if !ok {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// ActiveHandles returns the active handles in creation order.
func (r *EntityRegistry) ActiveHandles() []EntityHandle {
	out := make([]EntityHandle, 0, r.active.Len())
	for _, h := range r.order {
		if r.active.Has(h) {
			out = append(out, h)
		}
	}
	return out
}

// Cleanup reclaims every pending record: each user component is told
// OnDestroy, then every engine component handle is removed from its table.
// It returns the number of records reclaimed.
func (r *EntityRegistry) Cleanup() (int, error) {
	if len(r.pendingOrder) == 0 {
		return 0, nil
	}

	var errs []error
	count := 0
	// OnDestroy may destroy further entities; those are reclaimed in the
	// same call.
	for len(r.pendingOrder) > 0 {
		batch := r.pendingOrder
		r.pendingOrder = nil
		for _, h := range batch {
			e, ok := r.pending.Get(h)
			if !ok {
				continue
			}
			e.notifyDestroy()
			for kind := range EngineKindCount {
				ch := e.ClearEngineHandle(kind)
				if ch.IsNull() || r.removers[kind] == nil {
					continue
				}
				if err := r.removers[kind].Remove(ch); err != nil {
					errs = append(errs, err)
				}
			}
			r.pending.Del(h)
			count++
		}
	}
	r.compactOrder()
	return count, errors.Join(errs...)
}

// Clear destroys every active entity, reclaims them immediately and resets
// the handle generator.
func (r *EntityRegistry) Clear() (int, error) {
	for _, h := range r.order {
		if r.active.Has(h) {
			_ = r.Destroy(h)
		}
	}
	n, err := r.Cleanup()
	r.active.Clear()
	r.pending.Clear()
	r.tags.Clear()
	r.order = r.order[:0]
	r.pendingOrder = r.pendingOrder[:0]
	r.generator.Reset()
	r.epoch++
	return n, err
}

func (r *EntityRegistry) compactOrder() {
	kept := r.order[:0]
	for _, h := range r.order {
		if r.active.Has(h) {
			kept = append(kept, h)
		}
	}
	r.order = kept
}

func (r *EntityRegistry) untag(e *Entity) {
	key := tagKey(e.tag)
	handles, ok := r.tags.Get(key)
	if !ok {
		return
	}
	for i, h := range handles {
		if h == e.handle {
			handles = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(handles) == 0 {
		r.tags.Del(key)
		return
	}
	r.tags.Put(key, handles)
}

func tagKey(tag string) uint64 {
	return xxhash.Sum64String(tag)
}
