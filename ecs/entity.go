package ecs

import "slices"

// EngineKind names one of the built-in component kinds an Entity has a
// dedicated handle slot for.
type EngineKind uint8

const (
	KindTransform EngineKind = iota
	KindRenderer
	KindLight
	KindNetwork

	EngineKindCount
)

var engineKindNames = [EngineKindCount]string{
	KindTransform: "transform",
	KindRenderer:  "renderer",
	KindLight:     "light",
	KindNetwork:   "network",
}

func (k EngineKind) String() string {
	if k < EngineKindCount {
		return engineKindNames[k]
	}
	return "unknown"
}

// Entity is the record for one gameplay object: its identity, a display tag,
// the handles of its engine components and the user components it owns.
type Entity struct {
	handle         EntityHandle
	tag            string
	engine         [EngineKindCount]ComponentHandle
	userComponents []any
}

func newEntity(handle EntityHandle, tag string) *Entity {
	return &Entity{handle: handle, tag: tag}
}

// Handle returns the entity's identity. It never changes.
func (e *Entity) Handle() EntityHandle {
	return e.handle
}

// Tag returns the display name. Tags are not unique.
func (e *Entity) Tag() string {
	return e.tag
}

// EngineHandle returns the handle stored for kind, or NullComponent.
func (e *Entity) EngineHandle(kind EngineKind) ComponentHandle {
	if kind >= EngineKindCount {
		return NullComponent
	}
	return e.engine[kind]
}

// HasEngine reports whether a component of kind is attached.
func (e *Entity) HasEngine(kind EngineKind) bool {
	return !e.EngineHandle(kind).IsNull()
}

// SetEngineHandle records the handle for kind. A populated slot must be reset
// with ClearEngineHandle before it can be set again.
func (e *Entity) SetEngineHandle(kind EngineKind, handle ComponentHandle) error {
	if kind >= EngineKindCount {
		return newError("set engine handle", uint64(e.handle), ErrBadHandle)
	}
	if !e.engine[kind].IsNull() {
		return newError("attach "+kind.String(), uint64(e.handle), ErrDuplicateAttachment)
	}
	e.engine[kind] = handle
	return nil
}

// ClearEngineHandle resets the slot for kind and returns the handle it held.
func (e *Entity) ClearEngineHandle(kind EngineKind) ComponentHandle {
	if kind >= EngineKindCount {
		return NullComponent
	}
	h := e.engine[kind]
	e.engine[kind] = NullComponent
	return h
}

// UserComponents returns the owned user components in attach order.
// The slice must not be modified.
func (e *Entity) UserComponents() []any {
	return e.userComponents
}

// AttachUser appends an owned user component, binding it if it is Bindable.
func (e *Entity) AttachUser(component any) {
	if b, ok := component.(Bindable); ok {
		b.Bind(e.handle)
	}
	e.userComponents = append(e.userComponents, component)
}

// DetachUserAt removes the user component at index and returns it.
func (e *Entity) DetachUserAt(index int) any {
	if index < 0 || index >= len(e.userComponents) {
		return nil
	}
	c := e.userComponents[index]
	e.userComponents = slices.Delete(e.userComponents, index, index+1)
	return c
}

// notifyDestroy sends OnDestroy to every Destroyable user component.
func (e *Entity) notifyDestroy() {
	for _, c := range e.userComponents {
		if d, ok := c.(Destroyable); ok {
			d.OnDestroy()
		}
	}
}
