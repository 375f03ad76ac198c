package engine

import (
	"errors"

	"github.com/plus3/framecore/ecs"
)

// engineTable maps an engine component type to its table and kind.
func engineTable[T any](c *Context) (*ecs.ComponentTable[T], ecs.EngineKind, error) {
	switch any((*T)(nil)).(type) {
	case *Transform:
		return any(c.transforms).(*ecs.ComponentTable[T]), ecs.KindTransform, nil
	case *Renderer:
		return any(c.renderers).(*ecs.ComponentTable[T]), ecs.KindRenderer, nil
	case *PointLight:
		return any(c.lights).(*ecs.ComponentTable[T]), ecs.KindLight, nil
	case *NetworkDispatcher:
		return any(c.dispatchers).(*ecs.ComponentTable[T]), ecs.KindNetwork, nil
	}
	return nil, 0, ErrNotEngineComponent
}

// AddEngineComponent attaches an engine component to an active entity.
// Each kind can be attached once; a second attach yields
// ecs.ErrDuplicateAttachment.
func AddEngineComponent[T any](c *Context, h ecs.EntityHandle, value T) (*T, error) {
	table, kind, err := engineTable[T](c)
	if err != nil {
		return nil, err
	}
	e, err := c.registry.Get(h)
	if err != nil {
		return nil, err
	}
	if e.HasEngine(kind) {
		return nil, &ecs.Error{Op: "attach " + kind.String(), Handle: uint64(h), Err: ecs.ErrDuplicateAttachment}
	}

	ch, ptr, err := table.Add(h, value)
	if err != nil {
		return nil, err
	}
	if err := e.SetEngineHandle(kind, ch); err != nil {
		_ = table.Remove(ch)
		return nil, err
	}
	return ptr, nil
}

// GetEngineComponent returns the entity's engine component of type T.
func GetEngineComponent[T any](c *Context, h ecs.EntityHandle) (*T, error) {
	table, kind, err := engineTable[T](c)
	if err != nil {
		return nil, err
	}
	e, err := c.registry.Get(h)
	if err != nil {
		return nil, err
	}
	ch := e.EngineHandle(kind)
	if ch.IsNull() {
		return nil, &ecs.Error{Op: "get " + kind.String(), Handle: uint64(h), Err: ecs.ErrComponentNotFound}
	}
	return table.Get(ch)
}

// LookupEngineComponent resolves a component handle directly. Components of
// entities destroyed this frame stay resolvable until Cleanup.
func LookupEngineComponent[T any](c *Context, ch ecs.ComponentHandle) (*T, error) {
	table, _, err := engineTable[T](c)
	if err != nil {
		return nil, err
	}
	return table.Get(ch)
}

// RemoveEngineComponent detaches and frees the entity's component of type T.
func RemoveEngineComponent[T any](c *Context, h ecs.EntityHandle) error {
	table, kind, err := engineTable[T](c)
	if err != nil {
		return err
	}
	e, err := c.registry.Get(h)
	if err != nil {
		return err
	}
	ch := e.ClearEngineHandle(kind)
	if ch.IsNull() {
		return &ecs.Error{Op: "remove " + kind.String(), Handle: uint64(h), Err: ecs.ErrComponentNotFound}
	}
	return table.Remove(ch)
}

// HasEngineComponent reports whether the active entity has a component of type T.
func HasEngineComponent[T any](c *Context, h ecs.EntityHandle) bool {
	_, kind, err := engineTable[T](c)
	if err != nil {
		return false
	}
	e, err := c.registry.Get(h)
	if err != nil {
		return false
	}
	return e.HasEngine(kind)
}

// AddUserComponent gives ownership of component to the entity and returns it.
// Components embedding ecs.Behavior learn their owner here.
func AddUserComponent[T any](c *Context, h ecs.EntityHandle, component *T) (*T, error) {
	if component == nil {
		component = new(T)
	}
	e, err := c.registry.Get(h)
	if err != nil {
		return nil, err
	}
	e.AttachUser(component)
	return component, nil
}

// GetUserComponent returns the first user component of type *T.
func GetUserComponent[T any](c *Context, h ecs.EntityHandle) (*T, error) {
	e, err := c.registry.Get(h)
	if err != nil {
		return nil, err
	}
	if i := userIndex[T](e); i >= 0 {
		return e.UserComponents()[i].(*T), nil
	}
	return nil, &ecs.Error{Op: "get user component", Handle: uint64(h), Err: ecs.ErrComponentNotFound}
}

// RemoveUserComponent detaches the first user component of type *T and sends
// it OnDestroy if it is Destroyable.
func RemoveUserComponent[T any](c *Context, h ecs.EntityHandle) error {
	e, err := c.registry.Get(h)
	if err != nil {
		return err
	}
	i := userIndex[T](e)
	if i < 0 {
		return &ecs.Error{Op: "remove user component", Handle: uint64(h), Err: ecs.ErrComponentNotFound}
	}
	if d, ok := e.DetachUserAt(i).(ecs.Destroyable); ok {
		d.OnDestroy()
	}
	return nil
}

// HasUserComponent reports whether the entity owns a user component of type *T.
func HasUserComponent[T any](c *Context, h ecs.EntityHandle) bool {
	e, err := c.registry.Get(h)
	if err != nil {
		return false
	}
	return userIndex[T](e) >= 0
}

func userIndex[T any](e *ecs.Entity) int {
	for i, uc := range e.UserComponents() {
		if _, ok := uc.(*T); ok {
			return i
		}
	}
	return -1
}

// DispatchCollision tells every CollisionListener on a about b and every
// CollisionListener on b about a. Both entities must be active.
func (c *Context) DispatchCollision(a, b ecs.EntityHandle) error {
	ea, errA := c.registry.Get(a)
	eb, errB := c.registry.Get(b)
	if err := errors.Join(errA, errB); err != nil {
		return err
	}
	notifyCollision(ea, b)
	notifyCollision(eb, a)
	return nil
}

func notifyCollision(e *ecs.Entity, other ecs.EntityHandle) {
	for _, uc := range e.UserComponents() {
		if l, ok := uc.(ecs.CollisionListener); ok {
			l.OnCollision(other)
		}
	}
}
