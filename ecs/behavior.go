package ecs

// Updatable components receive the scaled frame delta once per frame.
type Updatable interface {
	Update(dt float64)
}

// FixedUpdatable components receive the fixed interval on fixed-step passes.
type FixedUpdatable interface {
	FixedUpdate(dt float64)
}

// Destroyable components are notified once when their entity is reclaimed,
// or when they are removed from it.
type Destroyable interface {
	OnDestroy()
}

// CollisionListener components are told about collisions involving their entity.
type CollisionListener interface {
	OnCollision(other EntityHandle)
}

// Bindable components learn which entity owns them when they are attached.
type Bindable interface {
	Bind(owner EntityHandle)
}

// Behavior can be embedded in a user component to record its owner.
type Behavior struct {
	owner EntityHandle
}

// Bind implements Bindable.
func (b *Behavior) Bind(owner EntityHandle) {
	b.owner = owner
}

// Owner returns the entity this component is attached to.
func (b *Behavior) Owner() EntityHandle {
	return b.owner
}
