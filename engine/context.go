package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/plus3/framecore/ecs"
	"go.uber.org/zap"
)

// ErrNotEngineComponent is returned by the engine component accessors when
// the type argument is not one of the built-in kinds.
var ErrNotEngineComponent = errors.New("type is not an engine component")

// Context owns all engine state: the entity registry, one component table per
// engine kind and the scene bookkeeping. It replaces process-wide globals;
// every entry point takes the Context explicitly.
type Context struct {
	registry    *ecs.EntityRegistry
	transforms  *ecs.ComponentTable[Transform]
	renderers   *ecs.ComponentTable[Renderer]
	lights      *ecs.ComponentTable[PointLight]
	dispatchers *ecs.ComponentTable[NetworkDispatcher]

	logger *zap.Logger
	runID  uuid.UUID

	scene       Scene
	nextScene   Scene
	swapPending bool
	closed      bool
}

// Option configures a Context.
type Option func(*contextOptions)

type contextOptions struct {
	poolCapacity int
	maxPools     int
	logger       *zap.Logger
}

// WithPoolCapacity sets the slot count of every pool in every engine table.
func WithPoolCapacity(n int) Option {
	return func(o *contextOptions) {
		o.poolCapacity = n
	}
}

// WithMaxPools caps how many pools each engine table may grow to.
func WithMaxPools(n int) Option {
	return func(o *contextOptions) {
		o.maxPools = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *contextOptions) {
		o.logger = logger
	}
}

// NewContext initialises engine state. Call Close to tear it down.
func NewContext(opts ...Option) *Context {
	o := contextOptions{poolCapacity: ecs.DefaultPoolCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	var tableOpts []ecs.TableOption
	if o.maxPools > 0 {
		tableOpts = append(tableOpts, ecs.WithMaxPools(o.maxPools))
	}

	c := &Context{
		transforms:  ecs.NewComponentTable[Transform](o.poolCapacity, tableOpts...),
		renderers:   ecs.NewComponentTable[Renderer](o.poolCapacity, tableOpts...),
		lights:      ecs.NewComponentTable[PointLight](o.poolCapacity, tableOpts...),
		dispatchers: ecs.NewComponentTable[NetworkDispatcher](o.poolCapacity, tableOpts...),
		runID:       uuid.New(),
	}

	var removers [ecs.EngineKindCount]ecs.ComponentRemover
	removers[ecs.KindTransform] = c.transforms
	removers[ecs.KindRenderer] = c.renderers
	removers[ecs.KindLight] = c.lights
	removers[ecs.KindNetwork] = c.dispatchers
	c.registry = ecs.NewEntityRegistry(removers)

	c.logger = o.logger.With(zap.String("run_id", c.runID.String()))
	c.logger.Debug("engine context created", zap.Int("pool_capacity", o.poolCapacity))
	return c
}

// Logger returns the context's logger.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// RunID identifies this Context in logs.
func (c *Context) RunID() uuid.UUID {
	return c.runID
}

// Registry exposes the entity registry for read-only inspection.
func (c *Context) Registry() *ecs.EntityRegistry {
	return c.registry
}

// Transforms returns the transform table.
func (c *Context) Transforms() *ecs.ComponentTable[Transform] {
	return c.transforms
}

// Renderers returns the renderer table.
func (c *Context) Renderers() *ecs.ComponentTable[Renderer] {
	return c.renderers
}

// Lights returns the point light table.
func (c *Context) Lights() *ecs.ComponentTable[PointLight] {
	return c.lights
}

// Dispatchers returns the network dispatcher table.
func (c *Context) Dispatchers() *ecs.ComponentTable[NetworkDispatcher] {
	return c.dispatchers
}

// CreateEntity creates an active entity with a transform.
func (c *Context) CreateEntity(pos, rot, scale Vec3, tag string) (ecs.EntityHandle, error) {
	e := c.registry.Create(tag)
	th, _, err := c.transforms.Add(e.Handle(), Transform{Position: pos, Rotation: rot, Scale: scale})
	if err != nil {
		// Leave the bare record to the next cleanup pass.
		_ = c.registry.Destroy(e.Handle())
		return ecs.NullEntity, fmt.Errorf("create entity %q: %w", tag, err)
	}
	if err := e.SetEngineHandle(ecs.KindTransform, th); err != nil {
		return ecs.NullEntity, err
	}
	c.logger.Debug("entity created", zap.Uint64("entity", uint64(e.Handle())), zap.String("tag", tag))
	return e.Handle(), nil
}

// DestroyEntity requests destruction. The entity leaves normal lookup at once;
// its components are reclaimed during the next Cleanup.
func (c *Context) DestroyEntity(h ecs.EntityHandle) error {
	if err := c.registry.Destroy(h); err != nil {
		return err
	}
	c.logger.Debug("entity destroyed", zap.Uint64("entity", uint64(h)))
	return nil
}

// GetEntity returns the active entity for h.
func (c *Context) GetEntity(h ecs.EntityHandle) (*ecs.Entity, error) {
	return c.registry.Get(h)
}

// LookupEntity returns the record for h while it is active or waiting for
// Cleanup. Destroyable components use it to reach their own entity from OnDestroy.
func (c *Context) LookupEntity(h ecs.EntityHandle) (*ecs.Entity, error) {
	if e, err := c.registry.Get(h); err == nil {
		return e, nil
	}
	return c.registry.Pending(h)
}

// FindEntity returns the earliest-created active entity with tag.
func (c *Context) FindEntity(tag string) (*ecs.Entity, error) {
	return c.registry.FindByTag(tag)
}

// Clear destroys every entity through the two-phase path, then resets every
// table and handle generator.
func (c *Context) Clear() error {
	n, err := c.registry.Clear()
	c.transforms.Clear()
	c.renderers.Clear()
	c.lights.Clear()
	c.dispatchers.Clear()
	c.logger.Debug("engine state cleared", zap.Int("entities", n))
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Close unloads the active scene and clears all state. The Context must not
// be used afterwards.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.scene != nil {
		if err := c.scene.Unload(c); err != nil {
			errs = append(errs, fmt.Errorf("unload scene %s: %w", c.scene.Name(), err))
		}
		c.scene = nil
	}
	c.nextScene = nil
	c.swapPending = false
	if err := c.Clear(); err != nil {
		errs = append(errs, err)
	}
	c.logger.Debug("engine context closed")
	return errors.Join(errs...)
}
