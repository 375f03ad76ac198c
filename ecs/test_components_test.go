package ecs_test

import "github.com/plus3/framecore/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int
	Max     int
}

// destroyCounter is a user component that counts OnDestroy calls.
type destroyCounter struct {
	ecs.Behavior
	destroyed int
	onDestroy func()
}

func (d *destroyCounter) OnDestroy() {
	d.destroyed++
	if d.onDestroy != nil {
		d.onDestroy()
	}
}

type testTables struct {
	positions  *ecs.ComponentTable[Position]
	velocities *ecs.ComponentTable[Velocity]
}

func newTestRegistry() (*ecs.EntityRegistry, *testTables) {
	tables := &testTables{
		positions:  ecs.NewComponentTable[Position](4),
		velocities: ecs.NewComponentTable[Velocity](4),
	}
	var removers [ecs.EngineKindCount]ecs.ComponentRemover
	removers[ecs.KindTransform] = tables.positions
	removers[ecs.KindRenderer] = tables.velocities
	return ecs.NewEntityRegistry(removers), tables
}

// spawn creates an entity with a position component, the way the engine
// context attaches a transform on creation.
func spawn(r *ecs.EntityRegistry, tables *testTables, tag string, x, y float32) *ecs.Entity {
	e := r.Create(tag)
	h, _, err := tables.positions.Add(e.Handle(), Position{X: x, Y: y})
	if err != nil {
		panic(err)
	}
	if err := e.SetEngineHandle(ecs.KindTransform, h); err != nil {
		panic(err)
	}
	return e
}
