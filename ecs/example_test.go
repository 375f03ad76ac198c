package ecs_test

import (
	"fmt"

	"github.com/plus3/framecore/ecs"
)

// ExampleComponentTable shows handle-addressed storage. A table grows by
// appending pools, so a component's address stays valid until it is removed.
func ExampleComponentTable() {
	table := ecs.NewComponentTable[Position](2)

	first, pos, _ := table.Add(1, Position{X: 1, Y: 2})
	second, _, _ := table.Add(2, Position{X: 3, Y: 4})
	table.Add(3, Position{X: 5, Y: 6})
	fmt.Printf("%d components in %d pools\n", table.Len(), table.PoolCount())

	pos.X = 10
	got, _ := table.Get(first)
	fmt.Printf("first component at (%.0f, %.0f)\n", got.X, got.Y)

	table.Remove(second)
	_, err := table.Get(second)
	fmt.Println(err)

	// Output:
	// 3 components in 2 pools
	// first component at (10, 2)
	// component table get 2: handle does not resolve to a live record
}

// ExampleEntityRegistry shows deferred destruction. A destroyed entity
// leaves the active set at once but keeps its components until Cleanup.
func ExampleEntityRegistry() {
	registry, tables := newTestRegistry()
	player := spawn(registry, tables, "player", 1, 1)
	spawn(registry, tables, "crate", 4, 2)

	registry.Destroy(player.Handle())
	_, err := registry.FindByTag("player")
	fmt.Println(err)
	fmt.Printf("active %d, pending %d, positions %d\n",
		registry.ActiveCount(), registry.PendingCount(), tables.positions.Len())

	n, _ := registry.Cleanup()
	fmt.Printf("reclaimed %d, positions %d\n", n, tables.positions.Len())

	// Output:
	// find entity player: no active entity with tag
	// active 1, pending 1, positions 2
	// reclaimed 1, positions 1
}
