package ecs

// TableStats summarises a ComponentTable's occupancy.
type TableStats struct {
	Live          int
	Pools         int
	PoolCapacity  int
	FreeSlots     int
	HighWaterMark []int
	NextHandle    ComponentHandle
}

// Stats reports the table's current occupancy, one high-water mark per pool.
func (t *ComponentTable[T]) Stats() TableStats {
	stats := TableStats{
		Live:          t.Len(),
		Pools:         len(t.pools),
		PoolCapacity:  t.poolCapacity,
		HighWaterMark: make([]int, len(t.pools)),
		NextHandle:    t.NextHandle(),
	}
	for i, pool := range t.pools {
		stats.FreeSlots += len(pool.freeSlots)
		stats.HighWaterMark[i] = pool.nextIndex
	}
	return stats
}

// RegistryStats summarises an EntityRegistry.
type RegistryStats struct {
	Active     int
	Pending    int
	Tags       int
	NextHandle EntityHandle
}

// Stats reports the registry's current counts.
func (r *EntityRegistry) Stats() RegistryStats {
	return RegistryStats{
		Active:     r.active.Len(),
		Pending:    r.pending.Len(),
		Tags:       r.tags.Len(),
		NextHandle: r.NextHandle(),
	}
}
