package ecs_test

import (
	"testing"

	"github.com/plus3/framecore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndLookup(t *testing.T) {
	r, tables := newTestRegistry()

	e := spawn(r, tables, "player", 1, 2)
	assert.Equal(t, ecs.EntityHandle(1), e.Handle())
	assert.Equal(t, "player", e.Tag())
	assert.True(t, e.HasEngine(ecs.KindTransform))
	assert.False(t, e.HasEngine(ecs.KindRenderer))

	got, err := r.Get(e.Handle())
	require.NoError(t, err)
	assert.Same(t, e, got)

	byTag, err := r.FindByTag("player")
	require.NoError(t, err)
	assert.Same(t, e, byTag)

	_, err = r.FindByTag("enemy")
	assert.ErrorIs(t, err, ecs.ErrTagNotFound)

	_, err = r.Get(ecs.EntityHandle(99))
	assert.ErrorIs(t, err, ecs.ErrBadHandle)
}

func TestRegistryDuplicateTags(t *testing.T) {
	r, tables := newTestRegistry()
	first := spawn(r, tables, "crate", 0, 0)
	second := spawn(r, tables, "crate", 1, 1)

	got, err := r.FindByTag("crate")
	require.NoError(t, err)
	assert.Same(t, first, got, "earliest active entity wins")

	require.NoError(t, r.Destroy(first.Handle()))
	got, err = r.FindByTag("crate")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestRegistryDeferredDestruction(t *testing.T) {
	r, tables := newTestRegistry()
	e := spawn(r, tables, "doomed", 3, 4)
	counter := &destroyCounter{}
	e.AttachUser(counter)
	transform := e.EngineHandle(ecs.KindTransform)

	require.NoError(t, r.Destroy(e.Handle()))

	t.Run("removed from active immediately", func(t *testing.T) {
		_, err := r.Get(e.Handle())
		assert.ErrorIs(t, err, ecs.ErrBadHandle)
		_, err = r.FindByTag("doomed")
		assert.ErrorIs(t, err, ecs.ErrTagNotFound)
		assert.False(t, r.IsActive(e.Handle()))
		assert.True(t, r.IsPending(e.Handle()))
	})

	t.Run("components stay resolvable until cleanup", func(t *testing.T) {
		pos, err := tables.positions.Get(transform)
		require.NoError(t, err)
		assert.Equal(t, Position{X: 3, Y: 4}, *pos)
		assert.Equal(t, 0, counter.destroyed)

		pending, err := r.Pending(e.Handle())
		require.NoError(t, err)
		assert.Same(t, e, pending)
	})

	t.Run("cleanup notifies once and reclaims", func(t *testing.T) {
		n, err := r.Cleanup()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, counter.destroyed)
		assert.False(t, tables.positions.Contains(transform))
		assert.False(t, r.IsPending(e.Handle()))
		assert.False(t, e.HasEngine(ecs.KindTransform))

		n, err = r.Cleanup()
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, 1, counter.destroyed)
	})
}

func TestRegistryDestroyUnknown(t *testing.T) {
	r, tables := newTestRegistry()
	e := spawn(r, tables, "x", 0, 0)

	assert.ErrorIs(t, r.Destroy(ecs.EntityHandle(99)), ecs.ErrBadHandle)
	require.NoError(t, r.Destroy(e.Handle()))
	assert.ErrorIs(t, r.Destroy(e.Handle()), ecs.ErrBadHandle, "pending entities are not active")
}

func TestRegistryForEachActive(t *testing.T) {
	r, tables := newTestRegistry()
	a := spawn(r, tables, "a", 0, 0)
	b := spawn(r, tables, "b", 0, 0)
	c := spawn(r, tables, "c", 0, 0)

	var visited []string
	err := r.ForEachActive(func(e *ecs.Entity) error {
		visited = append(visited, e.Tag())
		if e == a {
			require.NoError(t, r.Destroy(b.Handle()))
			spawn(r, tables, "late", 0, 0)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, visited)

	_, err = r.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityHandle{a.Handle(), c.Handle(), 4}, r.ActiveHandles())
}

func TestRegistryForEachActiveSurvivesCleanup(t *testing.T) {
	r, tables := newTestRegistry()
	a := spawn(r, tables, "a", 0, 0)
	b := spawn(r, tables, "b", 0, 0)
	spawn(r, tables, "c", 0, 0)

	var visited []string
	err := r.ForEachActive(func(e *ecs.Entity) error {
		visited = append(visited, e.Tag())
		if e == a {
			require.NoError(t, r.Destroy(b.Handle()))
			n, err := r.Cleanup()
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, visited)
	assert.Equal(t, 2, tables.positions.Len())
}

func TestRegistryForEachActiveEndsOnClear(t *testing.T) {
	r, tables := newTestRegistry()
	a := spawn(r, tables, "a", 0, 0)
	spawn(r, tables, "b", 0, 0)
	spawn(r, tables, "c", 0, 0)

	var visited []string
	err := r.ForEachActive(func(e *ecs.Entity) error {
		visited = append(visited, e.Tag())
		if e == a {
			_, err := r.Clear()
			require.NoError(t, err)
			// Reuses handle 1 after the reset.
			spawn(r, tables, "fresh", 0, 0)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, visited)
	assert.Equal(t, 1, r.ActiveCount())
}

func TestRegistryCascadingDestroy(t *testing.T) {
	r, tables := newTestRegistry()
	parent := spawn(r, tables, "parent", 0, 0)
	child := spawn(r, tables, "child", 0, 0)

	childCounter := &destroyCounter{}
	child.AttachUser(childCounter)
	parent.AttachUser(&destroyCounter{onDestroy: func() {
		_ = r.Destroy(child.Handle())
	}})

	require.NoError(t, r.Destroy(parent.Handle()))
	n, err := r.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, childCounter.destroyed)
	assert.Equal(t, 0, r.PendingCount())
	assert.Equal(t, 0, tables.positions.Len())
}

func TestRegistryClear(t *testing.T) {
	r, tables := newTestRegistry()
	counters := make([]*destroyCounter, 3)
	for i := range counters {
		e := spawn(r, tables, "e", 0, 0)
		counters[i] = &destroyCounter{}
		e.AttachUser(counters[i])
	}

	n, err := r.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	for _, c := range counters {
		assert.Equal(t, 1, c.destroyed)
	}
	assert.Equal(t, 0, r.ActiveCount())
	assert.Equal(t, 0, tables.positions.Len())
	assert.Equal(t, ecs.EntityHandle(1), r.NextHandle())

	stats := r.Stats()
	assert.Equal(t, 0, stats.Active)
	assert.Equal(t, 0, stats.Tags)
}

func TestEntityEngineHandles(t *testing.T) {
	r, tables := newTestRegistry()
	e := spawn(r, tables, "e", 0, 0)

	err := e.SetEngineHandle(ecs.KindTransform, 5)
	assert.ErrorIs(t, err, ecs.ErrDuplicateAttachment)

	h := e.ClearEngineHandle(ecs.KindTransform)
	assert.False(t, h.IsNull())
	assert.NoError(t, e.SetEngineHandle(ecs.KindTransform, 5))
	assert.Equal(t, ecs.ComponentHandle(5), e.EngineHandle(ecs.KindTransform))

	assert.Equal(t, ecs.NullComponent, e.EngineHandle(ecs.EngineKindCount))
	assert.Equal(t, "light", ecs.KindLight.String())
}

func TestEntityUserComponents(t *testing.T) {
	r, tables := newTestRegistry()
	e := spawn(r, tables, "e", 0, 0)

	first := &destroyCounter{}
	second := &destroyCounter{}
	e.AttachUser(first)
	e.AttachUser(second)

	assert.Equal(t, e.Handle(), first.Owner(), "Behavior is bound on attach")
	assert.Len(t, e.UserComponents(), 2)

	removed := e.DetachUserAt(0)
	assert.Same(t, first, removed)
	assert.Equal(t, []any{second}, e.UserComponents())
	assert.Nil(t, e.DetachUserAt(5))
}
