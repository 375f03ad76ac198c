package ecs_test

import (
	"testing"

	"github.com/plus3/framecore/ecs"
	"github.com/stretchr/testify/assert"
)

func TestHandleGenerator(t *testing.T) {
	g := ecs.NewHandleGenerator()

	assert.Equal(t, uint64(1), g.Current())
	assert.Equal(t, uint64(1), g.Next())
	assert.Equal(t, uint64(2), g.Next())
	assert.Equal(t, uint64(3), g.Current())
	assert.Equal(t, uint64(3), g.Current(), "Current must not consume")

	g.Reset()
	assert.Equal(t, uint64(1), g.Next())
}

func TestHandleGeneratorZeroValue(t *testing.T) {
	var g ecs.HandleGenerator
	assert.Equal(t, uint64(1), g.Current())
	assert.Equal(t, uint64(1), g.Next(), "zero value never yields the null handle")
}

func TestNullHandles(t *testing.T) {
	assert.True(t, ecs.NullEntity.IsNull())
	assert.True(t, ecs.NullComponent.IsNull())
	assert.False(t, ecs.EntityHandle(1).IsNull())
	assert.False(t, ecs.ComponentHandle(7).IsNull())
}
