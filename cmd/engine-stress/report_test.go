package main

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/framecore/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond}}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestChurnWorld(t *testing.T) {
	ctx := engine.NewContext(engine.WithPoolCapacity(16))
	defer ctx.Close()

	rng := rand.New(rand.NewPCG(7, 8))
	s, err := populate(ctx, rng, 50, 5)
	require.NoError(t, err)
	assert.Equal(t, 51, ctx.Registry().ActiveCount())

	loop := engine.NewFrameLoop(ctx, &engine.HeadlessPlatform{}, &engine.NullBackend{}, engine.DefaultLoopConfig())
	for range 20 {
		require.NoError(t, loop.Step())
	}
	require.NoError(t, s.err)
	assert.Equal(t, int64(100), s.created)
	assert.Equal(t, int64(100), s.destroyed)
	assert.Equal(t, 51, ctx.Registry().ActiveCount())
	assert.Equal(t, 0, ctx.Registry().PendingCount())
	assert.Equal(t, 51, ctx.Transforms().Len())
}

func TestReportGenerate(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()
	loop := engine.NewFrameLoop(ctx, &engine.HeadlessPlatform{}, &engine.NullBackend{}, engine.DefaultLoopConfig())
	require.NoError(t, loop.Step())

	r := &Report{
		Duration: time.Second,
		Workers:  1,
		Worlds:   []WorldResult{{Loop: loop.Stats(), Context: ctx.Stats()}},
	}
	r.Finalize()
	assert.Equal(t, int64(1), r.TotalFrames)

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "# Engine Stress Test Report")
	assert.Contains(t, out, "### World 0")
	assert.Contains(t, out, "table transform")
	assert.Contains(t, out, "- cleanup: avg")
}
