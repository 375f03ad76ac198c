package script_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
	"github.com/plus3/framecore/engine/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

const mover = `
updates = 0
fixed = 0
function update(dt)
	updates = updates + 1
	translate(dt * 10, 0)
end
function fixed_update(dt)
	fixed = fixed + 1
end
function on_collision(other)
	last_hit = other
end
function on_destroy()
	notify_destroyed(entity())
end
`

func attach(t *testing.T, ctx *engine.Context, source string) (ecs.EntityHandle, *script.Behavior) {
	t.Helper()
	h, err := ctx.CreateEntity(engine.Vec3{}, engine.Vec3{}, engine.One, "scripted")
	require.NoError(t, err)
	b, err := script.New(ctx, "test", source)
	require.NoError(t, err)
	_, err = engine.AddUserComponent(ctx, h, b)
	require.NoError(t, err)
	return h, b
}

func TestScriptHooks(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()
	h, b := attach(t, ctx, mover)

	var destroyedWith []float64
	b.Register("notify_destroyed", func(L *lua.LState) int {
		destroyedWith = append(destroyedWith, float64(L.CheckNumber(1)))
		return 0
	})

	b.Update(0.5)
	b.Update(0.5)
	b.FixedUpdate(0.02)
	require.NoError(t, b.Err())

	assert.Equal(t, 2.0, float64(lua.LVAsNumber(b.Global("updates"))))
	assert.Equal(t, 1.0, float64(lua.LVAsNumber(b.Global("fixed"))))

	tr, err := engine.GetEngineComponent[engine.Transform](ctx, h)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, tr.Position.X, 1e-9)

	other, _ := ctx.CreateEntity(engine.Vec3{}, engine.Vec3{}, engine.One, "wall")
	require.NoError(t, ctx.DispatchCollision(h, other))
	assert.Equal(t, float64(other), float64(lua.LVAsNumber(b.Global("last_hit"))))

	require.NoError(t, ctx.DestroyEntity(h))
	assert.Empty(t, destroyedWith)
	require.NoError(t, ctx.Cleanup())
	assert.Equal(t, []float64{float64(h)}, destroyedWith)

	b.Update(1)
	assert.Len(t, destroyedWith, 1, "hooks are inert once the VM is closed")
}

func TestScriptDrivenByFrameLoop(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()
	h, b := attach(t, ctx, `
frames = 0
function update(dt)
	frames = frames + 1
	if frames == 2 then destroy() end
end
`)
	loop := engine.NewFrameLoop(ctx, &engine.HeadlessPlatform{FrameLimit: 4}, &engine.NullBackend{}, engine.DefaultLoopConfig())
	require.NoError(t, loop.Run(t.Context()))
	require.NoError(t, b.Err())

	assert.False(t, ctx.Registry().IsActive(h))
	assert.Equal(t, int64(4), loop.Stats().Frames)
}

func TestScriptErrors(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()

	_, err := script.New(ctx, "broken", "function update(dt")
	assert.ErrorContains(t, err, "load script broken")

	_, b := attach(t, ctx, `function update(dt) error("boom") end`)
	b.Update(0.1)
	assert.ErrorContains(t, b.Err(), "boom")
	assert.ErrorContains(t, b.Err(), "update")

	_, quiet := attach(t, ctx, `x = 1`)
	quiet.Update(0.1)
	quiet.FixedUpdate(0.1)
	assert.NoError(t, quiet.Err(), "missing hooks are skipped")
}

func TestScriptPositionAccessors(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()
	h, b := attach(t, ctx, `
function update(dt)
	local x, y, z = position()
	set_position(x + 1, y + 2, z + 3)
	log("moved")
end
`)
	b.Update(0)
	require.NoError(t, b.Err())
	tr, err := engine.GetEngineComponent[engine.Transform](ctx, h)
	require.NoError(t, err)
	assert.Equal(t, engine.Vec3{X: 1, Y: 2, Z: 3}, tr.Position)
}

func TestScriptReadsTransformInOnDestroy(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()
	h, b := attach(t, ctx, `
function on_destroy()
	translate(1, 1)
	local x, y = position()
	last_position(x, y)
end
`)
	var got []float64
	b.Register("last_position", func(L *lua.LState) int {
		got = append(got, float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))
		return 0
	})
	tr, err := engine.GetEngineComponent[engine.Transform](ctx, h)
	require.NoError(t, err)
	tr.Position = engine.Vec3{X: 4, Y: 5}

	require.NoError(t, ctx.DestroyEntity(h))
	require.NoError(t, ctx.Cleanup())
	require.NoError(t, b.Err())
	assert.Equal(t, []float64{5, 6}, got)

	e, err := ctx.LookupEntity(h)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ecs.ErrBadHandle)
}

func TestLoadScriptFile(t *testing.T) {
	ctx := engine.NewContext()
	defer ctx.Close()

	path := filepath.Join(t.TempDir(), "spin.lua")
	require.NoError(t, os.WriteFile(path, []byte(`spins = 0
function fixed_update(dt) spins = spins + 1 end`), 0o644))

	b, err := script.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, b.Name())
	b.FixedUpdate(float64(time.Second))
	assert.Equal(t, 1.0, float64(lua.LVAsNumber(b.Global("spins"))))

	_, err = script.Load(ctx, filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
