// Package script provides a user component whose hooks are written in Lua.
//
// A script may define any of these globals:
//
//	function update(dt) end
//	function fixed_update(dt) end
//	function on_collision(other) end
//	function on_destroy() end
//
// and can call back into the engine through entity(), position(),
// set_position(x, y, z), translate(dx, dy, dz), destroy() and log(msg).
package script

import (
	"fmt"

	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const (
	hookUpdate      = "update"
	hookFixedUpdate = "fixed_update"
	hookCollision   = "on_collision"
	hookDestroy     = "on_destroy"
)

// Behavior runs one Lua VM per attached component. Single-goroutine access
// only (the frame loop).
type Behavior struct {
	ecs.Behavior

	name string
	ctx  *engine.Context
	vm   *lua.LState
	log  *zap.Logger
	err  error
}

// New compiles source and returns a component ready to be attached with
// engine.AddUserComponent.
func New(ctx *engine.Context, name, source string) (*Behavior, error) {
	b := newBehavior(ctx, name)
	if err := b.vm.DoString(source); err != nil {
		b.vm.Close()
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return b, nil
}

// Load compiles the Lua file at path.
func Load(ctx *engine.Context, path string) (*Behavior, error) {
	b := newBehavior(ctx, path)
	if err := b.vm.DoFile(path); err != nil {
		b.vm.Close()
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	b.log.Debug("loaded lua script")
	return b, nil
}

func newBehavior(ctx *engine.Context, name string) *Behavior {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	b := &Behavior{
		name: name,
		ctx:  ctx,
		vm:   vm,
		log:  ctx.Logger().Named("script").With(zap.String("script", name)),
	}
	b.Register("entity", b.luaEntity)
	b.Register("position", b.luaPosition)
	b.Register("set_position", b.luaSetPosition)
	b.Register("translate", b.luaTranslate)
	b.Register("destroy", b.luaDestroy)
	b.Register("log", b.luaLog)
	return b
}

// Name returns the script's name or path.
func (b *Behavior) Name() string {
	return b.name
}

// Register exposes a Go function to the script as a global.
func (b *Behavior) Register(name string, fn lua.LGFunction) {
	b.vm.SetGlobal(name, b.vm.NewFunction(fn))
}

// Global reads a script global.
func (b *Behavior) Global(name string) lua.LValue {
	return b.vm.GetGlobal(name)
}

// Err returns the most recent hook error, if any. Hooks keep running after
// an error.
func (b *Behavior) Err() error {
	return b.err
}

func (b *Behavior) Update(dt float64) {
	b.call(hookUpdate, lua.LNumber(dt))
}

func (b *Behavior) FixedUpdate(dt float64) {
	b.call(hookFixedUpdate, lua.LNumber(dt))
}

func (b *Behavior) OnCollision(other ecs.EntityHandle) {
	b.call(hookCollision, lua.LNumber(other))
}

// OnDestroy runs the script's on_destroy hook and closes the VM.
func (b *Behavior) OnDestroy() {
	if b.vm.IsClosed() {
		return
	}
	b.call(hookDestroy)
	b.vm.Close()
}

func (b *Behavior) call(hook string, args ...lua.LValue) {
	if b.vm.IsClosed() {
		return
	}
	fn := b.vm.GetGlobal(hook)
	if fn == lua.LNil {
		return
	}
	if err := b.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		b.err = fmt.Errorf("%s %s: %w", b.name, hook, err)
		b.log.Error("lua hook error", zap.String("hook", hook), zap.Error(err))
	}
}

// transform resolves the owner's transform, including from on_destroy while
// the entity waits for cleanup.
func (b *Behavior) transform(L *lua.LState) *engine.Transform {
	e, err := b.ctx.LookupEntity(b.Owner())
	if err != nil {
		L.RaiseError("%v", err)
		return nil
	}
	t, err := engine.LookupEngineComponent[engine.Transform](b.ctx, e.EngineHandle(ecs.KindTransform))
	if err != nil {
		L.RaiseError("%v", err)
		return nil
	}
	return t
}

func (b *Behavior) luaEntity(L *lua.LState) int {
	L.Push(lua.LNumber(b.Owner()))
	return 1
}

func (b *Behavior) luaPosition(L *lua.LState) int {
	t := b.transform(L)
	L.Push(lua.LNumber(t.Position.X))
	L.Push(lua.LNumber(t.Position.Y))
	L.Push(lua.LNumber(t.Position.Z))
	return 3
}

func (b *Behavior) luaSetPosition(L *lua.LState) int {
	t := b.transform(L)
	t.Position = engine.Vec3{
		X: float64(L.CheckNumber(1)),
		Y: float64(L.CheckNumber(2)),
		Z: float64(L.OptNumber(3, 0)),
	}
	return 0
}

func (b *Behavior) luaTranslate(L *lua.LState) int {
	t := b.transform(L)
	t.Translate(engine.Vec3{
		X: float64(L.CheckNumber(1)),
		Y: float64(L.CheckNumber(2)),
		Z: float64(L.OptNumber(3, 0)),
	})
	return 0
}

func (b *Behavior) luaDestroy(L *lua.LState) int {
	if err := b.ctx.DestroyEntity(b.Owner()); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (b *Behavior) luaLog(L *lua.LState) int {
	b.log.Info(L.CheckString(1))
	return 0
}
