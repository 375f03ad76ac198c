package engine

import (
	"fmt"

	"github.com/plus3/framecore/ecs"
	"go.uber.org/zap"
)

// Scene populates a Context on Load and releases anything it holds outside
// the Context on Unload. Entities are cleared by the Context itself.
type Scene interface {
	Name() string
	Load(ctx *Context) error
	Unload(ctx *Context) error
}

// SceneFunc adapts a load function to a Scene with a no-op Unload.
type SceneFunc struct {
	SceneName string
	LoadFunc  func(ctx *Context) error
}

func (s SceneFunc) Name() string { return s.SceneName }

func (s SceneFunc) Load(ctx *Context) error {
	if s.LoadFunc == nil {
		return nil
	}
	return s.LoadFunc(ctx)
}

func (s SceneFunc) Unload(*Context) error { return nil }

// ChangeScene queues a swap to next for the end of the current frame.
// A later call before Cleanup replaces the queued scene.
func (c *Context) ChangeScene(next Scene) {
	c.nextScene = next
	c.swapPending = true
}

// Scene returns the loaded scene, or nil.
func (c *Context) Scene() Scene {
	return c.scene
}

// SwapPending reports whether a scene change is queued.
func (c *Context) SwapPending() bool {
	return c.swapPending
}

// Cleanup runs the end-of-frame work: entities destroyed this frame are
// reclaimed, then a queued scene swap is performed.
func (c *Context) Cleanup() error {
	n, err := c.registry.Cleanup()
	if n > 0 {
		c.logger.Debug("reclaimed entities", zap.Int("count", n))
	}
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	if !c.swapPending {
		return nil
	}
	return c.swapScene()
}

func (c *Context) swapScene() error {
	next := c.nextScene
	c.nextScene = nil
	c.swapPending = false

	if c.scene != nil {
		if err := c.scene.Unload(c); err != nil {
			return fmt.Errorf("unload scene %s: %w", c.scene.Name(), err)
		}
		c.logger.Info("scene unloaded", zap.String("scene", c.scene.Name()))
	}
	if err := c.Clear(); err != nil {
		return err
	}

	c.scene = next
	if next == nil {
		return nil
	}
	if err := next.Load(c); err != nil {
		return fmt.Errorf("load scene %s: %w", next.Name(), err)
	}
	c.logger.Info("scene loaded",
		zap.String("scene", next.Name()),
		zap.Int("entities", c.registry.ActiveCount()),
	)
	return nil
}

// ContextStats summarises a Context.
type ContextStats struct {
	Entities ecs.RegistryStats
	Tables   [ecs.EngineKindCount]ecs.TableStats
	Scene    string
}

// Stats reports entity counts and per-kind table occupancy.
func (c *Context) Stats() ContextStats {
	stats := ContextStats{Entities: c.registry.Stats()}
	stats.Tables[ecs.KindTransform] = c.transforms.Stats()
	stats.Tables[ecs.KindRenderer] = c.renderers.Stats()
	stats.Tables[ecs.KindLight] = c.lights.Stats()
	stats.Tables[ecs.KindNetwork] = c.dispatchers.Stats()
	if c.scene != nil {
		stats.Scene = c.scene.Name()
	}
	return stats
}
