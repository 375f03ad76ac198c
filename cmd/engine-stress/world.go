package main

import (
	"math/rand/v2"

	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
)

// wanderer drifts its entity every frame and bounces on fixed steps.
type wanderer struct {
	ecs.Behavior
	ctx      *engine.Context
	velocity engine.Vec3
}

func (w *wanderer) Update(dt float64) {
	t, err := engine.GetEngineComponent[engine.Transform](w.ctx, w.Owner())
	if err != nil {
		return
	}
	t.Translate(w.velocity.Scale(dt))
}

func (w *wanderer) FixedUpdate(float64) {
	t, err := engine.GetEngineComponent[engine.Transform](w.ctx, w.Owner())
	if err != nil {
		return
	}
	if t.Position.Length() > 1000 {
		w.velocity = w.velocity.Scale(-1)
	}
}

// spawner destroys and recreates churn random entities per frame, so every
// frame exercises deferred destruction and slot reuse.
type spawner struct {
	ecs.Behavior
	ctx   *engine.Context
	rng   *rand.Rand
	churn int

	live      []ecs.EntityHandle
	destroyed int64
	created   int64
	err       error
}

func (s *spawner) Update(float64) {
	for range s.churn {
		if len(s.live) == 0 {
			break
		}
		i := s.rng.IntN(len(s.live))
		if err := s.ctx.DestroyEntity(s.live[i]); err == nil {
			s.destroyed++
		}
		s.live[i] = s.live[len(s.live)-1]
		s.live = s.live[:len(s.live)-1]
	}
	for range s.churn {
		h, err := spawnRandom(s.ctx, s.rng)
		if err != nil {
			s.err = err
			return
		}
		s.live = append(s.live, h)
		s.created++
	}
}

// spawnRandom creates an entity with a transform, a wanderer and up to three
// more engine components.
func spawnRandom(ctx *engine.Context, rng *rand.Rand) (ecs.EntityHandle, error) {
	pos := engine.Vec3{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
	h, err := ctx.CreateEntity(pos, engine.Vec3{}, engine.One, "")
	if err != nil {
		return ecs.NullEntity, err
	}
	if rng.IntN(2) == 0 {
		if _, err := engine.AddEngineComponent(ctx, h, engine.Renderer{Mesh: "quad", Size: engine.Vec2{X: 4, Y: 4}}); err != nil {
			return ecs.NullEntity, err
		}
	}
	if rng.IntN(10) == 0 {
		if _, err := engine.AddEngineComponent(ctx, h, engine.PointLight{Intensity: 1, Radius: 20}); err != nil {
			return ecs.NullEntity, err
		}
	}
	if rng.IntN(20) == 0 {
		if _, err := engine.AddEngineComponent(ctx, h, engine.NetworkDispatcher{Channel: "sync"}); err != nil {
			return ecs.NullEntity, err
		}
	}
	_, err = engine.AddUserComponent(ctx, h, &wanderer{
		ctx:      ctx,
		velocity: engine.Vec3{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5},
	})
	return h, err
}

// populate fills ctx with n entities plus the spawner that churns them.
func populate(ctx *engine.Context, rng *rand.Rand, n, churn int) (*spawner, error) {
	s := &spawner{ctx: ctx, rng: rng, churn: churn}
	for range n {
		h, err := spawnRandom(ctx, rng)
		if err != nil {
			return nil, err
		}
		s.live = append(s.live, h)
	}
	h, err := ctx.CreateEntity(engine.Vec3{}, engine.Vec3{}, engine.One, "spawner")
	if err != nil {
		return nil, err
	}
	if _, err := engine.AddUserComponent(ctx, h, s); err != nil {
		return nil, err
	}
	return s, nil
}
