package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/framecore/ecs"
	"go.uber.org/zap"
)

// LoopConfig holds the tunables read once at startup.
type LoopConfig struct {
	// FixedInterval is the threshold fixedDelta must exceed before a fixed
	// step runs.
	FixedInterval time.Duration
	// TimeScale multiplies the per-frame delta. Zero pauses frame logic.
	TimeScale float64
	// MaxFrameDelta clamps a single frame's elapsed time. Zero disables the clamp.
	MaxFrameDelta time.Duration
}

// DefaultLoopConfig runs fixed steps at 50Hz with no scaling.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		FixedInterval: 20 * time.Millisecond,
		TimeScale:     1,
		MaxFrameDelta: 250 * time.Millisecond,
	}
}

// Stage names reported in LoopStats.
const (
	StageFixed   = "fixed"
	StageUpdate  = "update"
	StageRender  = "render"
	StageCleanup = "cleanup"
)

var stageNames = []string{StageFixed, StageUpdate, StageRender, StageCleanup}

// LoopStats provides statistics about loop execution.
type LoopStats struct {
	Frames     int64
	FixedSteps int64
	Stages     []StageStats
}

// StageStats provides execution statistics for a single frame stage.
type StageStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type stageStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *stageStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

// FrameLoop sequences one frame: fixed step, frame logic, render submission
// and end-of-frame cleanup.
type FrameLoop struct {
	ctx      *Context
	platform Platform
	backend  RenderBackend
	clock    Clock
	cfg      LoopConfig
	logger   *zap.Logger

	last       time.Time
	frameDelta time.Duration
	fixedDelta time.Duration
	timeScale  float64
	running    bool

	frames     int64
	fixedSteps int64
	stages     [4]stageStatsInternal
	lights     []LightSubmission
}

// LoopOption configures a FrameLoop.
type LoopOption func(*FrameLoop)

// WithClock replaces the wall clock, typically with a fake in tests.
func WithClock(clock Clock) LoopOption {
	return func(l *FrameLoop) {
		l.clock = clock
	}
}

// NewFrameLoop creates a loop driving ctx.
func NewFrameLoop(ctx *Context, platform Platform, backend RenderBackend, cfg LoopConfig, opts ...LoopOption) *FrameLoop {
	l := &FrameLoop{
		ctx:       ctx,
		platform:  platform,
		backend:   backend,
		clock:     SystemClock{},
		cfg:       cfg,
		logger:    ctx.Logger().Named("loop"),
		timeScale: cfg.TimeScale,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.timeScale < 0 {
		l.timeScale = 0
	}
	for i := range l.stages {
		l.stages[i].minDuration = time.Duration(1<<63 - 1)
	}
	l.last = l.clock.Now()
	return l
}

// SetTimeScale sets the frame delta multiplier. Negative values are treated as zero.
func (l *FrameLoop) SetTimeScale(scale float64) {
	l.timeScale = max(scale, 0)
}

// TimeScale returns the frame delta multiplier.
func (l *FrameLoop) TimeScale() float64 {
	return l.timeScale
}

// Stop ends Run before its next iteration.
func (l *FrameLoop) Stop() {
	l.running = false
}

// Running reports whether Run is looping.
func (l *FrameLoop) Running() bool {
	return l.running
}

// Run executes frames until Stop, a platform quit or ctx is done. The first
// stage error ends the run and is returned.
func (l *FrameLoop) Run(ctx context.Context) error {
	l.running = true
	l.last = l.clock.Now()
	l.logger.Info("frame loop started",
		zap.Duration("fixed_interval", l.cfg.FixedInterval),
		zap.Float64("time_scale", l.timeScale),
	)

	for l.running {
		if ctx.Err() != nil {
			l.running = false
			break
		}
		if err := l.Step(); err != nil {
			l.running = false
			l.logger.Error("frame loop aborted", zap.Int64("frame", l.frames), zap.Error(err))
			return err
		}
	}

	l.logger.Info("frame loop stopped", zap.Int64("frames", l.frames))
	return nil
}

// Step runs one frame. When the platform reports a quit, the loop is stopped
// and the rest of the frame is skipped.
func (l *FrameLoop) Step() error {
	now := l.clock.Now()
	elapsed := max(now.Sub(l.last), 0)
	l.last = now
	if l.cfg.MaxFrameDelta > 0 {
		elapsed = min(elapsed, l.cfg.MaxFrameDelta)
	}
	l.frameDelta += elapsed
	l.fixedDelta += elapsed

	if !l.platform.PumpMessages() {
		l.running = false
		return nil
	}

	// One fixed step at most; surplus time is dropped.
	if l.fixedDelta > l.cfg.FixedInterval {
		if err := l.timed(0, l.fixedPass); err != nil {
			return fmt.Errorf("%s: %w", StageFixed, err)
		}
		l.fixedDelta = 0
		l.fixedSteps++
	}

	if err := l.timed(1, l.updatePass); err != nil {
		return fmt.Errorf("%s: %w", StageUpdate, err)
	}
	if err := l.timed(2, l.renderPass); err != nil {
		return fmt.Errorf("%s: %w", StageRender, err)
	}
	if err := l.timed(3, l.ctx.Cleanup); err != nil {
		return fmt.Errorf("%s: %w", StageCleanup, err)
	}
	l.platform.FlushInput()

	l.frameDelta = 0
	l.frames++
	return nil
}

func (l *FrameLoop) timed(stage int, fn func() error) error {
	start := time.Now()
	err := fn()
	l.stages[stage].record(time.Since(start))
	return err
}

func (l *FrameLoop) fixedPass() error {
	dt := l.cfg.FixedInterval.Seconds()
	return l.ctx.registry.ForEachActive(func(e *ecs.Entity) error {
		for _, uc := range e.UserComponents() {
			if f, ok := uc.(ecs.FixedUpdatable); ok {
				f.FixedUpdate(dt)
			}
		}
		return nil
	})
}

func (l *FrameLoop) updatePass() error {
	dt := l.frameDelta.Seconds() * l.timeScale
	return l.ctx.registry.ForEachActive(func(e *ecs.Entity) error {
		for _, uc := range e.UserComponents() {
			if u, ok := uc.(ecs.Updatable); ok {
				u.Update(dt)
			}
		}
		return nil
	})
}

func (l *FrameLoop) renderPass() error {
	c := l.ctx
	l.backend.BeginFrame()

	l.lights = l.lights[:0]
	for ch, light := range c.lights.Iter() {
		owner, err := c.lights.Owner(ch)
		if err != nil {
			return err
		}
		e, err := c.registry.Get(owner)
		if err != nil {
			// Destroyed this frame.
			continue
		}
		var pos Vec3
		if t, err := c.transforms.Get(e.EngineHandle(ecs.KindTransform)); err == nil {
			pos = t.Position
		}
		l.lights = append(l.lights, LightSubmission{Entity: owner, Position: pos, Light: *light})
	}
	l.backend.BindLights(l.lights)

	err := c.registry.ForEachActive(func(e *ecs.Entity) error {
		if !e.HasEngine(ecs.KindRenderer) || !e.HasEngine(ecs.KindTransform) {
			return nil
		}
		r, err := c.renderers.Get(e.EngineHandle(ecs.KindRenderer))
		if err != nil {
			return err
		}
		if r.Hidden {
			return nil
		}
		t, err := c.transforms.Get(e.EngineHandle(ecs.KindTransform))
		if err != nil {
			return err
		}
		l.backend.Submit(RenderSubmission{Entity: e.Handle(), Transform: *t, Renderer: *r})
		return nil
	})
	if err != nil {
		return err
	}
	return l.backend.EndFrame()
}

// Stats returns per-stage timing and frame counters.
func (l *FrameLoop) Stats() LoopStats {
	stats := LoopStats{
		Frames:     l.frames,
		FixedSteps: l.fixedSteps,
		Stages:     make([]StageStats, len(stageNames)),
	}
	for i, internal := range l.stages {
		avg := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avg = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}
		stats.Stages[i] = StageStats{
			Name:           stageNames[i],
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avg,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
	}
	return stats
}
