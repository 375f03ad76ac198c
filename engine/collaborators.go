package engine

import (
	"time"

	"github.com/plus3/framecore/ecs"
)

// Platform is the window/event collaborator.
type Platform interface {
	// PumpMessages drains the OS event queue. It returns false once the
	// platform wants the loop to stop.
	PumpMessages() bool
	// FlushInput discards per-frame input state after cleanup.
	FlushInput()
}

// RenderSubmission is one drawable entity for the current frame.
type RenderSubmission struct {
	Entity    ecs.EntityHandle
	Transform Transform
	Renderer  Renderer
}

// LightSubmission is one point light for the current frame.
type LightSubmission struct {
	Entity   ecs.EntityHandle
	Position Vec3
	Light    PointLight
}

// RenderBackend is the graphics collaborator.
type RenderBackend interface {
	BeginFrame()
	BindLights(lights []LightSubmission)
	Submit(s RenderSubmission)
	EndFrame() error
}

// Clock reports wall time to the loop.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// HeadlessPlatform never produces input. It asks the loop to stop after
// FrameLimit pumps when FrameLimit is positive, or after RequestQuit.
type HeadlessPlatform struct {
	FrameLimit int

	pumped int
	quit   bool
}

func (p *HeadlessPlatform) PumpMessages() bool {
	p.pumped++
	if p.FrameLimit > 0 && p.pumped > p.FrameLimit {
		p.quit = true
	}
	return !p.quit
}

func (p *HeadlessPlatform) FlushInput() {}

// RequestQuit makes the next PumpMessages report a stop.
func (p *HeadlessPlatform) RequestQuit() {
	p.quit = true
}

// NullBackend draws nothing and counts what it was given.
type NullBackend struct {
	Frames      int
	Submissions int
	Lights      int
}

func (b *NullBackend) BeginFrame() {}

func (b *NullBackend) BindLights(lights []LightSubmission) {
	b.Lights += len(lights)
}

func (b *NullBackend) Submit(RenderSubmission) {
	b.Submissions++
}

func (b *NullBackend) EndFrame() error {
	b.Frames++
	return nil
}
