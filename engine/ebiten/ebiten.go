// Package ebiten runs an engine FrameLoop inside an Ebiten window.
//
// Ebiten owns the OS loop, so Game.Update drives one FrameLoop.Step per tick
// and Game.Draw replays the submissions collected during that step.
package ebiten

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/framecore/engine"
)

// Platform reports quit requests from the window and keyboard.
type Platform struct {
	QuitKeys []ebiten.Key

	quit bool
}

// NewPlatform quits on Escape and Q, matching the demo binaries.
func NewPlatform() *Platform {
	return &Platform{QuitKeys: []ebiten.Key{ebiten.KeyEscape, ebiten.KeyQ}}
}

func (p *Platform) PumpMessages() bool {
	if ebiten.IsWindowBeingClosed() {
		p.quit = true
	}
	for _, k := range p.QuitKeys {
		if ebiten.IsKeyPressed(k) {
			p.quit = true
		}
	}
	return !p.quit
}

// FlushInput is a no-op; Ebiten resets per-tick input state itself.
func (p *Platform) FlushInput() {}

// Quit reports whether a quit was requested.
func (p *Platform) Quit() bool {
	return p.quit
}

// Camera maps world coordinates to screen pixels.
type Camera struct {
	X, Y float64
	Zoom float64
}

// Renderer collects a frame's submissions and draws them as flat shapes.
type Renderer struct {
	Camera     Camera
	Background color.RGBA

	pending      []engine.RenderSubmission
	frame        []engine.RenderSubmission
	lights       []engine.LightSubmission
	pendingLight []engine.LightSubmission
}

// NewRenderer returns a renderer with the camera centered on the origin.
func NewRenderer() *Renderer {
	return &Renderer{
		Camera:     Camera{Zoom: 1},
		Background: color.RGBA{R: 24, G: 24, B: 32, A: 255},
	}
}

func (r *Renderer) BeginFrame() {
	r.pending = r.pending[:0]
	r.pendingLight = r.pendingLight[:0]
}

func (r *Renderer) BindLights(lights []engine.LightSubmission) {
	r.pendingLight = append(r.pendingLight, lights...)
}

func (r *Renderer) Submit(s engine.RenderSubmission) {
	r.pending = append(r.pending, s)
}

// EndFrame publishes the collected frame for the next Draw.
func (r *Renderer) EndFrame() error {
	r.pending, r.frame = r.frame, r.pending
	r.pendingLight, r.lights = r.lights, r.pendingLight
	return nil
}

// Submissions returns what the last completed frame submitted.
func (r *Renderer) Submissions() []engine.RenderSubmission {
	return r.frame
}

// Draw renders the last completed frame onto screen.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(r.Background)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	for _, l := range r.lights {
		x, y := r.project(l.Position, w, h)
		c := toColor(l.Light.Color)
		c.A = uint8(min(64*l.Light.Intensity, 255))
		vector.DrawFilledCircle(screen, x, y, float32(l.Light.Radius*r.Camera.Zoom), c, true)
	}

	for _, s := range r.frame {
		x, y := r.project(s.Transform.Position, w, h)
		sw := float32(s.Renderer.Size.X * s.Transform.Scale.X * r.Camera.Zoom)
		sh := float32(s.Renderer.Size.Y * s.Transform.Scale.Y * r.Camera.Zoom)
		c := toColor(s.Renderer.Color)

		switch s.Renderer.Mesh {
		case "circle":
			vector.DrawFilledCircle(screen, x, y, sw/2, c, true)
		default:
			vector.DrawFilledRect(screen, x-sw/2, y-sh/2, sw, sh, c, false)
		}
	}
}

func (r *Renderer) project(p engine.Vec3, w, h int) (float32, float32) {
	x := (p.X-r.Camera.X)*r.Camera.Zoom + float64(w)/2
	y := (p.Y-r.Camera.Y)*r.Camera.Zoom + float64(h)/2
	return float32(x), float32(y)
}

func toColor(c engine.RGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Overlay draws on top of the frame, typically a Dear ImGui backend.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(outsideWidth, outsideHeight int)
}

// Game implements ebiten.Game around a FrameLoop.
type Game struct {
	Loop     *engine.FrameLoop
	Platform *Platform
	Renderer *Renderer
	Overlay  Overlay
}

func (g *Game) Update() error {
	if g.Overlay != nil {
		g.Overlay.BeginFrame()
	}
	err := g.Loop.Step()
	if g.Overlay != nil {
		g.Overlay.EndFrame()
	}
	if err != nil {
		return err
	}
	if g.Platform.Quit() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.Renderer.Draw(screen)
	if g.Overlay != nil {
		g.Overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.Overlay != nil {
		g.Overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it closes. A normal quit returns nil.
func Run(g *Game, width, height int, title string) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
