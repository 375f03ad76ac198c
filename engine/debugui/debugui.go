// Package debugui provides Dear ImGui windows for inspecting a running engine.
// Windows are drawn through an Overlay that plugs into the ebiten Game.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
)

// Window is one ImGui window rendered every frame.
type Window interface {
	Render()
}

// WindowFunc adapts a render function to a Window.
type WindowFunc func()

func (f WindowFunc) Render() { f() }

// InputState tracks whether ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Overlay wraps the Ebiten ImGui backend and renders its windows between
// BeginFrame and EndFrame.
type Overlay struct {
	backend *ebitenbackend.EbitenBackend
	windows []Window
	input   InputState
}

// NewOverlay creates the ImGui backend and its window.
func NewOverlay(title string, width, height int) *Overlay {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini
	return &Overlay{backend: backend}
}

// Add registers windows to render each frame, in order.
func (o *Overlay) Add(windows ...Window) {
	o.windows = append(o.windows, windows...)
}

// Input returns the capture state sampled at the last EndFrame.
func (o *Overlay) Input() InputState {
	return o.input
}

func (o *Overlay) BeginFrame() {
	o.backend.BeginFrame()
}

// EndFrame renders every window, samples input capture and closes the frame.
func (o *Overlay) EndFrame() {
	for _, w := range o.windows {
		w.Render()
	}
	o.input.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	o.input.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()
	o.backend.EndFrame()
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Draw(screen)
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) {
	o.backend.Layout(outsideWidth, outsideHeight)
}
