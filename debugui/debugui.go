// Package debugui provides immediate-mode debug windows for a simulation
// instance using Dear ImGui. Windows pull state from the core each refresh
// cycle; the core never pushes to them.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/DeityZeke/simcore/sim"
)

// InputState tracks Dear ImGui's input capture state. Use it to decide
// whether mouse or keyboard input belongs to the overlay or the simulation.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Overlay collects debug windows and renders them through the tick
// scheduler. Render functions are deferred to the frame's command buffer so
// they run on the orchestrating goroutine after every batch has finished,
// never on a worker.
type Overlay struct {
	windows []func()
	input   InputState
}

// NewOverlay creates an empty overlay. Register it as an every-tick system
// with no footprint.
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Add appends a window render function.
func (o *Overlay) Add(render func()) {
	o.windows = append(o.windows, render)
}

// Input returns the capture state sampled at the start of the last tick.
func (o *Overlay) Input() InputState {
	return o.input
}

// Execute samples ImGui's input capture state and defers every window's
// render function.
func (o *Overlay) Execute(frame *sim.Frame) {
	io := imgui.CurrentIO()
	o.input.WantCaptureMouse = io.WantCaptureMouse()
	o.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, render := range o.windows {
		frame.Commands.Defer(render)
	}
}
