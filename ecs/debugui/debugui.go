// Package debugui provides an immediate-mode diagnostics overlay using Dear ImGui.
// Windows are rendered from deferred frame commands, so they always see the
// state left behind by every system of the frame.
package debugui

import (
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/emotesky/ecs"
)

// Window is one ImGui window of the overlay.
type Window interface {
	Render()
}

// WindowFunc adapts a plain function to the Window interface.
type WindowFunc func()

func (f WindowFunc) Render() {
	f()
}

// InputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Backend starts and finishes ImGui frames.
type Backend interface {
	BeginFrame()
	EndFrame()
}

// Overlay owns the diagnostics windows. Register it as the last system of
// the scheduler and install its Hooks.
type Overlay struct {
	backend Backend
	windows []Window
	input   InputState
	history *FrameHistory

	frameStart time.Time
	now        func() time.Time
}

// NewOverlay creates an overlay drawing through backend and remembering the
// last historyFrames frame times.
func NewOverlay(backend Backend, historyFrames int) *Overlay {
	return &Overlay{
		backend: backend,
		history: NewFrameHistory(historyFrames),
		now:     time.Now,
	}
}

// Add appends a window. Windows render in the order they were added.
func (o *Overlay) Add(w Window) {
	o.windows = append(o.windows, w)
}

// History returns the frame time history filled in by the hooks.
func (o *Overlay) History() *FrameHistory {
	return o.history
}

func (o *Overlay) InputState() InputState {
	return o.input
}

// Hooks brackets every scheduler frame with an ImGui frame and records how
// long the frame took.
func (o *Overlay) Hooks() ecs.Hooks {
	return ecs.Hooks{
		Begin: func(frame *ecs.UpdateFrame) {
			o.frameStart = o.now()
			if o.backend != nil {
				o.backend.BeginFrame()
			}
		},
		End: func(frame *ecs.UpdateFrame) {
			if o.backend != nil {
				o.backend.EndFrame()
			}
			o.history.Push(float32(o.now().Sub(o.frameStart).Seconds() * 1000))
		},
	}
}

// Execute updates input state and queues all window render functions.
func (o *Overlay) Execute(frame *ecs.UpdateFrame) {
	if o.backend != nil {
		io := imgui.CurrentIO()
		o.input.WantCaptureMouse = io.WantCaptureMouse()
		o.input.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for _, w := range o.windows {
		frame.Commands.Defer(w.Render)
	}
}
