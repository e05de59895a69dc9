// Package input converts SDL2 events into per-frame input state.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Input collects the events of one frame. Poll once per frame with Update,
// then query; pressed keys and resize notifications last a single frame.
type Input struct {
	quit    bool
	pressed []sdl.Scancode

	resized            bool
	resizedW, resizedH int32

	mouseX, mouseY int32
}

// New creates an input handler.
func New() *Input {
	return &Input{
		pressed: make([]sdl.Scancode, 0, 8),
	}
}

// Update drains the SDL event queue. Returns true when the application
// should quit.
func (i *Input) Update() bool {
	i.pressed = i.pressed[:0]
	i.resized = false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.resized = true
				i.resizedW, i.resizedH = e.Data1, e.Data2
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.pressed = append(i.pressed, e.Keysym.Scancode)
			}

		case *sdl.MouseMotionEvent:
			i.mouseX, i.mouseY = e.X, e.Y
		}
	}

	return i.quit
}

// WasPressed reports whether the key went down this frame.
func (i *Input) WasPressed(scancode sdl.Scancode) bool {
	for _, k := range i.pressed {
		if k == scancode {
			return true
		}
	}
	return false
}

// Resized returns the new drawable size when the window changed this frame.
func (i *Input) Resized() (int32, int32, bool) {
	return i.resizedW, i.resizedH, i.resized
}

// MousePos returns the last known cursor position in window coordinates.
func (i *Input) MousePos() (int32, int32) {
	return i.mouseX, i.mouseY
}
