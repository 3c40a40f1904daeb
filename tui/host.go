package tui

import (
	"context"
	"sync"

	"github.com/marquee-player/marquee/flip"
	"github.com/marquee-player/marquee/player"
)

// chromeRows are the rows reserved around the video box for the title, progress bar and help.
const chromeRows = 6

// Terminal hosts the player inside the terminal window. Geometry is measured in cells.
// The video itself is drawn by the backend's own window, so the box only mirrors its layout.
type Terminal struct {
	mu            sync.Mutex
	width, height int
	theater       bool
	reducedMotion bool

	element *flip.Sampled
}

// NewTerminal creates a host for a terminal of the given size.
func NewTerminal(width, height int, reducedMotion bool) *Terminal {
	return &Terminal{
		width:         width,
		height:        height,
		reducedMotion: reducedMotion,
		element:       flip.NewSampled(nil),
	}
}

// Resize records a new terminal size.
func (t *Terminal) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width, t.height = width, height
}

// AdaptiveEngine is false: the backend demuxes HLS and DASH itself.
func (t *Terminal) AdaptiveEngine() bool   { return false }
func (t *Terminal) PictureInPicture() bool { return false }
func (t *Terminal) Fullscreen() bool       { return false }
func (t *Terminal) IsFullscreen() bool     { return false }

func (t *Terminal) ReducedMotion() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reducedMotion
}

// Bounds returns the video box. The default layout centers a box two thirds of the width;
// theater mode uses the whole width.
func (t *Terminal) Bounds() flip.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()

	height := float64(max(t.height-chromeRows, 1))
	if t.theater {
		return flip.Rect{Width: float64(t.width), Height: height}
	}

	width := float64(t.width * 2 / 3)
	return flip.Rect{
		Left:   float64(t.width-t.width*2/3) / 2,
		Top:    1,
		Width:  width,
		Height: max(height-2, 1),
	}
}

func (t *Terminal) Element() flip.Element {
	return t.element
}

// Frame is where the box is drawn right now, transition included.
func (t *Terminal) Frame() flip.Rect {
	return t.element.Sample().Apply(t.Bounds())
}

// Animating reports whether the box is still moving.
func (t *Terminal) Animating() bool {
	return t.element.Animating()
}

func (t *Terminal) SetTheater(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theater = on
}

func (t *Terminal) RequestFullscreen(context.Context, bool) error {
	return player.ErrUnsupported
}
