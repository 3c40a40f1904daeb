package stage

import (
	"context"

	"github.com/marquee-player/marquee/flip"
	"github.com/marquee-player/marquee/player"
)

// Capabilities are probed on every action that depends on them, never cached.
type Capabilities interface {
	AdaptiveEngine() bool
	PictureInPicture() bool
	Fullscreen() bool
	ReducedMotion() bool
}

// Host is the environment embedding the player: it reports capabilities, owns the layout
// and grants fullscreen.
type Host interface {
	Capabilities

	// Bounds returns the current rectangle of the video box.
	Bounds() flip.Rect

	// Element is the video box as an animatable element.
	Element() flip.Element

	// SetTheater commits the theater or default layout synchronously.
	SetTheater(on bool)

	// RequestFullscreen asks the host to enter or leave fullscreen.
	RequestFullscreen(ctx context.Context, enter bool) error
	IsFullscreen() bool
}

// Headless is a Host without any optional capability and with a fixed box. It suits batch use
// such as thumbnail extraction.
type Headless struct {
	Box flip.Rect
	el  *flip.Sampled
}

func (h *Headless) AdaptiveEngine() bool   { return false }
func (h *Headless) PictureInPicture() bool { return false }
func (h *Headless) Fullscreen() bool       { return false }
func (h *Headless) ReducedMotion() bool    { return true }
func (h *Headless) Bounds() flip.Rect      { return h.Box }
func (h *Headless) SetTheater(bool)        {}
func (h *Headless) IsFullscreen() bool     { return false }

func (h *Headless) Element() flip.Element {
	if h.el == nil {
		h.el = flip.NewSampled(nil)
	}
	return h.el
}

func (h *Headless) RequestFullscreen(context.Context, bool) error {
	return player.ErrUnsupported
}
