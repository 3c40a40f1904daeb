// Package gesture classifies raw touch input into playback commands: double-tap to seek,
// vertical swipe for volume and pinch to toggle the video fit. It never talks to the state machine.
package gesture

import (
	"fmt"
	"math"
	"time"

	"github.com/marquee-player/marquee/flip"
	"github.com/marquee-player/marquee/key"
	"github.com/spf13/viper"
)

// Kind is the phase of a touch event.
type Kind int

const (
	Start Kind = iota
	Move
	End
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Move:
		return "move"
	case End:
		return "end"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Point is a touch position in the same coordinate space as the target bounds.
type Point struct {
	X, Y float64
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// TouchEvent is one touch notification. At is a monotonic timestamp; Touches are the points still on the surface.
type TouchEvent struct {
	Kind    Kind
	At      time.Duration
	Touches []Point
}

// Command is what a recognized gesture asks the player to do.
type Command interface {
	fmt.Stringer
	command()
}

// SeekForward moves playback ahead by Seconds.
type SeekForward struct{ Seconds float64 }

// SeekBackward moves playback back by Seconds.
type SeekBackward struct{ Seconds float64 }

// VolumeDelta changes the volume by Delta, positive being louder.
type VolumeDelta struct{ Delta float64 }

// ZoomIn switches the video to fill its box.
type ZoomIn struct{}

// ZoomOut switches the video to fit inside its box.
type ZoomOut struct{}

func (SeekForward) command()  {}
func (SeekBackward) command() {}
func (VolumeDelta) command()  {}
func (ZoomIn) command()       {}
func (ZoomOut) command()      {}

func (c SeekForward) String() string  { return fmt.Sprintf("seek +%gs", c.Seconds) }
func (c SeekBackward) String() string { return fmt.Sprintf("seek -%gs", c.Seconds) }
func (c VolumeDelta) String() string  { return fmt.Sprintf("volume %+.3f", c.Delta) }
func (ZoomIn) String() string         { return "zoom in" }
func (ZoomOut) String() string        { return "zoom out" }

// Thresholds tune the classification rules.
type Thresholds struct {
	DoubleTapWindow time.Duration
	DoubleTapRadius float64
	SwipeThreshold  float64
	SwipeWindow     time.Duration
	// SwipeScale is the vertical distance that maps to a full volume range.
	SwipeScale float64
	PinchIn    float64
	PinchOut   float64
	SeekStep   float64
	// SeekBack binds left-half double-taps to a backward seek. Off by default, leaving them unbound.
	SeekBack bool
}

// DefaultThresholds returns the stock classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DoubleTapWindow: 300 * time.Millisecond,
		DoubleTapRadius: 50,
		SwipeThreshold:  30,
		SwipeWindow:     300 * time.Millisecond,
		SwipeScale:      200,
		PinchIn:         1.2,
		PinchOut:        0.8,
		SeekStep:        10,
	}
}

// ThresholdsFromConfig reads the thresholds from the gesture.* configuration keys.
func ThresholdsFromConfig() Thresholds {
	return Thresholds{
		DoubleTapWindow: time.Duration(viper.GetInt(key.GestureDoubleTapWindow)) * time.Millisecond,
		DoubleTapRadius: viper.GetFloat64(key.GestureDoubleTapRadius),
		SwipeThreshold:  viper.GetFloat64(key.GestureSwipeThreshold),
		SwipeWindow:     time.Duration(viper.GetInt(key.GestureSwipeWindow)) * time.Millisecond,
		SwipeScale:      viper.GetFloat64(key.GestureSwipeScale),
		PinchIn:         viper.GetFloat64(key.GesturePinchIn),
		PinchOut:        viper.GetFloat64(key.GesturePinchOut),
		SeekStep:        viper.GetFloat64(key.GestureSeekStep),
		SeekBack:        viper.GetBool(key.GestureSeekBack),
	}
}

type tap struct {
	at    time.Duration
	point Point
}

// Recognizer holds the short-lived window of one touch surface. It is not safe for concurrent use.
type Recognizer struct {
	thresholds Thresholds

	// lastTap survives across touch sequences so that two separate taps can form a double-tap.
	lastTap *tap

	swipeStart time.Duration
	swipeRef   *Point

	pinchBase float64
}

// New creates a recognizer with the given thresholds.
func New(thresholds Thresholds) *Recognizer {
	return &Recognizer{thresholds: thresholds}
}

// Handle classifies one touch event against the target's bounding box.
func (r *Recognizer) Handle(ev TouchEvent, bounds flip.Rect) []Command {
	switch ev.Kind {
	case Start:
		return r.start(ev, bounds)
	case Move:
		return r.move(ev)
	case End, Cancel:
		r.reset()
	}
	return nil
}

func (r *Recognizer) start(ev TouchEvent, bounds flip.Rect) []Command {
	switch len(ev.Touches) {
	case 1:
		p := ev.Touches[0]
		r.swipeStart = ev.At
		r.swipeRef = &p
		r.pinchBase = 0

		if r.lastTap != nil &&
			ev.At-r.lastTap.at < r.thresholds.DoubleTapWindow &&
			distance(p, r.lastTap.point) < r.thresholds.DoubleTapRadius {
			r.lastTap = nil
			return r.doubleTap(p, bounds)
		}

		r.lastTap = &tap{at: ev.At, point: p}

	case 2:
		r.swipeRef = nil
		r.pinchBase = distance(ev.Touches[0], ev.Touches[1])
	}

	return nil
}

func (r *Recognizer) doubleTap(p Point, bounds flip.Rect) []Command {
	if p.X >= bounds.Left+bounds.Width/2 {
		return []Command{SeekForward{Seconds: r.thresholds.SeekStep}}
	}
	if r.thresholds.SeekBack {
		return []Command{SeekBackward{Seconds: r.thresholds.SeekStep}}
	}
	return nil
}

func (r *Recognizer) move(ev TouchEvent) []Command {
	switch len(ev.Touches) {
	case 1:
		if r.swipeRef == nil || ev.At-r.swipeStart >= r.thresholds.SwipeWindow {
			return nil
		}

		p := ev.Touches[0]
		dx := p.X - r.swipeRef.X
		dy := p.Y - r.swipeRef.Y

		if math.Abs(dy) > r.thresholds.SwipeThreshold && math.Abs(dy) > math.Abs(dx) {
			// Continuous dragging measures from the last emission, not from the touch start.
			r.swipeRef = &p
			return []Command{VolumeDelta{Delta: -dy / r.thresholds.SwipeScale}}
		}

	case 2:
		d := distance(ev.Touches[0], ev.Touches[1])
		if r.pinchBase <= 0 {
			r.pinchBase = d
			return nil
		}

		ratio := d / r.pinchBase
		switch {
		case ratio > r.thresholds.PinchIn:
			r.pinchBase = d
			return []Command{ZoomIn{}}
		case ratio < r.thresholds.PinchOut:
			r.pinchBase = d
			return []Command{ZoomOut{}}
		}
	}

	return nil
}

func (r *Recognizer) reset() {
	r.swipeRef = nil
	r.swipeStart = 0
	r.pinchBase = 0
}
