package gesture

import (
	"testing"
	"time"

	"github.com/marquee-player/marquee/config"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/flip"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

var target = flip.Rect{Width: 300, Height: 200}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func touch(kind Kind, at time.Duration, points ...Point) TouchEvent {
	return TouchEvent{Kind: kind, At: at, Touches: points}
}

// tapAt performs a full tap and returns whatever the start produced.
func tapAt(r *Recognizer, at time.Duration, p Point) []Command {
	commands := r.Handle(touch(Start, at, p), target)
	r.Handle(touch(End, at+ms(40)), target)
	return commands
}

func TestDoubleTap(t *testing.T) {
	Convey("Given a recognizer on a 300x200 target", t, func() {
		r := New(DefaultThresholds())

		Convey("Two right-half taps 200ms apart seek forward exactly once", func() {
			So(tapAt(r, 0, Point{X: 250, Y: 100}), ShouldBeEmpty)
			So(tapAt(r, ms(200), Point{X: 255, Y: 105}), ShouldResemble, []Command{SeekForward{Seconds: 10}})
		})

		Convey("Taps 400ms apart are not a double-tap", func() {
			So(tapAt(r, 0, Point{X: 250, Y: 100}), ShouldBeEmpty)
			So(tapAt(r, ms(400), Point{X: 250, Y: 100}), ShouldBeEmpty)
		})

		Convey("Taps too far apart are not a double-tap", func() {
			So(tapAt(r, 0, Point{X: 160, Y: 20}), ShouldBeEmpty)
			So(tapAt(r, ms(100), Point{X: 260, Y: 180}), ShouldBeEmpty)
		})

		Convey("A third tap does not extend the double-tap", func() {
			tapAt(r, 0, Point{X: 250, Y: 100})
			So(tapAt(r, ms(150), Point{X: 250, Y: 100}), ShouldHaveLength, 1)
			So(tapAt(r, ms(300), Point{X: 250, Y: 100}), ShouldBeEmpty)
		})

		Convey("Left-half double-taps are unbound by default", func() {
			tapAt(r, 0, Point{X: 50, Y: 100})
			So(tapAt(r, ms(200), Point{X: 50, Y: 100}), ShouldBeEmpty)
		})

		Convey("Left-half double-taps seek back when enabled", func() {
			thresholds := DefaultThresholds()
			thresholds.SeekBack = true
			r := New(thresholds)

			tapAt(r, 0, Point{X: 50, Y: 100})
			So(tapAt(r, ms(200), Point{X: 50, Y: 100}), ShouldResemble, []Command{SeekBackward{Seconds: 10}})
		})

		Convey("The half is measured against the target's own box", func() {
			offset := flip.Rect{Left: 1000, Width: 300, Height: 200}
			r.Handle(touch(Start, 0, Point{X: 1100, Y: 100}), offset)
			r.Handle(touch(End, ms(40)), offset)
			So(r.Handle(touch(Start, ms(200), Point{X: 1100, Y: 100}), offset), ShouldBeEmpty)
		})
	})
}

func TestSwipe(t *testing.T) {
	Convey("Given a single touch", t, func() {
		r := New(DefaultThresholds())
		r.Handle(touch(Start, 0, Point{X: 100, Y: 150}), target)

		Convey("Swiping up raises the volume by dy/200", func() {
			commands := r.Handle(touch(Move, ms(50), Point{X: 102, Y: 110}), target)
			So(commands, ShouldHaveLength, 1)
			So(commands[0].(VolumeDelta).Delta, ShouldAlmostEqual, 0.2)
		})

		Convey("Continuous dragging measures from the last emission", func() {
			r.Handle(touch(Move, ms(50), Point{X: 100, Y: 110}), target)

			So(r.Handle(touch(Move, ms(100), Point{X: 100, Y: 100}), target), ShouldBeEmpty)

			commands := r.Handle(touch(Move, ms(150), Point{X: 100, Y: 70}), target)
			So(commands, ShouldHaveLength, 1)
			So(commands[0].(VolumeDelta).Delta, ShouldAlmostEqual, 0.2)
		})

		Convey("Swiping down lowers the volume", func() {
			commands := r.Handle(touch(Move, ms(50), Point{X: 100, Y: 190}), target)
			So(commands[0].(VolumeDelta).Delta, ShouldAlmostEqual, -0.2)
		})

		Convey("Horizontal movement is ignored", func() {
			So(r.Handle(touch(Move, ms(50), Point{X: 160, Y: 110}), target), ShouldBeEmpty)
		})

		Convey("Movement after the swipe window is ignored", func() {
			So(r.Handle(touch(Move, ms(300), Point{X: 100, Y: 50}), target), ShouldBeEmpty)
		})

		Convey("Ending the touch stops the swipe", func() {
			r.Handle(touch(End, ms(20)), target)
			So(r.Handle(touch(Move, ms(50), Point{X: 100, Y: 50}), target), ShouldBeEmpty)
		})
	})
}

func TestPinch(t *testing.T) {
	Convey("Given two touches 100px apart", t, func() {
		r := New(DefaultThresholds())
		r.Handle(touch(Start, 0, Point{X: 100, Y: 100}, Point{X: 200, Y: 100}), target)

		Convey("Spreading beyond 1.2x zooms in and recalibrates", func() {
			So(r.Handle(touch(Move, ms(10), Point{X: 100, Y: 100}, Point{X: 215, Y: 100}), target), ShouldBeEmpty)
			So(r.Handle(touch(Move, ms(20), Point{X: 100, Y: 100}, Point{X: 230, Y: 100}), target), ShouldResemble, []Command{ZoomIn{}})
			So(r.Handle(touch(Move, ms(30), Point{X: 100, Y: 100}, Point{X: 250, Y: 100}), target), ShouldBeEmpty)
			So(r.Handle(touch(Move, ms(40), Point{X: 100, Y: 100}, Point{X: 270, Y: 100}), target), ShouldResemble, []Command{ZoomIn{}})
		})

		Convey("Pinching below 0.8x zooms out", func() {
			So(r.Handle(touch(Move, ms(10), Point{X: 100, Y: 100}, Point{X: 175, Y: 100}), target), ShouldResemble, []Command{ZoomOut{}})
		})

		Convey("Two-finger starts are never taps", func() {
			r.Handle(touch(End, ms(10)), target)
			So(r.Handle(touch(Start, ms(100), Point{X: 250, Y: 100}, Point{X: 260, Y: 100}), target), ShouldBeEmpty)
		})
	})

	Convey("A pinch whose second finger arrives during a move takes its baseline from the first two-finger move", t, func() {
		r := New(DefaultThresholds())
		r.Handle(touch(Start, 0, Point{X: 100, Y: 100}), target)

		So(r.Handle(touch(Move, ms(10), Point{X: 100, Y: 100}, Point{X: 200, Y: 100}), target), ShouldBeEmpty)
		So(r.Handle(touch(Move, ms(20), Point{X: 100, Y: 100}, Point{X: 230, Y: 100}), target), ShouldResemble, []Command{ZoomIn{}})
	})
}

func TestThresholdsFromConfig(t *testing.T) {
	Convey("Configured thresholds match the stock ones", t, func() {
		So(config.Setup(), ShouldBeNil)
		So(ThresholdsFromConfig(), ShouldResemble, DefaultThresholds())
	})
}
