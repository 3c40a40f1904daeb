package player

import (
	"context"
	"testing"
	"time"

	"github.com/marquee-player/marquee/machine"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMPV(t *testing.T) {
	Convey("MPV", t, func() {
		mpv := NewMPV("")

		var signals []Signal
		mpv.Listen(func(sig Signal) { signals = append(signals, sig) })

		Convey("Commands before a source is loaded fail", func() {
			So(mpv.Load(), ShouldEqual, ErrDetached)
			So(mpv.Play(), ShouldEqual, ErrDetached)
			So(mpv.SetCurrentTime(10), ShouldEqual, ErrDetached)
			So(mpv.Close(), ShouldBeNil)
		})

		Convey("Picture-in-picture is unsupported", func() {
			So(mpv.RequestPictureInPicture(context.Background(), true), ShouldEqual, ErrUnsupported)
		})

		Convey("SetSource rejects flag injection", func() {
			So(mpv.SetSource("--script=evil.lua"), ShouldNotBeNil)
			So(mpv.SetSource("ftp://example.com/a.mp4"), ShouldNotBeNil)
			So(mpv.SetSource("https://example.com/a.mp4"), ShouldBeNil)
		})

		Convey("Property changes become signals", func() {
			mpv.handleEvent("duration", 120.0)
			mpv.handleEvent("time-pos", 3.5)
			mpv.handleEvent("paused-for-cache", true)
			mpv.handleEvent("paused-for-cache", false)
			mpv.handleEvent("file-loaded", map[string]interface{}{"event": "file-loaded"})

			So(signals, ShouldResemble, []Signal{
				{Kind: MetadataReady, Value: 120},
				{Kind: TimeProgress, Value: 3.5},
				{Kind: Stall},
				{Kind: Resume},
				{Kind: Ready},
			})
		})

		Convey("A seek is reported when playback restarts", func() {
			mpv.handleEvent("seeking", true)
			So(signals, ShouldBeEmpty)

			mpv.handleEvent("playback-restart", map[string]interface{}{"event": "playback-restart"})
			So(signals, ShouldResemble, []Signal{{Kind: Seeked}})
		})

		Convey("Only failed file ends are fatal", func() {
			mpv.handleEvent("end-file", map[string]interface{}{"reason": "eof"})
			So(signals, ShouldBeEmpty)

			mpv.handleEvent("end-file", map[string]interface{}{"reason": "error", "file_error": "loading failed"})
			So(signals, ShouldResemble, []Signal{{Kind: FatalError, Message: "loading failed"}})
		})

		Convey("Cache state is reduced to ascending ranges", func() {
			mpv.handleEvent("demuxer-cache-state", map[string]interface{}{
				"seekable-ranges": []interface{}{
					map[string]interface{}{"start": 30.0, "end": 45.0},
					map[string]interface{}{"start": 0.0, "end": 10.0},
				},
			})

			So(signals, ShouldHaveLength, 1)
			So(signals[0].Ranges, ShouldResemble, []machine.BufferRange{{Start: 0, End: 10}, {Start: 30, End: 45}})
		})
	})
}

// seekable stands in for a running mpv: seeks are accepted and completion comes from the event stream.
type seekable struct {
	*MPV
	seeks []float64
}

func (s *seekable) SetCurrentTime(t float64) error {
	s.seeks = append(s.seeks, t)
	return nil
}

func TestMPVSilentSeek(t *testing.T) {
	Convey("A silent seek over mpv completes on playback-restart alone", t, func() {
		resource := &seekable{MPV: NewMPV("")}
		adapter := NewAdapter(resource)
		m := machine.New(adapter)
		adapter.Bind(m.Dispatch)

		done := adapter.SilentSeek(42)
		So(resource.seeks, ShouldResemble, []float64{42})

		So(len(done), ShouldEqual, 0)

		resource.handleEvent("playback-restart", map[string]interface{}{"event": "playback-restart"})

		select {
		case err := <-done:
			So(err, ShouldBeNil)
		case <-time.After(time.Second):
			So("silent seek still pending", ShouldBeEmpty)
		}
	})
}

func TestNormalizeRanges(t *testing.T) {
	Convey("normalizeRanges", t, func() {
		Convey("Merges overlapping and touching ranges", func() {
			got := normalizeRanges([]machine.BufferRange{
				{Start: 20, End: 30},
				{Start: 0, End: 10},
				{Start: 5, End: 12},
				{Start: 30, End: 35},
			})
			So(got, ShouldResemble, []machine.BufferRange{{Start: 0, End: 12}, {Start: 20, End: 35}})
			So(machine.ValidateRanges(got), ShouldBeNil)
		})

		Convey("Drops empty ranges", func() {
			got := normalizeRanges([]machine.BufferRange{{Start: 4, End: 4}, {Start: 9, End: 3}})
			So(got, ShouldBeEmpty)
		})

		Convey("Handles nil", func() {
			So(normalizeRanges(nil), ShouldBeNil)
		})
	})
}
