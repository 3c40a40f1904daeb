package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/marquee-player/marquee/machine"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeResource struct {
	mu       sync.Mutex
	calls    []string
	listener func(Signal)
	position float64
	pipErr   error
	seekErr  error
	closed   bool
}

func (f *fakeResource) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeResource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeResource) SetSource(url string) error {
	f.record("source %s", url)
	return nil
}

func (f *fakeResource) Load() error {
	f.record("load")
	return nil
}

func (f *fakeResource) Play() error {
	f.record("play")
	return nil
}

func (f *fakeResource) Pause() error {
	f.record("pause")
	return nil
}

func (f *fakeResource) SetCurrentTime(t float64) error {
	f.record("time %g", t)
	if f.seekErr != nil {
		return f.seekErr
	}
	f.mu.Lock()
	f.position = t
	f.mu.Unlock()
	return nil
}

func (f *fakeResource) CurrentTime() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *fakeResource) SetVolume(v float64) error {
	f.record("volume %g", v)
	return nil
}

func (f *fakeResource) SetPlaybackRate(r float64) error {
	f.record("rate %g", r)
	return nil
}

func (f *fakeResource) RequestPictureInPicture(_ context.Context, enter bool) error {
	f.record("pip %t", enter)
	return f.pipErr
}

func (f *fakeResource) CaptureFrame(context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (f *fakeResource) Listen(fn func(Signal)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = fn
}

func (f *fakeResource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeResource) emit(sig Signal) {
	f.mu.Lock()
	fn := f.listener
	f.mu.Unlock()
	fn(sig)
}

type fakeEngine struct {
	attachErr error
	loaded    string
	destroyed bool
	manifest  func()
	level     func(string)
}

func (e *fakeEngine) AttachMedia(Resource) error      { return e.attachErr }
func (e *fakeEngine) OnManifestParsed(fn func())      { e.manifest = fn }
func (e *fakeEngine) OnLevelSwitched(fn func(string)) { e.level = fn }
func (e *fakeEngine) Destroy()                        { e.destroyed = true }
func (e *fakeEngine) LoadSource(url string) error {
	e.loaded = url
	return nil
}

func newHarness(opts ...AdapterOption) (*fakeResource, *Adapter, *machine.Machine) {
	resource := &fakeResource{}
	adapter := NewAdapter(resource, opts...)
	m := machine.New(adapter)
	adapter.Bind(m.Dispatch)
	return resource, adapter, m
}

func TestAdapter(t *testing.T) {
	Convey("Given an adapter over a native resource", t, func() {
		resource, adapter, m := newHarness()

		Convey("LOAD sets the source and loads it", func() {
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.mp4"}})

			So(m.State(), ShouldEqual, machine.Loading)
			So(resource.Calls(), ShouldContain, "source a.mp4")
			So(resource.Calls(), ShouldContain, "load")

			Convey("Readiness starts playback when autoplay is on", func() {
				resource.emit(Signal{Kind: Ready})
				So(m.State(), ShouldEqual, machine.Playing)
				So(resource.Calls(), ShouldContain, "play")
			})
		})

		Convey("An adaptive source without an engine falls back to native playback", func() {
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.m3u8", Adaptive: true}})

			So(resource.Calls(), ShouldContain, "source a.m3u8")
			So(adapter.HasEngine(), ShouldBeFalse)
		})

		Convey("Native signals are translated", func() {
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.mp4"}})
			resource.emit(Signal{Kind: MetadataReady, Value: 120})
			resource.emit(Signal{Kind: Ready})
			resource.emit(Signal{Kind: TimeProgress, Value: 12})
			resource.emit(Signal{Kind: BufferedExtent, Ranges: []machine.BufferRange{{Start: 0, End: 40}}})

			state, session := m.Snapshot()
			So(state, ShouldEqual, machine.Playing)
			So(session.Duration, ShouldEqual, 120)
			So(session.CurrentTime, ShouldEqual, 12)
			So(session.Buffered, ShouldResemble, []machine.BufferRange{{Start: 0, End: 40}})

			resource.emit(Signal{Kind: Stall})
			So(m.State(), ShouldEqual, machine.Buffering)
			resource.emit(Signal{Kind: Resume})
			So(m.State(), ShouldEqual, machine.Playing)

			resource.emit(Signal{Kind: FatalError, Message: "decode failed"})
			state, session = m.Snapshot()
			So(state, ShouldEqual, machine.Error)
			So(session.Error, ShouldResemble, mo.Some("decode failed"))
		})

		Convey("A probe suppresses position, seek and stall signals", func() {
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.mp4"}})
			resource.emit(Signal{Kind: Ready})
			resource.emit(Signal{Kind: TimeProgress, Value: 5})

			release := adapter.Probe()
			resource.emit(Signal{Kind: TimeProgress, Value: 50})
			resource.emit(Signal{Kind: Stall})

			state, session := m.Snapshot()
			So(state, ShouldEqual, machine.Playing)
			So(session.CurrentTime, ShouldEqual, 5)

			release()
			release()
			resource.emit(Signal{Kind: TimeProgress, Value: 6})
			So(m.State(), ShouldEqual, machine.Playing)
			_, session = m.Snapshot()
			So(session.CurrentTime, ShouldEqual, 6)
		})

		Convey("A silent seek completes on the next seeked signal", func() {
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.mp4"}})

			done := adapter.SilentSeek(30)
			So(resource.Calls(), ShouldContain, "time 30")

			resource.emit(Signal{Kind: Seeked})
			So(<-done, ShouldBeNil)
			So(m.State(), ShouldEqual, machine.Loading)
		})

		Convey("A machine seek ends signal suppression and fails silent seeks", func() {
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.mp4"}})
			resource.emit(Signal{Kind: Ready})
			resource.emit(Signal{Kind: TimeProgress, Value: 5})

			release := adapter.Probe()
			defer release()
			generation := adapter.SeekGeneration()
			done := adapter.SilentSeek(90)

			m.Dispatch(machine.Seek{Time: 40})
			So(<-done, ShouldEqual, ErrSeekInterrupted)
			So(adapter.SeekGeneration(), ShouldEqual, generation+1)

			resource.emit(Signal{Kind: TimeProgress, Value: 40})
			state, session := m.Snapshot()
			So(state, ShouldEqual, machine.Paused)
			So(session.CurrentTime, ShouldEqual, 40)
		})

		Convey("A silent seek that cannot be issued fails immediately", func() {
			resource.seekErr = errors.New("boom")
			done := adapter.SilentSeek(30)
			So(<-done, ShouldEqual, resource.seekErr)
		})

		Convey("A failed picture-in-picture request corrects the optimistic flag", func() {
			resource.pipErr = ErrUnsupported
			m.Dispatch(machine.Load{Source: machine.Source{URL: "a.mp4"}})
			resource.emit(Signal{Kind: Ready})

			corrected := make(chan bool, 1)
			unsubscribe := m.Subscribe(func(t machine.Transition) {
				if ev, ok := t.Event.(machine.PictureInPictureChanged); ok {
					corrected <- ev.Active
				}
			})
			defer unsubscribe()

			m.Dispatch(machine.TogglePictureInPicture{})

			select {
			case active := <-corrected:
				So(active, ShouldBeFalse)
			case <-time.After(time.Second):
				So("no correction received", ShouldBeEmpty)
			}

			_, session := m.Snapshot()
			So(session.PictureInPicture, ShouldBeFalse)
		})

		Convey("Detach closes the resource and fails pending seeks", func() {
			done := adapter.SilentSeek(10)
			So(adapter.Detach(), ShouldBeNil)
			So(<-done, ShouldEqual, ErrDetached)
			So(resource.closed, ShouldBeTrue)
		})
	})

	Convey("Given an adapter with an adaptive engine", t, func() {
		var engines []*fakeEngine
		factory := func() mo.Option[AdaptiveEngine] {
			engine := &fakeEngine{}
			engines = append(engines, engine)
			return mo.Some[AdaptiveEngine](engine)
		}

		resource, adapter, m := newHarness(WithEngines(factory))
		m.Dispatch(machine.Load{Source: machine.Source{URL: "a.m3u8", Adaptive: true}})

		Convey("The manifest is loaded through the engine", func() {
			So(engines, ShouldHaveLength, 1)
			So(engines[0].loaded, ShouldEqual, "a.m3u8")
			So(resource.Calls(), ShouldNotContain, "source a.m3u8")
			So(adapter.HasEngine(), ShouldBeTrue)
		})

		Convey("A parsed manifest starts playback", func() {
			engines[0].manifest()
			So(m.State(), ShouldEqual, machine.Playing)
		})

		Convey("Level switches become quality changes", func() {
			engines[0].level("720p")
			_, session := m.Snapshot()
			So(session.Quality, ShouldResemble, mo.Some("720p"))
		})

		Convey("A re-LOAD destroys the previous engine and ignores its callbacks", func() {
			m.Dispatch(machine.Failure{Message: "network"})
			m.Dispatch(machine.Load{Source: machine.Source{URL: "b.m3u8", Adaptive: true}})

			So(engines, ShouldHaveLength, 2)
			So(engines[0].destroyed, ShouldBeTrue)
			So(engines[1].destroyed, ShouldBeFalse)

			engines[0].level("1080p")
			_, session := m.Snapshot()
			So(session.Quality.IsPresent(), ShouldBeFalse)
		})
	})

	Convey("Given an engine that cannot attach", t, func() {
		engine := &fakeEngine{attachErr: errors.New("no media source extensions")}
		factory := func() mo.Option[AdaptiveEngine] { return mo.Some[AdaptiveEngine](engine) }

		_, adapter, m := newHarness(WithEngines(factory))
		m.Dispatch(machine.Load{Source: machine.Source{URL: "a.m3u8", Adaptive: true}})

		Convey("The machine fails with the attach error", func() {
			state, session := m.Snapshot()
			So(state, ShouldEqual, machine.Error)
			So(session.Error.OrEmpty(), ShouldContainSubstring, "attach adaptive engine")
			So(engine.destroyed, ShouldBeTrue)
			So(adapter.HasEngine(), ShouldBeFalse)
		})
	})
}
