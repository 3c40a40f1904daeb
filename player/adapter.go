package player

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/machine"
)

const pictureInPictureTimeout = 5 * time.Second

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithEngines sets the adaptive engine factory. The factory is consulted on every LOAD.
func WithEngines(factory EngineFactory) AdapterOption {
	return func(a *Adapter) { a.engines = factory }
}

// WithAutoplay makes readiness signals start playback.
func WithAutoplay(enabled bool) AdapterOption {
	return func(a *Adapter) { a.autoplay = enabled }
}

// WithAdapterLogger scopes the adapter's diagnostics.
func WithAdapterLogger(entry *log.Entry) AdapterOption {
	return func(a *Adapter) { a.log = entry }
}

// Adapter is the single owner of a Resource and of the adaptive engine bound to it.
// It implements machine.Media and turns the resource's signals into machine events.
type Adapter struct {
	resource Resource
	engines  EngineFactory
	autoplay bool
	log      *log.Entry

	dispatch atomic.Pointer[func(machine.Event)]

	mu     sync.Mutex // guards engine and waiters
	engine AdaptiveEngine
	// waiters are pending silent seeks, completed by the next Seeked signal.
	waiters []chan error

	// generation invalidates engine callbacks from previous attachments.
	generation atomic.Uint64
	probes     atomic.Int32

	// seeks counts machine seeks. probeMark is its value when the latest probe began.
	seeks     atomic.Uint64
	probeMark atomic.Uint64
}

// NewAdapter wraps a resource. Call Bind before the first Attach so signals have somewhere to go.
func NewAdapter(resource Resource, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		resource: resource,
		engines:  NoEngine,
		autoplay: true,
		log:      log.WithFields(log.Fields{"component": "adapter"}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bind connects the adapter to the machine's dispatch function and starts listening to the resource.
func (a *Adapter) Bind(dispatch func(machine.Event)) {
	a.dispatch.Store(&dispatch)
	a.resource.Listen(a.translate)
}

func (a *Adapter) emit(ev machine.Event) {
	if fn := a.dispatch.Load(); fn != nil {
		(*fn)(ev)
	}
}

// Attach tears down any previous adaptive engine and binds the new source, either through a fresh engine
// or directly on the resource.
func (a *Adapter) Attach(src machine.Source) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.teardownLocked()
	gen := a.generation.Add(1)

	if src.Adaptive {
		if engine, ok := a.engines().Get(); ok {
			current := func() bool { return a.generation.Load() == gen }

			engine.OnManifestParsed(func() {
				if current() && a.autoplay {
					a.emit(machine.Play{})
				}
			})
			engine.OnLevelSwitched(func(level string) {
				if current() {
					a.emit(machine.QualityChange{Quality: level})
				}
			})

			if err := engine.AttachMedia(a.resource); err != nil {
				engine.Destroy()
				return fmt.Errorf("attach adaptive engine: %w", err)
			}
			a.engine = engine

			if err := engine.LoadSource(src.URL); err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}

			a.log.Infof("attached %s through adaptive engine", src.URL)
			return nil
		}

		a.log.Infof("no adaptive engine available, playing %s natively", src.URL)
	}

	if err := a.resource.SetSource(src.URL); err != nil {
		return fmt.Errorf("set source: %w", err)
	}
	if err := a.resource.Load(); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	a.log.Infof("attached %s", src.URL)
	return nil
}

func (a *Adapter) teardownLocked() {
	if a.engine != nil {
		a.engine.Destroy()
		a.engine = nil
	}
}

// Detach destroys the adaptive engine and closes the resource. The adapter must not be reused.
func (a *Adapter) Detach() error {
	a.mu.Lock()
	a.teardownLocked()
	a.generation.Add(1)
	waiters := a.waiters
	a.waiters = nil
	a.mu.Unlock()

	for _, w := range waiters {
		w <- ErrDetached
	}

	return a.resource.Close()
}

// Resource returns the wrapped resource.
func (a *Adapter) Resource() Resource {
	return a.resource
}

// HasEngine reports whether an adaptive engine is currently bound.
func (a *Adapter) HasEngine() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine != nil
}

func (a *Adapter) Play() error  { return a.resource.Play() }
func (a *Adapter) Pause() error { return a.resource.Pause() }

// SetCurrentTime is the machine's seek. It ends any running probe: pending silent seeks fail with
// ErrSeekInterrupted and position signals reach the machine again.
func (a *Adapter) SetCurrentTime(t float64) error {
	a.seeks.Add(1)
	a.completeWaiters(ErrSeekInterrupted)
	return a.resource.SetCurrentTime(t)
}

func (a *Adapter) SetVolume(v float64) error { return a.resource.SetVolume(v) }
func (a *Adapter) SetPlaybackRate(r float64) error {
	return a.resource.SetPlaybackRate(r)
}

// PictureInPicture issues the request in the background. A failed request is reported back as the
// unchanged status so the machine's optimistic flag is corrected.
func (a *Adapter) PictureInPicture(enter bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pictureInPictureTimeout)
		defer cancel()

		if err := a.resource.RequestPictureInPicture(ctx, enter); err != nil {
			a.log.Warnf("picture-in-picture request (enter=%t) failed: %v", enter, err)
			a.emit(machine.PictureInPictureChanged{Active: !enter})
		}
	}()
}

// Probe marks the start of a silent probe. Until release is called, or until the machine seeks,
// position, seek and stall signals are not forwarded to the machine.
func (a *Adapter) Probe() (release func()) {
	a.probeMark.Store(a.seeks.Load())
	a.probes.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { a.probes.Add(-1) })
	}
}

func (a *Adapter) probing() bool {
	return a.probes.Load() > 0 && a.probeMark.Load() == a.seeks.Load()
}

// SeekGeneration counts the seeks issued by the machine.
func (a *Adapter) SeekGeneration() uint64 {
	return a.seeks.Load()
}

// CurrentTime reads the resource's position directly.
func (a *Adapter) CurrentTime() (float64, error) {
	return a.resource.CurrentTime()
}

// SilentSeek moves the resource without going through the machine. The channel receives exactly once:
// nil when the seek completed, or the error that prevented it.
func (a *Adapter) SilentSeek(t float64) <-chan error {
	done := make(chan error, 1)

	a.mu.Lock()
	a.waiters = append(a.waiters, done)
	a.mu.Unlock()

	if err := a.resource.SetCurrentTime(t); err != nil {
		a.completeWaiter(done, err)
	}
	return done
}

// CaptureFrame renders the current frame of the resource.
func (a *Adapter) CaptureFrame(ctx context.Context) (image.Image, error) {
	return a.resource.CaptureFrame(ctx)
}

func (a *Adapter) completeWaiter(w chan error, err error) {
	a.mu.Lock()
	for i, pending := range a.waiters {
		if pending == w {
			a.waiters = append(a.waiters[:i], a.waiters[i+1:]...)
			a.mu.Unlock()
			w <- err
			return
		}
	}
	a.mu.Unlock()
}

func (a *Adapter) completeWaiters(err error) bool {
	a.mu.Lock()
	waiters := a.waiters
	a.waiters = nil
	a.mu.Unlock()

	for _, w := range waiters {
		w <- err
	}
	return len(waiters) > 0
}

// translate maps native signals 1:1 onto the machine's vocabulary.
func (a *Adapter) translate(sig Signal) {
	switch sig.Kind {
	case MetadataReady:
		a.emit(machine.DurationChange{Duration: sig.Value})
	case TimeProgress:
		if !a.probing() {
			a.emit(machine.TimeUpdate{Time: sig.Value})
		}
	case BufferedExtent:
		a.emit(machine.BufferedUpdate{Ranges: sig.Ranges})
	case Stall:
		if !a.probing() {
			a.emit(machine.Waiting{})
		}
	case Resume:
		if !a.probing() {
			a.emit(machine.Resumed{})
		}
	case Ready:
		if a.autoplay && !a.HasEngine() {
			a.emit(machine.Play{})
		}
	case Seeked:
		a.completeWaiters(nil)
	case FatalError:
		a.completeWaiters(fmt.Errorf("resource failed: %s", sig.Message))
		a.emit(machine.Failure{Message: sig.Message})
	case QualityLevel:
		a.emit(machine.QualityChange{Quality: sig.Message})
	case EnterPictureInPicture:
		a.emit(machine.PictureInPictureChanged{Active: true})
	case LeavePictureInPicture:
		a.emit(machine.PictureInPictureChanged{Active: false})
	default:
		a.log.Debugf("unhandled signal %s", sig.Kind)
	}
}
