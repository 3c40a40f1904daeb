package machine

import (
	"math"
	"sync"

	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/util"
	"github.com/samber/mo"
)

// Media is the command surface the machine drives. The resource adapter implements it.
type Media interface {
	// Attach binds a new source, tearing down whatever was attached before.
	Attach(src Source) error
	Play() error
	Pause() error
	SetCurrentTime(t float64) error
	SetVolume(v float64) error
	SetPlaybackRate(r float64) error
	// PictureInPicture starts an asynchronous enter/exit request. The outcome comes back as PictureInPictureChanged.
	PictureInPicture(enter bool)
}

// Transition describes one handled event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Session Session
}

// Changed reports whether the event moved the machine to a different state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Option configures a Machine.
type Option func(*Machine)

// WithPauseOnHidden controls whether a hidden page forces a pause side effect. Enabled by default.
func WithPauseOnHidden(enabled bool) Option {
	return func(m *Machine) { m.pauseOnHidden = enabled }
}

// WithVolume sets the initial volume, clamped to [0,1].
func WithVolume(v float64) Option {
	return func(m *Machine) {
		if !math.IsNaN(v) {
			m.session.Volume = util.Clamp(v, 0, 1)
		}
	}
}

// WithRate sets the initial playback rate. Non-positive rates are ignored.
func WithRate(r float64) Option {
	return func(m *Machine) {
		if util.Finite(r) && r > 0 {
			m.session.PlaybackRate = r
		}
	}
}

// WithLogger scopes the machine's diagnostics.
func WithLogger(entry *log.Entry) Option {
	return func(m *Machine) { m.log = entry }
}

// Machine owns a Session and the current State. It is safe for concurrent use; events are processed one at a time.
type Machine struct {
	media         Media
	pauseOnHidden bool
	log           *log.Entry

	mu      sync.RWMutex // guards state, session and pauseOnLand
	state   State
	session Session
	// pauseOnLand is set while a seek issued during playback is in flight.
	pauseOnLand bool

	qmu      sync.Mutex // guards queue and draining
	queue    []Event
	draining bool

	omu       sync.Mutex
	observers map[int]func(Transition)
	nextID    int
}

// New creates a machine in Idle with an empty session.
func New(media Media, opts ...Option) *Machine {
	m := &Machine{
		media:         media,
		pauseOnHidden: true,
		log:           log.WithFields(log.Fields{"component": "machine"}),
		state:         Idle,
		session:       NewSession(),
		observers:     make(map[int]func(Transition)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns the current state together with a copy of the session.
func (m *Machine) Snapshot() (State, Session) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.session.Clone()
}

// Subscribe registers an observer called after every handled event. The returned function removes it.
func (m *Machine) Subscribe(fn func(Transition)) (unsubscribe func()) {
	m.omu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.omu.Unlock()

	return func() {
		m.omu.Lock()
		delete(m.observers, id)
		m.omu.Unlock()
	}
}

// Dispatch feeds an event to the machine.
//
// If another Dispatch is already draining the queue (including a re-entrant call from a side effect),
// the event is queued and processed by that drain after the current step. Dispatch never recurses into a step.
func (m *Machine) Dispatch(ev Event) {
	if ev == nil {
		return
	}

	m.qmu.Lock()
	m.queue = append(m.queue, ev)
	if m.draining {
		m.qmu.Unlock()
		return
	}
	m.draining = true
	m.qmu.Unlock()

	for {
		m.qmu.Lock()
		if len(m.queue) == 0 {
			m.draining = false
			m.qmu.Unlock()
			return
		}
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.qmu.Unlock()

		m.step(next)
	}
}

// effect is a side effect collected while the session lock is held and run after it is released.
type effect struct {
	name string
	run  func() error
	// fatal effects turn their error into a Failure event.
	fatal bool
}

func (m *Machine) step(ev Event) {
	m.mu.Lock()
	from := m.state
	effects, handled := m.transition(ev)
	to := m.state
	snapshot := m.session.Clone()
	m.mu.Unlock()

	if !handled {
		m.log.Tracef("ignored %s in %s", ev, from)
		return
	}

	if from != to {
		m.log.Debugf("%s: %s -> %s", ev, from, to)
	}

	for _, fx := range effects {
		if err := fx.run(); err != nil {
			if fx.fatal {
				m.log.Errorf("%s failed: %v", fx.name, err)
				m.Dispatch(Failure{Message: err.Error()})
				continue
			}
			m.log.Warnf("%s failed: %v", fx.name, err)
		}
	}

	m.notify(Transition{From: from, To: to, Event: ev, Session: snapshot})
}

func (m *Machine) notify(t Transition) {
	m.omu.Lock()
	observers := make([]func(Transition), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.omu.Unlock()

	for _, fn := range observers {
		fn(t)
	}
}

// transition applies ev to the state and session. Must be called with mu held.
func (m *Machine) transition(ev Event) ([]effect, bool) {
	s := &m.session

	switch e := ev.(type) {
	case Load:
		if (m.state != Idle && m.state != Error) || e.Source.URL == "" {
			return nil, false
		}
		// currentTime and duration survive a reload so the retry can keep showing them.
		s.Error = mo.None[string]()
		s.Quality = mo.None[string]()
		s.Buffered = nil
		s.Resource = e.Source
		m.state = Loading
		m.pauseOnLand = false

		src, volume, rate := e.Source, s.Volume, s.PlaybackRate
		return []effect{
			{name: "attach", run: func() error { return m.media.Attach(src) }, fatal: true},
			{name: "volume", run: func() error { return m.media.SetVolume(volume) }},
			{name: "rate", run: func() error { return m.media.SetPlaybackRate(rate) }},
		}, true

	case Play:
		switch m.state {
		case Loading, Paused, Seeking:
			m.state = Playing
			m.pauseOnLand = false
			return []effect{{name: "play", run: m.media.Play}}, true
		}

	case Pause:
		switch m.state {
		case Loading, Buffering, Playing:
			m.state = Paused
			return []effect{{name: "pause", run: m.media.Pause}}, true
		}

	case Seek:
		switch m.state {
		case Playing, Paused, Seeking:
			t := s.ClampTime(e.Time)
			if m.state != Seeking {
				m.pauseOnLand = m.state == Playing
			}
			m.state = Seeking
			return []effect{{name: "seek", run: func() error { return m.media.SetCurrentTime(t) }}}, true
		}

	case TimeUpdate:
		switch m.state {
		case Playing:
			s.CurrentTime = s.ClampTime(e.Time)
			return nil, true
		case Seeking:
			// A seek always lands in Paused. The resource kept playing through it, so it is paused too.
			s.CurrentTime = s.ClampTime(e.Time)
			m.state = Paused
			if m.pauseOnLand {
				m.pauseOnLand = false
				return []effect{{name: "pause", run: m.media.Pause}}, true
			}
			return nil, true
		}

	case BufferedUpdate:
		switch m.state {
		case Playing, Paused, Buffering:
			if err := ValidateRanges(e.Ranges); err != nil {
				m.log.Warnf("rejected buffered update: %v", err)
				return nil, false
			}
			s.Buffered = append([]BufferRange(nil), e.Ranges...)
			return nil, true
		}

	case DurationChange:
		switch m.state {
		case Loading, Buffering, Playing, Paused:
			if math.IsNaN(e.Duration) || e.Duration < 0 {
				return nil, false
			}
			s.Duration = e.Duration
			s.CurrentTime = s.ClampTime(s.CurrentTime)
			return nil, true
		}

	case SetVolume:
		switch m.state {
		case Playing, Paused:
			if math.IsNaN(e.Volume) {
				return nil, false
			}
			v := util.Clamp(e.Volume, 0, 1)
			s.Volume = v
			return []effect{{name: "volume", run: func() error { return m.media.SetVolume(v) }}}, true
		}

	case SetRate:
		if m.state == Playing {
			if !util.Finite(e.Rate) || e.Rate <= 0 {
				return nil, false
			}
			r := e.Rate
			s.PlaybackRate = r
			return []effect{{name: "rate", run: func() error { return m.media.SetPlaybackRate(r) }}}, true
		}

	case ToggleTheater:
		switch m.state {
		case Playing, Paused:
			s.Theater = !s.Theater
			return nil, true
		}

	case TogglePictureInPicture:
		switch m.state {
		case Playing, Paused:
			enter := !s.PictureInPicture
			s.PictureInPicture = enter
			return []effect{{name: "picture-in-picture", run: func() error {
				m.media.PictureInPicture(enter)
				return nil
			}}}, true
		}

	case PictureInPictureChanged:
		if m.state.Attached() {
			s.PictureInPicture = e.Active
			return nil, true
		}

	case PageVisibility:
		if m.state.Attached() {
			s.PageVisible = e.Visible
			// Hiding pauses the resource without leaving the current state, so becoming visible again does not resume.
			if !e.Visible && m.pauseOnHidden {
				return []effect{{name: "pause (hidden)", run: m.media.Pause}}, true
			}
			return nil, true
		}

	case Waiting:
		if m.state == Playing {
			m.state = Buffering
			return nil, true
		}

	case Resumed:
		if m.state == Buffering {
			m.state = Playing
			return nil, true
		}

	case QualityChange:
		if m.state.Attached() {
			s.Quality = mo.Some(e.Quality)
			return nil, true
		}

	case Failure:
		if m.state.Attached() {
			s.Error = mo.Some(e.Message)
			m.state = Error
			return nil, true
		}
	}

	return nil, false
}
