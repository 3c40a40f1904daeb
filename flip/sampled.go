package flip

import (
	"sync"
	"time"
)

// Sampled is an Element for hosts that redraw on their own clock, such as a terminal UI.
// Transitions are recorded and evaluated whenever the host samples the element.
type Sampled struct {
	mu       sync.Mutex
	now      func() time.Time
	current  Transform
	from     Transform
	to       Transform
	start    time.Time
	duration time.Duration
	curve    Curve
	running  bool
	onEnd    func()
}

// NewSampled returns an element at identity. now defaults to time.Now.
func NewSampled(now func() time.Time) *Sampled {
	if now == nil {
		now = time.Now
	}
	return &Sampled{now: now, current: Identity}
}

func (s *Sampled) SetTransform(t Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
	s.running = false
}

// FlushLayout is a no-op: the host lays out on every frame.
func (s *Sampled) FlushLayout() {}

func (s *Sampled) Transition(to Transform, duration time.Duration, curve Curve) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if curve == nil {
		curve = Linear
	}

	s.from = s.current
	s.to = to
	s.start = s.now()
	s.duration = duration
	s.curve = curve
	s.running = true
}

func (s *Sampled) OnTransitionEnd(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = fn
}

func (s *Sampled) ClearTransform() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Identity
	s.running = false
	s.onEnd = nil
}

// Animating reports whether a transition is in progress.
func (s *Sampled) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Sample advances the running transition to the host's current time and returns the transform to draw.
// The end callback fires from the sample that completes the transition.
func (s *Sampled) Sample() Transform {
	s.mu.Lock()

	if !s.running {
		t := s.current
		s.mu.Unlock()
		return t
	}

	progress := 1.0
	if s.duration > 0 {
		progress = float64(s.now().Sub(s.start)) / float64(s.duration)
	}

	var ended func()
	if progress >= 1 {
		s.current = s.to
		s.running = false
		ended = s.onEnd
	} else {
		s.current = s.from.Lerp(s.to, s.curve(clampUnit(progress)))
	}

	t := s.current
	s.mu.Unlock()

	if ended != nil {
		ended()
	}
	return t
}
