// Package stage assembles one mounted player: the state machine, the resource adapter, gesture
// recognition, thumbnail scrubbing and layout transitions, all bound to a single host.
package stage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marquee-player/marquee/effect"
	"github.com/marquee-player/marquee/flip"
	"github.com/marquee-player/marquee/gesture"
	"github.com/marquee-player/marquee/key"
	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/player"
	"github.com/marquee-player/marquee/progress"
	"github.com/marquee-player/marquee/scrub"
	"github.com/marquee-player/marquee/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Options configure a Stage.
type Options struct {
	Resource player.Resource
	Engines  player.EngineFactory
	Host     Host
	Effects  effect.Emitter
	Chapters []progress.Chapter

	Thresholds gesture.Thresholds
	Scrub      scrub.Options
	Animator   flip.Animator

	Autoplay      bool
	PauseOnHidden bool
	Volume        float64
	Rate          float64
}

// OptionsFromConfig fills everything but the resource, host and chapters from configuration.
func OptionsFromConfig() Options {
	curve, err := flip.CurveByName(viper.GetString(key.FlipEasing))
	if err != nil {
		log.Warnf("%v, using ease-in-out", err)
		curve = flip.EaseInOut
	}

	return Options{
		Thresholds: gesture.ThresholdsFromConfig(),
		Scrub:      scrub.OptionsFromConfig(),
		Animator: flip.Animator{
			Duration: time.Duration(viper.GetInt(key.FlipDuration)) * time.Millisecond,
			Curve:    curve,
		},
		Autoplay:      viper.GetBool(key.PlayerAutoplay),
		PauseOnHidden: viper.GetBool(key.PlayerPauseHide),
		Volume:        float64(viper.GetInt(key.PlayerVolume)) / 100,
		Rate:          viper.GetFloat64(key.PlayerRate),
	}
}

// Stage is one mounted player instance.
type Stage struct {
	id       string
	log      *log.Entry
	host     Host
	effects  effect.Emitter
	chapters []progress.Chapter

	machine  *machine.Machine
	adapter  *player.Adapter
	scrubber *scrub.Scrubber
	animator flip.Animator

	gmu        sync.Mutex // guards recognizer
	recognizer *gesture.Recognizer

	mu      sync.Mutex // guards fit and theater
	fit     effect.Fit
	theater bool

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closeOnce   sync.Once
}

// New mounts a player on the given resource. The machine starts Idle.
func New(options Options) (*Stage, error) {
	if options.Resource == nil {
		return nil, fmt.Errorf("stage: no resource")
	}
	if options.Host == nil {
		options.Host = &Headless{}
	}
	if options.Effects == nil {
		options.Effects = effect.Nop
	}
	if options.Engines == nil {
		options.Engines = player.NoEngine
	}

	id := uuid.NewString()
	entry := log.WithFields(log.Fields{"session": id})
	host := options.Host

	engines := func() mo.Option[player.AdaptiveEngine] {
		if !host.AdaptiveEngine() {
			return mo.None[player.AdaptiveEngine]()
		}
		return options.Engines()
	}

	adapter := player.NewAdapter(options.Resource,
		player.WithEngines(engines),
		player.WithAutoplay(options.Autoplay),
		player.WithAdapterLogger(entry.WithField("component", "adapter")),
	)

	m := machine.New(adapter,
		machine.WithPauseOnHidden(options.PauseOnHidden),
		machine.WithVolume(options.Volume),
		machine.WithRate(options.Rate),
		machine.WithLogger(entry.WithField("component", "machine")),
	)
	adapter.Bind(m.Dispatch)

	animator := options.Animator
	animator.ReducedMotion = host.ReducedMotion

	ctx, cancel := context.WithCancel(context.Background())

	s := &Stage{
		id:         id,
		log:        entry,
		host:       host,
		effects:    options.Effects,
		chapters:   options.Chapters,
		machine:    m,
		adapter:    adapter,
		scrubber:   scrub.New(adapter, options.Scrub),
		animator:   animator,
		recognizer: gesture.New(options.Thresholds),
		fit:        effect.FitContain,
		ctx:        ctx,
		cancel:     cancel,
	}

	s.unsubscribe = m.Subscribe(s.observe)

	entry.Infof("mounted player")
	return s, nil
}

// ID identifies the session in logs.
func (s *Stage) ID() string {
	return s.id
}

// Dispatch forwards an event to the machine.
func (s *Stage) Dispatch(ev machine.Event) {
	s.machine.Dispatch(ev)
}

// Snapshot returns the current state and a copy of the session.
func (s *Stage) Snapshot() (machine.State, machine.Session) {
	return s.machine.Snapshot()
}

// Subscribe registers an observer of every handled event.
func (s *Stage) Subscribe(fn func(machine.Transition)) (unsubscribe func()) {
	return s.machine.Subscribe(fn)
}

// Chapters returns the chapter list the stage was mounted with.
func (s *Stage) Chapters() []progress.Chapter {
	return s.chapters
}

// Derived recomputes the progress bar geometry from the current session.
func (s *Stage) Derived() progress.Derived {
	_, session := s.machine.Snapshot()
	return progress.Derive(session, s.chapters)
}

// Fit returns how the video is currently sized in its box.
func (s *Stage) Fit() effect.Fit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fit
}

// observe reacts to transitions on behalf of the host.
func (s *Stage) observe(t machine.Transition) {
	if t.From == machine.Loading && t.To != machine.Loading && t.To != machine.Error {
		s.markChapters()
	}

	if t.To == machine.Error && t.From != machine.Error {
		s.effects.Emit(effect.Payload{Kind: effect.ErrorFeedback, Message: t.Session.Error.OrEmpty()})
	}

	s.mu.Lock()
	changed := t.Session.Theater != s.theater
	s.theater = t.Session.Theater
	s.mu.Unlock()

	if changed {
		s.animateTheater(t.Session.Theater)
	}
}

// markChapters mirrors the chapter list onto resources that draw their own timeline.
func (s *Stage) markChapters() {
	marker, ok := s.adapter.Resource().(player.ChapterMarker)
	if !ok || len(s.chapters) == 0 {
		return
	}

	if err := marker.SetChapters(s.chapters); err != nil {
		s.log.Warnf("set chapter markers: %v", err)
	}
}

// animateTheater measures the box, commits the new layout and plays the FLIP transition between both.
func (s *Stage) animateTheater(on bool) <-chan struct{} {
	before := s.host.Bounds()
	s.host.SetTheater(on)
	after := s.host.Bounds()

	return s.animator.Play(s.ctx, s.host.Element(), before, after)
}

// Touch classifies a touch event and applies the resulting commands.
func (s *Stage) Touch(ev gesture.TouchEvent, bounds flip.Rect) []gesture.Command {
	s.gmu.Lock()
	commands := s.recognizer.Handle(ev, bounds)
	s.gmu.Unlock()

	for _, c := range commands {
		switch c := c.(type) {
		case gesture.SeekForward:
			s.SeekBy(c.Seconds)
		case gesture.SeekBackward:
			s.SeekBy(-c.Seconds)
		case gesture.VolumeDelta:
			s.NudgeVolume(c.Delta)
		case gesture.ZoomIn:
			s.setFit(effect.FitCover)
		case gesture.ZoomOut:
			s.setFit(effect.FitContain)
		}
	}

	return commands
}

// SeekBy seeks relative to the current position, clamped to the media.
func (s *Stage) SeekBy(delta float64) {
	_, session := s.machine.Snapshot()
	s.machine.Dispatch(machine.Seek{Time: session.ClampTime(session.CurrentTime + delta)})
	s.effects.Emit(effect.Payload{Kind: effect.SeekFeedback, AmountSeconds: delta})
}

// NudgeVolume changes the volume by delta, clamped to [0,1].
func (s *Stage) NudgeVolume(delta float64) {
	_, session := s.machine.Snapshot()
	volume := util.Clamp(session.Volume+delta, 0, 1)
	s.machine.Dispatch(machine.SetVolume{Volume: volume})
	s.effects.Emit(effect.Payload{Kind: effect.VolumeFeedback, Volume: volume})
}

// TogglePlay pauses while playing or buffering and plays otherwise.
func (s *Stage) TogglePlay() {
	switch s.machine.State() {
	case machine.Playing, machine.Buffering:
		s.machine.Dispatch(machine.Pause{})
	default:
		s.machine.Dispatch(machine.Play{})
	}
}

// JumpChapter seeks to the start of the chapter offset chapters away from the active one.
func (s *Stage) JumpChapter(offset int) bool {
	_, session := s.machine.Snapshot()

	_, index, ok := progress.ActiveChapter(s.chapters, session.CurrentTime)
	if !ok {
		index = -1
	}

	target := index + offset
	if target < 0 || target >= len(s.chapters) {
		return false
	}

	s.machine.Dispatch(machine.Seek{Time: s.chapters[target].Start})
	return true
}

// ToggleFit switches between fitting and filling the box.
func (s *Stage) ToggleFit() {
	if s.Fit() == effect.FitContain {
		s.setFit(effect.FitCover)
	} else {
		s.setFit(effect.FitContain)
	}
}

func (s *Stage) setFit(fit effect.Fit) {
	s.mu.Lock()
	s.fit = fit
	s.mu.Unlock()

	s.effects.Emit(effect.Payload{Kind: effect.ZoomFeedback, Fit: fit})
}

// TogglePictureInPicture dispatches the toggle when the host supports picture-in-picture.
func (s *Stage) TogglePictureInPicture() bool {
	if !s.host.PictureInPicture() {
		s.effects.Emit(effect.Payload{Kind: effect.ErrorFeedback, Message: "picture-in-picture is not available"})
		return false
	}

	s.machine.Dispatch(machine.TogglePictureInPicture{})
	return true
}

// Hover captures a thumbnail for time t on the progress bar.
func (s *Stage) Hover(ctx context.Context, t float64) mo.Option[scrub.Thumbnail] {
	state, session := s.machine.Snapshot()
	if !state.Attached() || state == machine.Loading {
		return mo.None[scrub.Thumbnail]()
	}

	return s.scrubber.Capture(ctx, session.ClampTime(t))
}

// SetPageVisible reports page visibility changes to the machine.
func (s *Stage) SetPageVisible(visible bool) {
	s.machine.Dispatch(machine.PageVisibility{Visible: visible})
}

// ToggleFullscreen asks the host to flip fullscreen. The request completes asynchronously;
// failures surface as error feedback.
func (s *Stage) ToggleFullscreen(ctx context.Context) error {
	if !s.host.Fullscreen() {
		return player.ErrUnsupported
	}

	enter := !s.host.IsFullscreen()
	go func() {
		if err := s.host.RequestFullscreen(ctx, enter); err != nil {
			s.log.Warnf("fullscreen request (enter=%t) failed: %v", enter, err)
			s.effects.Emit(effect.Payload{Kind: effect.ErrorFeedback, Message: err.Error()})
		}
	}()

	return nil
}

// Close unmounts the player: pending animations are cancelled and the resource is detached.
func (s *Stage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.unsubscribe()
		s.cancel()
		err = s.adapter.Detach()
		s.log.Infof("unmounted player")
	})
	return err
}
