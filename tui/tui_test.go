package tui

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-player/marquee/effect"
	"github.com/marquee-player/marquee/flip"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/player"
	"github.com/marquee-player/marquee/progress"
	"github.com/marquee-player/marquee/scrub"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	state   machine.State
	session machine.Session
	derived progress.Derived
}

func (f *fakePlayer) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlayer) Dispatch(ev machine.Event) { f.record("%s", ev) }

func (f *fakePlayer) Snapshot() (machine.State, machine.Session) {
	return f.state, f.session
}

func (f *fakePlayer) Subscribe(func(machine.Transition)) func() { return func() {} }
func (f *fakePlayer) Derived() progress.Derived                 { return f.derived }
func (f *fakePlayer) Fit() effect.Fit                           { return effect.FitContain }
func (f *fakePlayer) SeekBy(delta float64)                      { f.record("seek by %g", delta) }
func (f *fakePlayer) NudgeVolume(delta float64)                 { f.record("volume by %g", delta) }
func (f *fakePlayer) TogglePlay()                               { f.record("toggle play") }
func (f *fakePlayer) ToggleFit()                                { f.record("toggle fit") }
func (f *fakePlayer) TogglePictureInPicture() bool              { return false }

func (f *fakePlayer) JumpChapter(offset int) bool {
	f.record("chapter %+d", offset)
	return true
}

func (f *fakePlayer) ToggleFullscreen(context.Context) error {
	return player.ErrUnsupported
}

func (f *fakePlayer) Hover(_ context.Context, t float64) mo.Option[scrub.Thumbnail] {
	f.record("hover %g", t)
	return mo.Some(scrub.Thumbnail{Time: t, Width: 160, Height: 90})
}

func playing(session machine.Session) transitionMsg {
	return transitionMsg(machine.Transition{From: machine.Loading, To: machine.Playing, Session: session})
}

func TestBarCells(t *testing.T) {
	Convey("Given a 10-cell bar", t, func() {
		Convey("Played cells come first, then buffered ones", func() {
			cells := barCells(progress.Derived{
				Played:   0.3,
				Buffered: []progress.Bar{{Left: 0, Width: 60}},
			}, 10)

			So(cells, ShouldResemble, []cell{
				playedCell, playedCell, playedCell,
				bufferedCell, bufferedCell, bufferedCell,
				emptyCell, emptyCell, emptyCell, emptyCell,
			})
		})

		Convey("Chapter boundaries are marked", func() {
			cells := barCells(progress.Derived{
				Segments: []progress.Segment{
					{Chapter: progress.Chapter{Title: "Intro"}, Left: 0, Width: 0.5},
					{Chapter: progress.Chapter{Start: 50, Title: "Body"}, Left: 0.5, Width: 0.5},
				},
			}, 10)

			So(cells[0], ShouldEqual, emptyCell)
			So(cells[5], ShouldEqual, boundaryCell)
		})

		Convey("A zero width yields nothing", func() {
			So(barCells(progress.Derived{}, 0), ShouldBeEmpty)
			So(renderBar(progress.Derived{}, 0), ShouldBeEmpty)
		})
	})

	Convey("Bar columns map to media time", t, func() {
		So(hoverTime(0, 10, 100), ShouldEqual, 5)
		So(hoverTime(9, 10, 100), ShouldEqual, 95)
		So(hoverTime(3, 10, math.NaN()), ShouldEqual, 0)
	})
}

func TestTerminal(t *testing.T) {
	Convey("Given a 90x30 terminal", t, func() {
		host := NewTerminal(90, 30, false)

		Convey("The default box is centered at two thirds of the width", func() {
			So(host.Bounds(), ShouldResemble, flip.Rect{Left: 15, Top: 1, Width: 60, Height: 22})
		})

		Convey("Theater mode spans the whole width", func() {
			host.SetTheater(true)
			So(host.Bounds(), ShouldResemble, flip.Rect{Width: 90, Height: 24})
		})

		Convey("Frames follow a running transition", func() {
			before := host.Bounds()
			host.SetTheater(true)
			after := host.Bounds()

			flip.Animator{Duration: time.Hour, Curve: flip.Linear}.Play(context.Background(), host.Element(), before, after)
			So(host.Animating(), ShouldBeTrue)

			frame := host.Frame()
			So(frame.Left, ShouldAlmostEqual, before.Left, 0.01)
			So(frame.Width, ShouldAlmostEqual, before.Width, 0.01)
		})

		Convey("Fullscreen is not available", func() {
			So(host.Fullscreen(), ShouldBeFalse)
			So(host.RequestFullscreen(context.Background(), true), ShouldEqual, player.ErrUnsupported)
		})
	})
}

func TestBubble(t *testing.T) {
	Convey("Given a player view", t, func() {
		fake := &fakePlayer{state: machine.Idle, session: machine.NewSession()}
		b := newBubble(&Options{
			Player:   fake,
			Host:     NewTerminal(90, 30, true),
			Source:   machine.Source{URL: "lesson.mp4"},
			AutoHide: time.Hour,
			Width:    90,
			Height:   30,
		})
		defer b.close()

		session := machine.NewSession()
		session.Resource = machine.Source{URL: "lesson.mp4"}
		session.Duration = 200

		Convey("Init loads the source", func() {
			So(b.Init(), ShouldNotBeNil)
			b.load()()
			So(fake.Calls(), ShouldContain, "LOAD(lesson.mp4, adaptive=false)")
		})

		Convey("Entering Playing arms the auto-hide countdown", func() {
			cmd := b.handleTransition(machine.Transition(playing(session)))
			So(cmd, ShouldNotBeNil)
			So(b.controls, ShouldBeTrue)

			b.Update(hideMsg{generation: b.hideGeneration})
			So(b.controls, ShouldBeFalse)

			Convey("Any key reveals the controls and restarts the countdown", func() {
				stale := b.hideGeneration
				b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
				So(b.controls, ShouldBeTrue)
				So(b.hideGeneration, ShouldNotEqual, stale)

				b.Update(hideMsg{generation: stale})
				So(b.controls, ShouldBeTrue)
			})

			Convey("Leaving Playing cancels the countdown", func() {
				generation := b.hideGeneration
				b.handleTransition(machine.Transition{From: machine.Playing, To: machine.Paused, Session: session})
				b.Update(hideMsg{generation: generation})
				So(b.controls, ShouldBeTrue)
			})
		})

		Convey("Keys drive the player once it is attached", func() {
			b.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
			So(fake.Calls(), ShouldBeEmpty)

			b.handleTransition(machine.Transition(playing(session)))
			b.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
			b.Update(tea.KeyMsg{Type: tea.KeyRight})
			b.Update(tea.KeyMsg{Type: tea.KeyDown})
			b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
			b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})

			So(fake.Calls(), ShouldResemble, []string{
				"toggle play", "seek by 5", "volume by -0.05", "chapter +1", "TOGGLE_THEATER",
			})
		})

		Convey("Fullscreen reports that it is unavailable", func() {
			b.handleTransition(machine.Transition(playing(session)))
			b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})

			So(b.toasts.Current(), ShouldNotBeNil)
			So(b.toasts.Current().Payload.Kind, ShouldEqual, effect.ErrorFeedback)
		})

		Convey("q quits", func() {
			_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
			So(cmd(), ShouldResemble, tea.Quit())
		})

		Convey("Clicking the progress bar seeks", func() {
			b.handleTransition(machine.Transition(playing(session)))
			row, left, width := b.barGeometry()

			b.Update(tea.MouseMsg{X: left + width/2, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
			So(fake.Calls(), ShouldHaveLength, 1)
			So(fake.Calls()[0], ShouldStartWith, "SEEK(")
		})

		Convey("Hovering the progress bar previews a thumbnail", func() {
			b.handleTransition(machine.Transition(playing(session)))
			row, left, _ := b.barGeometry()

			_, cmd := b.Update(tea.MouseMsg{X: left, Y: row, Action: tea.MouseActionMotion})
			So(cmd, ShouldNotBeNil)

			thumbnail := b.hover(1)()
			b.Update(thumbnail)
			So(b.preview.IsPresent(), ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "preview")
		})

		Convey("The view shows the title and the time line", func() {
			b.handleTransition(machine.Transition(playing(session)))
			view := b.View()

			So(view, ShouldContainSubstring, "lesson.mp4")
			So(view, ShouldContainSubstring, "/ 3:20")
		})
	})
}
