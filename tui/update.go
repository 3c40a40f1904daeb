package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-player/marquee/effect"
	"github.com/marquee-player/marquee/internal/ui"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/player"
	"github.com/marquee-player/marquee/scrub"
	"github.com/samber/mo"
)

const (
	seekStep   = 5
	volumeStep = 0.05
)

// Init attaches the source and starts listening to the player.
func (b *bubble) Init() tea.Cmd {
	cmds := []tea.Cmd{b.waitForTransition(), b.feed.wait()}
	if b.state == machine.Idle && b.source.URL != "" {
		cmds = append(cmds, b.load())
	}
	return tea.Batch(cmds...)
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case transitionMsg:
		return b, tea.Batch(b.handleTransition(machine.Transition(msg)), b.waitForTransition())
	case effect.Payload:
		return b, tea.Batch(b.toasts.Update(msg), b.feed.wait())
	case ui.ClearNotificationMsg:
		return b, b.toasts.Update(msg)
	case hideMsg:
		if msg.generation == b.hideGeneration && b.state == machine.Playing {
			b.controls = false
		}
	case frameMsg:
		if b.host != nil && b.host.Animating() {
			return b, b.nextFrame()
		}
	case thumbnailMsg:
		b.preview = mo.Option[scrub.Thumbnail](msg)
	case tea.MouseMsg:
		return b, b.handleMouse(msg)
	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	return b, nil
}

func (b *bubble) waitForTransition() tea.Cmd {
	return func() tea.Msg {
		return transitionMsg(<-b.transitions)
	}
}

func (b *bubble) load() tea.Cmd {
	source := b.source
	return func() tea.Msg {
		b.player.Dispatch(machine.Load{Source: source})
		return nil
	}
}

func (b *bubble) handleTransition(t machine.Transition) tea.Cmd {
	theater := b.session.Theater
	b.state, b.session = t.To, t.Session
	b.keymap.setState(t.To)

	var cmds []tea.Cmd

	switch {
	case t.To == machine.Playing && t.From != machine.Playing:
		// Every entry into Playing restarts the countdown.
		cmds = append(cmds, b.armHide())
	case t.To != machine.Playing:
		b.cancelHide()
		b.controls = true
	}

	if t.Session.Theater != theater {
		cmds = append(cmds, b.nextFrame())
	}

	return tea.Batch(cmds...)
}

// activity reveals the controls and restarts the countdown while playing.
func (b *bubble) activity() tea.Cmd {
	b.controls = true
	if b.state == machine.Playing {
		return b.armHide()
	}
	b.cancelHide()
	return nil
}

func (b *bubble) cancelHide() {
	b.hideGeneration++
}

func (b *bubble) armHide() tea.Cmd {
	b.cancelHide()
	if b.autoHide <= 0 {
		return nil
	}

	generation := b.hideGeneration
	return tea.Tick(b.autoHide, func(time.Time) tea.Msg {
		return hideMsg{generation: generation}
	})
}

func (b *bubble) nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (b *bubble) hover(t float64) tea.Cmd {
	if b.hoverCancel != nil {
		b.hoverCancel()
	}
	ctx, cancel := context.WithCancel(b.ctx)
	b.hoverCancel = cancel

	p := b.player
	return func() tea.Msg {
		return thumbnailMsg(p.Hover(ctx, t))
	}
}

func (b *bubble) handleMouse(msg tea.MouseMsg) tea.Cmd {
	cmd := b.activity()

	row, left, width := b.barGeometry()
	if msg.Y != row || msg.X < left || msg.X >= left+width || !b.session.DurationKnown() {
		return cmd
	}

	t := hoverTime(msg.X-left, width, b.session.Duration)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		b.player.Dispatch(machine.Seek{Time: t})
		return cmd
	case msg.Action == tea.MouseActionMotion:
		return tea.Batch(cmd, b.hover(t))
	}

	return cmd
}

func (b *bubble) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keymap.forceQuit, b.keymap.quit) {
		return b, tea.Quit
	}

	cmd := b.activity()

	switch {
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case key.Matches(msg, b.keymap.retry) && b.state == machine.Error:
		cmd = tea.Batch(cmd, b.load())
	case !b.state.Attached() || b.state == machine.Loading:
		// Nothing below applies before the resource is ready.
	case key.Matches(msg, b.keymap.playPause):
		b.player.TogglePlay()
	case key.Matches(msg, b.keymap.forward):
		b.player.SeekBy(seekStep)
	case key.Matches(msg, b.keymap.backward):
		b.player.SeekBy(-seekStep)
	case key.Matches(msg, b.keymap.volumeUp):
		b.player.NudgeVolume(volumeStep)
	case key.Matches(msg, b.keymap.volumeDown):
		b.player.NudgeVolume(-volumeStep)
	case key.Matches(msg, b.keymap.nextChapter):
		b.player.JumpChapter(1)
	case key.Matches(msg, b.keymap.prevChapter):
		b.player.JumpChapter(-1)
	case key.Matches(msg, b.keymap.theater):
		b.player.Dispatch(machine.ToggleTheater{})
		cmd = tea.Batch(cmd, b.nextFrame())
	case key.Matches(msg, b.keymap.pictureInPicture):
		b.player.TogglePictureInPicture()
	case key.Matches(msg, b.keymap.fit):
		b.player.ToggleFit()
	case key.Matches(msg, b.keymap.fullscreen):
		if err := b.player.ToggleFullscreen(b.ctx); errors.Is(err, player.ErrUnsupported) {
			cmd = tea.Batch(cmd, b.toasts.Update(effect.Payload{
				Kind:    effect.ErrorFeedback,
				Message: "fullscreen is not available in a terminal",
			}))
		}
	}

	return b, cmd
}
