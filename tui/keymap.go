package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/marquee-player/marquee/color"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/style"
)

// keymap defines the keyboard interactions of the player. The help shown depends on the playback state.
type keymap struct {
	state machine.State

	quit, forceQuit,
	playPause,
	forward, backward,
	volumeUp, volumeDown,
	nextChapter, prevChapter,
	theater, pictureInPicture, fullscreen, fit,
	retry,
	showHelp key.Binding
}

func (k *keymap) setState(s machine.State) {
	k.state = s
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "k"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "seek forward"),
		),
		backward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "seek back"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("up", "+"),
			key.WithHelp("↑", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "volume down"),
		),
		nextChapter: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "next chapter"),
		),
		prevChapter: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "previous chapter"),
		),
		theater: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theater"),
		),
		pictureInPicture: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "picture-in-picture"),
		),
		fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		fit: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "fit/fill"),
		),
		retry: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "retry"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case machine.Idle, machine.Loading:
		return h(k.quit), h(k.quit, k.forceQuit)
	case machine.Error:
		return h(k.retry, k.quit), h(k.retry, k.quit, k.forceQuit)
	default:
		return h(k.playPause, k.forward, k.volumeUp, k.theater, k.showHelp, k.quit),
			h(k.playPause, k.forward, k.backward, k.volumeUp, k.volumeDown,
				k.nextChapter, k.prevChapter, k.theater, k.pictureInPicture, k.fullscreen, k.fit, k.quit)
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *keymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
