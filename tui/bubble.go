package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/marquee-player/marquee/effect"
	"github.com/marquee-player/marquee/internal/ui"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/progress"
	"github.com/marquee-player/marquee/scrub"
	"github.com/marquee-player/marquee/stage"
	"github.com/samber/mo"
)

// frameInterval paces redraws while the video box is animating.
const frameInterval = time.Second / 30

// Player is the part of a stage the interface drives.
type Player interface {
	Dispatch(ev machine.Event)
	Snapshot() (machine.State, machine.Session)
	Subscribe(fn func(machine.Transition)) (unsubscribe func())
	Derived() progress.Derived
	Fit() effect.Fit

	SeekBy(delta float64)
	NudgeVolume(delta float64)
	TogglePlay()
	JumpChapter(offset int) bool
	ToggleFit()
	TogglePictureInPicture() bool
	ToggleFullscreen(ctx context.Context) error
	Hover(ctx context.Context, t float64) mo.Option[scrub.Thumbnail]
}

var _ Player = (*stage.Stage)(nil)

type (
	transitionMsg machine.Transition
	hideMsg       struct{ generation int }
	frameMsg      struct{}
	thumbnailMsg  mo.Option[scrub.Thumbnail]
)

// bubble is the player view.
type bubble struct {
	player Player
	host   *Terminal
	feed   *Feed
	source machine.Source
	title  string

	keymap *keymap
	helpC  help.Model
	toasts *ui.Model

	state   machine.State
	session machine.Session

	// controls are hidden after autoHide without activity while playing.
	controls       bool
	autoHide       time.Duration
	hideGeneration int

	// preview is the last hover thumbnail.
	preview     mo.Option[scrub.Thumbnail]
	hoverCancel context.CancelFunc

	transitions chan machine.Transition
	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
}

func newBubble(options *Options) *bubble {
	ctx, cancel := context.WithCancel(context.Background())

	b := &bubble{
		player:      options.Player,
		host:        options.Host,
		feed:        options.Feed,
		source:      options.Source,
		title:       options.Title,
		keymap:      newKeymap(),
		helpC:       help.New(),
		toasts:      ui.New(ctx, options.ToastLifetime),
		controls:    true,
		autoHide:    options.AutoHide,
		preview:     mo.None[scrub.Thumbnail](),
		transitions: make(chan machine.Transition, 64),
		ctx:         ctx,
		cancel:      cancel,
		width:       options.Width,
		height:      options.Height,
	}

	if b.feed == nil {
		b.feed = NewFeed()
	}

	b.state, b.session = b.player.Snapshot()
	b.keymap.setState(b.state)
	b.resize(options.Width, options.Height)

	// Transitions are handled on the program's goroutine; dropping one only delays a redraw.
	b.unsubscribe = b.player.Subscribe(func(t machine.Transition) {
		select {
		case b.transitions <- t:
		default:
		}
	})

	return b
}

// resize propagates terminal dimension changes to the host and the child components.
func (b *bubble) resize(width, height int) {
	b.width, b.height = width, height
	b.helpC.Width = width
	if b.host != nil {
		b.host.Resize(width, height)
		b.toasts.SetBounds(b.host.Bounds())
	}
}

// close releases everything the view started. The player itself belongs to the caller.
func (b *bubble) close() {
	b.unsubscribe()
	if b.hoverCancel != nil {
		b.hoverCancel()
	}
	b.cancel()
}
