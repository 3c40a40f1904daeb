package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-player/marquee/effect"
)

// Feed carries effect payloads from the stage into the program loop.
// It is safe to Emit from any goroutine; payloads arriving faster than the interface drains them are dropped.
type Feed struct {
	payloads chan effect.Payload
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{payloads: make(chan effect.Payload, 16)}
}

func (f *Feed) Emit(p effect.Payload) {
	select {
	case f.payloads <- p:
	default:
	}
}

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return <-f.payloads
	}
}
