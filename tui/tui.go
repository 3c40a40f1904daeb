// Package tui is the terminal front end of the player: a status line, a progress bar with chapters
// and buffered ranges, feedback toasts and keyboard controls that hide themselves while playing.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-player/marquee/machine"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Player Player
	Host   *Terminal
	// Feed must be the emitter the player was mounted with for toasts to show.
	Feed   *Feed
	Source machine.Source
	Title  string

	AutoHide      time.Duration
	ToastLifetime time.Duration

	Width, Height int
}

// Run loads the source and executes the Bubble Tea application loop until the user quits.
func Run(options *Options) error {
	bubble := newBubble(options)
	defer bubble.close()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
