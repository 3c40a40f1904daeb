// Package style holds the lipgloss helpers shared by the CLI and the player.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marquee-player/marquee/color"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored returns a style with both colors set. An empty color leaves that side untouched.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer painting its argument in c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Tag renders a padded block, as used by titles and toasts.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(fg, bg).Padding(0, 1).Render(s) }
}

var (
	Title      = Tag(color.Cream, color.Indigo)
	ErrorTitle = Tag(color.Cream, color.Red)
)
