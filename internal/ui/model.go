// Package ui renders feedback overlays (seek, volume, zoom, errors) as short-lived terminal toasts.
package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-player/marquee/effect"
	"github.com/marquee-player/marquee/flip"
	"github.com/marquee-player/marquee/style"
)

// DefaultLifetime is how long a toast stays up.
const DefaultLifetime = 1200 * time.Millisecond

// Model holds the overlay currently on screen. At most one is shown; a new payload replaces it.
type Model struct {
	ctx      context.Context
	lifetime time.Duration
	bounds   flip.Rect
	overlay  *effect.Overlay
}

// ClearNotificationMsg reports that an overlay disposed of itself.
type ClearNotificationMsg struct {
	overlay *effect.Overlay
}

// New creates a toast model. Overlays are disposed when ctx is cancelled.
func New(ctx context.Context, lifetime time.Duration) *Model {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Model{ctx: ctx, lifetime: lifetime}
}

// SetBounds records the geometry new overlays are anchored to.
func (m *Model) SetBounds(bounds flip.Rect) {
	m.bounds = bounds
}

// Current returns the overlay on screen, if any.
func (m *Model) Current() *effect.Overlay {
	if m.overlay == nil || !m.overlay.Visible() {
		return nil
	}
	return m.overlay
}

// Update shows payloads and forgets overlays that are gone.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case effect.Payload:
		if m.overlay != nil {
			m.overlay.Dispose()
		}
		m.overlay = effect.Show(m.ctx, msg, m.bounds, m.lifetime)
		return waitDisposed(m.overlay)
	case ClearNotificationMsg:
		if msg.overlay == m.overlay {
			m.overlay = nil
		}
	}
	return nil
}

func waitDisposed(o *effect.Overlay) tea.Cmd {
	return func() tea.Msg {
		<-o.Done()
		return ClearNotificationMsg{overlay: o}
	}
}

// View appends the current toast to the last line of the content.
func (m *Model) View(content string) string {
	o := m.Current()
	if o == nil {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + render(o.Payload)
	return strings.Join(lines, "\n")
}

func render(p effect.Payload) string {
	if p.Kind == effect.ErrorFeedback {
		return style.ErrorTitle(p.String())
	}
	return style.Title(p.String())
}
