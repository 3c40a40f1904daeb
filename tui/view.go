package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marquee-player/marquee/color"
	"github.com/marquee-player/marquee/icon"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/style"
	"github.com/marquee-player/marquee/util"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(style.BorderColor).
	Align(lipgloss.Center, lipgloss.Center)

var stateIcons = map[machine.State]icon.Icon{
	machine.Loading:   icon.Progress,
	machine.Playing:   icon.Play,
	machine.Paused:    icon.Pause,
	machine.Buffering: icon.Buffering,
	machine.Seeking:   icon.Seek,
	machine.Error:     icon.Error,
}

// barGeometry is where the progress bar is drawn: its row, first column and width in cells.
func (b *bubble) barGeometry() (row, left, width int) {
	return b.height - chromeRows + 2, 1, max(b.width-2, 0)
}

func (b *bubble) View() string {
	if b.width <= 0 || b.height <= 0 {
		return ""
	}

	lines := []string{b.viewTitle()}
	lines = append(lines, b.viewBox()...)

	if b.controls {
		lines = append(lines, b.viewChapter(), " "+renderBar(b.player.Derived(), max(b.width-2, 0)), b.viewTime(), " "+b.helpC.View(b.keymap))
	}

	return b.toasts.View(strings.Join(lines, "\n"))
}

func (b *bubble) viewTitle() string {
	title := b.title
	if title == "" {
		title = b.source.URL
	}

	var glyph string
	if i, ok := stateIcons[b.state]; ok {
		glyph = icon.Get(i) + " "
	}

	line := glyph + style.Title(title)
	if b.state == machine.Error {
		line = glyph + style.ErrorTitle(title)
	}
	return truncate.StringWithTail(line, uint(b.width), "…")
}

// viewBox draws the video box inside its area, at the position the transition currently puts it.
func (b *bubble) viewBox() []string {
	area := max(b.height-chromeRows, 1)
	rows := make([]string, 0, area)

	if b.host != nil {
		frame := b.host.Frame()
		width := max(int(math.Round(frame.Width))-2, 1)
		height := max(int(math.Round(frame.Height))-2, 1)
		left := max(int(math.Round(frame.Left)), 0)
		top := max(int(math.Round(frame.Top)), 0)

		box := boxStyle.Width(width).Height(height).Render(b.viewBoxContent(width))
		for i := 0; i < top; i++ {
			rows = append(rows, "")
		}
		for _, line := range strings.Split(box, "\n") {
			rows = append(rows, strings.Repeat(" ", left)+line)
		}
	}

	for len(rows) < area {
		rows = append(rows, "")
	}
	rows = rows[:area]

	for i, row := range rows {
		rows[i] = truncate.String(row, uint(b.width))
	}
	return rows
}

func (b *bubble) viewBoxContent(width int) string {
	if b.state == machine.Error {
		return wrap.String(style.Fg(color.Red)(b.session.Error.OrElse("playback failed")), width)
	}

	labels := []string{b.state.String(), "fit " + string(b.player.Fit())}
	if b.session.Theater {
		labels = append(labels, icon.Get(icon.Theater))
	}
	if b.session.PictureInPicture {
		labels = append(labels, icon.Get(icon.PictureInPicture))
	}
	if quality, ok := b.session.Quality.Get(); ok {
		labels = append(labels, quality)
	}

	content := style.Faint(strings.Join(labels, " · "))

	if thumbnail, ok := b.preview.Get(); ok {
		content += "\n" + style.Faint(fmt.Sprintf(
			"preview %s · %dx%d %s",
			util.FormatSeconds(thumbnail.Time), thumbnail.Width, thumbnail.Height, thumbnail.MimeType,
		))
	}

	return content
}

func (b *bubble) viewChapter() string {
	d := b.player.Derived()
	if !d.HasChapter {
		return ""
	}

	line := fmt.Sprintf(" %s %s %s",
		icon.Get(icon.Chapter),
		style.Fg(style.AccentColor)(d.Chapter.Title),
		style.Faint(fmt.Sprintf("%d/%d", d.ChapterIndex+1, len(d.Segments))),
	)
	return truncate.StringWithTail(line, uint(b.width), "…")
}

func (b *bubble) viewTime() string {
	return fmt.Sprintf(" %s / %s  %s %d%%  %.2gx",
		util.FormatSeconds(b.session.CurrentTime),
		util.FormatSeconds(b.session.Duration),
		icon.Get(icon.Volume),
		int(math.Round(b.session.Volume*100)),
		b.session.PlaybackRate,
	)
}
