package tui

import (
	"math"
	"strings"

	"github.com/marquee-player/marquee/progress"
	"github.com/marquee-player/marquee/style"
)

type cell int

const (
	emptyCell cell = iota
	bufferedCell
	playedCell
	boundaryCell
)

var glyphs = map[cell]string{
	emptyCell:    "┄",
	bufferedCell: "─",
	playedCell:   "━",
	boundaryCell: "│",
}

// barCells lays the progress bar out over width cells. Chapter boundaries win over played and
// buffered extents, played wins over buffered.
func barCells(d progress.Derived, width int) []cell {
	if width <= 0 {
		return nil
	}

	cells := make([]cell, width)
	for i := range cells {
		center := (float64(i) + 0.5) / float64(width)

		switch {
		case center <= d.Played:
			cells[i] = playedCell
		case buffered(d.Buffered, center*100):
			cells[i] = bufferedCell
		}
	}

	for _, s := range d.Segments {
		if s.Left <= 0 {
			continue
		}
		i := int(math.Round(s.Left * float64(width)))
		if i > 0 && i < width {
			cells[i] = boundaryCell
		}
	}

	return cells
}

func buffered(bars []progress.Bar, percent float64) bool {
	for _, b := range bars {
		if percent >= b.Left && percent < b.Left+b.Width {
			return true
		}
	}
	return false
}

func renderBar(d progress.Derived, width int) string {
	var b strings.Builder
	for _, c := range barCells(d, width) {
		glyph := glyphs[c]
		switch c {
		case playedCell:
			b.WriteString(style.Fg(style.PlayedColor)(glyph))
		case bufferedCell:
			b.WriteString(style.Fg(style.BufferedColor)(glyph))
		case boundaryCell:
			b.WriteString(style.Fg(style.BoundaryColor)(glyph))
		default:
			b.WriteString(style.Fg(style.TrackColor)(glyph))
		}
	}
	return b.String()
}

// hoverTime maps a column of the bar to a media time.
func hoverTime(column, width int, duration float64) float64 {
	if width <= 0 || math.IsNaN(duration) || duration <= 0 {
		return 0
	}
	return (float64(column) + 0.5) / float64(width) * duration
}
