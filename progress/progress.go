// Package progress derives what the progress bar shows from the session: the active chapter,
// chapter segment geometry and buffered-range geometry. Every function here is pure.
package progress

import (
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/util"
)

// Chapter is a named point on the timeline. Chapter lists are sorted ascending by Start.
type Chapter struct {
	Start float64 `json:"start" yaml:"start" toml:"start" jsonschema:"description=Start of the chapter in seconds.,minimum=0"`
	Title string  `json:"title" yaml:"title" toml:"title" jsonschema:"description=Title shown while the chapter is active."`
}

// Segment is the slice of the progress bar covered by one chapter. Left and Width are fractions of the duration.
type Segment struct {
	Chapter Chapter
	Left    float64
	Width   float64
}

// Bar is the geometry of one buffered range, in percent of the duration.
type Bar struct {
	Left  float64
	Width float64
}

func usable(duration float64) bool {
	return util.Finite(duration) && duration > 0
}

// ActiveChapter returns the chapter with the greatest start not after t, and its index.
// The list is expected to be sorted; it is not re-sorted.
func ActiveChapter(chapters []Chapter, t float64) (Chapter, int, bool) {
	active := -1
	for i, c := range chapters {
		if c.Start > t {
			break
		}
		active = i
	}

	if active < 0 {
		return Chapter{}, -1, false
	}
	return chapters[active], active, true
}

// Segments lays chapters out on the bar. Each chapter spans until the next one starts or the media ends.
func Segments(chapters []Chapter, duration float64) []Segment {
	if !usable(duration) || len(chapters) == 0 {
		return nil
	}

	segments := make([]Segment, len(chapters))
	for i, c := range chapters {
		end := duration
		if i+1 < len(chapters) {
			end = chapters[i+1].Start
		}

		segments[i] = Segment{
			Chapter: c,
			Left:    c.Start / duration,
			Width:   (end - c.Start) / duration,
		}
	}
	return segments
}

// BufferBars converts buffered ranges into bar geometry.
func BufferBars(ranges []machine.BufferRange, duration float64) []Bar {
	if !usable(duration) || len(ranges) == 0 {
		return nil
	}

	bars := make([]Bar, len(ranges))
	for i, r := range ranges {
		bars[i] = Bar{
			Left:  r.Start / duration * 100,
			Width: (r.End - r.Start) / duration * 100,
		}
	}
	return bars
}

// Derived bundles everything the progress bar needs for one session snapshot.
type Derived struct {
	Chapter      Chapter
	ChapterIndex int
	HasChapter   bool
	Segments     []Segment
	Buffered     []Bar
	// Played is the played fraction of the duration, 0 while the duration is unknown.
	Played float64
}

// Derive recomputes the progress geometry from a session snapshot.
func Derive(session machine.Session, chapters []Chapter) Derived {
	d := Derived{
		Segments: Segments(chapters, session.Duration),
		Buffered: BufferBars(session.Buffered, session.Duration),
	}

	d.Chapter, d.ChapterIndex, d.HasChapter = ActiveChapter(chapters, session.CurrentTime)

	if usable(session.Duration) {
		d.Played = util.Clamp(session.CurrentTime/session.Duration, 0, 1)
	}

	return d
}
