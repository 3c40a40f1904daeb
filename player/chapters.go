package player

import (
	"github.com/marquee-player/marquee/progress"
)

// ChapterMarker is implemented by resources that can show chapter markers on their own timeline.
type ChapterMarker interface {
	SetChapters(chapters []progress.Chapter) error
}

// SetChapters replaces mpv's chapter list so its on-screen timeline shows the same markers.
func (m *MPV) SetChapters(chapters []progress.Chapter) error {
	if !m.running() {
		return ErrDetached
	}

	list := make([]map[string]interface{}, 0, len(chapters))
	for _, c := range chapters {
		list = append(list, map[string]interface{}{
			"title": c.Title,
			"time":  c.Start,
		})
	}

	_, err := m.sendCommand([]interface{}{"set_property", "chapter-list", list})
	return err
}
