package machine

import "fmt"

// Event is an input to the state machine. The vocabulary is closed: only the types in this file implement it.
type Event interface {
	fmt.Stringer
	event()
}

// Source describes the media to attach.
type Source struct {
	URL      string `json:"url" yaml:"url"`
	Adaptive bool   `json:"isAdaptive" yaml:"adaptive"`
}

// BufferRange is a contiguous buffered extent in seconds.
type BufferRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type (
	// Load attaches a new source.
	Load struct{ Source Source }
	// Play resumes or starts playback.
	Play struct{}
	// Pause suspends playback.
	Pause struct{}
	// Seek requests a public, visible seek.
	Seek struct{ Time float64 }
	// TimeUpdate reports the resource's playback position.
	TimeUpdate struct{ Time float64 }
	// BufferedUpdate replaces the buffered ranges.
	BufferedUpdate struct{ Ranges []BufferRange }
	// DurationChange reports the media duration once metadata is known.
	DurationChange struct{ Duration float64 }
	// SetVolume sets the volume in [0,1].
	SetVolume struct{ Volume float64 }
	// SetRate sets the playback rate.
	SetRate struct{ Rate float64 }
	// ToggleTheater flips theater mode.
	ToggleTheater struct{}
	// TogglePictureInPicture requests entering or leaving picture-in-picture.
	TogglePictureInPicture struct{}
	// PictureInPictureChanged acknowledges the resource's actual picture-in-picture status.
	PictureInPictureChanged struct{ Active bool }
	// PageVisibility reports the host page becoming visible or hidden.
	PageVisibility struct{ Visible bool }
	// Waiting reports a playback stall.
	Waiting struct{}
	// Resumed reports playback resuming after a stall.
	Resumed struct{}
	// QualityChange reports the adaptive engine switching level.
	QualityChange struct{ Quality string }
	// Failure reports a fatal resource error.
	Failure struct{ Message string }
)

func (Load) event()                    {}
func (Play) event()                    {}
func (Pause) event()                   {}
func (Seek) event()                    {}
func (TimeUpdate) event()              {}
func (BufferedUpdate) event()          {}
func (DurationChange) event()          {}
func (SetVolume) event()               {}
func (SetRate) event()                 {}
func (ToggleTheater) event()           {}
func (TogglePictureInPicture) event()  {}
func (PictureInPictureChanged) event() {}
func (PageVisibility) event()          {}
func (Waiting) event()                 {}
func (Resumed) event()                 {}
func (QualityChange) event()           {}
func (Failure) event()                 {}

func (e Load) String() string {
	return fmt.Sprintf("LOAD(%s, adaptive=%t)", e.Source.URL, e.Source.Adaptive)
}
func (Play) String() string              { return "PLAY" }
func (Pause) String() string             { return "PAUSE" }
func (e Seek) String() string            { return fmt.Sprintf("SEEK(%.3f)", e.Time) }
func (e TimeUpdate) String() string      { return fmt.Sprintf("TIME_UPDATE(%.3f)", e.Time) }
func (e BufferedUpdate) String() string  { return fmt.Sprintf("BUFFERED_UPDATE(%d ranges)", len(e.Ranges)) }
func (e DurationChange) String() string  { return fmt.Sprintf("DURATION_CHANGE(%.3f)", e.Duration) }
func (e SetVolume) String() string       { return fmt.Sprintf("SET_VOLUME(%.2f)", e.Volume) }
func (e SetRate) String() string         { return fmt.Sprintf("SET_RATE(%.2f)", e.Rate) }
func (ToggleTheater) String() string     { return "TOGGLE_THEATER" }
func (TogglePictureInPicture) String() string {
	return "TOGGLE_PIP"
}
func (e PictureInPictureChanged) String() string {
	return fmt.Sprintf("PIP_CHANGED(%t)", e.Active)
}
func (e PageVisibility) String() string { return fmt.Sprintf("PAGE_VISIBILITY(%t)", e.Visible) }
func (Waiting) String() string          { return "WAITING" }
func (Resumed) String() string          { return "PLAYING" }
func (e QualityChange) String() string  { return fmt.Sprintf("QUALITY_CHANGE(%s)", e.Quality) }
func (e Failure) String() string        { return fmt.Sprintf("ERROR(%s)", e.Message) }
