package machine

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/mo"
)

// ErrInvalidRanges is returned by ValidateRanges for buffered ranges that are unordered, overlapping or empty.
var ErrInvalidRanges = errors.New("buffered ranges must be ascending, non-overlapping and non-empty")

// Session is the playback context owned by a Machine. Callers only ever see copies of it.
type Session struct {
	// Resource is the attached source. The zero value means detached.
	Resource     Source
	CurrentTime  float64
	Duration     float64
	Volume       float64
	PlaybackRate float64
	Buffered     []BufferRange
	Quality      mo.Option[string]

	Theater          bool
	PictureInPicture bool
	PageVisible      bool

	Error mo.Option[string]
}

// NewSession returns the context of a freshly mounted player.
func NewSession() Session {
	return Session{
		Duration:     math.NaN(),
		Volume:       1,
		PlaybackRate: 1,
		Quality:      mo.None[string](),
		PageVisible:  true,
		Error:        mo.None[string](),
	}
}

// DurationKnown reports whether metadata has delivered a usable duration.
func (s Session) DurationKnown() bool {
	return !math.IsNaN(s.Duration) && !math.IsInf(s.Duration, 0) && s.Duration >= 0
}

// Attached reports whether a resource is attached.
func (s Session) Attached() bool {
	return s.Resource.URL != ""
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s Session) Clone() Session {
	c := s
	if s.Buffered != nil {
		c.Buffered = make([]BufferRange, len(s.Buffered))
		copy(c.Buffered, s.Buffered)
	}
	return c
}

// ClampTime bounds t to [0, Duration], or to [0, +inf) while the duration is unknown.
func (s Session) ClampTime(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if s.DurationKnown() && t > s.Duration {
		return s.Duration
	}
	return t
}

// ValidateRanges checks the buffered-range contract: start < end, ascending by start, pairwise non-overlapping.
func ValidateRanges(ranges []BufferRange) error {
	for i, r := range ranges {
		if math.IsNaN(r.Start) || math.IsNaN(r.End) || r.Start < 0 || r.Start >= r.End {
			return fmt.Errorf("range %d [%.3f, %.3f]: %w", i, r.Start, r.End, ErrInvalidRanges)
		}
		if i > 0 && r.Start < ranges[i-1].End {
			return fmt.Errorf("range %d starts at %.3f before previous end %.3f: %w", i, r.Start, ranges[i-1].End, ErrInvalidRanges)
		}
	}
	return nil
}
