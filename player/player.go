// Package player owns the playable media resource and translates its native signals into state machine events.
// The architecture supports multiple backends, with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package player

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/marquee-player/marquee/machine"
	"github.com/samber/mo"
)

var (
	// ErrUnsupported is returned by resources for capabilities the backend does not have.
	ErrUnsupported = errors.New("operation not supported by this player backend")

	// ErrDetached is returned when a resource is commanded before a source was loaded or after it was closed.
	ErrDetached = errors.New("no media attached")

	// ErrSeekInterrupted fails pending silent seeks when playback is moved by a regular seek.
	ErrSeekInterrupted = errors.New("interrupted by a seek")
)

// Resource encapsulates a native playable media element.
type Resource interface {
	// SetSource assigns the media URL without starting to load it.
	SetSource(url string) error

	// Load starts loading the assigned source.
	Load() error

	Play() error
	Pause() error

	// SetCurrentTime moves the playback position to an absolute timestamp in seconds.
	SetCurrentTime(seconds float64) error

	// CurrentTime retrieves the current absolute playback position in seconds.
	CurrentTime() (float64, error)

	// SetVolume sets the volume in [0,1].
	SetVolume(volume float64) error

	// SetPlaybackRate sets the playback speed, 1 being normal.
	SetPlaybackRate(rate float64) error

	// RequestPictureInPicture asks the host to enter or leave picture-in-picture.
	// The outcome is also reported through EnterPictureInPicture/LeavePictureInPicture signals.
	RequestPictureInPicture(ctx context.Context, enter bool) error

	// CaptureFrame renders the frame currently shown into an image.
	CaptureFrame(ctx context.Context) (image.Image, error)

	// Listen registers the callback receiving the resource's native signals. Only the last callback is kept.
	Listen(fn func(Signal))

	// Close terminates the playback engine and releases all associated system resources.
	Close() error
}

// SignalKind enumerates native resource notifications.
type SignalKind int

const (
	MetadataReady SignalKind = iota + 1
	TimeProgress
	BufferedExtent
	Stall
	Resume
	Ready
	Seeked
	FatalError
	QualityLevel
	EnterPictureInPicture
	LeavePictureInPicture
)

// String returns the signal name.
func (k SignalKind) String() string {
	switch k {
	case MetadataReady:
		return "metadata-ready"
	case TimeProgress:
		return "time-progress"
	case BufferedExtent:
		return "buffered-extent"
	case Stall:
		return "stall"
	case Resume:
		return "resume"
	case Ready:
		return "ready"
	case Seeked:
		return "seeked"
	case FatalError:
		return "fatal-error"
	case QualityLevel:
		return "quality-level"
	case EnterPictureInPicture:
		return "enter-pip"
	case LeavePictureInPicture:
		return "leave-pip"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// Signal is one native notification. Value carries the duration or time, Ranges the buffered extent,
// Message the error text or quality level.
type Signal struct {
	Kind    SignalKind
	Value   float64
	Ranges  []machine.BufferRange
	Message string
}

// AdaptiveEngine is the narrow surface of an adaptive-streaming engine (HLS/DASH level switching).
type AdaptiveEngine interface {
	// AttachMedia binds the engine to the resource it feeds.
	AttachMedia(resource Resource) error

	// LoadSource starts fetching the manifest.
	LoadSource(url string) error

	// OnManifestParsed registers the callback fired once the manifest is ready to play.
	OnManifestParsed(fn func())

	// OnLevelSwitched registers the callback fired whenever the engine switches quality level.
	OnLevelSwitched(fn func(level string))

	// Destroy detaches the engine and releases its resources.
	Destroy()
}

// EngineFactory creates an adaptive engine when one is available in the current environment.
type EngineFactory func() mo.Option[AdaptiveEngine]

// NoEngine is the factory used when no adaptive-streaming engine is available.
func NoEngine() mo.Option[AdaptiveEngine] {
	return mo.None[AdaptiveEngine]()
}
