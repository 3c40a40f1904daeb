// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 28

// Media Playback - these keys configure the resource adapter and the initial session context.
const (
	Player          = "player.default"
	PlayerAutoplay  = "player.autoplay"
	PlayerVolume    = "player.volume"
	PlayerRate      = "player.rate"
	PlayerAdaptive  = "player.adaptive"
	PlayerAutoHide  = "player.auto_hide_ms"
	PlayerPauseHide = "player.pause_on_hidden"
)

// Gesture Recognition - these keys tune the touch classification thresholds.
const (
	GestureDoubleTapWindow = "gesture.double_tap_ms"
	GestureDoubleTapRadius = "gesture.double_tap_radius"
	GestureSwipeThreshold  = "gesture.swipe_threshold"
	GestureSwipeWindow     = "gesture.swipe_ms"
	GestureSwipeScale      = "gesture.swipe_scale"
	GesturePinchIn         = "gesture.pinch_in_ratio"
	GesturePinchOut        = "gesture.pinch_out_ratio"
	GestureSeekStep        = "gesture.seek_step"
	GestureSeekBack        = "gesture.seek_back"
)

// Thumbnail Scrubbing - these keys configure the preview capture probe.
const (
	ScrubTimeout = "scrub.timeout_ms"
	ScrubWidth   = "scrub.width"
	ScrubQuality = "scrub.quality"
)

// Geometry Transitions - these keys configure the theater-mode animator.
const (
	FlipDuration = "flip.duration_ms"
	FlipEasing   = "flip.easing"
)

// Chapter Metadata - these keys govern chapter retrieval.
const (
	Aniskip = "chapters.aniskip"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)
