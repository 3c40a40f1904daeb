package style

import "github.com/charmbracelet/lipgloss"

// Player chrome, on a dark base.
var (
	Text    = lipgloss.Color("#cdd6f4")
	Subtext = lipgloss.Color("#a6adc8")

	AccentColor  = lipgloss.Color("#cba6f7")
	WarningColor = lipgloss.Color("#f9e2af")
	ErrorColor   = lipgloss.Color("#f38ba8")
	FaintColor   = lipgloss.Color("#6c7086")
	BorderColor  = lipgloss.Color("#313244")
)

// Progress bar cells.
var (
	PlayedColor   = AccentColor
	BufferedColor = Subtext
	BoundaryColor = WarningColor
	TrackColor    = FaintColor
)
