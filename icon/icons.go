package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Progress
	Play
	Pause
	Buffering
	Seek
	Error
	Theater
	PictureInPicture
	Volume
	Chapter
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "Error:",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "Success:",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・ヾ",
		squares: "🟦",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(>‿<)",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(-_-)",
		squares: "⏸",
	},
	Buffering: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "~",
		kaomoji: "(・・?)",
		squares: "🟨",
	},
	Seek: {
		emoji:   "⏩",
		nerd:    "",
		plain:   ">>",
		kaomoji: "(ﾉ>ω<)ﾉ",
		squares: "⏩",
	},
	Error: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Theater: {
		emoji:   "🎭",
		nerd:    "",
		plain:   "[T]",
		kaomoji: "(⌐■_■)",
		squares: "⬛",
	},
	PictureInPicture: {
		emoji:   "🖼️",
		nerd:    "",
		plain:   "[P]",
		kaomoji: "(□_□)",
		squares: "🔲",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "vol",
		kaomoji: "(°o°)",
		squares: "🟪",
	},
	Chapter: {
		emoji:   "📖",
		nerd:    "",
		plain:   "#",
		kaomoji: "(｡･ω･｡)",
		squares: "🟫",
	},
}
