package constant

// MIME types produced by the engine.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Chapter document formats accepted by the progress package.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)
