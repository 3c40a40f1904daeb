package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/marquee-player/marquee/color"
	"github.com/marquee-player/marquee/constant"
	"github.com/marquee-player/marquee/key"
	"github.com/marquee-player/marquee/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is one setting: its key, default and help text.
type Field struct {
	Key         string
	Value       any
	Description string

	// Check rejects values outside the field's domain. Nil accepts anything of the right type.
	Check func(any) error `json:"-"`
}

func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env is the variable that overrides the field, e.g. MARQUEE_SCRUB_WIDTH.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Marquee + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

var Default = make(map[string]Field)

// EnvExposed lists the keys bound to MARQUEE_ environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string, checks ...func(any) error) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		if len(checks) > 0 {
			f.Check = checks[0]
		}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.Player, "mpv", "Media resource backend to use.\nAvailable options are: mpv")
	register(key.PlayerAutoplay, true, "Start playback as soon as the resource reports it is ready")
	register(key.PlayerVolume, 100, "Initial volume, from 0 to 100", between(0, 100))
	register(key.PlayerRate, 1.0, "Initial playback rate, must be positive", positive)
	register(key.PlayerAdaptive, false, "Treat sources as adaptive streams (HLS/DASH) by default")
	register(key.PlayerAutoHide, 3000, "Hide the controls after this many milliseconds without activity", positive)
	register(key.PlayerPauseHide, true, "Pause playback when the page or terminal becomes hidden")
	register(key.GestureDoubleTapWindow, 300, "Maximum gap between two taps of a double-tap, in milliseconds", positive)
	register(key.GestureDoubleTapRadius, 50, "Maximum distance between two taps of a double-tap, in pixels")
	register(key.GestureSwipeThreshold, 30, "Minimum vertical travel for a volume swipe, in pixels")
	register(key.GestureSwipeWindow, 300, "Maximum swipe duration measured from touch start, in milliseconds")
	register(key.GestureSwipeScale, 200, "Pixels of vertical travel that equal a full volume change", positive)
	register(key.GesturePinchIn, 1.2, "Pinch ratio above which the video zooms to fill", above(1))
	register(key.GesturePinchOut, 0.8, "Pinch ratio below which the video zooms to fit", between(0, 1))
	register(key.GestureSeekStep, 10, "Seconds skipped by a double-tap", positive)
	register(key.GestureSeekBack, false, "Seek backwards on a left-half double-tap")
	register(key.ScrubTimeout, 2000, "Give up on a thumbnail probe after this many milliseconds", positive)
	register(key.ScrubWidth, 160, "Width of generated thumbnails in pixels", positive)
	register(key.ScrubQuality, 75, "JPEG quality of generated thumbnails, from 1 to 100", between(1, 100))
	register(key.FlipDuration, 300, "Duration of the theater-mode transition in milliseconds", between(0, 10000))
	register(key.FlipEasing, "ease-in-out", "Easing curve of the theater-mode transition.\nAvailable options are: linear, ease, ease-in, ease-out, ease-in-out", oneOf("linear", "ease", "ease-in", "ease-out", "ease-in-out"))
	register(key.Aniskip, false, "Fetch opening/ending chapters from AniSkip when a MAL id is given")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace", oneOf("panic", "fatal", "error", "warn", "info", "debug", "trace"))
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when printing help or version")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)", oneOf("emoji", "kaomoji", "plain", "squares", "nerd"))
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
