// Package icon renders status glyphs in the variant chosen by icons.variant.
package icon

import (
	"github.com/marquee-player/marquee/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

// variants maps each icons.variant value to the field it selects. The first entry is the fallback.
var variants = []lo.Tuple2[string, func(*iconDef) string]{
	lo.T2("plain", func(d *iconDef) string { return d.plain }),
	lo.T2("emoji", func(d *iconDef) string { return d.emoji }),
	lo.T2("nerd", func(d *iconDef) string { return d.nerd }),
	lo.T2("kaomoji", func(d *iconDef) string { return d.kaomoji }),
	lo.T2("squares", func(d *iconDef) string { return d.squares }),
}

func AvailableVariants() []string {
	return lo.Map(variants, func(v lo.Tuple2[string, func(*iconDef) string], _ int) string {
		return v.A
	})
}

// Get renders i in the configured variant. Unknown variants render as plain text.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}

	selected := viper.GetString(key.IconsVariant)
	v, found := lo.Find(variants, func(v lo.Tuple2[string, func(*iconDef) string]) bool {
		return v.A == selected
	})
	if !found {
		v = variants[0]
	}

	return v.B(def)
}
