package vega

import (
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// Default styling applied to specifications that do not pick their own
// colors. The hex value matches the Deck host theme.
const (
	DefaultColor  = "#54B399"
	DefaultScheme = "tableau10"
)

// Marks colored through their fill channel versus their stroke channel.
// Line-like marks look wrong with a fill default, so each family gets
// the channel it actually draws with.
var (
	fillMarks   = []string{"arc", "area", "rect", "trail"}
	strokeMarks = []string{"line", "path", "rule", "shape", "symbol"}
)

// ApplyDefaultColors injects the default mark color and categorical
// scheme into doc without overriding anything the author set. Existing
// config entries always win, including explicit null values.
func ApplyDefaultColors(doc spec.Document, dialect Dialect, color, scheme string) {
	if color == "" {
		color = DefaultColor
	}
	if scheme == "" {
		scheme = DefaultScheme
	}

	if dialect == DialectVegaLite {
		spec.SetDefault(doc, color, "config", "mark", "color")
	} else {
		for _, mark := range fillMarks {
			spec.SetDefault(doc, color, "config", mark, "fill")
		}
		for _, mark := range strokeMarks {
			spec.SetDefault(doc, color, "config", mark, "stroke")
		}
	}

	spec.SetDefault(doc, map[string]any{"scheme": scheme}, "config", "range", "category")
}
