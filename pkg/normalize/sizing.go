package normalize

import (
	"context"
	"math"

	"github.com/matzehuels/vegadeck/pkg/spec"
	"github.com/matzehuels/vegadeck/pkg/vega"
)

// =============================================================================
// Stage 10: Sizing Calculation
// =============================================================================

// calcSizing decides whether the embedder should drive the chart size from
// the container (useResize) and how much space to reserve for padding. In
// map mode the map host owns sizing, so the stage is a no-op.
func (n *Normalizer) calcSizing(ctx context.Context) error {
	if n.mapConfig != nil {
		return nil
	}

	mode, contains := autosizeMode(n.doc)
	hasWidth := truthy(n.doc["width"])
	hasHeight := truthy(n.doc["height"])
	useResize := mode == "fit" || (mode == "none" && !hasWidth && !hasHeight)
	n.layout.UseResize = useResize
	if !useResize {
		return nil
	}

	// The container must leave room for the spec's padding unless the
	// autosize box already accounts for it.
	if padding := n.doc["padding"]; truthy(padding) && contains != "padding" {
		switch p := padding.(type) {
		case map[string]any:
			left, _ := spec.Number(p, "left")
			right, _ := spec.Number(p, "right")
			top, _ := spec.Number(p, "top")
			bottom, _ := spec.Number(p, "bottom")
			n.layout.PaddingWidth = left + right
			n.layout.PaddingHeight = top + bottom
		default:
			if v, ok := spec.AsNumber(padding); ok {
				n.layout.PaddingWidth = 2 * v
				n.layout.PaddingHeight = 2 * v
			}
		}
	}

	if hasWidth || hasHeight {
		// Resize tracking supersedes literal dimensions. Compiled
		// Vega-Lite output drops them outright; hand-written Vega specs
		// keep them so the author sees what the renderer overrides.
		if n.dialect == vega.DialectVegaLite {
			delete(n.doc, "width")
			delete(n.doc, "height")
		} else {
			n.warnf(ctx, "\"width\" and \"height\" are ignored because autosize tracks the container size")
		}
	}
	return nil
}

// autosizeMode reads the effective autosize type and contains values.
// Autosize is either a bare mode string or an object.
func autosizeMode(doc spec.Document) (mode, contains string) {
	switch v := doc["autosize"].(type) {
	case string:
		mode = v
	case map[string]any:
		mode, _ = spec.String(v, "type")
		contains, _ = spec.String(v, "contains")
	}
	return mode, contains
}

// truthy mirrors the loose presence semantics of chart specs: zero, empty
// string, null and NaN all mean "not set".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	case float32:
		return t != 0
	default:
		return true
	}
}
