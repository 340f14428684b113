package normalize

import (
	"context"
	"math"

	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// =============================================================================
// Stage 4: Tooltip Derivation
// =============================================================================

// deriveTooltips turns the "tooltips" host-config field into a TooltipConfig.
// The field accepts false (disable entirely), true or absent (defaults), or
// an object overriding position, padding and centerOnMark.
func (n *Normalizer) deriveTooltips(ctx context.Context) error {
	raw, present := n.host["tooltips"]
	if b, ok := raw.(bool); ok && !b {
		n.tooltip = TooltipConfig{}
		return nil
	}

	t := TooltipConfig{
		Enabled:      true,
		Position:     DefaultTooltipPosition,
		Padding:      DefaultTooltipPadding,
		CenterOnMark: DefaultCenterOnMark,
	}

	block, isBlock := raw.(map[string]any)
	if !isBlock {
		if _, isBool := raw.(bool); present && !isBool {
			n.warnf(ctx, "\"tooltips\" must be a boolean or an object, using defaults")
		}
		n.tooltip = t
		return nil
	}

	if raw, present := block["position"]; present {
		pos, ok := raw.(string)
		if !ok {
			return errors.New(errors.ErrCodeInvalidParameter, "\"tooltips.position\" must be a string")
		}
		if !ValidTooltipPositions[pos] {
			return errors.New(errors.ErrCodeUnrecognizedValue,
				"unrecognized tooltips.position %q (use \"top\", \"right\", \"bottom\" or \"left\")", pos)
		}
		t.Position = pos
	}

	if _, present := block["padding"]; present {
		pad, ok := spec.Number(block, "padding")
		if !ok {
			return errors.New(errors.ErrCodeInvalidParameter, "\"tooltips.padding\" must be a number")
		}
		t.Padding = pad
	}

	if raw, present := block["centerOnMark"]; present {
		switch v := raw.(type) {
		case bool:
			// true centers on marks of any size, false never centers.
			if v {
				t.CenterOnMark = math.MaxFloat64
			} else {
				t.CenterOnMark = -1
			}
		default:
			size, ok := spec.Number(block, "centerOnMark")
			if !ok {
				return errors.New(errors.ErrCodeInvalidParameter,
					"\"tooltips.centerOnMark\" must be a boolean or a number")
			}
			t.CenterOnMark = size
		}
	}

	n.tooltip = t
	return nil
}
