package normalize

import (
	"context"

	"github.com/matzehuels/vegadeck/pkg/errors"
)

// =============================================================================
// Stage 6: Control Placement
// =============================================================================

// placeControls derives the flex directions that position the signal
// controls relative to the chart. controlsLocation picks the side the
// controls sit on, controlsDirection stacks the controls themselves.
func (n *Normalizer) placeControls(context.Context) error {
	n.layout.ContainerDir = DirColumn
	if raw, present := n.host["controlsLocation"]; present {
		loc, _ := raw.(string)
		dir, ok := controlsLocationDirs[loc]
		if !ok {
			return errors.New(errors.ErrCodeUnrecognizedValue,
				"unrecognized controlsLocation %v (use \"top\", \"bottom\", \"left\" or \"right\")", raw)
		}
		n.layout.ContainerDir = dir
	}

	n.layout.ControlsDir = DirColumn
	if raw, present := n.host["controlsDirection"]; present {
		dir, _ := raw.(string)
		switch dir {
		case "horizontal":
			n.layout.ControlsDir = DirRow
		case "vertical":
			n.layout.ControlsDir = DirColumn
		default:
			return errors.New(errors.ErrCodeUnrecognizedValue,
				"unrecognized controlsDirection %v (use \"horizontal\" or \"vertical\")", raw)
		}
	}
	return nil
}
