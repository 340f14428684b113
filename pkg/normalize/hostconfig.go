package normalize

import (
	"context"

	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// =============================================================================
// Stage 3: Host Config Extraction
// =============================================================================

// extractHostConfig pulls the embedder settings out of the document. Two
// locations are recognized: the legacy root-level "_hostConfig" key and the
// current "config.deck" block. When both are present config.deck wins. Both
// keys are removed from the tree so they never reach the Vega runtime.
func (n *Normalizer) extractHostConfig(ctx context.Context) error {
	n.host = map[string]any{}

	if raw, present := n.doc["_hostConfig"]; present {
		delete(n.doc, "_hostConfig")
		n.warnf(ctx, "use of \"_hostConfig\" is deprecated, move these settings to \"config.deck\"")
		block, ok := raw.(map[string]any)
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "\"_hostConfig\" must be an object")
		}
		n.host = block
	}

	if raw, present := spec.Lookup(n.doc, "config", "deck"); present {
		block, ok := raw.(map[string]any)
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "\"config.deck\" must be an object")
		}
		n.host = block
		if config, ok := spec.Mapping(n.doc, "config"); ok {
			delete(config, "deck")
		}
	}

	n.hideWarnings = n.hostBool(ctx, "hideWarnings", false)

	renderer, present := n.host["renderer"]
	if !present {
		n.renderer = RendererCanvas
		return nil
	}
	name, _ := renderer.(string)
	if name != RendererCanvas && name != RendererSVG {
		return errors.New(errors.ErrCodeUnrecognizedValue,
			"unsupported renderer %v (use %q or %q)", renderer, RendererCanvas, RendererSVG)
	}
	n.renderer = name
	return nil
}

// hostBool reads a boolean host-config field. A present value of the wrong
// type warns and keeps the default rather than failing the run.
func (n *Normalizer) hostBool(ctx context.Context, key string, def bool) bool {
	if _, present := n.host[key]; !present {
		return def
	}
	b, ok := spec.Bool(n.host, key)
	if !ok {
		n.warnf(ctx, "%q must be a boolean, using %v", key, def)
		return def
	}
	return b
}
