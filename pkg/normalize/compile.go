package normalize

import (
	"context"

	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
	"github.com/matzehuels/vegadeck/pkg/vega"
)

// =============================================================================
// Stage 8: Data Resolution
// =============================================================================

func (n *Normalizer) resolveData(ctx context.Context) error {
	if n.opts.SkipData {
		n.opts.Logger.Debug("skipping data resolution")
		return nil
	}
	return loaders.ResolveAll(ctx, n.opts.Loaders, n.doc)
}

// =============================================================================
// Stage 9: Vega-Lite Compilation
// =============================================================================

// liteLayoutKeys are the top-level keys the Vega-Lite compiler fills in with
// generated values. In map mode, generated values must not survive: the map
// drives sizing and projection.
var liteLayoutKeys = [...]string{"width", "height", "padding", "autosize"}

// compileLite lowers a Vega-Lite document to full Vega. Compiler warnings
// join the pipeline warning list. In map mode the stage strips the
// compiler-injected projection and any layout keys the source did not set.
func (n *Normalizer) compileLite(ctx context.Context) error {
	if n.dialect != vega.DialectVegaLite {
		return nil
	}
	if n.opts.Compiler == nil {
		return errors.New(errors.ErrCodeInvalidSpec,
			"cannot compile a vega-lite specification: no compiler is configured")
	}

	sourceHad := map[string]bool{}
	for _, key := range liteLayoutKeys {
		if _, present := n.doc[key]; present {
			sourceHad[key] = true
		}
	}
	_, sourceHasProjection := spec.Lookup(n.doc, "config", "projection")

	full, err := n.opts.Compiler.Compile(ctx, n.doc, func(msg string) {
		n.warnf(ctx, "%s", msg)
	})
	if err != nil {
		return err
	}
	if full == nil {
		return errors.New(errors.ErrCodeInternal, "the vega-lite compiler returned no document")
	}

	if n.mapConfig != nil {
		if !sourceHasProjection {
			if err := stripInjectedProjection(full); err != nil {
				return err
			}
		}
		for _, key := range liteLayoutKeys {
			if !sourceHad[key] {
				delete(full, key)
			}
		}
	}

	n.doc = full
	return nil
}

// stripInjectedProjection removes the single auto-generated projection from
// compiled output. The compiler contract is exactly one projection named
// "projection" when the source declared none; anything else means the
// compiler and this pipeline disagree about the output shape.
func stripInjectedProjection(full spec.Document) error {
	projections, ok := full["projections"].([]any)
	if ok && len(projections) == 1 {
		if proj, ok := projections[0].(map[string]any); ok {
			if name, _ := spec.String(proj, "name"); name == "projection" {
				delete(full, "projections")
				return nil
			}
		}
	}
	return errors.New(errors.ErrCodeInternal,
		"unexpected projection output from the vega-lite compiler")
}
