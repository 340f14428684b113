package normalize

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/observability"
	"github.com/matzehuels/vegadeck/pkg/spec"
	"github.com/matzehuels/vegadeck/pkg/vega"
)

// =============================================================================
// Normalizer
// =============================================================================

// Normalizer executes the normalization pipeline for a single specification.
// It accumulates state between stages (the document tree, the extracted host
// config, the warning list), so an instance is good for exactly one run.
type Normalizer struct {
	opts Options

	doc     spec.Document
	dialect vega.Dialect
	host    map[string]any

	renderer     string
	hideWarnings bool
	tooltip      TooltipConfig
	mapConfig    *MapConfig
	layout       Layout

	warnings []string
	stats    Stats
	ran      bool
}

// New creates a Normalizer with the given options. It returns an error only
// for unusable options; problems with the specification itself surface on
// [Result.Err] later.
func New(opts Options) (*Normalizer, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Normalizer{opts: opts, dialect: vega.DialectVega}, nil
}

// Normalize runs the full pipeline once over raw specification text and
// creates a Normalizer internally. Most callers want this.
func Normalize(ctx context.Context, raw []byte, opts Options) *Result {
	n, err := New(opts)
	if err != nil {
		return &Result{Err: errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid normalizer options")}
	}
	return n.Normalize(ctx, raw)
}

// Normalize runs the pipeline over raw specification text. It never returns
// a Go error: fatal findings are carried on the result together with the
// warnings collected before the failure.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte) *Result {
	if used := n.consume(); used {
		return n.usedResult()
	}

	start := time.Now()
	observability.Normalize().OnStageStart(ctx, "parse")
	doc, err := spec.Parse(raw)
	n.stats.ParseTime = time.Since(start)
	observability.Normalize().OnStageComplete(ctx, "parse", n.stats.ParseTime, err)
	if err != nil {
		n.opts.Logger.Error("spec parse failed", "error", err)
		return n.finish(err)
	}
	n.opts.Logger.Debug("parsed spec", "keys", len(doc), "duration", n.stats.ParseTime)

	n.doc = doc
	return n.finish(n.run(ctx))
}

// NormalizeDoc runs the pipeline over an already decoded document. The
// document is modified in place.
func (n *Normalizer) NormalizeDoc(ctx context.Context, doc spec.Document) *Result {
	if used := n.consume(); used {
		return n.usedResult()
	}
	if doc == nil {
		return n.finish(errors.New(errors.ErrCodeInvalidSpec, "specification must be an object"))
	}
	n.doc = doc
	return n.finish(n.run(ctx))
}

// consume flips the single-shot guard and reports whether the normalizer
// had already been used.
func (n *Normalizer) consume() bool {
	if n.ran {
		return true
	}
	n.ran = true
	return false
}

func (n *Normalizer) usedResult() *Result {
	return &Result{Err: errors.New(errors.ErrCodeInternal,
		"normalizer already consumed, create a new one per specification")}
}

// =============================================================================
// Pipeline
// =============================================================================

// run executes stages 2..10 over n.doc. The first fatal finding aborts the
// run; warnings keep accumulating until then.
func (n *Normalizer) run(ctx context.Context) error {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"detect_schema", n.detectSchema},
		{"extract_host_config", n.extractHostConfig},
		{"derive_tooltips", n.deriveTooltips},
		{"default_colors", n.applyDefaultColors},
		{"place_controls", n.placeControls},
		{"configure_mode", n.configureMode},
		{"resolve_data", n.resolveData},
		{"compile_lite", n.compileLite},
		{"calc_sizing", n.calcSizing},
	}
	for _, stage := range stages {
		start := time.Now()
		observability.Normalize().OnStageStart(ctx, stage.name)
		err := stage.fn(ctx)
		elapsed := time.Since(start)
		observability.Normalize().OnStageComplete(ctx, stage.name, elapsed, err)
		switch stage.name {
		case "resolve_data":
			n.stats.DataTime = elapsed
		case "compile_lite":
			n.stats.CompileTime = elapsed
		}
		if err != nil {
			n.opts.Logger.Error("stage failed", "stage", stage.name, "error", err)
			return err
		}
		n.opts.Logger.Debug("stage complete", "stage", stage.name, "duration", elapsed)
	}
	return nil
}

// finish assembles the Result. On a fatal finding the resolved spec and the
// derived configs are withheld; warnings are published either way unless the
// spec asked for them to be hidden.
func (n *Normalizer) finish(err error) *Result {
	res := &Result{Err: err, Stats: n.stats}
	if !n.hideWarnings && len(n.warnings) > 0 {
		res.Warnings = append([]string(nil), n.warnings...)
	}
	if err != nil {
		return res
	}
	res.Spec = n.doc
	res.Dialect = n.dialect
	res.Renderer = n.renderer
	res.Tooltip = n.tooltip
	res.Map = n.mapConfig
	res.Layout = n.layout
	return res
}

// warnf records a non-fatal finding. Warnings accumulate in pipeline order
// and are never dropped internally; hideWarnings only suppresses the
// published list on the result.
func (n *Normalizer) warnf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	n.warnings = append(n.warnings, msg)
	observability.Normalize().OnWarning(ctx, msg)
	if n.opts.OnWarning != nil {
		n.opts.OnWarning(msg)
	}
	n.opts.Logger.Debug("spec warning", "message", msg)
}

// =============================================================================
// Stage 2: Schema Detection
// =============================================================================

func (n *Normalizer) detectSchema(ctx context.Context) error {
	raw, present := n.doc["$schema"]
	if !present {
		n.doc["$schema"] = vega.DefaultSchemaURL
		raw = vega.DefaultSchemaURL
		n.warnf(ctx, "the specification has no \"$schema\" field, assuming %q", vega.DefaultSchemaURL)
	}
	url, ok := raw.(string)
	if !ok {
		return errors.New(errors.ErrCodeInvalidSpec, "\"$schema\" must be a schema URL string")
	}
	schema, err := vega.ParseSchemaURL(url)
	if err != nil {
		return err
	}
	n.dialect = schema.Dialect()
	if schema.NewerThanBundled() {
		n.warnf(ctx, "the specification targets %s %s, newer than the bundled %s; rendering may differ",
			schema.Library, schema.Version, vega.BundledVersion(n.dialect))
	}
	n.opts.Logger.Debug("detected schema", "library", schema.Library, "version", schema.Version)
	return nil
}

// =============================================================================
// Stage 5: Default Colors
// =============================================================================

func (n *Normalizer) applyDefaultColors(context.Context) error {
	vega.ApplyDefaultColors(n.doc, n.dialect, n.opts.DefaultColor, n.opts.DefaultScheme)
	return nil
}
