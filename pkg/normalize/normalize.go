// Package normalize provides the core specification pipeline for VegaDeck.
//
// This package implements the complete parse → configure → resolve → compile
// pipeline that can be used by CLI and API components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of ten stages, always executed in this order:
//
//  1. Parse: Decode the HJSON specification text into a document tree
//  2. Schema: Detect the Vega or Vega-Lite dialect and check versions
//  3. Host config: Extract the embedder block (config.deck / _hostConfig)
//  4. Tooltips: Derive the tooltip configuration
//  5. Colors: Apply default mark colors and the categorical scheme
//  6. Controls: Place the signal controls relative to the chart
//  7. Mode: Branch into map mode or apply the autosize default
//  8. Data: Resolve remote data URLs through the loader registry
//  9. Compile: Lower Vega-Lite sources to full Vega
//  10. Sizing: Compute container resize behavior and padding reserve
//
// A pipeline run never returns a Go error for problems with the
// specification itself: fatal findings are carried on [Result.Err] so
// callers can present them next to the warnings collected up to that
// point. Go errors are reserved for misuse of the package (invalid
// Options).
//
// # Usage
//
// Create a Normalizer and run it once:
//
//	opts := normalize.Options{
//	    Loaders:  registry,
//	    Compiler: vegalite.NewExecCompiler("vl2vg"),
//	}
//	n, err := normalize.New(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := n.Normalize(ctx, rawSpec)
//	if result.Err != nil {
//	    // report result.Err and result.Warnings
//	}
//
// A Normalizer is good for exactly one run. Build a fresh one per
// specification; the package-level [Normalize] helper does that.
package normalize

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
	"github.com/matzehuels/vegadeck/pkg/vega"
	"github.com/matzehuels/vegadeck/pkg/vegalite"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTooltipPosition is where tooltips attach to the hover point.
	DefaultTooltipPosition = "top"

	// DefaultTooltipPadding is the default tooltip offset in pixels.
	DefaultTooltipPadding = 16.0

	// DefaultCenterOnMark is the size threshold in pixels below which a
	// tooltip centers on the mark instead of following the pointer.
	DefaultCenterOnMark = 50.0
)

// Renderer constants for the rendering backend requested by the spec.
const (
	RendererCanvas = "canvas"
	RendererSVG    = "svg"
)

// Flex direction tokens published on [Layout]. The embedder applies them
// directly as CSS flex-direction values.
const (
	DirRow           = "row"
	DirRowReverse    = "row-reverse"
	DirColumn        = "column"
	DirColumnReverse = "column-reverse"
)

// ValidTooltipPositions is the set of accepted tooltip positions.
var ValidTooltipPositions = map[string]bool{
	"top":    true,
	"right":  true,
	"bottom": true,
	"left":   true,
}

// controlsLocationDirs maps the controlsLocation host-config value to the
// container flex direction that puts the controls on that side.
var controlsLocationDirs = map[string]string{
	"left":   DirRowReverse,
	"right":  DirRow,
	"top":    DirColumnReverse,
	"bottom": DirColumn,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the normalization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// DefaultColor overrides the single mark color applied when the spec
	// does not set one.
	DefaultColor string `json:"default_color,omitempty"`

	// DefaultScheme overrides the categorical color scheme applied when
	// the spec does not set one.
	DefaultScheme string `json:"default_scheme,omitempty"`

	// SkipData disables the remote data resolution stage. URLs stay in
	// the spec untouched.
	SkipData bool `json:"skip_data,omitempty"`

	// Runtime options (not serialized)
	Loaders   *loaders.Registry `json:"-"`
	Compiler  vegalite.Compiler `json:"-"`
	Logger    *log.Logger       `json:"-"`
	OnWarning func(string)      `json:"-"` // called as each warning is collected

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DefaultColor == "" {
		o.DefaultColor = vega.DefaultColor
	}
	if o.DefaultScheme == "" {
		o.DefaultScheme = vega.DefaultScheme
	}
	if o.Loaders == nil {
		// An empty registry rejects every remote URL, which is the right
		// behavior for embedders that never wired data loading.
		o.Loaders = loaders.NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result Types
// =============================================================================

// TooltipConfig describes how the embedder should render tooltips. The
// zero value means tooltips are disabled.
type TooltipConfig struct {
	// Enabled reports whether tooltips should be shown at all.
	Enabled bool `json:"enabled"`

	// Position is the side of the hover point the tooltip attaches to:
	// top, right, bottom or left.
	Position string `json:"position,omitempty"`

	// Padding is the offset between the hover point and the tooltip.
	Padding float64 `json:"padding,omitempty"`

	// CenterOnMark is the mark size threshold below which the tooltip
	// centers on the mark. math.MaxFloat64 means always center, a
	// negative value means never.
	CenterOnMark float64 `json:"centerOnMark,omitempty"`
}

// MapConfig carries the validated map-mode settings. It is only present
// on [Result] when the host config selects map mode.
type MapConfig struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Zoom levels are nil when unset so the embedder can apply its own
	// defaults. Values are validated to the 0..30 range.
	Zoom    *float64 `json:"zoom,omitempty"`
	MinZoom *float64 `json:"minZoom,omitempty"`
	MaxZoom *float64 `json:"maxZoom,omitempty"`

	// MapStyle names the base tile style. Empty means the base layer is
	// disabled (mapStyle: false).
	MapStyle string `json:"mapStyle"`

	// MaxBounds restricts panning to [west, south, east, north]. Nil
	// when unset.
	MaxBounds []float64 `json:"maxBounds,omitempty"`

	ZoomControl     bool `json:"zoomControl"`
	ScrollWheelZoom bool `json:"scrollWheelZoom"`

	// DelayRepaint defers chart repaints until map movement settles.
	DelayRepaint bool `json:"delayRepaint"`
}

// Layout describes how the embedder should arrange the chart, its signal
// controls, and the sizing behavior of the render surface.
type Layout struct {
	// ContainerDir is the flex direction of the chart/controls container.
	ContainerDir string `json:"containerDir"`

	// ControlsDir is the flex direction of the controls block itself.
	ControlsDir string `json:"controlsDir"`

	// UseResize tells the embedder to drive the chart size from the
	// container size.
	UseResize bool `json:"useResize"`

	// PaddingWidth and PaddingHeight are the horizontal and vertical
	// space to reserve for the spec's padding when UseResize is set.
	PaddingWidth  float64 `json:"paddingWidth"`
	PaddingHeight float64 `json:"paddingHeight"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Spec is the fully resolved specification. It is nil when the run
	// failed; a fatal finding never produces partial output.
	Spec spec.Document `json:"spec,omitempty"`

	// Dialect is the dialect of the source specification. Vega-Lite
	// sources keep DialectVegaLite even though Spec holds the compiled
	// full-Vega document.
	Dialect vega.Dialect `json:"dialect,omitempty"`

	// Renderer is the rendering backend to use: canvas or svg.
	Renderer string `json:"renderer,omitempty"`

	// Tooltip is the derived tooltip configuration.
	Tooltip TooltipConfig `json:"tooltip"`

	// Map holds the validated map settings, nil outside map mode.
	Map *MapConfig `json:"map,omitempty"`

	// Layout is the container arrangement and sizing behavior.
	Layout Layout `json:"layout"`

	// Warnings are the non-fatal findings collected during the run, in
	// pipeline order. Empty when the spec sets hideWarnings.
	Warnings []string `json:"warnings,omitempty"`

	// Err is the fatal finding that stopped the run, nil on success.
	// It always carries an errors.Code.
	Err error `json:"-"`

	// Stats contains timing information.
	Stats Stats `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ParseTime   time.Duration
	DataTime    time.Duration
	CompileTime time.Duration
}
