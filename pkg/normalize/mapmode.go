package normalize

import (
	"context"
	"math"

	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// =============================================================================
// Stage 7: Mode Configuration
// =============================================================================

// maxZoomLevel is the largest tile zoom level the embedder supports.
const maxZoomLevel = 30

// configureMode branches the pipeline on the host-config "type" field. Map
// mode validates the map settings; chart mode injects the autosize default
// that makes charts fill their container.
func (n *Normalizer) configureMode(ctx context.Context) error {
	mode := "vega"
	if raw, present := n.host["type"]; present {
		name, _ := raw.(string)
		if name != "vega" && name != "map" {
			return errors.New(errors.ErrCodeUnrecognizedValue,
				"unrecognized type %v (use \"vega\" or \"map\")", raw)
		}
		mode = name
	}

	if mode == "map" {
		n.mapConfig = n.parseMapConfig(ctx)
		return nil
	}

	// A bare autosize string is shorthand for {type: s}; the sizing stage
	// and the embedder both read the object form.
	if s, ok := n.doc["autosize"].(string); ok {
		n.doc["autosize"] = map[string]any{"type": s}
	}
	if _, present := n.doc["autosize"]; !present {
		n.doc["autosize"] = map[string]any{"type": "fit", "contains": "padding"}
	}
	return nil
}

// parseMapConfig validates the map-mode host settings. Map fields are
// lenient: an invalid value is dropped with a warning and the default kept,
// so a chart never fails to render over a bad zoom level.
func (n *Normalizer) parseMapConfig(ctx context.Context) *MapConfig {
	cfg := &MapConfig{
		MapStyle:        "default",
		ZoomControl:     true,
		ScrollWheelZoom: false,
		DelayRepaint:    true,
	}

	if v := n.mapNumber(ctx, "latitude", false); v != nil {
		cfg.Latitude = *v
	}
	if v := n.mapNumber(ctx, "longitude", false); v != nil {
		cfg.Longitude = *v
	}
	cfg.Zoom = n.mapNumber(ctx, "zoom", true)
	cfg.MinZoom = n.mapNumber(ctx, "minZoom", true)
	cfg.MaxZoom = n.mapNumber(ctx, "maxZoom", true)

	if raw, present := n.host["mapStyle"]; present {
		switch v := raw.(type) {
		case string:
			if v == "default" {
				cfg.MapStyle = v
			} else {
				n.warnf(ctx, "\"mapStyle\" must be \"default\" or false, using \"default\"")
			}
		case bool:
			if v {
				n.warnf(ctx, "\"mapStyle\" must be \"default\" or false, using \"default\"")
			} else {
				cfg.MapStyle = ""
			}
		default:
			n.warnf(ctx, "\"mapStyle\" must be \"default\" or false, using \"default\"")
		}
	}

	cfg.ZoomControl = n.hostBool(ctx, "zoomControl", true)
	cfg.ScrollWheelZoom = n.hostBool(ctx, "scrollWheelZoom", false)
	cfg.DelayRepaint = n.hostBool(ctx, "delayRepaint", true)

	if raw, present := n.host["maxBounds"]; present {
		bounds, ok := boundsFrom(raw)
		if !ok {
			n.warnf(ctx, "\"maxBounds\" must be an array of four numbers, ignoring it")
		} else {
			cfg.MaxBounds = bounds
		}
	}

	return cfg
}

// mapNumber reads a numeric map field, nil when unset or invalid. Zoom
// levels are additionally constrained to 0..30.
func (n *Normalizer) mapNumber(ctx context.Context, key string, isZoom bool) *float64 {
	if _, present := n.host[key]; !present {
		return nil
	}
	v, ok := spec.Number(n.host, key)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		n.warnf(ctx, "%q is not a valid number, ignoring it", key)
		return nil
	}
	if isZoom && (v < 0 || v > maxZoomLevel) {
		n.warnf(ctx, "%q must be between 0 and %d, ignoring it", key, maxZoomLevel)
		return nil
	}
	return &v
}

// boundsFrom converts a decoded maxBounds value into [west, south, east,
// north]. Anything but four finite numbers is rejected.
func boundsFrom(raw any) ([]float64, bool) {
	arr, ok := raw.([]any)
	if !ok || len(arr) != 4 {
		return nil, false
	}
	bounds := make([]float64, 4)
	for i, item := range arr {
		v, ok := spec.AsNumber(item)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		bounds[i] = v
	}
	return bounds, true
}
