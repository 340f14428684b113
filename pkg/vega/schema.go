// Package vega provides the dialect plumbing for chart specifications:
// $schema URL parsing, version compatibility checks against the bundled
// rendering libraries, and the default styling injected into bare specs.
package vega

import (
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/vegadeck/pkg/errors"
)

// Dialect identifies the charting grammar a specification is written in.
type Dialect string

const (
	// DialectVega is the full declarative grammar (marks, scales, signals).
	DialectVega Dialect = "vega"

	// DialectVegaLite is the higher-level grammar compiled into full Vega
	// before rendering.
	DialectVegaLite Dialect = "vega-lite"
)

// DefaultSchemaURL is injected when a specification omits $schema.
const DefaultSchemaURL = "https://vega.github.io/schema/vega/v5.json"

// Versions of the rendering libraries the Deck host bundles. Declared
// schema versions newer than these trigger a compatibility warning.
const (
	BundledVegaVersion     = "5.25.0"
	BundledVegaLiteVersion = "5.9.3"
)

// Schema is the parsed form of a $schema URL.
type Schema struct {
	Library string // raw library segment, e.g. "vega" or "vega-lite"
	Version string // declared version with any leading "v" stripped
}

// ParseSchemaURL extracts the library and declared version from a schema
// URL such as https://vega.github.io/schema/vega-lite/v5.json. URLs that
// do not follow the .../schema/<library>/<version>.json shape fail with
// an INVALID_SPEC error.
func ParseSchemaURL(raw string) (Schema, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Schema{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid $schema url %q", raw)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segs {
		if seg != "schema" {
			continue
		}
		rest := segs[i+1:]
		if len(rest) < 2 {
			break
		}
		version := strings.TrimSuffix(rest[1], ".json")
		version = strings.TrimPrefix(version, "v")
		return Schema{Library: rest[0], Version: version}, nil
	}
	return Schema{}, errors.New(errors.ErrCodeInvalidSpec,
		"unable to parse $schema url %q (expected .../schema/<library>/<version>.json)", raw)
}

// Dialect maps the library segment to a dialect. Anything that is not
// vega-lite is treated as full Vega, matching the loose detection the
// Deck host has always used.
func (s Schema) Dialect() Dialect {
	if s.Library == string(DialectVegaLite) {
		return DialectVegaLite
	}
	return DialectVega
}

// BundledVersion returns the version of the bundled rendering library
// for the dialect.
func BundledVersion(d Dialect) string {
	if d == DialectVegaLite {
		return BundledVegaLiteVersion
	}
	return BundledVegaVersion
}

// NewerThanBundled reports whether the declared schema version is newer
// than the bundled library for its dialect, using semantic version
// ordering ("10" is newer than "9", unlike string ordering). Declared
// versions that are not valid semver are treated as not newer.
func (s Schema) NewerThanBundled() bool {
	declared, err := semver.NewVersion(s.Version)
	if err != nil {
		return false
	}
	bundled, err := semver.NewVersion(BundledVersion(s.Dialect()))
	if err != nil {
		return false
	}
	return declared.GreaterThan(bundled)
}
