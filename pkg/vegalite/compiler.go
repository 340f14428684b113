// Package vegalite bridges to a vega-lite compiler.
//
// Lite-dialect specifications must be compiled into the full dialect
// before sizing and rendering. The compiler itself is a JavaScript
// library, so production deployments reach it through an external
// command ([ExecCompiler]); tests and embedders can plug in anything
// that satisfies [Compiler].
package vegalite

import (
	"context"

	"github.com/matzehuels/vegadeck/pkg/spec"
)

// Compiler turns a lite-dialect document into a full-dialect one.
// Non-fatal compiler findings go to warn, which may be nil.
type Compiler interface {
	Compile(ctx context.Context, lite spec.Document, warn func(string)) (spec.Document, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, lite spec.Document, warn func(string)) (spec.Document, error)

// Compile implements Compiler.
func (f CompilerFunc) Compile(ctx context.Context, lite spec.Document, warn func(string)) (spec.Document, error) {
	return f(ctx, lite, warn)
}
