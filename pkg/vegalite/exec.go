package vegalite

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// DefaultCommand is the conventional name of the vega-lite CLI
// compiler, shipped with the vega-lite npm package.
const DefaultCommand = "vl2vg"

// ExecCompiler shells out to an external vega-lite compiler command.
// The command receives the lite document as JSON on stdin and must
// print the compiled full document as JSON on stdout. Lines on stderr
// become warnings when the command succeeds, and error context when it
// fails.
type ExecCompiler struct {
	command string
}

// NewExecCompiler creates a compiler around the given command line. The
// string may carry arguments ("npx vl2vg"); it is split with shell
// quoting rules. Empty means [DefaultCommand].
func NewExecCompiler(command string) *ExecCompiler {
	if command == "" {
		command = DefaultCommand
	}
	return &ExecCompiler{command: command}
}

// Compile runs the external command over the lite document.
func (c *ExecCompiler) Compile(ctx context.Context, lite spec.Document, warn func(string)) (spec.Document, error) {
	words, err := shellquote.Split(c.command)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "compiler command %q", c.command)
	}
	if len(words) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "compiler command is empty")
	}
	if _, err := exec.LookPath(words[0]); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"vega-lite compiler %q not found. Install with:\n  npm install -g vega-lite", words[0])
	}

	input, err := json.Marshal(lite)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encoding lite spec")
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "vega-lite compiler %q timed out", words[0])
		}
		detail := strings.TrimSpace(errBuf.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, errors.New(errors.ErrCodeInvalidSpec, "vega-lite compilation failed: %s", detail)
	}

	if warn != nil {
		for _, line := range strings.Split(errBuf.String(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				warn(line)
			}
		}
	}

	var full map[string]any
	if err := json.Unmarshal(out.Bytes(), &full); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compiler %q produced invalid output", words[0])
	}
	if full == nil {
		return nil, errors.New(errors.ErrCodeInternal, "compiler %q produced no output", words[0])
	}
	return full, nil
}

// Ensure ExecCompiler implements Compiler.
var _ Compiler = (*ExecCompiler)(nil)
