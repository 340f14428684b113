package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSpec writes a spec file into a temp dir and returns its path.
func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return path
}

func TestRunNormalizeWritesResult(t *testing.T) {
	specPath := writeSpec(t, `{
		"$schema": "https://vega.github.io/schema/vega/v5.json",
		"width": 300,
		"height": 200
	}`)
	outPath := filepath.Join(t.TempDir(), "out.json")

	c := New(io.Discard, LogInfo)
	err := c.runNormalize(context.Background(), specPath, normalizeOpts{
		output:  outPath,
		noCache: true,
	})
	if err != nil {
		t.Fatalf("runNormalize() error: %v", err)
	}

	payload, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var result struct {
		Spec     map[string]any `json:"spec"`
		Dialect  string         `json:"dialect"`
		Renderer string         `json:"renderer"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if result.Dialect != "vega" {
		t.Errorf("dialect = %q, want %q", result.Dialect, "vega")
	}
	if result.Renderer != "canvas" {
		t.Errorf("renderer = %q, want %q", result.Renderer, "canvas")
	}
	if result.Spec == nil {
		t.Fatal("output has no spec")
	}
	if result.Spec["width"] != float64(300) {
		t.Errorf("spec width = %v, want 300", result.Spec["width"])
	}
}

func TestRunNormalizeAcceptsHJSON(t *testing.T) {
	// Unquoted keys and comments are valid input.
	specPath := writeSpec(t, `{
		// relaxed syntax
		$schema: "https://vega.github.io/schema/vega/v5.json"
		width: 100
	}`)
	outPath := filepath.Join(t.TempDir(), "out.json")

	c := New(io.Discard, LogInfo)
	err := c.runNormalize(context.Background(), specPath, normalizeOpts{
		output:  outPath,
		noCache: true,
	})
	if err != nil {
		t.Fatalf("runNormalize() error: %v", err)
	}
}

func TestRunNormalizeFatalSpec(t *testing.T) {
	specPath := writeSpec(t, `{
		"$schema": "https://vega.github.io/schema/vega/v5.json",
		"config": {"deck": {"renderer": "webgl"}}
	}`)

	c := New(io.Discard, LogInfo)
	err := c.runNormalize(context.Background(), specPath, normalizeOpts{noCache: true})
	if err == nil {
		t.Fatal("expected error for invalid renderer")
	}
	if !strings.Contains(err.Error(), "webgl") {
		t.Errorf("error should mention the bad value, got: %v", err)
	}
}

func TestRunNormalizeMissingFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	err := c.runNormalize(context.Background(), "/nonexistent/spec.json", normalizeOpts{noCache: true})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunNormalizeCompact(t *testing.T) {
	specPath := writeSpec(t, `{"$schema": "https://vega.github.io/schema/vega/v5.json"}`)
	outPath := filepath.Join(t.TempDir(), "out.json")

	c := New(io.Discard, LogInfo)
	err := c.runNormalize(context.Background(), specPath, normalizeOpts{
		output:  outPath,
		compact: true,
		noCache: true,
	})
	if err != nil {
		t.Fatalf("runNormalize() error: %v", err)
	}

	payload, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	// Compact output is a single JSON line.
	if got := strings.Count(strings.TrimRight(string(payload), "\n"), "\n"); got != 0 {
		t.Errorf("compact output spans %d extra lines, want single line", got)
	}
}

func TestNormalizeCommandViaRoot(t *testing.T) {
	specPath := writeSpec(t, `{"$schema": "https://vega.github.io/schema/vega/v5.json"}`)
	outPath := filepath.Join(t.TempDir(), "out.json")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"normalize", specPath, "-o", outPath, "--no-cache"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("output file not written: %v", err)
	}
}
