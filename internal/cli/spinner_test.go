package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Normalizing specification...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("explicit Stop should not count as cancellation")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Resolving data stanzas...")
	s.Start()
	cancel()

	// Give the animation goroutine time to notice.
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context ends")
	}
	s.Stop()
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Rendering data-flow graph...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context deadline")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Normalizing specification...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	s := newSpinner("Compiling lite spec...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Compiled")

	s = newSpinner("Compiling lite spec...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Compilation failed")
}

func TestSpinnerWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), "Fetching vector layers...")
	s.out = &buf

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	// Stop waits for the animation goroutine, so reading is safe.
	if !strings.Contains(buf.String(), "Fetching vector layers...") {
		t.Error("spinner output should contain the message")
	}
}
