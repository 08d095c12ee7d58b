package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Computing layout...")
	s.out = &buf
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.SetMessage("Rendering...")
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Computing layout...") || !strings.Contains(out, "Rendering...") {
		t.Errorf("spinner output missing messages: %q", out)
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.out = &bytes.Buffer{}
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.out = &bytes.Buffer{}
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithError("Failed")
}
