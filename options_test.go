package glcmd

import (
	"log/slog"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.textureUnits != 16 {
		t.Errorf("textureUnits = %d, want 16", o.textureUnits)
	}
	if o.pixelRatio != 1 {
		t.Errorf("pixelRatio = %v, want 1", o.pixelRatio)
	}
	if o.assertions || o.profile {
		t.Error("assertions and profiling should be off by default")
	}
	if o.clock == nil {
		t.Error("clock should default to time.Now")
	}
}

func TestOptionsApply(t *testing.T) {
	fixed := time.Unix(100, 0)
	l := slog.New(nopHandler{})
	o := defaultOptions()
	for _, opt := range []ContextOption{
		WithLogger(l),
		WithAssertions(true),
		WithTextureUnits(4),
		WithTextureUnits(0), // ignored
		WithPixelRatio(2),
		WithProfiling(true),
		WithClock(func() time.Time { return fixed }),
	} {
		opt(&o)
	}
	if o.logger != l {
		t.Error("WithLogger not applied")
	}
	if !o.assertions || !o.profile {
		t.Error("WithAssertions/WithProfiling not applied")
	}
	if o.textureUnits != 4 {
		t.Errorf("textureUnits = %d, want 4", o.textureUnits)
	}
	if o.pixelRatio != 2 {
		t.Errorf("pixelRatio = %v, want 2", o.pixelRatio)
	}
	if !o.clock().Equal(fixed) {
		t.Error("WithClock not applied")
	}
}
