package glcmd

import (
	"log/slog"
	"time"
)

// ContextOption configures a Context during creation.
//
// Example:
//
//	ctx, err := glcmd.NewContext(dev,
//	    glcmd.WithAssertions(true),
//	    glcmd.WithTextureUnits(8),
//	)
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	logger       *slog.Logger
	assertions   bool
	textureUnits int
	pixelRatio   float64
	profile      bool
	clock        func() time.Time
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		logger:       nil, // falls back to Logger()
		textureUnits: 16,
		pixelRatio:   1,
		clock:        time.Now,
	}
}

// WithLogger sets a logger for one Context instead of the package logger.
func WithLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) {
		o.logger = l
	}
}

// WithAssertions enables invocation-time checks of dynamic values.
// Failed checks abort the invocation with a *RuntimeAssertionError.
// Without assertions, malformed dynamic values are replaced by zero values.
func WithAssertions(enabled bool) ContextOption {
	return func(o *contextOptions) {
		o.assertions = enabled
	}
}

// WithTextureUnits sets the number of texture units available for sampler
// uniforms. Values below 1 are ignored.
func WithTextureUnits(n int) ContextOption {
	return func(o *contextOptions) {
		if n > 0 {
			o.textureUnits = n
		}
	}
}

// WithPixelRatio sets the pixelRatio context variable.
func WithPixelRatio(r float64) ContextOption {
	return func(o *contextOptions) {
		if r > 0 {
			o.pixelRatio = r
		}
	}
}

// WithProfiling turns on CPU-time profiling for commands whose Spec does
// not set Profile.
func WithProfiling(enabled bool) ContextOption {
	return func(o *contextOptions) {
		o.profile = enabled
	}
}

// WithClock replaces the time source used for the time context variable
// and for profiling. Intended for tests.
func WithClock(now func() time.Time) ContextOption {
	return func(o *contextOptions) {
		if now != nil {
			o.clock = now
		}
	}
}
