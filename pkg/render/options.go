package render

import (
	"log/slog"

	"github.com/go-drift/rendertree/pkg/config"
	"github.com/go-drift/rendertree/pkg/errors"
)

// DefaultMaxLayoutPasses bounds the relayout loop of a single FlushLayout.
const DefaultMaxLayoutPasses = 8

// Option configures an Owner.
type Option func(*Owner)

// WithLogger sets the logger used for flush statistics and failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Owner) {
		o.logger = l
	}
}

// WithErrorHandler sets the handler that receives every frame failure.
// By default failures are logged through the owner's logger.
func WithErrorHandler(h errors.ErrorHandler) Option {
	return func(o *Owner) {
		o.handler = h
	}
}

// WithMaxLayoutPasses bounds how many times FlushLayout re-processes nodes
// that asked for another layout pass.
func WithMaxLayoutPasses(n int) Option {
	return func(o *Owner) {
		if n > 0 {
			o.maxLayoutPasses = n
		}
	}
}

// WithDebugChecks enables validation of the constraints passed to every
// layout. Geometry is always checked to be finite and within its
// constraints.
func WithDebugChecks(enabled bool) Option {
	return func(o *Owner) {
		o.debugChecks = enabled
	}
}

// WithConfig applies the pipeline section of a configuration file.
func WithConfig(p config.Pipeline) Option {
	return func(o *Owner) {
		WithMaxLayoutPasses(p.MaxLayoutPasses)(o)
		o.debugChecks = p.DebugChecks
	}
}
