// Package frame drives frames for one or more independent render trees.
//
// Each View pairs an Owner with the constraints of its root. Owners share no
// state, so a Driver flushes their pipelines in parallel; within one owner
// the flush stays single-threaded.
package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// View is a named render tree.
type View struct {
	Name        string
	Owner       *render.Owner
	Constraints layout.Constraints
}

// Driver produces frames for a set of views.
type Driver struct {
	mu     sync.Mutex
	views  []View
	limit  int
	logger *slog.Logger
	frames atomic.Uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithConcurrency bounds how many views flush at the same time. Zero or less
// means no bound.
func WithConcurrency(n int) Option {
	return func(d *Driver) {
		d.limit = n
	}
}

// WithLogger sets the logger for per-frame statistics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// NewDriver returns a driver without views.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return render.Logger()
}

// Add registers v. Names must be unique.
func (d *Driver) Add(v View) error {
	if v.Owner == nil {
		return fmt.Errorf("view %q has no owner", v.Name)
	}
	if v.Constraints == nil {
		return fmt.Errorf("view %q has no constraints", v.Name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.ContainsFunc(d.views, func(o View) bool { return o.Name == v.Name }) {
		return fmt.Errorf("view %q already registered", v.Name)
	}
	d.views = append(d.views, v)
	return nil
}

// Remove unregisters the view called name and reports whether it existed.
func (d *Driver) Remove(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.views, func(v View) bool { return v.Name == name })
	if i < 0 {
		return false
	}
	d.views = slices.Delete(d.views, i, i+1)
	return true
}

// Views returns the registered views in registration order.
func (d *Driver) Views() []View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.views)
}

// Frames returns the number of frames produced so far.
func (d *Driver) Frames() uint64 {
	return d.frames.Load()
}

// Frame runs layout, compositing bits and paint for every view and returns
// the scenes by view name. A view whose flush fails still contributes the
// scene it produced, if any; its error is part of the joined result.
//
// Cancelling ctx stops views that have not started yet. A flush that already
// started runs to completion.
func (d *Driver) Frame(ctx context.Context) (map[string]*layer.Scene, error) {
	views := d.Views()
	start := time.Now()

	var g errgroup.Group
	if d.limit > 0 {
		g.SetLimit(d.limit)
	}
	scenes := make([]*layer.Scene, len(views))
	errs := make([]error, len(views))
	for i, v := range views {
		g.Go(func() error {
			scenes[i], errs[i] = d.flush(ctx, v)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]*layer.Scene, len(views))
	for i, v := range views {
		if scenes[i] != nil {
			out[v.Name] = scenes[i]
		}
	}
	err := errors.Join(errs...)
	n := d.frames.Add(1)
	d.log().Debug("frame produced",
		slog.Uint64("frame", n),
		slog.Int("views", len(views)),
		slog.Int("scenes", len(out)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("failed", err != nil),
	)
	return out, err
}

// flush runs one view. A panic that escapes the pipeline, such as a
// programming violation raised by a node kind, fails only this view.
func (d *Driver) flush(ctx context.Context, v View) (scene *layer.Scene, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("view %s: %w", v.Name, err)
		}
	}()
	defer rterrors.Recover("frame.Driver.Frame", &err)
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	return v.Owner.FlushPipeline(v.Constraints)
}
