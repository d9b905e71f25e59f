package rendertest

import (
	"sync"

	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

const (
	// DefaultWidth is the default width of the root constraints.
	DefaultWidth = 800
	// DefaultHeight is the default height of the root constraints.
	DefaultHeight = 600
)

// TestingT is the subset of *testing.T used by the tester and by
// MatchesFile, allowing test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Tester owns a fresh render.Owner and runs frames against tight root
// constraints of a configurable size.
type Tester struct {
	t      TestingT
	owner  *render.Owner
	size   graphics.Size
	scene  *layer.Scene
	errors *errorCollector
}

// New creates a tester for t. Failures reported by the owner are collected
// instead of logged; see Errors. opts are applied after the tester's own
// options, so they may replace the error handler.
func New(t TestingT, opts ...render.Option) *Tester {
	tester := &Tester{
		t:      t,
		size:   graphics.Size{Width: DefaultWidth, Height: DefaultHeight},
		errors: &errorCollector{},
	}
	tester.owner = render.NewOwner(append([]render.Option{render.WithErrorHandler(tester.errors)}, opts...)...)
	return tester
}

// Owner returns the owner under test.
func (t *Tester) Owner() *render.Owner {
	return t.owner
}

// SetSize sets the size of the tight root constraints used by Pump.
func (t *Tester) SetSize(size graphics.Size) {
	t.size = size
}

// Size returns the root size used by Pump.
func (t *Tester) Size() graphics.Size {
	return t.size
}

// Create adds a detached node and fails the test if the owner rejects it.
func (t *Tester) Create(obj render.Object, children ...render.NodeID) render.NodeID {
	t.t.Helper()
	id, err := t.owner.CreateNode(obj, children...)
	if err != nil {
		t.t.Fatalf("CreateNode(%T): %v", obj, err)
	}
	return id
}

// Mount creates a node and makes it the root.
func (t *Tester) Mount(obj render.Object, children ...render.NodeID) render.NodeID {
	t.t.Helper()
	id := t.Create(obj, children...)
	t.owner.SetRoot(id)
	return id
}

// Root returns the root node, or the zero ID.
func (t *Tester) Root() render.NodeID {
	return t.owner.Root()
}

// Pump runs layout, compositing bits and paint once. The scene is kept
// even when the flush fails.
func (t *Tester) Pump() error {
	scene, err := t.owner.FlushPipeline(layout.Tight(t.size))
	t.scene = scene
	return err
}

// MustPump runs Pump and fails the test on error.
func (t *Tester) MustPump() *layer.Scene {
	t.t.Helper()
	if err := t.Pump(); err != nil {
		t.t.Fatalf("Pump: %v", err)
	}
	return t.scene
}

// Scene returns the scene of the last Pump, or nil.
func (t *Tester) Scene() *layer.Scene {
	return t.scene
}

// Errors returns the failures the owner reported so far.
func (t *Tester) Errors() []*rterrors.RenderError {
	return t.errors.all()
}

// HitTest returns the IDs of the nodes under (x, y), topmost first.
func (t *Tester) HitTest(x, y float64) []render.NodeID {
	var ids []render.NodeID
	for _, h := range t.owner.HitTest(graphics.Offset{X: x, Y: y}) {
		ids = append(ids, h.ID)
	}
	return ids
}

// errorCollector is an ErrorHandler that records everything it receives.
type errorCollector struct {
	mu     sync.Mutex
	errs   []*rterrors.RenderError
	panics []*rterrors.PanicError
}

func (c *errorCollector) HandleError(err *rterrors.RenderError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *errorCollector) HandlePanic(err *rterrors.PanicError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics = append(c.panics, err)
}

func (c *errorCollector) all() []*rterrors.RenderError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*rterrors.RenderError(nil), c.errs...)
}
