package frame

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/rendertree/pkg/arity"
	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/objects"
	"github.com/go-drift/rendertree/pkg/render"
)

type discard struct{}

func (discard) HandleError(*rterrors.RenderError) {}
func (discard) HandlePanic(*rterrors.PanicError)  {}

func boxView(t *testing.T, name string) View {
	t.Helper()
	o := render.NewOwner(render.WithErrorHandler(discard{}))
	id, err := o.CreateNode(objects.NewColoredBox(graphics.Size{Width: 10, Height: 10}, graphics.ColorRed))
	require.NoError(t, err)
	o.SetRoot(id)
	return View{Name: name, Owner: o, Constraints: layout.Tight(graphics.Size{Width: 40, Height: 30})}
}

// failingView has a viewport root that rejects unbounded constraints.
func failingView(t *testing.T, name string) View {
	t.Helper()
	o := render.NewOwner(render.WithErrorHandler(discard{}))
	id, err := o.CreateNode(&objects.Viewport{})
	require.NoError(t, err)
	o.SetRoot(id)
	return View{Name: name, Owner: o, Constraints: layout.Unbounded()}
}

func TestFrameFlushesEveryView(t *testing.T) {
	d := NewDriver(WithConcurrency(1))
	a, b := boxView(t, "a"), boxView(t, "b")
	require.NoError(t, d.Add(a))
	require.NoError(t, d.Add(b))

	scenes, err := d.Frame(context.Background())
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	for _, name := range []string{"a", "b"} {
		require.Contains(t, scenes, name)
		assert.Len(t, scenes[name].Pictures(), 1)
	}
	assert.Equal(t, graphics.Size{Width: 40, Height: 30}, a.Owner.Size(a.Owner.Root()))
	assert.Equal(t, uint64(1), d.Frames())
}

func TestFrameJoinsViewErrors(t *testing.T) {
	d := NewDriver()
	require.NoError(t, d.Add(boxView(t, "ok")))
	require.NoError(t, d.Add(failingView(t, "broken")))

	scenes, err := d.Frame(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rterrors.ErrLayoutFailure)
	assert.Contains(t, err.Error(), "view broken")
	assert.Contains(t, scenes, "ok")
}

// strayChild lays out a node that is not its child.
type strayChild struct {
	arity.LeafKind
}

func (strayChild) Protocol() layout.Protocol { return layout.Box }

func (strayChild) PerformLayout(ctx *render.LayoutContext) error {
	_, err := ctx.LayoutChild(ctx.ID(), ctx.Constraints(), false)
	return err
}

func (strayChild) Paint(*render.PaintContext, graphics.Offset) {}

func TestFrameRecoversViolations(t *testing.T) {
	var panics []*rterrors.PanicError
	old := rterrors.Handler()
	rterrors.SetHandler(recordPanics{&panics})
	t.Cleanup(func() { rterrors.SetHandler(old) })

	o := render.NewOwner(render.WithErrorHandler(discard{}))
	id, err := o.CreateNode(strayChild{})
	require.NoError(t, err)
	o.SetRoot(id)

	d := NewDriver()
	require.NoError(t, d.Add(boxView(t, "ok")))
	require.NoError(t, d.Add(View{Name: "stray", Owner: o, Constraints: layout.Tight(graphics.Size{Width: 10, Height: 10})}))

	scenes, err := d.Frame(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "view stray")
	var p *rterrors.PanicError
	require.ErrorAs(t, err, &p)
	assert.Equal(t, "frame.Driver.Frame", p.Op)
	assert.Contains(t, scenes, "ok")
	require.Len(t, panics, 1)
	assert.Same(t, p, panics[0])
}

type recordPanics struct {
	panics *[]*rterrors.PanicError
}

func (recordPanics) HandleError(*rterrors.RenderError) {}

func (r recordPanics) HandlePanic(p *rterrors.PanicError) {
	*r.panics = append(*r.panics, p)
}

func TestFrameHonoursCancellation(t *testing.T) {
	d := NewDriver()
	v := boxView(t, "a")
	require.NoError(t, d.Add(v))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scenes, err := d.Frame(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, scenes)
	assert.True(t, v.Owner.NeedsLayout(v.Owner.Root()), "cancelled view must not flush")
}

func TestAddRemove(t *testing.T) {
	d := NewDriver()
	require.NoError(t, d.Add(boxView(t, "a")))
	require.NoError(t, d.Add(boxView(t, "b")))
	assert.Error(t, d.Add(boxView(t, "a")), "duplicate name")
	assert.Error(t, d.Add(View{Name: "nil"}))
	assert.Error(t, d.Add(View{Name: "c", Owner: render.NewOwner()}), "missing constraints")

	var names []string
	for _, v := range d.Views() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)

	assert.True(t, d.Remove("a"))
	assert.False(t, d.Remove("a"))
	assert.Len(t, d.Views(), 1)
}
