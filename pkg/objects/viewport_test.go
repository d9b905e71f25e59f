package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/rendertree/pkg/arity"
	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

func items(t *testing.T, o *render.Owner, n int) []render.NodeID {
	ids := make([]render.NodeID, n)
	for i := range ids {
		ids[i] = create(t, o, box(0, 0))
	}
	return ids
}

type scrollTree struct {
	viewport render.NodeID
	adapter  render.NodeID
	header   render.NodeID
	list     render.NodeID
	items    []render.NodeID
}

// newScrollTree builds a viewport with a 30 high header followed by a list
// of ten 20 high items.
func newScrollTree(t *testing.T, o *render.Owner) scrollTree {
	var st scrollTree
	st.header = create(t, o, box(0, 30))
	st.adapter = create(t, o, &SliverToBoxAdapter{}, st.header)
	st.items = items(t, o, 10)
	st.list = create(t, o, &SliverFixedExtentList{ItemExtent: 20}, st.items...)
	st.viewport = create(t, o, &Viewport{}, st.adapter, st.list)
	return st
}

func TestViewportLaysOutSlivers(t *testing.T) {
	o := render.NewOwner()
	st := newScrollTree(t, o)
	scene := pump(t, o, st.viewport)

	assert.Equal(t, frameSize, o.Size(st.viewport))
	assert.Equal(t, graphics.Size{Width: 200, Height: 30}, o.Size(st.header))

	header, ok := o.SliverGeometry(st.adapter)
	require.True(t, ok)
	assert.Equal(t, 30.0, header.ScrollExtent)
	assert.Equal(t, 30.0, header.PaintExtent)

	list, ok := o.SliverGeometry(st.list)
	require.True(t, ok)
	assert.Equal(t, 200.0, list.ScrollExtent)
	assert.Equal(t, 70.0, list.PaintExtent)
	assert.Equal(t, graphics.Offset{Y: 30}, o.ParentData(st.list).PaintOffset())

	sc, ok := o.Constraints(st.list).(layout.SliverConstraints)
	require.True(t, ok)
	assert.Equal(t, 30.0, sc.PrecedingScrollExtent)
	assert.Equal(t, 70.0, sc.RemainingPaintExtent)
	assert.Equal(t, 200.0, sc.CrossAxisExtent)

	for i, id := range st.items {
		assert.Equal(t, graphics.Size{Width: 200, Height: 20}, o.Size(id))
		assert.Equal(t, graphics.Offset{Y: float64(20 * i)}, o.ParentData(id).PaintOffset())
	}
	// Header plus every item: the default cache covers the whole list.
	assert.Equal(t, 11, countOps(scene, "rect "))
	assert.Equal(t, 1, countOps(scene, "clipRect"))

	assert.Equal(t, []render.NodeID{st.items[0], st.list, st.viewport}, hitIDs(o, 10, 45))
	assert.Equal(t, []render.NodeID{st.header, st.adapter, st.viewport}, hitIDs(o, 10, 10))
}

func TestViewportScroll(t *testing.T) {
	o := render.NewOwner()
	st := newScrollTree(t, o)
	pump(t, o, st.viewport)

	o.Update(st.viewport, func(obj render.Object) render.Change {
		obj.(*Viewport).ScrollOffset = 50
		return render.ChangeLayout
	})
	pump(t, o, st.viewport)

	header, _ := o.SliverGeometry(st.adapter)
	assert.False(t, header.IsVisible())
	assert.Equal(t, graphics.Offset{Y: -50}, o.ParentData(st.header).PaintOffset())

	list, _ := o.SliverGeometry(st.list)
	assert.Equal(t, 100.0, list.PaintExtent)
	assert.Equal(t, graphics.Offset{}, o.ParentData(st.list).PaintOffset())
	assert.Equal(t, graphics.Offset{Y: -20}, o.ParentData(st.items[0]).PaintOffset())

	assert.Equal(t, []render.NodeID{st.items[1], st.list, st.viewport}, hitIDs(o, 10, 5))
}

func TestViewportHorizontal(t *testing.T) {
	o := render.NewOwner()
	ids := items(t, o, 3)
	list := create(t, o, &SliverFixedExtentList{ItemExtent: 50}, ids...)
	vp := create(t, o, &Viewport{AxisDirection: layout.AxisRight}, list)
	pump(t, o, vp)

	assert.Equal(t, graphics.Size{Width: 50, Height: 100}, o.Size(ids[0]))
	assert.Equal(t, graphics.Offset{X: 100}, o.ParentData(ids[2]).PaintOffset())
	assert.Equal(t, []render.NodeID{ids[2], list, vp}, hitIDs(o, 120, 50))
	assert.Empty(t, hitIDs(o, 170, 50), "past the end of the list")
}

func TestViewportNeedsBoundedConstraints(t *testing.T) {
	o := render.NewOwner(render.WithErrorHandler(discard{}))
	vp := create(t, o, &Viewport{})
	o.SetRoot(vp)
	err := o.FlushLayout(layout.BoxConstraints{MaxWidth: 100, MaxHeight: layout.Unbounded().MaxHeight})
	require.Error(t, err)
	assert.True(t, o.NeedsLayout(vp))
}

func TestFixedExtentListCacheRange(t *testing.T) {
	o := render.NewOwner()
	ids := items(t, o, 20)
	l := &SliverFixedExtentList{ItemExtent: 20}
	list := create(t, o, l, ids...)
	vp := create(t, o, &Viewport{ScrollOffset: 100, CacheExtent: 10}, list)
	o.SetParentData(ids[2], &layout.KeepAliveParentData{KeepAlive: true})
	scene := pump(t, o, vp)

	// Visible: [100, 200). Cache: [90, 210).
	first, last := l.VisibleRange()
	assert.Equal(t, 4, first)
	assert.Equal(t, 11, last)
	assert.Nil(t, o.Geometry(ids[0]))
	assert.Nil(t, o.Geometry(ids[15]))
	assert.NotNil(t, o.Geometry(ids[4]))
	assert.NotNil(t, o.Geometry(ids[10]))

	kept, ok := o.ParentData(ids[2]).(*layout.KeepAliveParentData)
	require.True(t, ok)
	assert.True(t, kept.KeptAlive)
	assert.NotNil(t, o.Geometry(ids[2]))
	assert.Equal(t, 40.0, kept.LayoutOffset)

	assert.Equal(t, 7, countOps(scene, "rect "))
	assert.Equal(t, []render.NodeID{ids[5], list, vp}, hitIDs(o, 10, 5))
}

func TestFixedExtentListRejectsZeroExtent(t *testing.T) {
	o := render.NewOwner(render.WithErrorHandler(discard{}))
	list := create(t, o, &SliverFixedExtentList{}, items(t, o, 2)...)
	vp := create(t, o, &Viewport{}, list)
	o.SetRoot(vp)
	_, err := o.FlushPipeline(layout.Tight(frameSize))
	require.Error(t, err)
	assert.True(t, o.NeedsLayout(list))
}

// correcting asks its viewport to scroll back by 10 the first time it is
// laid out.
type correcting struct {
	arity.LeafKind
	corrected bool
}

func (c *correcting) Protocol() layout.Protocol { return layout.Sliver }

func (c *correcting) PerformLayout(ctx *render.LayoutContext) error {
	if !c.corrected {
		c.corrected = true
		ctx.SetGeometry(layout.SliverGeometry{HasCorrection: true, ScrollOffsetCorrection: -10})
		return nil
	}
	ctx.SetGeometry(layout.NewSliverGeometry(500, ctx.SliverConstraints().RemainingPaintExtent, 0))
	return nil
}

func (c *correcting) Paint(*render.PaintContext, graphics.Offset) {}

func TestViewportAppliesScrollCorrection(t *testing.T) {
	o := render.NewOwner()
	v := &Viewport{ScrollOffset: 30}
	vp := create(t, o, v, create(t, o, &correcting{}))
	o.SetRoot(vp)
	require.NoError(t, o.FlushLayout(layout.Tight(frameSize)))

	assert.Equal(t, 20.0, v.ScrollOffset)
	assert.Equal(t, 2, o.Stats().LayoutPasses)
	assert.False(t, o.NeedsLayout(vp))
}

type discard struct{}

func (discard) HandleError(*rterrors.RenderError) {}
func (discard) HandlePanic(*rterrors.PanicError)  {}
