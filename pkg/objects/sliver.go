package objects

import (
	"fmt"
	"math"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// SliverToBoxAdapter is a sliver that hosts a single box child. The child is
// laid out with the cross axis extent and unbounded along the main axis,
// and scrolls with the sliver.
type SliverToBoxAdapter struct {
	arity.OptionalKind
}

func (a *SliverToBoxAdapter) Protocol() layout.Protocol { return layout.Sliver }

func (a *SliverToBoxAdapter) ChildProtocol() layout.Protocol { return layout.Box }

func (a *SliverToBoxAdapter) PerformLayout(ctx *render.LayoutContext) error {
	sc := ctx.SliverConstraints()
	if ctx.ChildCount() == 0 {
		ctx.SetGeometry(layout.ZeroSliverGeometry())
		return nil
	}
	child := ctx.Child(0)
	size, err := ctx.LayoutBox(child, sc.AsBoxConstraints(0, math.Inf(1), sc.CrossAxisExtent), true)
	if err != nil {
		return err
	}

	extent := size.Height
	if sc.Axis() == layout.Horizontal {
		extent = size.Width
	}
	painted := paintedExtent(sc, 0, extent)
	ctx.SetGeometry(layout.SliverGeometry{
		ScrollExtent:      extent,
		PaintExtent:       painted,
		LayoutExtent:      painted,
		MaxPaintExtent:    extent,
		HitTestExtent:     painted,
		CacheExtent:       cachedExtent(sc, 0, extent),
		Visible:           painted > 0,
		HasVisualOverflow: extent > sc.RemainingPaintExtent || sc.ScrollOffset > 0,
	})

	// Reversed axes paint from the far edge of the sliver.
	var pos graphics.Offset
	switch sc.AxisDirection {
	case layout.AxisUp:
		pos.Y = -(extent - (painted + sc.ScrollOffset))
	case layout.AxisLeft:
		pos.X = -(extent - (painted + sc.ScrollOffset))
	case layout.AxisRight:
		pos.X = -sc.ScrollOffset
	default:
		pos.Y = -sc.ScrollOffset
	}
	ctx.SetChildOffset(child, pos)
	return nil
}

func (a *SliverToBoxAdapter) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	g, _ := ctx.Geometry().(layout.SliverGeometry)
	if ctx.ChildCount() == 0 || !g.IsVisible() {
		return
	}
	paintChild(ctx, ctx.Child(0), offset)
}

// SliverFixedExtentList lays out its box children one after another, each
// ItemExtent long along the main axis. Only children inside the cache area
// are laid out and only those are painted, except children whose
// KeepAliveParentData asks to be kept alive: they stay laid out but are
// neither painted nor hit.
type SliverFixedExtentList struct {
	arity.VariableKind
	ItemExtent float64

	// [first, last) is the range of children laid out by the last layout.
	first, last int
}

func (l *SliverFixedExtentList) Protocol() layout.Protocol { return layout.Sliver }

func (l *SliverFixedExtentList) ChildProtocol() layout.Protocol { return layout.Box }

// ClipsHitTest keeps children outside the painted range from being hit.
func (l *SliverFixedExtentList) ClipsHitTest() bool { return true }

func (l *SliverFixedExtentList) NewParentData(layout.Protocol) layout.ParentData {
	return &layout.KeepAliveParentData{}
}

// VisibleRange returns the half-open range of child indexes laid out in the
// cache area by the last layout.
func (l *SliverFixedExtentList) VisibleRange() (first, last int) {
	return l.first, l.last
}

func (l *SliverFixedExtentList) PerformLayout(ctx *render.LayoutContext) error {
	if !(l.ItemExtent > 0) || math.IsInf(l.ItemExtent, 0) {
		return fmt.Errorf("item extent %v must be positive and finite", l.ItemExtent)
	}
	sc := ctx.SliverConstraints()
	children := ctx.Children()
	n := len(children)

	scrollExtent := float64(n) * l.ItemExtent
	painted := paintedExtent(sc, 0, scrollExtent)
	cacheStart := sc.ScrollOffset + sc.CacheOrigin
	cacheEnd := cacheStart + sc.RemainingCacheExtent
	l.first = clampIndex(int(math.Floor(cacheStart/l.ItemExtent)), n)
	l.last = clampIndex(int(math.Ceil(cacheEnd/l.ItemExtent)), n)

	itemConstraints := sc.AsBoxConstraints(l.ItemExtent, l.ItemExtent, sc.CrossAxisExtent)
	for i, child := range children {
		pd, _ := ctx.ParentData(child).(*layout.KeepAliveParentData)
		inRange := i >= l.first && i < l.last
		keep := pd != nil && pd.KeepAlive
		if pd != nil {
			pd.KeptAlive = keep && !inRange
			pd.LayoutOffset = float64(i) * l.ItemExtent
		}
		ctx.SetChildOffset(child, l.itemOffset(sc, i, painted))
		if !inRange && !keep {
			continue
		}
		if _, err := ctx.LayoutBox(child, itemConstraints, false); err != nil {
			return err
		}
	}

	ctx.SetGeometry(layout.SliverGeometry{
		ScrollExtent:      scrollExtent,
		PaintExtent:       painted,
		LayoutExtent:      painted,
		MaxPaintExtent:    scrollExtent,
		HitTestExtent:     painted,
		CacheExtent:       cachedExtent(sc, 0, scrollExtent),
		Visible:           painted > 0,
		HasVisualOverflow: scrollExtent > sc.ScrollOffset+sc.RemainingPaintExtent || sc.ScrollOffset > 0,
	})
	return nil
}

// itemOffset returns the paint offset of child i within the sliver.
func (l *SliverFixedExtentList) itemOffset(sc layout.SliverConstraints, i int, painted float64) graphics.Offset {
	main := float64(i)*l.ItemExtent - sc.ScrollOffset
	if sc.AxisDirection.IsReversed() {
		main = painted - main - l.ItemExtent
	}
	if sc.Axis() == layout.Horizontal {
		return graphics.Offset{X: main}
	}
	return graphics.Offset{Y: main}
}

func (l *SliverFixedExtentList) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	g, _ := ctx.Geometry().(layout.SliverGeometry)
	if !g.IsVisible() {
		return
	}
	last := min(l.last, ctx.ChildCount())
	for i := l.first; i < last; i++ {
		paintChild(ctx, ctx.Child(i), offset)
	}
}

func clampIndex(i, n int) int {
	return max(0, min(i, n))
}

// paintedExtent returns how much of the scroll range [from, to) lies in the
// visible part of the viewport.
func paintedExtent(sc layout.SliverConstraints, from, to float64) float64 {
	a := sc.ScrollOffset
	b := sc.ScrollOffset + sc.RemainingPaintExtent
	return clampFloat(to, a, b) - clampFloat(from, a, b)
}

// cachedExtent returns how much of the scroll range [from, to) lies in the
// cache area of the viewport.
func cachedExtent(sc layout.SliverConstraints, from, to float64) float64 {
	a := sc.ScrollOffset + sc.CacheOrigin
	b := sc.ScrollOffset + sc.RemainingCacheExtent
	return clampFloat(to, a, b) - clampFloat(from, a, b)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
