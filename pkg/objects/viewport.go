package objects

import (
	"fmt"
	"math"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// DefaultCacheExtent is the distance slivers lay out beyond each edge of a
// viewport when CacheExtent is zero.
const DefaultCacheExtent = 250.0

// Viewport is a box that hosts sliver children. It fills its constraints,
// which must be bounded, and lays out the slivers one after another along
// AxisDirection, starting ScrollOffset into the content.
//
// A sliver may ask for a scroll offset correction; the viewport applies it
// to ScrollOffset and lays itself out again.
type Viewport struct {
	arity.VariableKind
	AxisDirection layout.AxisDirection
	ScrollOffset  float64
	CacheExtent   float64
}

func (v *Viewport) Protocol() layout.Protocol { return layout.Box }

func (v *Viewport) ChildProtocol() layout.Protocol { return layout.Sliver }

func (v *Viewport) ClipsHitTest() bool { return true }

func (v *Viewport) cacheExtent() float64 {
	if v.CacheExtent > 0 {
		return v.CacheExtent
	}
	return DefaultCacheExtent
}

func (v *Viewport) PerformLayout(ctx *render.LayoutContext) error {
	c := ctx.BoxConstraints()
	if !c.HasBoundedWidth() || !c.HasBoundedHeight() {
		return fmt.Errorf("viewport given unbounded constraints %v", c)
	}
	size := c.Biggest()
	ctx.SetSize(size)

	mainExtent, crossExtent := size.Height, size.Width
	if v.AxisDirection.Axis() == layout.Horizontal {
		mainExtent, crossExtent = size.Width, size.Height
	}

	cache := v.cacheExtent()
	scrollOffset := v.ScrollOffset
	remainingCache := mainExtent + 2*cache
	cacheOrigin := -cache
	var layoutOffset, preceding float64

	for _, child := range ctx.Children() {
		sliverScroll := math.Max(scrollOffset, 0)
		correctedCacheOrigin := math.Max(cacheOrigin, -sliverScroll)
		cacheCorrection := cacheOrigin - correctedCacheOrigin

		g, err := ctx.LayoutSliver(child, layout.SliverConstraints{
			AxisDirection:          v.AxisDirection,
			ScrollOffset:           sliverScroll,
			PrecedingScrollExtent:  preceding,
			RemainingPaintExtent:   math.Max(0, mainExtent-layoutOffset),
			CrossAxisExtent:        crossExtent,
			CrossAxisDirection:     crossAxisDirection(v.AxisDirection),
			ViewportMainAxisExtent: mainExtent,
			RemainingCacheExtent:   math.Max(0, remainingCache+cacheCorrection),
			CacheOrigin:            correctedCacheOrigin,
		}, true)
		if err != nil {
			return err
		}
		if g.HasCorrection {
			v.ScrollOffset += g.ScrollOffsetCorrection
			ctx.RequestRelayout()
			return nil
		}

		childLayoutOffset := layoutOffset + g.PaintOrigin
		if !g.Visible && scrollOffset <= 0 {
			childLayoutOffset = -scrollOffset
		}
		if pd, ok := ctx.ParentData(child).(*layout.SliverParentData); ok {
			pd.LayoutOffset = childLayoutOffset
		}
		ctx.SetChildOffset(child, sliverPaintOffset(v.AxisDirection, childLayoutOffset, g.PaintExtent, mainExtent))

		scrollOffset -= g.ScrollExtent
		preceding += g.ScrollExtent
		layoutOffset += g.LayoutExtent
		if g.CacheExtent != 0 {
			remainingCache -= g.CacheExtent - cacheCorrection
			cacheOrigin = math.Min(correctedCacheOrigin+g.CacheExtent, 0)
		}
	}
	return nil
}

func (v *Viewport) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	if ctx.ChildCount() == 0 {
		return
	}
	ctx.PushClipRect(graphics.RectFromOffsetSize(offset, ctx.Size()))
	for _, child := range ctx.Children() {
		if g, ok := ctx.ChildGeometry(child).(layout.SliverGeometry); ok && g.IsVisible() {
			paintChild(ctx, child, offset)
		}
	}
	ctx.Pop()
}

// sliverPaintOffset converts a position along the main axis into a paint
// offset within a viewport of the given main axis extent.
func sliverPaintOffset(dir layout.AxisDirection, layoutOffset, paintExtent, mainExtent float64) graphics.Offset {
	switch dir {
	case layout.AxisUp:
		return graphics.Offset{Y: mainExtent - layoutOffset - paintExtent}
	case layout.AxisRight:
		return graphics.Offset{X: layoutOffset}
	case layout.AxisLeft:
		return graphics.Offset{X: mainExtent - layoutOffset - paintExtent}
	default:
		return graphics.Offset{Y: layoutOffset}
	}
}

func crossAxisDirection(dir layout.AxisDirection) layout.AxisDirection {
	if dir.Axis() == layout.Vertical {
		return layout.AxisRight
	}
	return layout.AxisDown
}
