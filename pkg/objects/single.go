package objects

import (
	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// PositionedBox lays out its child loosely and places it at Offset. It fills
// its constraints along bounded axes and wraps the child along unbounded
// ones.
type PositionedBox struct {
	arity.SingleKind
	Offset graphics.Offset
}

func (b *PositionedBox) Protocol() layout.Protocol { return layout.Box }

func (b *PositionedBox) PerformLayout(ctx *render.LayoutContext) error {
	c := ctx.BoxConstraints()
	child := ctx.Child(0)
	childSize, err := ctx.LayoutBox(child, c.Loosen(), true)
	if err != nil {
		return err
	}
	size := c.Biggest()
	if !c.HasBoundedWidth() {
		size.Width = c.ConstrainWidth(b.Offset.X + childSize.Width)
	}
	if !c.HasBoundedHeight() {
		size.Height = c.ConstrainHeight(b.Offset.Y + childSize.Height)
	}
	ctx.SetSize(size)
	ctx.SetChildOffset(child, b.Offset)
	return nil
}

func (b *PositionedBox) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	paintChild(ctx, ctx.Child(0), offset)
}

// Padding insets its child by Insets.
type Padding struct {
	arity.SingleKind
	Insets layout.EdgeInsets
}

func (p *Padding) Protocol() layout.Protocol { return layout.Box }

func (p *Padding) PerformLayout(ctx *render.LayoutContext) error {
	c := ctx.BoxConstraints()
	child := ctx.Child(0)
	childSize, err := ctx.LayoutBox(child, c.Deflate(p.Insets), true)
	if err != nil {
		return err
	}
	ctx.SetSize(c.Constrain(graphics.Size{
		Width:  childSize.Width + p.Insets.Horizontal(),
		Height: childSize.Height + p.Insets.Vertical(),
	}))
	ctx.SetChildOffset(child, graphics.Offset{X: p.Insets.Left, Y: p.Insets.Top})
	return nil
}

func (p *Padding) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	paintChild(ctx, ctx.Child(0), offset)
}

// RepaintBoundary paints its child into a layer of its own, so the child can
// repaint without repainting its ancestors and vice versa.
type RepaintBoundary struct {
	arity.SingleKind
}

func (b *RepaintBoundary) Protocol() layout.Protocol { return layout.Box }

func (b *RepaintBoundary) IsRepaintBoundary() bool { return true }

func (b *RepaintBoundary) PerformLayout(ctx *render.LayoutContext) error {
	return layoutPassThrough(ctx)
}

func (b *RepaintBoundary) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	paintChild(ctx, ctx.Child(0), offset)
}

// Opacity composites its child with Alpha in [0, 1]. A fully transparent
// child is not painted at all.
type Opacity struct {
	arity.SingleKind
	Alpha float64
}

func (o *Opacity) Protocol() layout.Protocol { return layout.Box }

func (o *Opacity) AlwaysNeedsCompositing() bool { return true }

func (o *Opacity) PerformLayout(ctx *render.LayoutContext) error {
	return layoutPassThrough(ctx)
}

func (o *Opacity) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	if o.Alpha == 0 {
		return
	}
	ctx.PushOpacity(o.Alpha)
	paintChild(ctx, ctx.Child(0), offset)
	ctx.Pop()
}

// Transform paints its child through Matrix, applied about the node's
// origin. Hit testing maps points through the inverse; a singular matrix
// makes the child unhittable.
type Transform struct {
	arity.SingleKind
	Matrix graphics.Matrix
}

// NewTransform returns a transform node for m.
func NewTransform(m graphics.Matrix) *Transform {
	return &Transform{Matrix: m}
}

func (t *Transform) Protocol() layout.Protocol { return layout.Box }

func (t *Transform) PerformLayout(ctx *render.LayoutContext) error {
	return layoutPassThrough(ctx)
}

func (t *Transform) ChildTransform(_ render.NodeID, paintOffset graphics.Offset) graphics.Matrix {
	return t.Matrix.Translate(paintOffset.X, paintOffset.Y)
}

func (t *Transform) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	child := ctx.Child(0)
	ctx.PushTransform(graphics.TranslationMatrix(offset.X, offset.Y).Multiply(t.Matrix))
	ctx.PaintChild(child, childOffset(ctx, child))
	ctx.Pop()
}

// ClipRect clips painting and hit testing of its child to its own bounds.
type ClipRect struct {
	arity.SingleKind
}

func (c *ClipRect) Protocol() layout.Protocol { return layout.Box }

func (c *ClipRect) ClipsHitTest() bool { return true }

func (c *ClipRect) PerformLayout(ctx *render.LayoutContext) error {
	return layoutPassThrough(ctx)
}

func (c *ClipRect) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	ctx.PushClipRect(graphics.RectFromOffsetSize(offset, ctx.Size()))
	paintChild(ctx, ctx.Child(0), offset)
	ctx.Pop()
}
