// Package objects provides the node kinds used to build render trees: a
// handful of boxes, the Box to Sliver adapters, and two slivers.
//
// Kinds are plain structs. Configure them before handing them to
// render.Owner.CreateNode, and change them later through render.Owner.Update
// so the owner can mark the node dirty:
//
//	owner.Update(id, func(obj render.Object) render.Change {
//		obj.(*objects.Opacity).Alpha = 0.5
//		return render.ChangePaint
//	})
package objects

import (
	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// ColoredBox paints a solid rectangle of its natural size, constrained by
// its parent.
type ColoredBox struct {
	arity.LeafKind
	Size     graphics.Size
	Color    graphics.Color
	Behavior render.HitTestBehavior
}

// NewColoredBox returns a colored box that is opaque to hit testing.
func NewColoredBox(size graphics.Size, color graphics.Color) *ColoredBox {
	return &ColoredBox{Size: size, Color: color, Behavior: render.Opaque}
}

func (b *ColoredBox) Protocol() layout.Protocol { return layout.Box }

func (b *ColoredBox) HitTestBehavior() render.HitTestBehavior { return b.Behavior }

func (b *ColoredBox) PerformLayout(ctx *render.LayoutContext) error {
	ctx.SetSize(ctx.BoxConstraints().Constrain(b.Size))
	return nil
}

func (b *ColoredBox) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	paintColor(ctx, offset, b.Color)
}

// ConstrainedBox imposes Extra constraints on its optional child. Without a
// child it takes the smallest size the combined constraints allow.
type ConstrainedBox struct {
	arity.OptionalKind
	Extra layout.BoxConstraints
}

func (b *ConstrainedBox) Protocol() layout.Protocol { return layout.Box }

func (b *ConstrainedBox) PerformLayout(ctx *render.LayoutContext) error {
	enforced := b.Extra.Enforce(ctx.BoxConstraints())
	if ctx.ChildCount() == 0 {
		ctx.SetSize(enforced.Smallest())
		return nil
	}
	size, err := ctx.LayoutBox(ctx.Child(0), enforced, true)
	if err != nil {
		return err
	}
	ctx.SetSize(enforced.Constrain(size))
	return nil
}

func (b *ConstrainedBox) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	if ctx.ChildCount() > 0 {
		paintChild(ctx, ctx.Child(0), offset)
	}
}

// SizedByParentBox fills the biggest size its constraints allow. Its size
// never depends on anything but the constraints, so it is always a relayout
// boundary.
type SizedByParentBox struct {
	arity.LeafKind
	Color graphics.Color
}

func (b *SizedByParentBox) Protocol() layout.Protocol { return layout.Box }

func (b *SizedByParentBox) PerformResize(c layout.BoxConstraints) graphics.Size {
	return c.Biggest()
}

// PerformLayout has nothing left to do after PerformResize.
func (b *SizedByParentBox) PerformLayout(*render.LayoutContext) error {
	return nil
}

func (b *SizedByParentBox) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	paintColor(ctx, offset, b.Color)
}

// paintColor fills the node's bounds at offset unless color is transparent.
func paintColor(ctx *render.PaintContext, offset graphics.Offset, color graphics.Color) {
	if color.Alpha() == 0 {
		return
	}
	ctx.Canvas().DrawRect(graphics.RectFromOffsetSize(offset, ctx.Size()), graphics.FillPaint(color))
}

// childOffset returns the paint offset the parent assigned to child.
func childOffset(ctx *render.PaintContext, child render.NodeID) graphics.Offset {
	if pd := ctx.ParentData(child); pd != nil {
		return pd.PaintOffset()
	}
	return graphics.Offset{}
}

func paintChild(ctx *render.PaintContext, child render.NodeID, offset graphics.Offset) {
	ctx.PaintChild(child, offset.Add(childOffset(ctx, child)))
}

// layoutPassThrough lays out the only child with the node's own constraints
// and adopts its size.
func layoutPassThrough(ctx *render.LayoutContext) error {
	size, err := ctx.LayoutBox(ctx.Child(0), ctx.BoxConstraints(), true)
	if err != nil {
		return err
	}
	ctx.SetSize(size)
	return nil
}
