package render

import (
	"fmt"
	"slices"

	"github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
)

// LayoutContext is handed to Object.PerformLayout. It is only valid for the
// duration of that call; using it afterwards panics.
type LayoutContext struct {
	owner       *Owner
	node        *node
	constraints layout.Constraints
	geometry    layout.Geometry
	done        bool
}

func (c *LayoutContext) check(op string) {
	if c.done {
		errors.Violation(op, errors.KindProgramming, "layout context of %s used after PerformLayout returned", c.node.name())
	}
}

// child resolves id and panics unless it is a child of the node being laid
// out.
func (c *LayoutContext) child(op string, id NodeID) *node {
	c.check(op)
	ch := c.owner.node(op, id)
	if ch.parent != c.node.id {
		errors.Violation(op, errors.KindProgramming, "%s is not a child of %s", ch.name(), c.node.name())
	}
	return ch
}

// ID returns the node being laid out.
func (c *LayoutContext) ID() NodeID {
	return c.node.id
}

// Constraints returns the incoming constraints.
func (c *LayoutContext) Constraints() layout.Constraints {
	return c.constraints
}

// BoxConstraints returns the incoming constraints of a box node.
func (c *LayoutContext) BoxConstraints() layout.BoxConstraints {
	bc, _ := c.constraints.(layout.BoxConstraints)
	return bc
}

// SliverConstraints returns the incoming constraints of a sliver node.
func (c *LayoutContext) SliverConstraints() layout.SliverConstraints {
	sc, _ := c.constraints.(layout.SliverConstraints)
	return sc
}

// Children returns the child IDs in paint order.
func (c *LayoutContext) Children() []NodeID {
	c.check("render.LayoutContext.Children")
	return slices.Clone(c.node.children)
}

// ChildCount returns the number of children.
func (c *LayoutContext) ChildCount() int {
	return len(c.node.children)
}

// Child returns the child at index i.
func (c *LayoutContext) Child(i int) NodeID {
	c.check("render.LayoutContext.Child")
	return c.node.children[i]
}

// LayoutChild lays out child with cons. parentUsesSize declares that the
// caller's own geometry depends on the child's; when false the child becomes
// a relayout boundary. On failure the child keeps its previous geometry,
// which is returned together with the error.
func (c *LayoutContext) LayoutChild(child NodeID, cons layout.Constraints, parentUsesSize bool) (layout.Geometry, error) {
	ch := c.child("render.LayoutContext.LayoutChild", child)
	err := c.owner.layoutNode(ch, cons, parentUsesSize)
	return ch.geometry, err
}

// LayoutBox lays out a box child and returns its size.
func (c *LayoutContext) LayoutBox(child NodeID, cons layout.BoxConstraints, parentUsesSize bool) (graphics.Size, error) {
	const op = "render.LayoutContext.LayoutBox"
	ch := c.child(op, child)
	if ch.protocol != layout.Box {
		return graphics.Size{}, mismatchError(op, ch, layout.Box)
	}
	err := c.owner.layoutNode(ch, cons, parentUsesSize)
	return ch.size(), err
}

// LayoutSliver lays out a sliver child and returns its geometry.
func (c *LayoutContext) LayoutSliver(child NodeID, cons layout.SliverConstraints, parentUsesSize bool) (layout.SliverGeometry, error) {
	const op = "render.LayoutContext.LayoutSliver"
	ch := c.child(op, child)
	if ch.protocol != layout.Sliver {
		return layout.SliverGeometry{}, mismatchError(op, ch, layout.Sliver)
	}
	err := c.owner.layoutNode(ch, cons, parentUsesSize)
	g, _ := ch.geometry.(layout.SliverGeometry)
	return g, err
}

// ChildSize returns the size of a laid out box child.
func (c *LayoutContext) ChildSize(child NodeID) graphics.Size {
	return c.child("render.LayoutContext.ChildSize", child).size()
}

// ChildGeometry returns the geometry of a child, or nil before its first
// layout.
func (c *LayoutContext) ChildGeometry(child NodeID) layout.Geometry {
	return c.child("render.LayoutContext.ChildGeometry", child).geometry
}

// ParentData returns the parent data of child.
func (c *LayoutContext) ParentData(child NodeID) layout.ParentData {
	return c.child("render.LayoutContext.ParentData", child).parentData
}

// SetParentData replaces the parent data of child.
func (c *LayoutContext) SetParentData(child NodeID, data layout.ParentData) {
	ch := c.child("render.LayoutContext.SetParentData", child)
	c.owner.journalParentData(ch)
	c.owner.setParentData(c.node, ch, data)
}

// SetChildOffset positions child. A changed offset schedules a repaint.
func (c *LayoutContext) SetChildOffset(child NodeID, offset graphics.Offset) {
	const op = "render.LayoutContext.SetChildOffset"
	ch := c.child(op, child)
	pd, ok := ch.parentData.(layout.OffsetSetter)
	if !ok {
		errors.Violation(op, errors.KindProgramming, "parent data %T of %s has no settable offset", ch.parentData, ch.name())
	}
	if pd.PaintOffset() == offset {
		return
	}
	c.owner.journalParentData(ch)
	pd.SetPaintOffset(offset)
	c.owner.markNeedsPaint(c.node)
}

// SetGeometry records the result of the layout.
func (c *LayoutContext) SetGeometry(g layout.Geometry) {
	c.check("render.LayoutContext.SetGeometry")
	c.geometry = g
}

// SetSize records the size of a box node.
func (c *LayoutContext) SetSize(size graphics.Size) {
	c.SetGeometry(layout.BoxGeometry{Size: size})
}

// Geometry returns the geometry recorded so far, or nil.
func (c *LayoutContext) Geometry() layout.Geometry {
	return c.geometry
}

// Size returns the size recorded so far. For sized-by-parent nodes this is
// the result of PerformResize.
func (c *LayoutContext) Size() graphics.Size {
	g, _ := c.geometry.(layout.BoxGeometry)
	return g.Size
}

// RequestRelayout asks for the node to be laid out again in another pass of
// the current flush, for example after a scroll offset correction. The
// number of extra passes is bounded by the owner's max layout passes.
func (c *LayoutContext) RequestRelayout() {
	c.check("render.LayoutContext.RequestRelayout")
	c.owner.relayoutRequests = append(c.owner.relayoutRequests, c.node.id)
}

func mismatchError(op string, n *node, want layout.Protocol) error {
	return &errors.RenderError{
		Op:   op,
		Kind: errors.KindProtocol,
		Node: n.name(),
		ID:   n.id.Raw(),
		Err:  fmt.Errorf("child %s: %w", n.name(), &layout.MismatchError{Want: want, Got: n.protocol}),
	}
}
