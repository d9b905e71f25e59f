package render

import (
	"errors"
	"fmt"
	"slices"

	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
)

// PaintContext is handed to Object.Paint. It records drawing into pictures
// and builds the layer tree of one repaint boundary. It is only valid while
// the boundary paints.
//
// The Push methods change the coordinate space of everything painted until
// the matching Pop. When the painting node needs compositing they open a new
// layer; otherwise they are recorded inline on the canvas.
type PaintContext struct {
	owner    *Owner
	node     *node
	boundary *node

	container layer.Container
	recorder  graphics.PictureRecorder
	canvas    graphics.Canvas
	stack     []pushEntry
	reused    []reusedLayer
	err       error
	done      bool
}

type pushEntry struct {
	node *node
	// prev is the container to restore on Pop; nil for inline entries.
	prev layer.Container
}

type reusedLayer struct {
	layer  *layer.OffsetLayer
	parent layer.Container
	offset graphics.Offset
}

func (c *PaintContext) check(op string) {
	if c.done {
		rterrors.Violation(op, rterrors.KindProgramming, "paint context of %s used after paint returned", c.boundary.name())
	}
}

func (c *PaintContext) child(op string, id NodeID) *node {
	c.check(op)
	ch := c.owner.node(op, id)
	if ch.parent != c.node.id {
		rterrors.Violation(op, rterrors.KindProgramming, "%s is not a child of %s", ch.name(), c.node.name())
	}
	return ch
}

// ID returns the node being painted.
func (c *PaintContext) ID() NodeID {
	return c.node.id
}

// Size returns the size of the node being painted. Slivers report their
// hit-test area.
func (c *PaintContext) Size() graphics.Size {
	return c.node.size()
}

// Geometry returns the geometry of the node being painted.
func (c *PaintContext) Geometry() layout.Geometry {
	return c.node.geometry
}

// Constraints returns the constraints of the node's last layout.
func (c *PaintContext) Constraints() layout.Constraints {
	return c.node.constraints
}

// NeedsCompositing reports whether pushes open layers for this node.
func (c *PaintContext) NeedsCompositing() bool {
	return c.node.has(flagNeedsCompositing)
}

// Children returns the child IDs in paint order.
func (c *PaintContext) Children() []NodeID {
	c.check("render.PaintContext.Children")
	return slices.Clone(c.node.children)
}

// ChildCount returns the number of children.
func (c *PaintContext) ChildCount() int {
	return len(c.node.children)
}

// Child returns the child at index i.
func (c *PaintContext) Child(i int) NodeID {
	c.check("render.PaintContext.Child")
	return c.node.children[i]
}

// ParentData returns the parent data of child.
func (c *PaintContext) ParentData(child NodeID) layout.ParentData {
	return c.child("render.PaintContext.ParentData", child).parentData
}

// ChildSize returns the size of child.
func (c *PaintContext) ChildSize(child NodeID) graphics.Size {
	return c.child("render.PaintContext.ChildSize", child).size()
}

// ChildGeometry returns the geometry of child.
func (c *PaintContext) ChildGeometry(child NodeID) layout.Geometry {
	return c.child("render.PaintContext.ChildGeometry", child).geometry
}

// Canvas returns the canvas of the current picture, starting one if needed.
// Do not keep it across PaintChild or Push calls; they may close the picture.
func (c *PaintContext) Canvas() graphics.Canvas {
	c.check("render.PaintContext.Canvas")
	if c.canvas == nil {
		c.canvas = c.recorder.BeginRecording(c.boundary.size())
	}
	return c.canvas
}

// stopRecording closes the current picture and appends it to the current
// container.
func (c *PaintContext) stopRecording() {
	if c.canvas == nil {
		return
	}
	dl := c.recorder.EndRecording()
	c.canvas = nil
	if !dl.IsEmpty() {
		c.container.Append(layer.NewPictureLayer(dl))
	}
}

func (c *PaintContext) pushLayer(l layer.Container) {
	c.stopRecording()
	c.container.Append(l)
	c.stack = append(c.stack, pushEntry{node: c.node, prev: c.container})
	c.container = l
}

func (c *PaintContext) pushInline() graphics.Canvas {
	canvas := c.Canvas()
	canvas.Save()
	c.stack = append(c.stack, pushEntry{node: c.node})
	return canvas
}

// PushOffset translates subsequent painting by offset.
func (c *PaintContext) PushOffset(offset graphics.Offset) {
	c.check("render.PaintContext.PushOffset")
	if !offset.IsFinite() {
		c.Fail(fmt.Errorf("non-finite offset %v", offset))
		offset = graphics.Offset{}
	}
	if c.NeedsCompositing() {
		c.pushLayer(layer.NewOffsetLayer(offset))
		return
	}
	c.pushInline().Translate(offset.X, offset.Y)
}

// PushClipRect clips subsequent painting to clip.
func (c *PaintContext) PushClipRect(clip graphics.Rect) {
	c.check("render.PaintContext.PushClipRect")
	if !clip.IsFinite() {
		c.Fail(fmt.Errorf("non-finite clip %v", clip))
		clip = graphics.Rect{}
	}
	if c.NeedsCompositing() {
		c.pushLayer(layer.NewClipRectLayer(clip))
		return
	}
	c.pushInline().ClipRect(clip)
}

// PushOpacity blends subsequent painting with alpha in [0, 1].
func (c *PaintContext) PushOpacity(alpha float64) {
	c.check("render.PaintContext.PushOpacity")
	if !(alpha >= 0 && alpha <= 1) {
		c.Fail(fmt.Errorf("opacity %g outside [0, 1]", alpha))
		alpha = 1
	}
	if c.NeedsCompositing() {
		c.pushLayer(layer.NewOpacityLayer(alpha, graphics.Offset{}))
		return
	}
	c.pushInline().SaveLayerAlpha(graphics.Rect{}, alpha)
}

// PushTransform transforms subsequent painting by m.
func (c *PaintContext) PushTransform(m graphics.Matrix) {
	c.check("render.PaintContext.PushTransform")
	if !m.IsFinite() {
		c.Fail(fmt.Errorf("non-finite transform %v", m))
		m = graphics.Identity()
	}
	if c.NeedsCompositing() {
		c.pushLayer(layer.NewTransformLayer(m))
		return
	}
	c.pushInline().Transform(m)
}

// Pop closes the most recent push of the painting node.
func (c *PaintContext) Pop() {
	c.check("render.PaintContext.Pop")
	k := len(c.stack)
	if k == 0 || c.stack[k-1].node != c.node {
		c.Fail(errors.New("pop without matching push"))
		return
	}
	c.pop()
}

func (c *PaintContext) pop() {
	e := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if e.prev == nil {
		c.Canvas().Restore()
		return
	}
	c.stopRecording()
	c.container = e.prev
}

// PaintChild paints child with its origin at offset. A child that is a
// repaint boundary contributes its persistent layer, repainted first only if
// it is dirty. Children without a valid layout are skipped.
func (c *PaintContext) PaintChild(child NodeID, offset graphics.Offset) {
	const op = "render.PaintContext.PaintChild"
	ch := c.child(op, child)
	if !offset.IsFinite() {
		c.Fail(fmt.Errorf("non-finite offset %v for %s", offset, ch.name()))
		return
	}
	if ch.has(flagNeedsLayout) || ch.geometry == nil {
		return
	}
	if ch.has(flagRepaintBoundary) {
		c.appendBoundary(ch, offset)
		return
	}
	parent := c.node
	c.node = ch
	c.paintNode(ch, offset)
	c.node = parent
}

func (c *PaintContext) appendBoundary(ch *node, offset graphics.Offset) {
	o := c.owner
	_, attempted := o.attempted[ch.id]
	if (ch.has(flagNeedsPaint) || ch.layer == nil) && !attempted {
		o.repaintBoundary(ch)
	} else {
		o.stats.LayersReused++
	}
	if ch.layer == nil {
		return
	}
	c.stopRecording()
	c.reused = append(c.reused, reusedLayer{layer: ch.layer, parent: ch.layer.Parent(), offset: ch.layer.Offset})
	ch.layer.Offset = offset
	c.container.Append(ch.layer)
}

// paintNode runs the node's Paint and closes pushes it left open.
func (c *PaintContext) paintNode(n *node, offset graphics.Offset) {
	mark := len(c.stack)
	n.object.Paint(c, offset)
	if len(c.stack) > mark {
		c.Fail(fmt.Errorf("%s left %d pushes open", n.name(), len(c.stack)-mark))
		for len(c.stack) > mark {
			c.pop()
		}
	}
	n.clear(flagNeedsPaint)
	c.owner.stats.NodesPainted++
}

// Fail records a paint failure of the painting node. Painting continues, but
// the repaint boundary keeps its previous layer content and stays dirty.
func (c *PaintContext) Fail(err error) {
	c.check("render.PaintContext.Fail")
	c.err = errors.Join(c.err, fmt.Errorf("%s: %w", c.node.name(), err))
}

// rollback undoes the changes made to reused child layers.
func (c *PaintContext) rollback() {
	for i := len(c.reused) - 1; i >= 0; i-- {
		r := c.reused[i]
		r.layer.Offset = r.offset
		if r.parent != nil {
			r.parent.Adopt()
		} else {
			r.layer.Detach()
		}
	}
}
