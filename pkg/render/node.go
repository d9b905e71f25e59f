package render

import (
	"fmt"
	"strings"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
)

// Object is the behavior of one node kind. Concrete kinds declare their arity
// by embedding an arity marker (arity.SingleKind and friends) and their
// protocol through Protocol.
//
// Objects must not call Owner methods from PerformLayout or Paint; the
// contexts passed to them expose everything a callback may do.
type Object interface {
	arity.Marker
	Protocol() layout.Protocol
	// PerformLayout computes the node's geometry from ctx.Constraints(),
	// laying out children through ctx as needed, and records it with
	// ctx.SetGeometry (or ctx.SetSize for boxes).
	PerformLayout(ctx *LayoutContext) error
	// Paint draws the node with its origin at offset.
	Paint(ctx *PaintContext, offset graphics.Offset)
}

// SizedByParentNode is implemented by box kinds whose size depends only on
// the incoming constraints. PerformResize runs before PerformLayout, and the
// node is always a relayout boundary.
type SizedByParentNode interface {
	PerformResize(c layout.BoxConstraints) graphics.Size
}

// RelayoutBoundaryNode is implemented by kinds that opt into being a relayout
// boundary regardless of the constraints they receive.
type RelayoutBoundaryNode interface {
	IsRelayoutBoundary() bool
}

// RepaintBoundaryNode is implemented by kinds that paint into their own
// persistent layer.
type RepaintBoundaryNode interface {
	IsRepaintBoundary() bool
}

// CompositingNode is implemented by kinds that always need their own layer,
// such as opacity.
type CompositingNode interface {
	AlwaysNeedsCompositing() bool
}

// HitTestBehaviorNode declares how a kind participates in hit testing.
// Kinds that do not implement it use DeferToChild.
type HitTestBehaviorNode interface {
	HitTestBehavior() HitTestBehavior
}

// HitTestClipper is implemented by kinds that do not test children outside
// their own bounds.
type HitTestClipper interface {
	ClipsHitTest() bool
}

// ChildTransformer is implemented by kinds that paint children with more than
// a translation. ChildTransform maps child coordinates to parent coordinates;
// paintOffset is the child's parent-data paint offset.
type ChildTransformer interface {
	ChildTransform(child NodeID, paintOffset graphics.Offset) graphics.Matrix
}

// ChildProtocolNode is implemented by adapter kinds whose children use a
// different protocol than the kind itself.
type ChildProtocolNode interface {
	ChildProtocol() layout.Protocol
}

// ParentDataCreator is implemented by kinds that attach their own parent data
// type to children.
type ParentDataCreator interface {
	NewParentData(child layout.Protocol) layout.ParentData
}

// DebugNamer overrides the name used for a node in errors and dumps.
type DebugNamer interface {
	DebugName() string
}

// Lifecycle is the attachment state of a node.
type Lifecycle int

const (
	// Detached nodes are not connected to the owner's root.
	Detached Lifecycle = iota
	// Attached nodes are reachable from the owner's root.
	Attached
)

func (l Lifecycle) String() string {
	if l == Attached {
		return "attached"
	}
	return "detached"
}

type flags uint16

const (
	flagNeedsLayout flags = 1 << iota
	flagNeedsPaint
	flagNeedsCompositingBitsUpdate
	flagNeedsCompositing
	flagRelayoutBoundary
	flagRepaintBoundary
	flagSizedByParent
	flagParentUsesSize
)

type node struct {
	id          NodeID
	object      Object
	protocol    layout.Protocol
	arity       arity.Arity
	parent      NodeID
	children    []NodeID
	depth       int
	lifecycle   Lifecycle
	flags       flags
	constraints layout.Constraints
	geometry    layout.Geometry
	parentData  layout.ParentData
	layer       *layer.OffsetLayer
}

func (n *node) has(f flags) bool { return n.flags&f != 0 }

func (n *node) set(f flags) { n.flags |= f }

func (n *node) clear(f flags) { n.flags &^= f }

func (n *node) setTo(f flags, on bool) {
	if on {
		n.set(f)
	} else {
		n.clear(f)
	}
}

func (n *node) attached() bool { return n.lifecycle == Attached }

func (n *node) childProtocol() layout.Protocol {
	if cp, ok := n.object.(ChildProtocolNode); ok {
		return cp.ChildProtocol()
	}
	return n.protocol
}

func (n *node) wantsRelayoutBoundary() bool {
	rb, ok := n.object.(RelayoutBoundaryNode)
	return ok && rb.IsRelayoutBoundary()
}

func (n *node) wantsRepaintBoundary() bool {
	rb, ok := n.object.(RepaintBoundaryNode)
	return ok && rb.IsRepaintBoundary()
}

func (n *node) alwaysNeedsCompositing() bool {
	cn, ok := n.object.(CompositingNode)
	return ok && cn.AlwaysNeedsCompositing()
}

func (n *node) behavior() HitTestBehavior {
	if hb, ok := n.object.(HitTestBehaviorNode); ok {
		return hb.HitTestBehavior()
	}
	return DeferToChild
}

func (n *node) clipsHitTest() bool {
	hc, ok := n.object.(HitTestClipper)
	return ok && hc.ClipsHitTest()
}

// size returns the box size, or the hit-test area for slivers.
func (n *node) size() graphics.Size {
	switch g := n.geometry.(type) {
	case layout.BoxGeometry:
		return g.Size
	case layout.SliverGeometry:
		sc, _ := n.constraints.(layout.SliverConstraints)
		return g.HitSize(sc)
	}
	return graphics.Size{}
}

func (n *node) childIndex(child NodeID) int {
	for i, id := range n.children {
		if id == child {
			return i
		}
	}
	return -1
}

func (n *node) name() string {
	if dn, ok := n.object.(DebugNamer); ok {
		return dn.DebugName()
	}
	return kindName(n.object) + "#" + n.id.String()
}

func kindName(obj Object) string {
	name := fmt.Sprintf("%T", obj)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimPrefix(name, "*")
}
