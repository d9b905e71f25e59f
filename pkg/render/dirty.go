package render

import "github.com/go-drift/rendertree/pkg/errors"

// MarkNeedsLayout schedules id for layout. The mark walks up to the nearest
// relayout boundary, flagging every node on the way, and only the boundary
// is registered with the owner. Marking a detached node panics.
func (o *Owner) MarkNeedsLayout(id NodeID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markNeedsLayout(o.attachedNode("render.Owner.MarkNeedsLayout", id))
}

// MarkNeedsPaint schedules the nearest repaint boundary of id for paint.
// Marking a detached node panics.
func (o *Owner) MarkNeedsPaint(id NodeID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markNeedsPaint(o.attachedNode("render.Owner.MarkNeedsPaint", id))
}

// MarkNeedsCompositingBitsUpdate schedules a recomputation of the
// needs-compositing bits above id. Kinds whose AlwaysNeedsCompositing answer
// changes call it. Marking a detached node panics.
func (o *Owner) MarkNeedsCompositingBitsUpdate(id NodeID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markNeedsCompositingBitsUpdate(o.attachedNode("render.Owner.MarkNeedsCompositingBitsUpdate", id))
}

func (o *Owner) attachedNode(op string, id NodeID) *node {
	n := o.node(op, id)
	if !n.attached() {
		errors.Violation(op, errors.KindProgramming, "%s is detached", n.name())
	}
	return n
}

func (o *Owner) markNeedsLayout(n *node) {
	for {
		if n.has(flagNeedsLayout) {
			// The boundary above is already scheduled.
			return
		}
		n.set(flagNeedsLayout)
		if n.has(flagRelayoutBoundary) || n.parent.IsZero() {
			o.dirtyLayout[n.id] = struct{}{}
			return
		}
		n = o.node("render.markNeedsLayout", n.parent)
	}
}

// scheduleLayout is markNeedsLayout without the early exit. It re-registers
// nodes that are already flagged but no longer scheduled, such as nodes whose
// layout failed.
func (o *Owner) scheduleLayout(n *node) {
	for {
		n.set(flagNeedsLayout)
		if n.has(flagRelayoutBoundary) || n.parent.IsZero() {
			o.dirtyLayout[n.id] = struct{}{}
			return
		}
		n = o.node("render.scheduleLayout", n.parent)
	}
}

func (o *Owner) markNeedsPaint(n *node) {
	for {
		n.set(flagNeedsPaint)
		if n.has(flagRepaintBoundary) {
			o.dirtyPaint[n.id] = struct{}{}
			return
		}
		if n.parent.IsZero() {
			return
		}
		n = o.node("render.markNeedsPaint", n.parent)
	}
}

func (o *Owner) markNeedsCompositingBitsUpdate(n *node) {
	for {
		if n.has(flagNeedsCompositingBitsUpdate) {
			return
		}
		n.set(flagNeedsCompositingBitsUpdate)
		if n.parent.IsZero() {
			break
		}
		p := o.node("render.markNeedsCompositingBitsUpdate", n.parent)
		if p.has(flagNeedsCompositingBitsUpdate) {
			return
		}
		if n.has(flagRepaintBoundary) || p.has(flagRepaintBoundary) {
			break
		}
		n = p
	}
	o.dirtyCompositing[n.id] = struct{}{}
}

// attach connects a subtree to the owner. Boundary status is decided here
// and dirty boundaries are registered.
func (o *Owner) attach(n *node) {
	n.lifecycle = Attached
	isRoot := n.id == o.root
	n.setTo(flagRelayoutBoundary, isRoot || n.wantsRelayoutBoundary() || n.has(flagSizedByParent))
	n.setTo(flagRepaintBoundary, isRoot || n.wantsRepaintBoundary())
	if n.has(flagRepaintBoundary) {
		n.set(flagNeedsCompositing)
	} else if n.layer != nil {
		n.layer.Detach()
		n.layer = nil
	}
	if n.has(flagNeedsLayout) && n.has(flagRelayoutBoundary) {
		o.dirtyLayout[n.id] = struct{}{}
	}
	if n.has(flagNeedsPaint) && n.has(flagRepaintBoundary) {
		o.dirtyPaint[n.id] = struct{}{}
	}
	if isRoot && n.has(flagNeedsCompositingBitsUpdate) {
		o.dirtyCompositing[n.id] = struct{}{}
	}
	for _, id := range n.children {
		o.attach(o.node("render.attach", id))
	}
}

// detach disconnects a subtree and forgets its scheduled work. The dirty
// flags stay set so the work is redone after the next attach.
func (o *Owner) detach(n *node) {
	n.lifecycle = Detached
	delete(o.dirtyLayout, n.id)
	delete(o.dirtyPaint, n.id)
	delete(o.dirtyCompositing, n.id)
	for _, id := range n.children {
		o.detach(o.node("render.detach", id))
	}
}
