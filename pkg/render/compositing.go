package render

// FlushCompositingBits recomputes which nodes need their own layer. A node
// needs compositing when it is a repaint boundary, when its kind always
// needs compositing, or when any child does. Nodes whose answer changed are
// scheduled for repaint.
func (o *Owner) FlushCompositingBits() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushCompositingBits()
}

func (o *Owner) flushCompositingBits() {
	o.stats.CompositingUpdates = 0
	for _, n := range o.sortedByDepth(o.dirtyCompositing) {
		if n.attached() {
			o.updateCompositingBits(n)
		}
	}
	clear(o.dirtyCompositing)
}

func (o *Owner) updateCompositingBits(n *node) {
	if !n.has(flagNeedsCompositingBitsUpdate) {
		return
	}
	old := n.has(flagNeedsCompositing)
	need := n.has(flagRepaintBoundary) || n.alwaysNeedsCompositing()
	for _, id := range n.children {
		c := o.node("render.updateCompositingBits", id)
		o.updateCompositingBits(c)
		if c.has(flagNeedsCompositing) {
			need = true
		}
	}
	n.setTo(flagNeedsCompositing, need)
	n.clear(flagNeedsCompositingBitsUpdate)
	o.stats.CompositingUpdates++
	if old != need {
		o.markNeedsPaint(n)
	}
}
