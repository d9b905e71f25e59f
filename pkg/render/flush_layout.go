package render

import (
	"errors"
	"fmt"
	"slices"
	"time"

	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/layout"
)

// FlushLayout lays out every scheduled relayout boundary, shallowest first.
// The root is laid out with rootConstraints; pass nil to reuse the previous
// ones. Every other boundary reuses the constraints of its last layout.
//
// Failures do not stop the flush. They are joined into the returned error
// and reported to the owner's handler; the failing nodes keep their previous
// geometry, stay dirty and stay scheduled for the next flush.
func (o *Owner) FlushLayout(rootConstraints layout.Constraints) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLayout(rootConstraints)
}

func (o *Owner) flushLayout(rootConstraints layout.Constraints) error {
	const op = "render.Owner.FlushLayout"
	o.stats.LayoutPasses, o.stats.NodesLaidOut, o.stats.LayoutFailures = 0, 0, 0
	o.layoutFailures = o.layoutFailures[:0]
	o.failedLayout = o.failedLayout[:0]
	o.relayoutRequests = o.relayoutRequests[:0]
	o.resetJournal()
	if o.root.IsZero() {
		return nil
	}

	root := o.node(op, o.root)
	if rootConstraints != nil && rootConstraints != o.rootConstraints {
		o.rootConstraints = rootConstraints
		root.set(flagNeedsLayout)
		o.dirtyLayout[root.id] = struct{}{}
	}
	if o.rootConstraints == nil && root.has(flagNeedsLayout) {
		o.layoutFailure(root, fmt.Errorf("no root constraints"))
	}

	for pass := 0; len(o.dirtyLayout) > 0 && o.rootConstraints != nil; pass++ {
		if pass == o.maxLayoutPasses {
			o.layoutFailure(root, fmt.Errorf("relayout loop: %d nodes still dirty after %d passes", len(o.dirtyLayout), pass))
			break
		}
		o.stats.LayoutPasses++
		dirty := o.sortedByDepth(o.dirtyLayout)
		clear(o.dirtyLayout)
		for _, n := range dirty {
			// Laid out by an ancestor earlier in this pass.
			if !n.attached() || !n.has(flagNeedsLayout) {
				continue
			}
			if n.id == o.root {
				_ = o.layoutNode(n, o.rootConstraints, false)
				o.resetJournal()
				continue
			}
			if n.constraints == nil {
				// Never laid out; its parent is scheduled and will reach it.
				continue
			}
			if !n.has(flagRelayoutBoundary) {
				o.scheduleLayout(o.node(op, n.parent))
				continue
			}
			_ = o.layoutNode(n, n.constraints, n.has(flagParentUsesSize))
			o.resetJournal()
		}
		for _, id := range o.relayoutRequests {
			if n, ok := o.nodes.get(id); ok && n.attached() {
				o.scheduleLayout(n)
			}
		}
		o.relayoutRequests = o.relayoutRequests[:0]
	}

	for _, id := range o.failedLayout {
		if n, ok := o.nodes.get(id); ok && n.attached() && n.has(flagNeedsLayout) {
			o.scheduleLayout(n)
		}
	}

	o.stats.LayoutFailures = len(o.layoutFailures)
	o.log().Debug("layout flushed", o.stats.layoutAttrs()...)
	if len(o.layoutFailures) == 0 {
		return nil
	}
	errs := make([]error, len(o.layoutFailures))
	for i, err := range o.layoutFailures {
		o.report(err)
		errs[i] = err
	}
	return errors.Join(errs...)
}

// layoutNode lays out n with c. It decides n's relayout boundary status,
// skips clean nodes whose constraints did not change, and commits the new
// geometry only when the node kind produced a valid one. When n fails, the
// commits and offsets its layout made to descendants are rolled back.
func (o *Owner) layoutNode(n *node, c layout.Constraints, parentUsesSize bool) error {
	if c == nil || c.Protocol() != n.protocol {
		got := "nil"
		if c != nil {
			got = c.Protocol().String()
		}
		return o.layoutFailure(n, fmt.Errorf("%w: %s node given %s constraints", rterrors.ErrProtocolMismatch, n.protocol, got))
	}

	n.setTo(flagParentUsesSize, parentUsesSize)
	n.setTo(flagRelayoutBoundary, n.id == o.root ||
		n.wantsRelayoutBoundary() ||
		n.has(flagSizedByParent) ||
		!parentUsesSize ||
		c.IsTight())

	if !n.has(flagNeedsLayout) && n.geometry != nil && n.constraints == c {
		return nil
	}

	if o.debugChecks {
		if err := c.Validate(); err != nil {
			return o.layoutFailure(n, err)
		}
	}
	if err := n.arity.CheckCount(len(n.children)); err != nil {
		return o.layoutFailure(n, err)
	}

	mark := len(o.journal)
	ctx := &LayoutContext{owner: o, node: n, constraints: c}
	err := o.performLayout(ctx)
	ctx.done = true
	if err == nil {
		err = o.checkGeometry(ctx)
	}
	if err != nil {
		o.rollbackLayout(mark)
		n.set(flagNeedsLayout)
		return o.layoutFailure(n, err)
	}

	o.journalCommit(n)
	changed := n.geometry != ctx.geometry
	n.constraints = c
	n.geometry = ctx.geometry
	n.clear(flagNeedsLayout)
	o.stats.NodesLaidOut++
	if changed {
		o.markNeedsPaint(n)
	}
	return nil
}

func (o *Owner) performLayout(ctx *LayoutContext) (err error) {
	defer rterrors.RecoverWithCallback(o.errorHandler(), "render.PerformLayout", func(p *rterrors.PanicError) {
		ctx.done = true
		err = p
	})
	n := ctx.node
	if n.has(flagSizedByParent) {
		bc, _ := ctx.constraints.(layout.BoxConstraints)
		ctx.geometry = layout.BoxGeometry{Size: n.object.(SizedByParentNode).PerformResize(bc)}
	}
	return n.object.PerformLayout(ctx)
}

func (o *Owner) checkGeometry(ctx *LayoutContext) error {
	n := ctx.node
	g := ctx.geometry
	if g == nil {
		return fmt.Errorf("%s returned without setting its geometry", kindName(n.object))
	}
	if g.Protocol() != n.protocol {
		return fmt.Errorf("%w: %s node produced %s geometry", rterrors.ErrProtocolMismatch, n.protocol, g.Protocol())
	}
	return g.Validate(ctx.constraints)
}

// layoutFailure records err as a layout failure of n. A failure that is
// already recorded, because a child's error was returned up the tree, is
// returned as is so it is reported once.
func (o *Owner) layoutFailure(n *node, err error) *rterrors.RenderError {
	o.failedLayout = append(o.failedLayout, n.id)
	var re *rterrors.RenderError
	if errors.As(err, &re) && slices.Contains(o.layoutFailures, re) {
		return re
	}
	re = &rterrors.RenderError{
		Op:        "render.layout",
		Kind:      rterrors.KindLayout,
		Node:      n.name(),
		ID:        n.id.Raw(),
		Err:       err,
		Timestamp: time.Now(),
	}
	o.layoutFailures = append(o.layoutFailures, re)
	return re
}
