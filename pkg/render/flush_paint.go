package render

import (
	"errors"
	"time"

	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
)

// FlushPaint repaints every scheduled repaint boundary, shallowest first,
// and returns a snapshot of the root's layer tree. Boundaries that still
// need layout are left scheduled.
//
// A boundary whose paint fails keeps its previous layer content and stays
// scheduled; the failures are joined into the returned error. The scene is
// non-nil whenever the owner has a root.
func (o *Owner) FlushPaint() (*layer.Scene, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushPaint()
}

func (o *Owner) flushPaint() (*layer.Scene, error) {
	const op = "render.Owner.FlushPaint"
	o.stats.BoundariesPainted, o.stats.NodesPainted, o.stats.LayersReused, o.stats.PaintFailures = 0, 0, 0, 0
	o.paintFailures = o.paintFailures[:0]
	clear(o.attempted)
	if o.root.IsZero() {
		return nil, nil
	}
	if len(o.dirtyCompositing) > 0 {
		o.flushCompositingBits()
	}

	for _, n := range o.sortedByDepth(o.dirtyPaint) {
		if _, ok := o.attempted[n.id]; ok {
			continue
		}
		if !n.attached() || !n.has(flagRepaintBoundary) || !n.has(flagNeedsPaint) {
			delete(o.dirtyPaint, n.id)
			continue
		}
		if n.has(flagNeedsLayout) || n.geometry == nil {
			continue
		}
		o.repaintBoundary(n)
	}

	root := o.node(op, o.root)
	if root.layer == nil {
		root.layer = layer.NewOffsetLayer(graphics.Offset{})
	}
	scene := layer.NewScene(root.layer)

	o.stats.PaintFailures = len(o.paintFailures)
	o.log().Debug("paint flushed", o.stats.paintAttrs()...)
	if len(o.paintFailures) == 0 {
		return scene, nil
	}
	errs := make([]error, len(o.paintFailures))
	for i, err := range o.paintFailures {
		o.report(err)
		errs[i] = err
	}
	return scene, errors.Join(errs...)
}

// repaintBoundary paints n into a staging container and commits the result
// to n's persistent layer only if the paint succeeded.
func (o *Owner) repaintBoundary(n *node) {
	o.attempted[n.id] = struct{}{}
	if n.layer == nil {
		n.layer = layer.NewOffsetLayer(graphics.Offset{})
	}
	staging := layer.NewContainerLayer()
	ctx := &PaintContext{owner: o, node: n, boundary: n, container: staging}
	err := o.paintBoundary(ctx)
	ctx.stopRecording()
	ctx.done = true
	if err == nil {
		err = ctx.err
	}
	if err != nil {
		ctx.rollback()
		n.set(flagNeedsPaint)
		o.paintFailures = append(o.paintFailures, &rterrors.RenderError{
			Op:        "render.paint",
			Kind:      rterrors.KindPaint,
			Node:      n.name(),
			ID:        n.id.Raw(),
			Err:       err,
			Timestamp: time.Now(),
		})
		return
	}

	n.layer.RemoveAllChildren()
	for _, l := range staging.Children() {
		n.layer.Append(l)
	}
	delete(o.dirtyPaint, n.id)
	o.stats.BoundariesPainted++
}

func (o *Owner) paintBoundary(ctx *PaintContext) (err error) {
	defer rterrors.RecoverWithCallback(o.errorHandler(), "render.Paint", func(p *rterrors.PanicError) {
		err = p
	})
	ctx.paintNode(ctx.boundary, graphics.Offset{})
	return nil
}

// FlushPipeline runs layout, compositing bits and paint for one frame. When
// layout fails nothing is painted; the scene of the previous frame is
// returned with the layout error and all dirty state is kept.
func (o *Owner) FlushPipeline(rootConstraints layout.Constraints) (*layer.Scene, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.flushLayout(rootConstraints); err != nil {
		var scene *layer.Scene
		if root, ok := o.nodes.get(o.root); ok && root.layer != nil {
			scene = layer.NewScene(root.layer)
		} else if ok {
			scene = layer.NewScene(nil)
		}
		return scene, err
	}
	o.flushCompositingBits()
	return o.flushPaint()
}
