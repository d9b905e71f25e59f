// Package render implements the render tree: an arena of nodes that follow
// the Box or Sliver layout protocol, the dirty-flag lifecycle with relayout
// and repaint boundaries, and the Owner that flushes layout, compositing
// bits and paint into a composited layer tree.
//
// Layout runs top-down from constraints supplied to FlushLayout. When a node
// changes, MarkNeedsLayout walks up to the nearest relayout boundary and only
// that boundary is scheduled. Paint is scheduled the same way using repaint
// boundaries, each of which owns a persistent OffsetLayer.
package render

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
)

// Owner stores a render tree and sequences its flush phases.
//
// All methods are safe for concurrent use: mutations and flushes take an
// exclusive lock and queries a shared one. Node kinds must not call Owner
// methods from their callbacks.
type Owner struct {
	mu sync.RWMutex

	nodes arena
	root  NodeID

	// Dirty sets. They are ordered by depth only when flushed.
	dirtyLayout      map[NodeID]struct{}
	dirtyCompositing map[NodeID]struct{}
	dirtyPaint       map[NodeID]struct{}

	rootConstraints  layout.Constraints
	relayoutRequests []NodeID
	layoutFailures   []*errors.RenderError
	failedLayout     []NodeID
	journal          []journalEntry
	paintFailures    []*errors.RenderError
	attempted        map[NodeID]struct{}

	logger          *slog.Logger
	handler         errors.ErrorHandler
	maxLayoutPasses int
	debugChecks     bool
	stats           Stats
}

// NewOwner returns an empty owner.
func NewOwner(opts ...Option) *Owner {
	o := &Owner{
		dirtyLayout:      make(map[NodeID]struct{}),
		dirtyCompositing: make(map[NodeID]struct{}),
		dirtyPaint:       make(map[NodeID]struct{}),
		attempted:        make(map[NodeID]struct{}),
		maxLayoutPasses:  DefaultMaxLayoutPasses,
		debugChecks:      true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Owner) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return Logger()
}

func (o *Owner) errorHandler() errors.ErrorHandler {
	if o.handler != nil {
		return o.handler
	}
	return &errors.LogHandler{Logger: o.log()}
}

func (o *Owner) report(err *errors.RenderError) {
	errors.Report(o.errorHandler(), err)
}

func (o *Owner) node(op string, id NodeID) *node {
	return o.nodes.mustGet(op, id)
}

// Root returns the root node, or the zero ID.
func (o *Owner) Root() NodeID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.root
}

// Len returns the number of live nodes, attached or not.
func (o *Owner) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.nodes.live
}

// Contains reports whether id resolves to a live node.
func (o *Owner) Contains(id NodeID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.nodes.get(id)
	return ok
}

// Parent returns the parent of id, or the zero ID for roots of (sub)trees.
func (o *Owner) Parent(id NodeID) NodeID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Parent", id).parent
}

// Children returns a copy of the child list of id in paint order.
func (o *Owner) Children(id NodeID) []NodeID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.node("render.Owner.Children", id).children)
}

// Depth returns the distance of id from the root of its tree.
func (o *Owner) Depth(id NodeID) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Depth", id).depth
}

// Protocol returns the layout protocol of id.
func (o *Owner) Protocol(id NodeID) layout.Protocol {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Protocol", id).protocol
}

// Arity returns the child arity of id.
func (o *Owner) Arity(id NodeID) arity.Arity {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Arity", id).arity
}

// Object returns the node kind stored for id.
func (o *Owner) Object(id NodeID) Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Object", id).object
}

// Lifecycle returns the attachment state of id.
func (o *Owner) Lifecycle(id NodeID) Lifecycle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Lifecycle", id).lifecycle
}

// Geometry returns the geometry from the most recent successful layout of
// id, or nil if it was never laid out.
func (o *Owner) Geometry(id NodeID) layout.Geometry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Geometry", id).geometry
}

// Size returns the cached size of a box node. Sliver nodes report their
// hit-test area.
func (o *Owner) Size(id NodeID) graphics.Size {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Size", id).size()
}

// SliverGeometry returns the cached geometry of a sliver node.
func (o *Owner) SliverGeometry(id NodeID) (layout.SliverGeometry, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	g, ok := o.node("render.Owner.SliverGeometry", id).geometry.(layout.SliverGeometry)
	return g, ok
}

// Constraints returns the constraints of the most recent successful layout.
func (o *Owner) Constraints(id NodeID) layout.Constraints {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.Constraints", id).constraints
}

// ParentData returns the parent data attached to id by its parent.
func (o *Owner) ParentData(id NodeID) layout.ParentData {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.ParentData", id).parentData
}

// NeedsLayout reports whether id has pending layout work.
func (o *Owner) NeedsLayout(id NodeID) bool {
	return o.flag("render.Owner.NeedsLayout", id, flagNeedsLayout)
}

// NeedsPaint reports whether id has pending paint work.
func (o *Owner) NeedsPaint(id NodeID) bool {
	return o.flag("render.Owner.NeedsPaint", id, flagNeedsPaint)
}

// NeedsCompositing reports whether id or a descendant needs its own layer.
func (o *Owner) NeedsCompositing(id NodeID) bool {
	return o.flag("render.Owner.NeedsCompositing", id, flagNeedsCompositing)
}

// IsRelayoutBoundary reports whether id currently absorbs layout dirtiness.
func (o *Owner) IsRelayoutBoundary(id NodeID) bool {
	return o.flag("render.Owner.IsRelayoutBoundary", id, flagRelayoutBoundary)
}

// IsRepaintBoundary reports whether id paints into its own layer.
func (o *Owner) IsRepaintBoundary(id NodeID) bool {
	return o.flag("render.Owner.IsRepaintBoundary", id, flagRepaintBoundary)
}

func (o *Owner) flag(op string, id NodeID, f flags) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node(op, id).has(f)
}

// LayerOf returns the persistent layer of a repaint boundary, or nil.
func (o *Owner) LayerOf(id NodeID) *layer.OffsetLayer {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.node("render.Owner.LayerOf", id).layer
}

// DirtyLayout returns the nodes scheduled for layout, shallowest first.
func (o *Owner) DirtyLayout() []NodeID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return ids(o.sortedByDepth(o.dirtyLayout))
}

// DirtyPaint returns the boundaries scheduled for paint, shallowest first.
func (o *Owner) DirtyPaint() []NodeID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return ids(o.sortedByDepth(o.dirtyPaint))
}

// Stats returns the counters of the most recent flushes.
func (o *Owner) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stats
}

// sortedByDepth resolves a dirty set and orders it parents first. Entries
// that no longer resolve are dropped. Ties are broken by arena index so the
// order is deterministic.
func (o *Owner) sortedByDepth(set map[NodeID]struct{}) []*node {
	out := make([]*node, 0, len(set))
	for id := range set {
		if n, ok := o.nodes.get(id); ok {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b *node) int {
		if a.depth != b.depth {
			return a.depth - b.depth
		}
		return int(a.id.index) - int(b.id.index)
	})
	return out
}

func ids(nodes []*node) []NodeID {
	out := make([]NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}
