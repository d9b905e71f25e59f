package render

import (
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
)

// layoutFlags are the flags a layout commit changes.
const layoutFlags = flagNeedsLayout | flagRelayoutBoundary | flagParentUsesSize

type journalKind uint8

const (
	journalCommit journalKind = iota
	journalParentData
)

// journalEntry is the state a node had before one layout side effect.
type journalEntry struct {
	kind        journalKind
	node        *node
	geometry    layout.Geometry
	constraints layout.Constraints
	flags       flags
	parentData  layout.ParentData
	offset      graphics.Offset
}

// journalCommit records n's geometry, constraints and layout flags before
// they are overwritten by a successful layout.
func (o *Owner) journalCommit(n *node) {
	o.journal = append(o.journal, journalEntry{
		kind:        journalCommit,
		node:        n,
		geometry:    n.geometry,
		constraints: n.constraints,
		flags:       n.flags & layoutFlags,
	})
}

// journalParentData records the parent data of n and its offset before a
// layout replaces or moves it.
func (o *Owner) journalParentData(n *node) {
	e := journalEntry{kind: journalParentData, node: n, parentData: n.parentData}
	if n.parentData != nil {
		e.offset = n.parentData.PaintOffset()
	}
	o.journal = append(o.journal, e)
}

// rollbackLayout undoes the journal back to mark, newest first. Restored
// nodes need layout again and are rescheduled after the flush.
func (o *Owner) rollbackLayout(mark int) {
	for i := len(o.journal) - 1; i >= mark; i-- {
		e := o.journal[i]
		n := e.node
		switch e.kind {
		case journalCommit:
			n.geometry = e.geometry
			n.constraints = e.constraints
			n.flags = n.flags&^layoutFlags | e.flags
			n.set(flagNeedsLayout)
			o.failedLayout = append(o.failedLayout, n.id)
		case journalParentData:
			n.parentData = e.parentData
			if pd, ok := e.parentData.(layout.OffsetSetter); ok {
				pd.SetPaintOffset(e.offset)
			}
		}
		o.journal[i] = journalEntry{}
	}
	o.journal = o.journal[:mark]
}

// resetJournal drops the journal once a top level layout has finished.
func (o *Owner) resetJournal() {
	clear(o.journal)
	o.journal = o.journal[:0]
}
