package layout

import "github.com/go-drift/rendertree/pkg/graphics"

// ParentData is per-child metadata owned by the parent.
type ParentData interface {
	// PaintOffset is where the parent paints the child, in parent coordinates.
	PaintOffset() graphics.Offset
}

// OffsetSetter is implemented by parent data whose paint offset the parent
// may assign during layout.
type OffsetSetter interface {
	ParentData
	SetPaintOffset(o graphics.Offset)
}

// BoxParentData positions a child within a box parent.
type BoxParentData struct {
	Offset graphics.Offset
}

// PaintOffset returns Offset.
func (d *BoxParentData) PaintOffset() graphics.Offset { return d.Offset }

// SetPaintOffset sets Offset.
func (d *BoxParentData) SetPaintOffset(o graphics.Offset) { d.Offset = o }

// FlexFit controls whether a flexible child must fill its allotted space.
type FlexFit int

const (
	FlexTight FlexFit = iota
	FlexLoose
)

// FlexParentData adds a flex weight to BoxParentData.
type FlexParentData struct {
	BoxParentData
	Flex int
	Fit  FlexFit
}

// SliverParentData positions a child within a sliver parent.
type SliverParentData struct {
	// LayoutOffset is the child's position along the main axis, in scroll
	// coordinates.
	LayoutOffset float64
	// Offset is the child's paint position in parent coordinates.
	Offset graphics.Offset
}

// PaintOffset returns Offset.
func (d *SliverParentData) PaintOffset() graphics.Offset { return d.Offset }

// SetPaintOffset sets Offset.
func (d *SliverParentData) SetPaintOffset(o graphics.Offset) { d.Offset = o }

// KeepAliveParentData lets a lazily built sliver child survive scrolling out
// of the cache area.
type KeepAliveParentData struct {
	SliverParentData
	KeepAlive bool
	KeptAlive bool
}
