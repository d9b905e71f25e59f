package objects

import (
	"math"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// StackFit controls the constraints a Stack passes to its children.
type StackFit int

const (
	// StackLoose lets children pick any size up to the stack's maximum.
	StackLoose StackFit = iota
	// StackExpand forces children to the stack's biggest size.
	StackExpand
)

// StackParentData positions a child of a Stack. Children that are not
// Positioned are placed at the stack's origin.
//
// The stack reads Position during layout; mark the stack for layout after
// changing it.
type StackParentData struct {
	layout.BoxParentData
	Positioned bool
	Position   graphics.Offset
}

// Stack layers its children on top of each other, first child at the
// bottom. It takes the biggest size its constraints allow; along unbounded
// axes it wraps its children.
type Stack struct {
	arity.VariableKind
	Fit StackFit
	// RelayoutBoundary makes the stack a relayout boundary even when its
	// parent uses its size.
	RelayoutBoundary bool
}

func (s *Stack) Protocol() layout.Protocol { return layout.Box }

func (s *Stack) IsRelayoutBoundary() bool { return s.RelayoutBoundary }

func (s *Stack) NewParentData(child layout.Protocol) layout.ParentData {
	if child != layout.Box {
		return nil
	}
	return &StackParentData{}
}

func (s *Stack) PerformLayout(ctx *render.LayoutContext) error {
	c := ctx.BoxConstraints()
	childConstraints := c.Loosen()
	if s.Fit == StackExpand {
		childConstraints = layout.Tight(c.Biggest())
	}

	var extent graphics.Size
	for _, child := range ctx.Children() {
		size, err := ctx.LayoutBox(child, childConstraints, true)
		if err != nil {
			return err
		}
		var pos graphics.Offset
		if pd, ok := ctx.ParentData(child).(*StackParentData); ok && pd.Positioned {
			pos = pd.Position
		}
		ctx.SetChildOffset(child, pos)
		extent.Width = math.Max(extent.Width, pos.X+size.Width)
		extent.Height = math.Max(extent.Height, pos.Y+size.Height)
	}

	size := c.Biggest()
	if !c.HasBoundedWidth() {
		size.Width = c.ConstrainWidth(extent.Width)
	}
	if !c.HasBoundedHeight() {
		size.Height = c.ConstrainHeight(extent.Height)
	}
	ctx.SetSize(size)
	return nil
}

func (s *Stack) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	for _, child := range ctx.Children() {
		paintChild(ctx, child, offset)
	}
}
