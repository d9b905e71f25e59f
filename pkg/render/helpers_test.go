package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/rendertree/pkg/arity"
	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
)

// recorder collects layout and paint events in call order.
type recorder struct {
	events []string
}

func (r *recorder) add(event string) {
	if r != nil {
		r.events = append(r.events, event)
	}
}

func (r *recorder) reset() {
	r.events = nil
}

type leaf struct {
	arity.LeafKind
	name              string
	size              graphics.Size
	behavior          HitTestBehavior
	rec               *recorder
	failLayout        error
	failPaint         error
	panicPaint        bool
	ignoreConstraints bool
	skipGeometry      bool
	relayout          bool
}

func (l *leaf) Protocol() layout.Protocol { return layout.Box }

func (l *leaf) HitTestBehavior() HitTestBehavior { return l.behavior }

func (l *leaf) PerformLayout(ctx *LayoutContext) error {
	l.rec.add("layout " + l.name)
	if l.failLayout != nil {
		return l.failLayout
	}
	if l.relayout {
		ctx.RequestRelayout()
	}
	if l.skipGeometry {
		return nil
	}
	size := l.size
	if !l.ignoreConstraints {
		size = ctx.BoxConstraints().Constrain(size)
	}
	ctx.SetSize(size)
	return nil
}

func (l *leaf) Paint(ctx *PaintContext, offset graphics.Offset) {
	l.rec.add("paint " + l.name)
	if l.panicPaint {
		panic("paint exploded")
	}
	if l.failPaint != nil {
		ctx.Fail(l.failPaint)
		return
	}
	ctx.Canvas().DrawRect(graphics.RectFromOffsetSize(offset, ctx.Size()), graphics.FillPaint(graphics.ColorRed))
}

// stack lays out children loosely and places them at offsets[index].
type stack struct {
	arity.VariableKind
	name             string
	rec              *recorder
	behavior         HitTestBehavior
	relayoutBoundary bool
	repaintBoundary  bool
	composite        bool
	opacity          float64
	unbalanced       bool
	offsets          map[int]graphics.Offset
}

func (s *stack) Protocol() layout.Protocol { return layout.Box }

func (s *stack) IsRelayoutBoundary() bool { return s.relayoutBoundary }

func (s *stack) IsRepaintBoundary() bool { return s.repaintBoundary }

func (s *stack) AlwaysNeedsCompositing() bool { return s.composite }

func (s *stack) HitTestBehavior() HitTestBehavior { return s.behavior }

func (s *stack) PerformLayout(ctx *LayoutContext) error {
	s.rec.add("layout " + s.name)
	bc := ctx.BoxConstraints()
	var size graphics.Size
	for i, child := range ctx.Children() {
		cs, err := ctx.LayoutBox(child, bc.Loosen(), true)
		if err != nil {
			return err
		}
		ctx.SetChildOffset(child, s.offsets[i])
		size.Width = max(size.Width, cs.Width)
		size.Height = max(size.Height, cs.Height)
	}
	if bc.HasBoundedWidth() && bc.HasBoundedHeight() {
		size = bc.Biggest()
	}
	ctx.SetSize(bc.Constrain(size))
	return nil
}

func (s *stack) Paint(ctx *PaintContext, offset graphics.Offset) {
	s.rec.add("paint " + s.name)
	if s.opacity > 0 {
		ctx.PushOpacity(s.opacity)
	}
	if s.unbalanced {
		ctx.PushOffset(graphics.Offset{X: 1})
	}
	for _, child := range ctx.Children() {
		ctx.PaintChild(child, offset.Add(ctx.ParentData(child).PaintOffset()))
	}
	if s.opacity > 0 {
		ctx.Pop()
	}
}

// proxy passes its constraints to its only child and takes the child's size.
type proxy struct {
	arity.SingleKind
	name             string
	rec              *recorder
	relayoutBoundary bool
	repaintBoundary  bool
}

func (p *proxy) Protocol() layout.Protocol { return layout.Box }

func (p *proxy) IsRelayoutBoundary() bool { return p.relayoutBoundary }

func (p *proxy) IsRepaintBoundary() bool { return p.repaintBoundary }

func (p *proxy) PerformLayout(ctx *LayoutContext) error {
	p.rec.add("layout " + p.name)
	size, err := ctx.LayoutBox(ctx.Child(0), ctx.BoxConstraints(), true)
	if err != nil {
		return err
	}
	ctx.SetSize(size)
	return nil
}

func (p *proxy) Paint(ctx *PaintContext, offset graphics.Offset) {
	p.rec.add("paint " + p.name)
	ctx.PaintChild(ctx.Child(0), offset)
}

// optional sizes to its child, or to the smallest size without one.
type optional struct {
	arity.OptionalKind
}

func (o *optional) Protocol() layout.Protocol { return layout.Box }

func (o *optional) PerformLayout(ctx *LayoutContext) error {
	if ctx.ChildCount() == 0 {
		ctx.SetSize(ctx.BoxConstraints().Smallest())
		return nil
	}
	size, err := ctx.LayoutBox(ctx.Child(0), ctx.BoxConstraints(), true)
	if err != nil {
		return err
	}
	ctx.SetSize(size)
	return nil
}

func (o *optional) Paint(*PaintContext, graphics.Offset) {}

// scaler paints and hit tests its child scaled by factor.
type scaler struct {
	arity.SingleKind
	factor float64
}

func (s *scaler) Protocol() layout.Protocol { return layout.Box }

func (s *scaler) PerformLayout(ctx *LayoutContext) error {
	if _, err := ctx.LayoutBox(ctx.Child(0), ctx.BoxConstraints().Loosen(), false); err != nil {
		return err
	}
	ctx.SetSize(ctx.BoxConstraints().Biggest())
	return nil
}

func (s *scaler) ChildTransform(_ NodeID, offset graphics.Offset) graphics.Matrix {
	return graphics.ScaleMatrix(s.factor, s.factor).Translate(offset.X, offset.Y)
}

func (s *scaler) Paint(ctx *PaintContext, offset graphics.Offset) {
	ctx.PushTransform(graphics.TranslationMatrix(offset.X, offset.Y).Multiply(graphics.ScaleMatrix(s.factor, s.factor)))
	ctx.PaintChild(ctx.Child(0), graphics.Offset{})
	ctx.Pop()
}

type sized struct {
	arity.LeafKind
	resized int
}

func (s *sized) Protocol() layout.Protocol { return layout.Box }

func (s *sized) PerformResize(c layout.BoxConstraints) graphics.Size {
	s.resized++
	return c.Biggest()
}

func (s *sized) PerformLayout(*LayoutContext) error { return nil }

func (s *sized) Paint(*PaintContext, graphics.Offset) {}

type sliverLeaf struct {
	arity.LeafKind
}

func (s *sliverLeaf) Protocol() layout.Protocol { return layout.Sliver }

func (s *sliverLeaf) PerformLayout(ctx *LayoutContext) error {
	ctx.SetGeometry(layout.ZeroSliverGeometry())
	return nil
}

func (s *sliverLeaf) Paint(*PaintContext, graphics.Offset) {}

// escaper keeps its layout context past PerformLayout.
type escaper struct {
	arity.LeafKind
	ctx *LayoutContext
}

func (e *escaper) Protocol() layout.Protocol { return layout.Box }

func (e *escaper) PerformLayout(ctx *LayoutContext) error {
	e.ctx = ctx
	ctx.SetSize(ctx.BoxConstraints().Smallest())
	return nil
}

func (e *escaper) Paint(*PaintContext, graphics.Offset) {}

type testHandler struct {
	errors []*rterrors.RenderError
	panics []*rterrors.PanicError
}

func (h *testHandler) HandleError(err *rterrors.RenderError) {
	h.errors = append(h.errors, err)
}

func (h *testHandler) HandlePanic(err *rterrors.PanicError) {
	h.panics = append(h.panics, err)
}

func newOwner(opts ...Option) (*Owner, *testHandler) {
	h := &testHandler{}
	return NewOwner(append([]Option{WithErrorHandler(h)}, opts...)...), h
}

func mustCreate(t *testing.T, o *Owner, obj Object, children ...NodeID) NodeID {
	t.Helper()
	id, err := o.CreateNode(obj, children...)
	require.NoError(t, err)
	return id
}

func requireViolation(t *testing.T, kind rterrors.ErrorKind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		re, ok := r.(*rterrors.RenderError)
		require.True(t, ok, "panic value is %T, want *RenderError", r)
		assert.Equal(t, kind, re.Kind, re.Error())
	}()
	fn()
}

var rootSize = layout.Tight(graphics.Size{Width: 200, Height: 100})
