package rendertest

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-drift/rendertree/pkg/arity"
	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/objects"
	"github.com/go-drift/rendertree/pkg/render"
)

type failingBox struct {
	arity.LeafKind
}

func (failingBox) Protocol() layout.Protocol { return layout.Box }

func (failingBox) PerformLayout(*render.LayoutContext) error { return errors.New("boom") }

func (failingBox) Paint(*render.PaintContext, graphics.Offset) {}

func TestTester_PumpUsesTightRootConstraints(t *testing.T) {
	tester := New(t)
	if got := tester.Size(); got != (graphics.Size{Width: DefaultWidth, Height: DefaultHeight}) {
		t.Fatalf("default size = %v", got)
	}
	tester.SetSize(graphics.Size{Width: 100, Height: 50})
	root := tester.Mount(objects.NewColoredBox(graphics.Size{Width: 10, Height: 10}, graphics.ColorRed))

	scene := tester.MustPump()
	if got := tester.Owner().Size(root); got != (graphics.Size{Width: 100, Height: 50}) {
		t.Errorf("root size = %v, want 100x50", got)
	}
	if scene != tester.Scene() {
		t.Error("MustPump should return the stored scene")
	}
	if n := len(scene.Pictures()); n != 1 {
		t.Errorf("pictures = %d, want 1", n)
	}
}

func TestTester_HitTest(t *testing.T) {
	tester := New(t)
	tester.SetSize(graphics.Size{Width: 100, Height: 100})
	leaf := tester.Create(objects.NewColoredBox(graphics.Size{Width: 20, Height: 20}, graphics.ColorBlue))
	pad := tester.Mount(&objects.PositionedBox{Offset: graphics.Offset{X: 10, Y: 10}}, leaf)
	tester.MustPump()

	if got := tester.HitTest(15, 15); !slices.Equal(got, []render.NodeID{leaf, pad}) {
		t.Errorf("HitTest(15, 15) = %v, want [%v %v]", got, leaf, pad)
	}
	if got := tester.HitTest(50, 50); len(got) != 0 {
		t.Errorf("HitTest(50, 50) = %v, want none", got)
	}
}

func TestTester_CollectsErrors(t *testing.T) {
	tester := New(t)
	tester.Mount(failingBox{})

	err := tester.Pump()
	if !errors.Is(err, rterrors.ErrLayoutFailure) {
		t.Fatalf("Pump error = %v, want layout failure", err)
	}
	errs := tester.Errors()
	if len(errs) != 1 {
		t.Fatalf("collected %d errors, want 1", len(errs))
	}
	if errs[0].Kind != rterrors.KindLayout {
		t.Errorf("kind = %v, want layout", errs[0].Kind)
	}
}

func TestRecorder_VisitOrder(t *testing.T) {
	log := &Log{}
	tester := New(t)
	child := tester.Create(&Recorder{Name: "child", Log: log, Size: graphics.Size{Width: 10, Height: 10}})
	tester.Mount(&Recorder{Name: "root", Log: log}, child)
	tester.MustPump()

	want := []string{"layout root", "layout child", "paint root", "paint child"}
	if got := log.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}

	log.Reset()
	tester.Owner().MarkNeedsLayout(child)
	tester.MustPump()
	if n := log.Count("layout child"); n != 1 {
		t.Errorf("child laid out %d times, want 1", n)
	}
	if n := log.Count("layout root"); n != 0 {
		t.Errorf("root laid out %d times, want 0", n)
	}
}

func TestRecorder_RepaintBoundaryLimitsPaint(t *testing.T) {
	log := &Log{}
	tester := New(t)
	leaf := tester.Create(&Recorder{Name: "leaf", Log: log, Color: graphics.ColorGreen})
	boundary := tester.Create(&Recorder{Name: "boundary", Log: log, RepaintBoundary: true}, leaf)
	tester.Mount(&Recorder{Name: "root", Log: log}, boundary)
	tester.MustPump()
	if !tester.Owner().IsRepaintBoundary(boundary) {
		t.Fatal("boundary flag not applied")
	}

	log.Reset()
	tester.Owner().MarkNeedsPaint(leaf)
	tester.MustPump()
	want := []string{"paint boundary", "paint leaf"}
	if got := log.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestFindByType(t *testing.T) {
	tester := New(t)
	a := tester.Create(objects.NewColoredBox(graphics.Size{Width: 10, Height: 10}, graphics.ColorRed))
	b := tester.Create(objects.NewColoredBox(graphics.Size{Width: 20, Height: 20}, graphics.ColorBlue))
	tester.Mount(&objects.Stack{}, a, b)

	if got := FindByType[*objects.ColoredBox](tester); !slices.Equal(got, []render.NodeID{a, b}) {
		t.Errorf("FindByType = %v, want [%v %v]", got, a, b)
	}
	id, stack, ok := FindFirst[*objects.Stack](tester)
	if !ok || id != tester.Root() || stack == nil {
		t.Errorf("FindFirst[*Stack] = %v, %v, %v", id, stack, ok)
	}
	if _, _, ok := FindFirst[*objects.Padding](tester); ok {
		t.Error("FindFirst[*Padding] should find nothing")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tester := New(t)
	leaf := tester.Create(objects.NewColoredBox(graphics.Size{}, graphics.ColorRed))
	mid := tester.Create(&objects.RepaintBoundary{}, leaf)
	root := tester.Mount(&objects.RepaintBoundary{}, mid)

	var visited []render.NodeID
	Walk(tester.Owner(), root, func(id render.NodeID, depth int) bool {
		visited = append(visited, id)
		return depth < 1
	})
	if !slices.Equal(visited, []render.NodeID{root, mid}) {
		t.Errorf("visited = %v, want [%v %v]", visited, root, mid)
	}
}
