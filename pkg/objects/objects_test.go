package objects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

var frameSize = graphics.Size{Width: 200, Height: 100}

func create(t *testing.T, o *render.Owner, obj render.Object, children ...render.NodeID) render.NodeID {
	t.Helper()
	id, err := o.CreateNode(obj, children...)
	require.NoError(t, err)
	return id
}

func pump(t *testing.T, o *render.Owner, root render.NodeID) *layer.Scene {
	t.Helper()
	o.SetRoot(root)
	scene, err := o.FlushPipeline(layout.Tight(frameSize))
	require.NoError(t, err)
	return scene
}

func hitIDs(o *render.Owner, x, y float64) []render.NodeID {
	var ids []render.NodeID
	for _, h := range o.HitTest(graphics.Offset{X: x, Y: y}) {
		ids = append(ids, h.ID)
	}
	return ids
}

func countOps(scene *layer.Scene, prefix string) int {
	n := 0
	for _, dl := range scene.Pictures() {
		for _, op := range dl.Describe() {
			if strings.HasPrefix(op, prefix) {
				n++
			}
		}
	}
	return n
}

func box(w, h float64) *ColoredBox {
	return NewColoredBox(graphics.Size{Width: w, Height: h}, graphics.ColorBlue)
}

func TestColoredBoxFillsTightConstraints(t *testing.T) {
	o := render.NewOwner()
	root := create(t, o, box(50, 20))
	scene := pump(t, o, root)

	assert.Equal(t, frameSize, o.Size(root))
	assert.Equal(t, 1, countOps(scene, "rect "))
	assert.Equal(t, []render.NodeID{root}, hitIDs(o, 10, 10))
}

func TestColoredBoxTransparentPaintsNothing(t *testing.T) {
	o := render.NewOwner()
	root := create(t, o, NewColoredBox(graphics.Size{}, graphics.ColorTransparent))
	scene := pump(t, o, root)
	assert.Empty(t, scene.Pictures())
}

func TestPadding(t *testing.T) {
	o := render.NewOwner()
	leaf := create(t, o, box(50, 20))
	pad := create(t, o, &Padding{Insets: layout.EdgeInsetsAll(10)}, leaf)
	root := create(t, o, &PositionedBox{}, pad)
	pump(t, o, root)

	assert.Equal(t, frameSize, o.Size(root))
	assert.Equal(t, graphics.Size{Width: 70, Height: 40}, o.Size(pad))
	assert.Equal(t, graphics.Size{Width: 50, Height: 20}, o.Size(leaf))
	assert.Equal(t, graphics.Offset{X: 10, Y: 10}, o.ParentData(leaf).PaintOffset())

	assert.Equal(t, []render.NodeID{leaf, pad, root}, hitIDs(o, 15, 15))
	assert.Empty(t, hitIDs(o, 5, 5), "padding defers to its child")
}

func TestPositionedBoxOffset(t *testing.T) {
	o := render.NewOwner()
	leaf := create(t, o, box(50, 20))
	root := create(t, o, &PositionedBox{Offset: graphics.Offset{X: 30, Y: 40}}, leaf)
	pump(t, o, root)

	assert.Equal(t, graphics.Offset{X: 30, Y: 40}, o.ParentData(leaf).PaintOffset())
	assert.Equal(t, graphics.Size{Width: 50, Height: 20}, o.Size(leaf))
	assert.Equal(t, []render.NodeID{leaf, root}, hitIDs(o, 35, 45))
	assert.Empty(t, hitIDs(o, 10, 10))
}

func TestConstrainedBox(t *testing.T) {
	tests := []struct {
		name  string
		extra layout.BoxConstraints
		child *ColoredBox
		want  graphics.Size
	}{
		{
			name:  "tight without child",
			extra: layout.TightFor(30, 40),
			want:  graphics.Size{Width: 30, Height: 40},
		},
		{
			name:  "max caps the child",
			extra: layout.BoxConstraints{MaxWidth: 60, MaxHeight: 60},
			child: box(100, 100),
			want:  graphics.Size{Width: 60, Height: 60},
		},
		{
			name:  "extra is clamped into the incoming constraints",
			extra: layout.TightFor(500, 20),
			child: box(10, 10),
			want:  graphics.Size{Width: 200, Height: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := render.NewOwner()
			var children []render.NodeID
			if tt.child != nil {
				children = append(children, create(t, o, tt.child))
			}
			cb := create(t, o, &ConstrainedBox{Extra: tt.extra}, children...)
			root := create(t, o, &PositionedBox{}, cb)
			pump(t, o, root)
			assert.Equal(t, tt.want, o.Size(cb))
		})
	}
}

func TestStackPlacesChildren(t *testing.T) {
	o := render.NewOwner()
	a := create(t, o, box(50, 50))
	b := create(t, o, box(30, 30))
	stack := create(t, o, &Stack{}, a, b)
	o.SetParentData(b, &StackParentData{Positioned: true, Position: graphics.Offset{X: 100, Y: 20}})
	pump(t, o, stack)

	assert.Equal(t, frameSize, o.Size(stack))
	assert.Equal(t, graphics.Size{Width: 50, Height: 50}, o.Size(a))
	assert.Equal(t, graphics.Offset{}, o.ParentData(a).PaintOffset())
	assert.Equal(t, graphics.Offset{X: 100, Y: 20}, o.ParentData(b).PaintOffset())

	assert.Equal(t, []render.NodeID{b, stack}, hitIDs(o, 110, 30))
	assert.Equal(t, []render.NodeID{a, stack}, hitIDs(o, 10, 10))
	assert.Empty(t, hitIDs(o, 190, 90))
}

func TestStackExpand(t *testing.T) {
	o := render.NewOwner()
	a := create(t, o, box(50, 50))
	stack := create(t, o, &Stack{Fit: StackExpand}, a)
	root := create(t, o, &PositionedBox{}, stack)
	pump(t, o, root)
	assert.Equal(t, frameSize, o.Size(a))
}

func TestStackRelayoutBoundaryOptIn(t *testing.T) {
	for _, optIn := range []bool{false, true} {
		o := render.NewOwner()
		stack := create(t, o, &Stack{RelayoutBoundary: optIn}, create(t, o, box(10, 10)))
		root := create(t, o, &PositionedBox{}, stack)
		pump(t, o, root)
		assert.Equal(t, optIn, o.IsRelayoutBoundary(stack), "opt-in %v", optIn)
	}
}

func TestOverlappingBehaviors(t *testing.T) {
	o := render.NewOwner()
	bottom := create(t, o, box(100, 100))
	top := box(100, 100)
	top.Behavior = render.DeferToChild
	topID := create(t, o, top)
	stack := create(t, o, &Stack{}, bottom, topID)
	pump(t, o, stack)

	assert.Equal(t, []render.NodeID{bottom, stack}, hitIDs(o, 10, 10))

	o.Update(topID, func(obj render.Object) render.Change {
		obj.(*ColoredBox).Behavior = render.Translucent
		return render.ChangeNone
	})
	assert.Equal(t, []render.NodeID{topID, bottom, stack}, hitIDs(o, 10, 10))
}

func TestRepaintBoundaryReusesLayer(t *testing.T) {
	o := render.NewOwner()
	inner := create(t, o, box(20, 20))
	rb := create(t, o, &RepaintBoundary{}, inner)
	sibling := create(t, o, box(20, 20))
	root := create(t, o, &Stack{}, rb, sibling)
	pump(t, o, root)

	l := o.LayerOf(rb)
	require.NotNil(t, l)
	assert.True(t, o.IsRepaintBoundary(rb))

	o.Update(sibling, func(obj render.Object) render.Change {
		obj.(*ColoredBox).Color = graphics.ColorRed
		return render.ChangePaint
	})
	pump(t, o, root)

	assert.Same(t, l, o.LayerOf(rb))
	stats := o.Stats()
	assert.Equal(t, 1, stats.BoundariesPainted)
	assert.Equal(t, 1, stats.LayersReused)
}

func TestOpacity(t *testing.T) {
	o := render.NewOwner()
	op := &Opacity{Alpha: 0.5}
	root := create(t, o, op, create(t, o, box(20, 20)))
	scene := pump(t, o, root)

	var opacity []*layer.SceneNode
	scene.Walk(func(n *layer.SceneNode, _ int) bool {
		if n.Kind == layer.KindOpacity {
			opacity = append(opacity, n)
		}
		return true
	})
	require.Len(t, opacity, 1)
	assert.Equal(t, 0.5, opacity[0].Alpha)
	assert.True(t, o.NeedsCompositing(root))

	o.Update(root, func(render.Object) render.Change {
		op.Alpha = 0
		return render.ChangePaint
	})
	scene = pump(t, o, root)
	assert.Empty(t, scene.Pictures())
}

func TestTransformScalesPaintAndHitTest(t *testing.T) {
	o := render.NewOwner()
	leaf := create(t, o, box(20, 20))
	tr := create(t, o, NewTransform(graphics.ScaleMatrix(2, 2)), leaf)
	root := create(t, o, &PositionedBox{}, tr)
	scene := pump(t, o, root)

	assert.Equal(t, graphics.Size{Width: 20, Height: 20}, o.Size(tr))
	assert.Equal(t, 1, countOps(scene, "transform "))

	hits := o.HitTest(graphics.Offset{X: 30, Y: 30})
	require.Len(t, hits, 3)
	assert.Equal(t, leaf, hits[0].ID)
	assert.Equal(t, graphics.Offset{X: 15, Y: 15}, hits[0].LocalPosition)
	assert.Empty(t, hitIDs(o, 50, 50))
}

func TestTransformSingularHidesChild(t *testing.T) {
	o := render.NewOwner()
	leaf := create(t, o, box(20, 20))
	tr := create(t, o, NewTransform(graphics.ScaleMatrix(0, 1)), leaf)
	root := create(t, o, &PositionedBox{}, tr)
	pump(t, o, root)
	assert.Empty(t, hitIDs(o, 5, 5))
}

// overflowTree builds a 40x40 area whose only child sticks out to x=50.
func overflowTree(t *testing.T, o *render.Owner, clip bool) (root, leaf render.NodeID) {
	leaf = create(t, o, box(20, 20))
	stack := create(t, o, &Stack{}, leaf)
	o.SetParentData(leaf, &StackParentData{Positioned: true, Position: graphics.Offset{X: 30}})
	inner := stack
	if clip {
		inner = create(t, o, &ClipRect{}, stack)
	}
	cb := create(t, o, &ConstrainedBox{Extra: layout.TightFor(40, 40)}, inner)
	root = create(t, o, &PositionedBox{}, cb)
	return root, leaf
}

func TestClipRectClipsHitTest(t *testing.T) {
	o := render.NewOwner()
	root, leaf := overflowTree(t, o, false)
	pump(t, o, root)
	ids := hitIDs(o, 45, 5)
	require.NotEmpty(t, ids)
	assert.Equal(t, leaf, ids[0])

	o = render.NewOwner()
	root, _ = overflowTree(t, o, true)
	scene := pump(t, o, root)
	assert.Empty(t, hitIDs(o, 45, 5))
	assert.Equal(t, 1, countOps(scene, "clipRect"))
}

func TestSizedByParentBox(t *testing.T) {
	o := render.NewOwner()
	sized := create(t, o, &SizedByParentBox{Color: graphics.ColorGreen})
	root := create(t, o, &PositionedBox{}, sized)
	scene := pump(t, o, root)

	assert.Equal(t, frameSize, o.Size(sized))
	assert.True(t, o.IsRelayoutBoundary(sized))
	assert.Equal(t, 1, countOps(scene, "rect "))
}
