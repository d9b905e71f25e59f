package layer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/rendertree/pkg/graphics"
)

func picture(rect graphics.Rect) *graphics.DisplayList {
	var r graphics.PictureRecorder
	c := r.BeginRecording(rect.Size())
	c.DrawRect(rect, graphics.FillPaint(graphics.ColorBlue))
	return r.EndRecording()
}

func TestAppendAndDetach(t *testing.T) {
	root := NewOffsetLayer(graphics.Offset{})
	a := NewPictureLayer(picture(graphics.RectFromLTWH(0, 0, 1, 1)))
	b := NewClipRectLayer(graphics.RectFromLTWH(0, 0, 5, 5))

	root.Append(a)
	root.Append(b)
	require.Len(t, root.Children(), 2)
	assert.Same(t, root, a.Parent().(*OffsetLayer), "parent is the outer layer, not the embedded container")

	a.Detach()
	assert.Nil(t, a.Parent())
	assert.Equal(t, []Layer{b}, root.Children())

	root.RemoveAllChildren()
	assert.Empty(t, root.Children())
	assert.Nil(t, b.Parent())
}

func TestUniqueIDs(t *testing.T) {
	a := NewContainerLayer()
	b := NewContainerLayer()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotZero(t, a.ID())
}

func TestAdoptRestoresParents(t *testing.T) {
	old := NewOffsetLayer(graphics.Offset{})
	shared := NewOffsetLayer(graphics.Offset{X: 10})
	old.Append(shared)

	staging := NewContainerLayer()
	staging.Append(shared)
	assert.Same(t, staging, shared.Parent().(*ContainerLayer))

	old.Adopt()
	assert.Same(t, old, shared.Parent().(*OffsetLayer))
}

func TestSceneIsSnapshot(t *testing.T) {
	root := NewOffsetLayer(graphics.Offset{})
	op := NewOpacityLayer(0.5, graphics.Offset{X: 2})
	pic := NewPictureLayer(picture(graphics.RectFromLTWH(0, 0, 10, 10)))
	op.Append(pic)
	root.Append(op)

	scene := NewScene(root)
	require.NotNil(t, scene.Root())
	assert.Equal(t, 3, scene.Len())
	assert.Len(t, scene.Pictures(), 1)

	root.RemoveAllChildren()
	op.Alpha = 1
	assert.Equal(t, 3, scene.Len())
	n := scene.Find(op.ID())
	require.NotNil(t, n)
	assert.Equal(t, 0.5, n.Alpha)
	assert.Len(t, scene.Root().Children, 1)
}

func TestSceneWalkOrder(t *testing.T) {
	root := NewContainerLayer()
	first := NewPictureLayer(picture(graphics.RectFromLTWH(0, 0, 1, 1)))
	second := NewTransformLayer(graphics.ScaleMatrix(2, 2))
	third := NewPictureLayer(picture(graphics.RectFromLTWH(0, 0, 2, 2)))
	second.Append(third)
	root.Append(first)
	root.Append(second)

	var ids []uint64
	var depths []int
	NewScene(root).Walk(func(n *SceneNode, depth int) bool {
		ids = append(ids, n.LayerID)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []uint64{root.ID(), first.ID(), second.ID(), third.ID()}, ids)
	assert.Equal(t, []int{0, 1, 1, 2}, depths)
}

func TestSceneCompositeAndString(t *testing.T) {
	root := NewOffsetLayer(graphics.Offset{X: 5, Y: 5})
	clip := NewClipRectLayer(graphics.RectFromLTWH(0, 0, 20, 20))
	clip.Append(NewPictureLayer(picture(graphics.RectFromLTWH(0, 0, 10, 10))))
	root.Append(clip)
	scene := NewScene(root)

	var rec graphics.PictureRecorder
	canvas := rec.BeginRecording(graphics.Size{Width: 100, Height: 100})
	scene.Composite(canvas)
	ops := rec.EndRecording().Describe()
	require.Len(t, ops, 7)
	assert.Equal(t, "save", ops[0])
	assert.Equal(t, "restore", ops[6])

	dump := scene.String()
	assert.True(t, strings.HasPrefix(dump, "Offset#"), dump)
	assert.Contains(t, dump, "ClipRect#")
	assert.Contains(t, dump, "Picture#")

	assert.Equal(t, 0, NewScene(nil).Len())
	assert.Nil(t, NewScene(nil).Root())
}
