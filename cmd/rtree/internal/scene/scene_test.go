package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/objects"
	"github.com/go-drift/rendertree/pkg/render"
)

const stackScene = `
frame: {width: 200, height: 100}
root:
  kind: stack
  name: stage
  children:
    - kind: colored-box
      name: backdrop
      width: 200
      height: 100
      color: "#102030"
    - kind: colored-box
      width: 20
      height: 20
      color: red
      position: {x: 50, y: 40}
`

func TestParseAndBuild(t *testing.T) {
	f, err := Parse([]byte(stackScene))
	require.NoError(t, err)
	assert.Equal(t, graphics.Size{Width: 200, Height: 100}, f.FrameSize(graphics.Size{Width: 1, Height: 1}))

	o := render.NewOwner()
	tree, err := f.Build(o)
	require.NoError(t, err)
	assert.Equal(t, o.Root(), tree.Root)
	assert.Equal(t, "stage", tree.Name(tree.Root))

	children := o.Children(tree.Root)
	require.Len(t, children, 2)
	assert.Equal(t, "backdrop", tree.Name(children[0]))
	assert.Equal(t, "colored-box#0", tree.Name(children[1]))
	id, ok := tree.Lookup("backdrop")
	assert.True(t, ok)
	assert.Equal(t, children[0], id)

	pd, ok := o.ParentData(children[1]).(*objects.StackParentData)
	require.True(t, ok)
	assert.True(t, pd.Positioned)
	assert.Equal(t, graphics.Offset{X: 50, Y: 40}, pd.Position)

	_, err = o.FlushPipeline(layout.Tight(f.FrameSize(graphics.Size{})))
	require.NoError(t, err)
	hits := o.HitTest(graphics.Offset{X: 55, Y: 45})
	require.NotEmpty(t, hits)
	assert.Equal(t, children[1], hits[0].ID)
}

func TestFrameSizeFallback(t *testing.T) {
	f, err := Parse([]byte("root: {kind: clip-rect}"))
	require.NoError(t, err)
	fallback := graphics.Size{Width: 320, Height: 240}
	assert.Equal(t, fallback, f.FrameSize(fallback))
}

func TestBuildKinds(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want any
	}{
		{"fill", Node{Kind: "fill", Color: "blue"}, &objects.SizedByParentBox{Color: graphics.ColorBlue}},
		{"padding", Node{Kind: "padding", Insets: 3}, &objects.Padding{Insets: layout.EdgeInsetsAll(3)}},
		{"opacity", Node{Kind: "opacity", Alpha: 0.5}, &objects.Opacity{Alpha: 0.5}},
		{"stack expand", Node{Kind: "stack", Fit: "expand"}, &objects.Stack{Fit: objects.StackExpand}},
		{"viewport", Node{Kind: "viewport", Axis: "right", ScrollOffset: 10},
			&objects.Viewport{AxisDirection: layout.AxisRight, ScrollOffset: 10}},
		{"list", Node{Kind: "fixed-extent-list", ItemExtent: 20}, &objects.SliverFixedExtentList{ItemExtent: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := tt.node.object()
			require.NoError(t, err)
			assert.Equal(t, tt.want, obj)
		})
	}
}

func TestConstrainedBoxDefaultsToUnboundedMax(t *testing.T) {
	maxW := 50.0
	obj, err := (&Node{Kind: "constrained-box", MinHeight: 10, MaxWidth: &maxW}).object()
	require.NoError(t, err)
	extra := obj.(*objects.ConstrainedBox).Extra
	assert.Equal(t, 50.0, extra.MaxWidth)
	assert.Equal(t, 10.0, extra.MinHeight)
	assert.True(t, math.IsInf(extra.MaxHeight, 1))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"no root", "frame: {width: 1, height: 1}", "no root"},
		{"unknown kind", "root: {kind: teapot}", `unknown kind "teapot"`},
		{"missing kind", "root: {name: x}", "missing kind"},
		{"bad color", "root: {kind: colored-box, color: '#zz'}", "invalid color"},
		{"position outside stack", "root: {kind: padding, children: [{kind: clip-rect, position: {x: 1, y: 1}}]}", "only valid inside a stack"},
		{"arity", "root: {kind: padding, children: [{kind: clip-rect}, {kind: clip-rect}]}", "padding"},
		{"protocol", "root: {kind: viewport, children: [{kind: clip-rect}]}", "viewport"},
		{"late sibling", "root: {kind: stack, children: [{kind: padding, children: [{kind: fill, color: red}]}, {kind: teapot}]}", `unknown kind "teapot"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := render.NewOwner()
			f, err := Parse([]byte(tt.yaml))
			if err == nil {
				_, err = f.Build(o)
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, o.Len(), "nodes left behind by a failed build")
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want graphics.Color
	}{
		{"", graphics.ColorTransparent},
		{"Red", graphics.ColorRed},
		{"#00ff00", graphics.ColorGreen},
		{"#fff", graphics.ColorWhite},
		{"#0000ff80", graphics.RGBA8(0, 0, 0xFF, 0x80)},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseColor("mauve")
	assert.Error(t, err)
}
