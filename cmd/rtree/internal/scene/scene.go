// Package scene builds render trees from YAML scene files.
//
// A scene file describes one tree of object kinds:
//
//	frame: {width: 200, height: 100}
//	root:
//	  kind: padding
//	  insets: 8
//	  children:
//	    - kind: colored-box
//	      name: swatch
//	      width: 40
//	      height: 20
//	      color: "#3366ff"
package scene

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/objects"
	"github.com/go-drift/rendertree/pkg/render"
)

// File is a decoded scene file.
type File struct {
	// Frame overrides the configured frame size when both sides are set.
	Frame *Frame `yaml:"frame,omitempty"`
	Root  *Node  `yaml:"root"`
}

// Frame is a root size.
type Frame struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Point is an x/y pair.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Node describes one render node. Which fields apply depends on Kind.
type Node struct {
	Kind     string  `yaml:"kind"`
	Name     string  `yaml:"name,omitempty"`
	Children []*Node `yaml:"children,omitempty"`

	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Color  string  `yaml:"color,omitempty"`
	// Behavior is the hit-test behavior of a colored box.
	Behavior string `yaml:"behavior,omitempty"`

	MinWidth  float64  `yaml:"min_width,omitempty"`
	MaxWidth  *float64 `yaml:"max_width,omitempty"`
	MinHeight float64  `yaml:"min_height,omitempty"`
	MaxHeight *float64 `yaml:"max_height,omitempty"`

	Insets float64 `yaml:"insets,omitempty"`
	Offset Point   `yaml:"offset,omitempty"`
	Alpha  float64 `yaml:"alpha,omitempty"`
	Scale  float64 `yaml:"scale,omitempty"`
	Rotate float64 `yaml:"rotate,omitempty"`

	Fit              string `yaml:"fit,omitempty"`
	RelayoutBoundary bool   `yaml:"relayout_boundary,omitempty"`
	// Position places a child of a stack.
	Position *Point `yaml:"position,omitempty"`

	Axis         string  `yaml:"axis,omitempty"`
	ScrollOffset float64 `yaml:"scroll_offset,omitempty"`
	CacheExtent  float64 `yaml:"cache_extent,omitempty"`
	ItemExtent   float64 `yaml:"item_extent,omitempty"`
}

// Tree is a scene built into an owner.
type Tree struct {
	Owner *render.Owner
	Root  render.NodeID
	names map[render.NodeID]string
}

// Name returns the scene name of id. Unnamed nodes are called "kind#n" in
// creation order.
func (t *Tree) Name(id render.NodeID) string {
	return t.names[id]
}

// Lookup returns the node with the given scene name.
func (t *Tree) Lookup(name string) (render.NodeID, bool) {
	for id, n := range t.names {
		if n == name {
			return id, true
		}
	}
	return render.NodeID{}, false
}

// Load reads and decodes the scene file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scene file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if f.Root == nil {
		return nil, fmt.Errorf("scene has no root")
	}
	return &f, nil
}

// FrameSize returns the scene's frame, or fallback when the scene does not
// set one.
func (f *File) FrameSize(fallback graphics.Size) graphics.Size {
	if f.Frame == nil || f.Frame.Width <= 0 || f.Frame.Height <= 0 {
		return fallback
	}
	return graphics.Size{Width: f.Frame.Width, Height: f.Frame.Height}
}

// Build creates the scene's nodes in o and mounts the root.
func (f *File) Build(o *render.Owner) (*Tree, error) {
	b := &builder{owner: o, names: make(map[render.NodeID]string), counts: make(map[string]int)}
	root, err := b.build(f.Root, "root")
	if err != nil {
		return nil, err
	}
	o.SetRoot(root)
	return &Tree{Owner: o, Root: root, names: b.names}, nil
}

type builder struct {
	owner  *render.Owner
	names  map[render.NodeID]string
	counts map[string]int
}

func (b *builder) build(n *Node, path string) (render.NodeID, error) {
	if n == nil {
		return render.NodeID{}, fmt.Errorf("%s: empty node", path)
	}
	children := make([]render.NodeID, 0, len(n.Children))
	for i, c := range n.Children {
		id, err := b.build(c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			b.drop(children...)
			return render.NodeID{}, err
		}
		children = append(children, id)
	}

	obj, err := n.object()
	if err != nil {
		b.drop(children...)
		return render.NodeID{}, fmt.Errorf("%s: %w", path, err)
	}
	id, err := b.owner.CreateNode(obj, children...)
	if err != nil {
		b.drop(children...)
		return render.NodeID{}, fmt.Errorf("%s (%s): %w", path, n.Kind, err)
	}

	for i, c := range n.Children {
		if c.Position == nil {
			continue
		}
		if _, ok := b.owner.ParentData(children[i]).(*objects.StackParentData); !ok {
			b.drop(id)
			return render.NodeID{}, fmt.Errorf("%s.children[%d]: position is only valid inside a stack", path, i)
		}
		b.owner.SetParentData(children[i], &objects.StackParentData{
			Positioned: true,
			Position:   graphics.Offset{X: c.Position.X, Y: c.Position.Y},
		})
	}

	name := n.Name
	if name == "" {
		name = fmt.Sprintf("%s#%d", n.Kind, b.counts[n.Kind])
		b.counts[n.Kind]++
	}
	b.names[id] = name
	return id, nil
}

// drop removes subtrees built before an error.
func (b *builder) drop(ids ...render.NodeID) {
	for _, id := range ids {
		b.owner.DropNode(id)
	}
}

func (n *Node) object() (render.Object, error) {
	switch n.Kind {
	case "colored-box":
		c, err := ParseColor(n.Color)
		if err != nil {
			return nil, err
		}
		box := objects.NewColoredBox(graphics.Size{Width: n.Width, Height: n.Height}, c)
		if n.Behavior != "" {
			if box.Behavior, err = parseBehavior(n.Behavior); err != nil {
				return nil, err
			}
		}
		return box, nil
	case "fill":
		c, err := ParseColor(n.Color)
		if err != nil {
			return nil, err
		}
		return &objects.SizedByParentBox{Color: c}, nil
	case "constrained-box":
		return &objects.ConstrainedBox{Extra: layout.BoxConstraints{
			MinWidth:  n.MinWidth,
			MaxWidth:  orInf(n.MaxWidth),
			MinHeight: n.MinHeight,
			MaxHeight: orInf(n.MaxHeight),
		}}, nil
	case "padding":
		return &objects.Padding{Insets: layout.EdgeInsetsAll(n.Insets)}, nil
	case "positioned":
		return &objects.PositionedBox{Offset: graphics.Offset{X: n.Offset.X, Y: n.Offset.Y}}, nil
	case "repaint-boundary":
		return &objects.RepaintBoundary{}, nil
	case "opacity":
		return &objects.Opacity{Alpha: n.Alpha}, nil
	case "transform":
		m := graphics.Identity()
		if n.Scale != 0 {
			m = m.Multiply(graphics.ScaleMatrix(n.Scale, n.Scale))
		}
		if n.Rotate != 0 {
			m = m.Multiply(graphics.RotationMatrix(n.Rotate * math.Pi / 180))
		}
		return objects.NewTransform(m), nil
	case "clip-rect":
		return &objects.ClipRect{}, nil
	case "stack":
		s := &objects.Stack{RelayoutBoundary: n.RelayoutBoundary}
		switch n.Fit {
		case "", "loose":
		case "expand":
			s.Fit = objects.StackExpand
		default:
			return nil, fmt.Errorf("unknown stack fit %q", n.Fit)
		}
		return s, nil
	case "viewport":
		dir, err := parseAxis(n.Axis)
		if err != nil {
			return nil, err
		}
		return &objects.Viewport{AxisDirection: dir, ScrollOffset: n.ScrollOffset, CacheExtent: n.CacheExtent}, nil
	case "sliver-box":
		return &objects.SliverToBoxAdapter{}, nil
	case "fixed-extent-list":
		return &objects.SliverFixedExtentList{ItemExtent: n.ItemExtent}, nil
	case "":
		return nil, fmt.Errorf("missing kind")
	default:
		return nil, fmt.Errorf("unknown kind %q", n.Kind)
	}
}

// ParseColor accepts the names black, white, red, green, blue and
// transparent, or a hex color with an optional alpha suffix: #rgb,
// #rrggbb or #rrggbbaa. The empty string is transparent.
func ParseColor(s string) (graphics.Color, error) {
	switch strings.ToLower(s) {
	case "", "transparent":
		return graphics.ColorTransparent, nil
	case "black":
		return graphics.ColorBlack, nil
	case "white":
		return graphics.ColorWhite, nil
	case "red":
		return graphics.ColorRed, nil
	case "green":
		return graphics.ColorGreen, nil
	case "blue":
		return graphics.ColorBlue, nil
	}

	alpha := uint8(0xFF)
	hex := s
	if len(s) == 9 && s[0] == '#' {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return 0, fmt.Errorf("invalid color %q", s)
		}
		alpha, hex = a, s[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return graphics.RGBA8(r, g, b, alpha), nil
}

func parseBehavior(s string) (render.HitTestBehavior, error) {
	switch s {
	case "defer":
		return render.DeferToChild, nil
	case "opaque":
		return render.Opaque, nil
	case "translucent":
		return render.Translucent, nil
	}
	return 0, fmt.Errorf("unknown hit test behavior %q", s)
}

func parseAxis(s string) (layout.AxisDirection, error) {
	switch s {
	case "", "down":
		return layout.AxisDown, nil
	case "up":
		return layout.AxisUp, nil
	case "right":
		return layout.AxisRight, nil
	case "left":
		return layout.AxisLeft, nil
	}
	return 0, fmt.Errorf("unknown axis direction %q", s)
}

func orInf(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}
