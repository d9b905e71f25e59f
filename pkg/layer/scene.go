package layer

import (
	"fmt"
	"strings"

	"github.com/go-drift/rendertree/pkg/graphics"
)

// SceneNode is an immutable copy of one layer.
type SceneNode struct {
	// LayerID is the ID of the layer this node was copied from.
	LayerID   uint64
	Kind      Kind
	Offset    graphics.Offset
	Clip      graphics.Rect
	Alpha     float64
	Transform graphics.Matrix
	Picture   *graphics.DisplayList
	Children  []*SceneNode
}

// Scene is a read-only snapshot of a layer tree. Later mutations of the
// source layers do not affect it.
type Scene struct {
	root  *SceneNode
	count int
}

// NewScene snapshots the tree rooted at root. A nil root yields an empty
// scene.
func NewScene(root Layer) *Scene {
	s := &Scene{}
	if root != nil {
		s.root = s.copy(root)
	}
	return s
}

func (s *Scene) copy(l Layer) *SceneNode {
	s.count++
	n := &SceneNode{LayerID: l.ID(), Kind: l.Kind(), Alpha: 1, Transform: graphics.Identity()}
	switch l := l.(type) {
	case *OffsetLayer:
		n.Offset = l.Offset
	case *ClipRectLayer:
		n.Clip = l.Clip
	case *OpacityLayer:
		n.Alpha = l.Alpha
		n.Offset = l.Offset
	case *TransformLayer:
		n.Transform = l.Transform
	case *PictureLayer:
		n.Picture = l.Picture
	}
	if c, ok := l.(Container); ok {
		children := c.Children()
		n.Children = make([]*SceneNode, 0, len(children))
		for _, child := range children {
			n.Children = append(n.Children, s.copy(child))
		}
	}
	return n
}

// Root returns the root node, or nil for an empty scene.
func (s *Scene) Root() *SceneNode { return s.root }

// Len returns the number of layers in the scene.
func (s *Scene) Len() int { return s.count }

// Walk visits nodes depth-first in paint order. Returning false from fn
// skips the node's children.
func (s *Scene) Walk(fn func(n *SceneNode, depth int) bool) {
	if s.root != nil {
		walk(s.root, 0, fn)
	}
}

func walk(n *SceneNode, depth int, fn func(*SceneNode, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}

// Find returns the node copied from the layer with the given ID.
func (s *Scene) Find(layerID uint64) *SceneNode {
	var found *SceneNode
	s.Walk(func(n *SceneNode, _ int) bool {
		if n.LayerID == layerID {
			found = n
		}
		return found == nil
	})
	return found
}

// Pictures returns the display lists in paint order.
func (s *Scene) Pictures() []*graphics.DisplayList {
	var out []*graphics.DisplayList
	s.Walk(func(n *SceneNode, _ int) bool {
		if n.Picture != nil {
			out = append(out, n.Picture)
		}
		return true
	})
	return out
}

// Composite replays the whole scene onto canvas.
func (s *Scene) Composite(canvas graphics.Canvas) {
	if s.root != nil {
		composite(s.root, canvas)
	}
}

func composite(n *SceneNode, canvas graphics.Canvas) {
	switch n.Kind {
	case KindPicture:
		if n.Picture != nil {
			n.Picture.Paint(canvas)
		}
		return
	case KindContainer:
		for _, child := range n.Children {
			composite(child, canvas)
		}
		return
	}

	canvas.Save()
	switch n.Kind {
	case KindOffset:
		canvas.Translate(n.Offset.X, n.Offset.Y)
	case KindClipRect:
		canvas.ClipRect(n.Clip)
	case KindOpacity:
		canvas.Translate(n.Offset.X, n.Offset.Y)
		canvas.SaveLayerAlpha(graphics.Rect{}, n.Alpha)
	case KindTransform:
		canvas.Transform(n.Transform)
	}
	for _, child := range n.Children {
		composite(child, canvas)
	}
	if n.Kind == KindOpacity {
		canvas.Restore()
	}
	canvas.Restore()
}

// String dumps the scene as an indented tree.
func (s *Scene) String() string {
	var sb strings.Builder
	s.Walk(func(n *SceneNode, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.describe())
		sb.WriteByte('\n')
		if n.Picture != nil {
			for _, op := range n.Picture.Describe() {
				sb.WriteString(strings.Repeat("  ", depth+1))
				sb.WriteString(op)
				sb.WriteByte('\n')
			}
		}
		return true
	})
	return sb.String()
}

func (n *SceneNode) describe() string {
	switch n.Kind {
	case KindOffset:
		return fmt.Sprintf("Offset#%d (%g, %g)", n.LayerID, n.Offset.X, n.Offset.Y)
	case KindClipRect:
		return fmt.Sprintf("ClipRect#%d [%g %g %g %g]", n.LayerID, n.Clip.Left, n.Clip.Top, n.Clip.Right, n.Clip.Bottom)
	case KindOpacity:
		return fmt.Sprintf("Opacity#%d %.3g", n.LayerID, n.Alpha)
	case KindTransform:
		return fmt.Sprintf("Transform#%d %v", n.LayerID, n.Transform)
	case KindPicture:
		ops := 0
		if n.Picture != nil {
			ops = n.Picture.Len()
		}
		return fmt.Sprintf("Picture#%d (%d ops)", n.LayerID, ops)
	default:
		return fmt.Sprintf("%s#%d", n.Kind, n.LayerID)
	}
}
