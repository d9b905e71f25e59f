// Package layer holds the composited output of a paint pass.
//
// Layers form a pointer tree that the render pipeline mutates during paint.
// Repaint boundaries own a persistent OffsetLayer whose identity survives
// across frames; every other layer is rebuilt when its boundary repaints. A
// Scene is the immutable snapshot of a layer tree handed to a compositor.
package layer

import (
	"fmt"
	"sync/atomic"

	"github.com/go-drift/rendertree/pkg/graphics"
)

// Kind identifies the type of a layer.
type Kind uint8

// Layer kind constants.
const (
	// KindContainer groups children without any effect.
	KindContainer Kind = iota
	// KindOffset translates its children.
	KindOffset
	// KindClipRect clips its children to a rectangle.
	KindClipRect
	// KindOpacity composites its children with an alpha.
	KindOpacity
	// KindTransform applies an affine transform to its children.
	KindTransform
	// KindPicture holds recorded drawing commands and has no children.
	KindPicture
)

// String returns a human-readable name for the layer kind.
func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "Container"
	case KindOffset:
		return "Offset"
	case KindClipRect:
		return "ClipRect"
	case KindOpacity:
		return "Opacity"
	case KindTransform:
		return "Transform"
	case KindPicture:
		return "Picture"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

var lastID atomic.Uint64

// Layer is a node of the layer tree.
type Layer interface {
	// ID is unique among all layers created by the process.
	ID() uint64
	Kind() Kind
	// Parent returns the enclosing container, or nil.
	Parent() Container
	// Detach removes the layer from its parent.
	Detach()

	setParent(Container)
}

// Container is a layer that owns an ordered list of children.
type Container interface {
	Layer
	Children() []Layer
	Append(child Layer)
	RemoveAllChildren()
	// Adopt resets the parent of every child to the container.
	Adopt()

	remove(child Layer)
}

type layerBase struct {
	id     uint64
	self   Layer
	parent Container
}

func (b *layerBase) init(self Layer) {
	b.id = lastID.Add(1)
	b.self = self
}

func (b *layerBase) ID() uint64 { return b.id }

func (b *layerBase) Parent() Container { return b.parent }

func (b *layerBase) setParent(p Container) { b.parent = p }

func (b *layerBase) Detach() {
	if b.parent != nil {
		b.parent.remove(b.self)
		b.parent = nil
	}
}

// ContainerLayer groups children. Use NewContainerLayer; the zero value has
// no identity.
type ContainerLayer struct {
	layerBase
	children []Layer
}

// NewContainerLayer returns an empty container.
func NewContainerLayer() *ContainerLayer {
	c := &ContainerLayer{}
	c.init(c)
	return c
}

func (c *ContainerLayer) Kind() Kind { return KindContainer }

func (c *ContainerLayer) container() Container {
	if self, ok := c.self.(Container); ok {
		return self
	}
	return c
}

// Children returns the children in paint order. The slice must not be
// modified.
func (c *ContainerLayer) Children() []Layer { return c.children }

// Append adds child as the last (topmost) child. It does not unlink child
// from a previous parent's list; call Detach first when that matters.
func (c *ContainerLayer) Append(child Layer) {
	child.setParent(c.container())
	c.children = append(c.children, child)
}

// RemoveAllChildren clears the child list.
func (c *ContainerLayer) RemoveAllChildren() {
	self := c.container()
	for _, child := range c.children {
		if child.Parent() == self {
			child.setParent(nil)
		}
	}
	c.children = nil
}

// Adopt resets the parent of every child to c.
func (c *ContainerLayer) Adopt() {
	self := c.container()
	for _, child := range c.children {
		child.setParent(self)
	}
}

func (c *ContainerLayer) remove(child Layer) {
	for i, l := range c.children {
		if l == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// OffsetLayer translates its children. Repaint boundaries own one each.
type OffsetLayer struct {
	ContainerLayer
	Offset graphics.Offset
}

// NewOffsetLayer returns an offset layer.
func NewOffsetLayer(offset graphics.Offset) *OffsetLayer {
	l := &OffsetLayer{Offset: offset}
	l.init(l)
	return l
}

func (l *OffsetLayer) Kind() Kind { return KindOffset }

// ClipRectLayer clips its children.
type ClipRectLayer struct {
	ContainerLayer
	Clip graphics.Rect
}

// NewClipRectLayer returns a clip layer.
func NewClipRectLayer(clip graphics.Rect) *ClipRectLayer {
	l := &ClipRectLayer{Clip: clip}
	l.init(l)
	return l
}

func (l *ClipRectLayer) Kind() Kind { return KindClipRect }

// OpacityLayer composites its children with Alpha in [0, 1].
type OpacityLayer struct {
	ContainerLayer
	Alpha  float64
	Offset graphics.Offset
}

// NewOpacityLayer returns an opacity layer.
func NewOpacityLayer(alpha float64, offset graphics.Offset) *OpacityLayer {
	l := &OpacityLayer{Alpha: alpha, Offset: offset}
	l.init(l)
	return l
}

func (l *OpacityLayer) Kind() Kind { return KindOpacity }

// TransformLayer applies Transform to its children.
type TransformLayer struct {
	ContainerLayer
	Transform graphics.Matrix
}

// NewTransformLayer returns a transform layer.
func NewTransformLayer(m graphics.Matrix) *TransformLayer {
	l := &TransformLayer{Transform: m}
	l.init(l)
	return l
}

func (l *TransformLayer) Kind() Kind { return KindTransform }

// PictureLayer holds a recorded display list.
type PictureLayer struct {
	layerBase
	Picture *graphics.DisplayList
}

// NewPictureLayer returns a picture layer.
func NewPictureLayer(picture *graphics.DisplayList) *PictureLayer {
	l := &PictureLayer{Picture: picture}
	l.init(l)
	return l
}

func (l *PictureLayer) Kind() Kind { return KindPicture }
