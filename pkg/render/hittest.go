package render

import (
	"strconv"

	"github.com/go-drift/rendertree/pkg/graphics"
)

// HitTestBehavior is how a node takes part in hit testing.
type HitTestBehavior int

const (
	// DeferToChild nodes are hit only when one of their children is.
	DeferToChild HitTestBehavior = iota
	// Opaque nodes are hit whenever the point is inside their bounds and
	// report the hit to their parent.
	Opaque
	// Translucent nodes are recorded when the point is inside their bounds
	// but report only their children's hits to their parent.
	Translucent
)

func (b HitTestBehavior) String() string {
	switch b {
	case DeferToChild:
		return "deferToChild"
	case Opaque:
		return "opaque"
	case Translucent:
		return "translucent"
	default:
		return "HitTestBehavior(" + strconv.Itoa(int(b)) + ")"
	}
}

// HitTarget is one entry of a hit test result.
type HitTarget struct {
	ID NodeID
	// LocalPosition is the queried point in the target's coordinates.
	LocalPosition graphics.Offset
	// Transform maps the coordinates the query started in to the target's.
	Transform graphics.Matrix
}

// HitTest returns the nodes under point, in root coordinates, topmost first.
// Every call returns a fresh slice.
func (o *Owner) HitTest(point graphics.Offset) []HitTarget {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.root.IsZero() {
		return nil
	}
	var out []HitTarget
	o.hitTest(o.node("render.Owner.HitTest", o.root), point, graphics.Identity(), &out)
	return out
}

// HitTestFrom runs a hit test on the subtree of id with point given in id's
// own coordinates.
func (o *Owner) HitTestFrom(id NodeID, point graphics.Offset) []HitTarget {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []HitTarget
	o.hitTest(o.node("render.Owner.HitTestFrom", id), point, graphics.Identity(), &out)
	return out
}

// hitTest tests the children of n in reverse paint order, then n itself, so
// the result lists the visually topmost node first. All children are
// tested; an opaque sibling does not hide the ones below it.
func (o *Owner) hitTest(n *node, local graphics.Offset, toLocal graphics.Matrix, out *[]HitTarget) bool {
	if n.geometry == nil {
		return false
	}
	inside := n.size().Contains(local)

	childHit := false
	if inside || !n.clipsHitTest() {
		for i := len(n.children) - 1; i >= 0; i-- {
			c := o.node("render.hitTest", n.children[i])
			inv, ok := o.childTransform(n, c).Invert()
			if !ok {
				continue
			}
			if o.hitTest(c, inv.Apply(local), inv.Multiply(toLocal), out) {
				childHit = true
			}
		}
	}

	behavior := n.behavior()
	if childHit || (inside && behavior != DeferToChild) {
		*out = append(*out, HitTarget{ID: n.id, LocalPosition: local, Transform: toLocal})
	}
	return childHit || (inside && behavior == Opaque)
}

// childTransform maps child coordinates to the coordinates of n.
func (o *Owner) childTransform(n, c *node) graphics.Matrix {
	var offset graphics.Offset
	if c.parentData != nil {
		offset = c.parentData.PaintOffset()
	}
	if ct, ok := n.object.(ChildTransformer); ok {
		return ct.ChildTransform(c.id, offset)
	}
	return graphics.TranslationMatrix(offset.X, offset.Y)
}
