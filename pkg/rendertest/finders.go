package rendertest

import "github.com/go-drift/rendertree/pkg/render"

// Walk visits the subtree of id depth-first in pre-order. Returning false
// from fn skips the node's children.
func Walk(o *render.Owner, id render.NodeID, fn func(id render.NodeID, depth int) bool) {
	walk(o, id, 0, fn)
}

func walk(o *render.Owner, id render.NodeID, depth int, fn func(render.NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, child := range o.Children(id) {
		walk(o, child, depth+1, fn)
	}
}

// FindByType returns the nodes of the mounted tree whose object is a T, in
// pre-order.
func FindByType[T render.Object](t *Tester) []render.NodeID {
	var out []render.NodeID
	root := t.owner.Root()
	if root.IsZero() {
		return nil
	}
	Walk(t.owner, root, func(id render.NodeID, _ int) bool {
		if _, ok := t.owner.Object(id).(T); ok {
			out = append(out, id)
		}
		return true
	})
	return out
}

// FindFirst returns the first node whose object is a T, together with the
// object. ok is false when there is none.
func FindFirst[T render.Object](t *Tester) (id render.NodeID, obj T, ok bool) {
	ids := FindByType[T](t)
	if len(ids) == 0 {
		return id, obj, false
	}
	obj, _ = t.owner.Object(ids[0]).(T)
	return ids[0], obj, true
}
