package render

import (
	"fmt"
	"slices"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/layout"
)

// CreateNode stores obj as a new detached node with the given children.
// The children must be detached subtree roots. A child count above the
// kind's arity, or a child of the wrong protocol, is rejected and nothing is
// created. Single kinds may be created without their child; they must have
// it before their first layout.
func (o *Owner) CreateNode(obj Object, children ...NodeID) (NodeID, error) {
	const op = "render.Owner.CreateNode"
	if obj == nil {
		errors.Violation(op, errors.KindProgramming, "nil object")
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	n := &node{
		object:   obj,
		protocol: obj.Protocol(),
		arity:    obj.Arity(),
		flags:    flagNeedsLayout | flagNeedsPaint | flagNeedsCompositingBitsUpdate,
	}
	if limit := n.arity.Max(); limit != arity.Unbounded && len(children) > limit {
		return NodeID{}, o.arityError(op, n, n.arity.CheckAdd(limit))
	}
	for i, id := range children {
		c := o.node(op, id)
		o.checkOrphan(op, c)
		if slices.Contains(children[:i], id) {
			errors.Violation(op, errors.KindProgramming, "node %v listed twice", id)
		}
		if err := o.checkProtocol(op, n, c); err != nil {
			return NodeID{}, err
		}
	}
	if _, ok := obj.(SizedByParentNode); ok && n.protocol == layout.Box {
		n.set(flagSizedByParent)
	}
	if n.wantsRepaintBoundary() || n.alwaysNeedsCompositing() {
		n.set(flagNeedsCompositing)
	}

	o.nodes.insert(n)
	for _, id := range children {
		o.link(n, o.node(op, id), len(n.children))
	}
	return n.id, nil
}

// SetRoot makes id the root of the tree and attaches its subtree. A previous
// root is detached but stays in the arena. Passing the zero ID clears the
// root.
func (o *Owner) SetRoot(id NodeID) {
	const op = "render.Owner.SetRoot"
	o.mu.Lock()
	defer o.mu.Unlock()

	var n *node
	if !id.IsZero() {
		n = o.node(op, id)
		if !n.parent.IsZero() {
			errors.Violation(op, errors.KindProgramming, "%s has a parent", n.name())
		}
	}
	if !o.root.IsZero() && o.root != id {
		o.detach(o.node(op, o.root))
	}
	o.root = id
	if n == nil || n.attached() {
		return
	}
	n.set(flagNeedsLayout | flagNeedsPaint | flagNeedsCompositingBitsUpdate)
	o.setDepth(n, 0)
	o.attach(n)
}

// AppendChild adds child as the last child of parent.
func (o *Owner) AppendChild(parent, child NodeID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.node("render.Owner.AppendChild", parent)
	return o.insertChild("render.Owner.AppendChild", p, len(p.children), child)
}

// InsertChild adds child to parent at index. The child must be a detached
// subtree root. Arity and protocol violations leave the tree unchanged.
func (o *Owner) InsertChild(parent NodeID, index int, child NodeID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.insertChild("render.Owner.InsertChild", o.node("render.Owner.InsertChild", parent), index, child)
}

func (o *Owner) insertChild(op string, p *node, index int, child NodeID) error {
	c := o.node(op, child)
	o.checkOrphan(op, c)
	o.checkNotAncestor(op, c, p)
	if index < 0 || index > len(p.children) {
		errors.Violation(op, errors.KindProgramming, "index %d out of range for %s", index, p.name())
	}
	if err := p.arity.CheckAdd(len(p.children)); err != nil {
		return o.arityError(op, p, err)
	}
	if err := o.checkProtocol(op, p, c); err != nil {
		return err
	}
	o.link(p, c, index)
	o.adopt(p, c)
	return nil
}

// RemoveChild removes child from parent and drops its whole subtree from the
// arena; their IDs stop resolving. Removing the only child of a Single node
// is an arity violation; use ReplaceChild instead.
func (o *Owner) RemoveChild(parent, child NodeID) error {
	const op = "render.Owner.RemoveChild"
	o.mu.Lock()
	defer o.mu.Unlock()

	p := o.node(op, parent)
	c := o.node(op, child)
	index := p.childIndex(child)
	if index < 0 {
		errors.Violation(op, errors.KindProgramming, "%s is not a child of %s", c.name(), p.name())
	}
	if err := p.arity.CheckRemove(len(p.children)); err != nil {
		return o.arityError(op, p, err)
	}
	o.unlink(p, index)
	o.drop(c)
	o.childrenChanged(p)
	return nil
}

// ReplaceChild swaps oldChild for newChild at the same index and drops the
// old subtree. It never changes the child count, so arity always allows it.
func (o *Owner) ReplaceChild(parent, oldChild, newChild NodeID) error {
	const op = "render.Owner.ReplaceChild"
	o.mu.Lock()
	defer o.mu.Unlock()

	p := o.node(op, parent)
	old := o.node(op, oldChild)
	index := p.childIndex(oldChild)
	if index < 0 {
		errors.Violation(op, errors.KindProgramming, "%s is not a child of %s", old.name(), p.name())
	}
	c := o.node(op, newChild)
	o.checkOrphan(op, c)
	o.checkNotAncestor(op, c, p)
	if err := o.checkProtocol(op, p, c); err != nil {
		return err
	}
	o.unlink(p, index)
	o.drop(old)
	o.link(p, c, index)
	o.adopt(p, c)
	return nil
}

// Reparent moves the subtree rooted at child under newParent at index and
// returns the subtree root's new ID. Every node of the moved subtree gets a
// fresh ID; the old ones stop resolving.
func (o *Owner) Reparent(child, newParent NodeID, index int) (NodeID, error) {
	const op = "render.Owner.Reparent"
	o.mu.Lock()
	defer o.mu.Unlock()

	c := o.node(op, child)
	np := o.node(op, newParent)
	if c.parent.IsZero() {
		errors.Violation(op, errors.KindProgramming, "%s has no parent; use InsertChild", c.name())
	}
	from := o.node(op, c.parent)
	o.checkNotAncestor(op, c, np)

	limit := len(np.children)
	if from == np {
		limit--
	} else {
		if err := from.arity.CheckRemove(len(from.children)); err != nil {
			return NodeID{}, o.arityError(op, from, err)
		}
		if err := np.arity.CheckAdd(len(np.children)); err != nil {
			return NodeID{}, o.arityError(op, np, err)
		}
	}
	if index < 0 || index > limit {
		errors.Violation(op, errors.KindProgramming, "index %d out of range for %s", index, np.name())
	}
	if err := o.checkProtocol(op, np, c); err != nil {
		return NodeID{}, err
	}

	o.unlink(from, from.childIndex(child))
	o.childrenChanged(from)
	if c.attached() {
		o.detach(c)
	}
	o.reissue(c)
	c.constraints = nil
	c.set(flagNeedsLayout | flagNeedsPaint | flagNeedsCompositingBitsUpdate)
	o.link(np, c, index)
	o.adopt(np, c)
	return c.id, nil
}

// DropNode removes a parentless, non-root subtree from the arena.
func (o *Owner) DropNode(id NodeID) {
	const op = "render.Owner.DropNode"
	o.mu.Lock()
	defer o.mu.Unlock()

	n := o.node(op, id)
	o.checkOrphan(op, n)
	o.drop(n)
}

// SetParentData replaces the parent data of child. A changed paint offset
// marks the parent for repaint.
func (o *Owner) SetParentData(child NodeID, data layout.ParentData) {
	const op = "render.Owner.SetParentData"
	o.mu.Lock()
	defer o.mu.Unlock()

	c := o.node(op, child)
	if c.parent.IsZero() {
		errors.Violation(op, errors.KindProgramming, "%s has no parent", c.name())
	}
	o.setParentData(o.node(op, c.parent), c, data)
}

func (o *Owner) setParentData(p, c *node, data layout.ParentData) {
	if data == nil {
		data = newParentData(p, c)
	}
	moved := c.parentData == nil || c.parentData.PaintOffset() != data.PaintOffset()
	c.parentData = data
	if moved {
		if p.attached() {
			o.markNeedsPaint(p)
		} else {
			p.set(flagNeedsPaint)
		}
	}
}

// Change tells Update which pass a configuration change affects.
type Change int

const (
	ChangeNone Change = iota
	ChangePaint
	ChangeLayout
)

// Update runs fn with the node's object under the owner's lock and marks the
// node according to the returned Change. Use it to change a kind's
// configuration between frames.
func (o *Owner) Update(id NodeID, fn func(obj Object) Change) {
	const op = "render.Owner.Update"
	o.mu.Lock()
	defer o.mu.Unlock()

	n := o.node(op, id)
	change := fn(n.object)
	if change == ChangeNone {
		return
	}
	if !n.attached() {
		n.set(flagNeedsPaint)
		if change == ChangeLayout {
			n.set(flagNeedsLayout)
		}
		return
	}
	if change == ChangeLayout {
		o.markNeedsLayout(n)
	}
	o.markNeedsPaint(n)
}

func (o *Owner) arityError(op string, n *node, err error) error {
	return &errors.RenderError{Op: op, Kind: errors.KindArity, Node: n.name(), ID: n.id.Raw(), Err: err}
}

func (o *Owner) checkProtocol(op string, p, c *node) error {
	if want := p.childProtocol(); c.protocol != want {
		return &errors.RenderError{
			Op:   op,
			Kind: errors.KindProtocol,
			Node: p.name(),
			ID:   p.id.Raw(),
			Err:  fmt.Errorf("child %s: %w", c.name(), &layout.MismatchError{Want: want, Got: c.protocol}),
		}
	}
	return nil
}

// checkOrphan panics unless n is a detached subtree root.
func (o *Owner) checkOrphan(op string, n *node) {
	if !n.parent.IsZero() {
		errors.Violation(op, errors.KindProgramming, "%s already has a parent", n.name())
	}
	if n.id == o.root {
		errors.Violation(op, errors.KindProgramming, "%s is the root", n.name())
	}
}

// checkNotAncestor panics if c is p or one of p's ancestors.
func (o *Owner) checkNotAncestor(op string, c, p *node) {
	for n := p; ; {
		if n == c {
			errors.Violation(op, errors.KindProgramming, "%s would become its own descendant", c.name())
		}
		if n.parent.IsZero() {
			return
		}
		n = o.node(op, n.parent)
	}
}

func (o *Owner) link(p, c *node, index int) {
	p.children = slices.Insert(p.children, index, c.id)
	c.parent = p.id
	c.parentData = newParentData(p, c)
	o.setDepth(c, p.depth+1)
}

func (o *Owner) unlink(p *node, index int) {
	c := o.node("render.unlink", p.children[index])
	p.children = slices.Delete(p.children, index, index+1)
	c.parent = NodeID{}
	c.parentData = nil
}

// adopt finishes linking c under p: attaches it if p is attached and
// schedules p for the work a new child implies.
func (o *Owner) adopt(p, c *node) {
	if p.attached() {
		o.attach(c)
	}
	o.childrenChanged(p)
}

func (o *Owner) childrenChanged(p *node) {
	if !p.attached() {
		p.set(flagNeedsLayout | flagNeedsPaint | flagNeedsCompositingBitsUpdate)
		return
	}
	o.markNeedsLayout(p)
	o.markNeedsPaint(p)
	o.markNeedsCompositingBitsUpdate(p)
}

func (o *Owner) setDepth(n *node, depth int) {
	n.depth = depth
	for _, id := range n.children {
		o.setDepth(o.node("render.setDepth", id), depth+1)
	}
}

// reissue gives every node of the subtree a fresh ID.
func (o *Owner) reissue(n *node) {
	o.nodes.remove(n.id)
	o.nodes.insert(n)
	for i, id := range n.children {
		c := o.node("render.reissue", id)
		o.reissue(c)
		c.parent = n.id
		n.children[i] = c.id
	}
}

// drop detaches a subtree and removes it from the arena.
func (o *Owner) drop(n *node) {
	if n.attached() {
		o.detach(n)
	}
	if n.layer != nil {
		n.layer.Detach()
	}
	for _, id := range n.children {
		o.drop(o.node("render.drop", id))
	}
	o.nodes.remove(n.id)
}

func newParentData(p, c *node) layout.ParentData {
	if pc, ok := p.object.(ParentDataCreator); ok {
		if data := pc.NewParentData(c.protocol); data != nil {
			return data
		}
	}
	if c.protocol == layout.Sliver {
		return &layout.SliverParentData{}
	}
	return &layout.BoxParentData{}
}
