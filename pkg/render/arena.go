package render

import (
	"fmt"

	"github.com/go-drift/rendertree/pkg/errors"
)

// NodeID identifies a node in an Owner's arena. The zero value is never a
// live node. An ID stops resolving once its node is removed or reparented;
// the slot may be reused, but with a different generation.
type NodeID struct {
	index      uint32
	generation uint32
}

// IsZero reports whether id is the zero (invalid) ID.
func (id NodeID) IsZero() bool {
	return id.generation == 0
}

// Raw packs the ID into a single integer for logs and error reports.
func (id NodeID) Raw() uint64 {
	return uint64(id.generation)<<32 | uint64(id.index)
}

func (id NodeID) String() string {
	if id.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%dv%d", id.index, id.generation)
}

type slot struct {
	generation uint32
	node       *node
}

// arena owns every node of an Owner. Links between nodes are IDs.
type arena struct {
	slots []slot
	free  []uint32
	live  int
}

func (a *arena) insert(n *node) NodeID {
	var index uint32
	if k := len(a.free); k > 0 {
		index = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	s := &a.slots[index]
	s.generation++
	s.node = n
	a.live++
	id := NodeID{index: index, generation: s.generation}
	n.id = id
	return id
}

func (a *arena) get(id NodeID) (*node, bool) {
	if id.IsZero() || int(id.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[id.index]
	if s.generation != id.generation || s.node == nil {
		return nil, false
	}
	return s.node, true
}

// mustGet resolves id or panics with a stale reference violation.
func (a *arena) mustGet(op string, id NodeID) *node {
	n, ok := a.get(id)
	if !ok {
		panic(&errors.RenderError{
			Op:         op,
			Kind:       errors.KindStaleReference,
			ID:         id.Raw(),
			Err:        fmt.Errorf("node %v does not resolve", id),
			StackTrace: errors.CaptureStack(),
		})
	}
	return n
}

func (a *arena) remove(id NodeID) {
	if _, ok := a.get(id); !ok {
		return
	}
	a.slots[id.index].node = nil
	a.free = append(a.free, id.index)
	a.live--
}
