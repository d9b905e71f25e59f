// Package arity describes how many children a render node kind may own.
//
// Every node kind carries exactly one Arity for its whole life. Tree mutations
// check the resulting child count against it before touching the tree, so a
// layout algorithm written for a single child never observes zero or two.
package arity

import (
	"strconv"

	"github.com/go-drift/rendertree/pkg/errors"
)

// Arity is a child-count tag.
type Arity int

const (
	// Leaf nodes own no children.
	Leaf Arity = iota
	// Optional nodes own zero or one child.
	Optional
	// Single nodes own exactly one child once laid out.
	Single
	// Variable nodes own any number of children.
	Variable
)

// Unbounded is the Max of an arity without an upper limit.
const Unbounded = -1

func (a Arity) String() string {
	switch a {
	case Leaf:
		return "Leaf"
	case Optional:
		return "Optional"
	case Single:
		return "Single"
	case Variable:
		return "Variable"
	default:
		return "Arity(" + strconv.Itoa(int(a)) + ")"
	}
}

// Min returns the smallest child count a laid-out node may have.
func (a Arity) Min() int {
	if a == Single {
		return 1
	}
	return 0
}

// Max returns the largest child count, or Unbounded.
func (a Arity) Max() int {
	switch a {
	case Leaf:
		return 0
	case Optional, Single:
		return 1
	default:
		return Unbounded
	}
}

// Allows reports whether n children satisfy the arity.
func (a Arity) Allows(n int) bool {
	if n < a.Min() {
		return false
	}
	return a.Max() == Unbounded || n <= a.Max()
}

// CheckAdd validates adding one child to a node that currently has current
// children.
func (a Arity) CheckAdd(current int) error {
	n := current + 1
	if a.Max() != Unbounded && n > a.Max() {
		return a.violation("add", n)
	}
	return nil
}

// CheckRemove validates removing one child from a node that currently has
// current children. Removing the only child of a Single node is rejected; use
// a replacement instead.
func (a Arity) CheckRemove(current int) error {
	n := current - 1
	if n < 0 || n < a.Min() {
		return a.violation("remove", n)
	}
	return nil
}

// CheckCount validates a complete child list of length n.
func (a Arity) CheckCount(n int) error {
	if !a.Allows(n) {
		return a.violation("set", n)
	}
	return nil
}

func (a Arity) violation(op string, n int) error {
	return &errors.RenderError{
		Op:   "arity.Check",
		Kind: errors.KindArity,
		Err:  &errors.ArityError{Arity: a.String(), Count: n, Op: op},
	}
}
