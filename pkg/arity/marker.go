package arity

// Marker is implemented by the zero-size marker types below. Node kinds embed
// one of them to declare their arity as part of their type.
//
//	type Padding struct {
//		arity.SingleKind
//		...
//	}
type Marker interface {
	Arity() Arity
}

// LeafKind marks a node kind without children.
type LeafKind struct{}

// Arity returns Leaf.
func (LeafKind) Arity() Arity { return Leaf }

// OptionalKind marks a node kind with at most one child.
type OptionalKind struct{}

// Arity returns Optional.
func (OptionalKind) Arity() Arity { return Optional }

// SingleKind marks a node kind with exactly one child.
type SingleKind struct{}

// Arity returns Single.
func (SingleKind) Arity() Arity { return Single }

// VariableKind marks a node kind with any number of children.
type VariableKind struct{}

// Arity returns Variable.
func (VariableKind) Arity() Arity { return Variable }

// Of returns the arity fixed by marker type M.
func Of[M Marker]() Arity {
	var m M
	return m.Arity()
}
