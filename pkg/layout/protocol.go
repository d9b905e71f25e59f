// Package layout defines the two layout protocols of the render tree.
//
// A protocol fixes the constraint type a parent passes down, the geometry type
// a child returns, and the parent data a parent attaches to its children. The
// Box protocol maps rectangular constraints to a size. The Sliver protocol maps
// scroll-aware constraints to scroll, paint and layout extents. The pipeline
// in package render is written against the Constraints and Geometry
// interfaces and recovers the concrete types with checked type assertions
// keyed on Protocol.
package layout

import "fmt"

// Protocol identifies a layout family.
type Protocol int

const (
	// Box is the rectangular constraints to size protocol.
	Box Protocol = iota
	// Sliver is the scroll-aware one-dimensional protocol.
	Sliver
)

func (p Protocol) String() string {
	switch p {
	case Box:
		return "box"
	case Sliver:
		return "sliver"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// Constraints is the input a parent passes to a child's layout.
type Constraints interface {
	// Protocol reports which layout family the constraints belong to.
	Protocol() Protocol
	// IsTight reports whether exactly one geometry satisfies the constraints.
	IsTight() bool
	// Validate reports malformed constraints (NaN, inverted ranges).
	Validate() error
}

// Geometry is the output of a child's layout.
type Geometry interface {
	// Protocol reports which layout family the geometry belongs to.
	Protocol() Protocol
	// Validate checks the geometry against the constraints it was produced for.
	Validate(c Constraints) error
}

// MismatchError reports constraints or geometry of the wrong protocol.
type MismatchError struct {
	Want Protocol
	Got  Protocol
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("protocol mismatch: want %s, got %s", e.Want, e.Got)
}

// AsBox returns c as BoxConstraints.
func AsBox(c Constraints) (BoxConstraints, error) {
	bc, ok := c.(BoxConstraints)
	if !ok {
		return BoxConstraints{}, mismatch(Box, c)
	}
	return bc, nil
}

// AsSliver returns c as SliverConstraints.
func AsSliver(c Constraints) (SliverConstraints, error) {
	sc, ok := c.(SliverConstraints)
	if !ok {
		return SliverConstraints{}, mismatch(Sliver, c)
	}
	return sc, nil
}

func mismatch(want Protocol, c Constraints) error {
	if c == nil {
		return fmt.Errorf("missing %s constraints", want)
	}
	return &MismatchError{Want: want, Got: c.Protocol()}
}
