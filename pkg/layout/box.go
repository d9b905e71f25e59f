package layout

import (
	"fmt"
	"math"

	"github.com/go-drift/rendertree/pkg/graphics"
)

// BoxConstraints bounds the size of a Box-protocol node.
type BoxConstraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight returns constraints that only allow the exact size.
func Tight(size graphics.Size) BoxConstraints {
	return BoxConstraints{
		MinWidth:  size.Width,
		MaxWidth:  size.Width,
		MinHeight: size.Height,
		MaxHeight: size.Height,
	}
}

// Loose returns constraints from zero up to the given size.
func Loose(size graphics.Size) BoxConstraints {
	return BoxConstraints{
		MaxWidth:  size.Width,
		MaxHeight: size.Height,
	}
}

// Unbounded returns constraints from zero to infinity on both axes.
func Unbounded() BoxConstraints {
	return BoxConstraints{MaxWidth: math.Inf(1), MaxHeight: math.Inf(1)}
}

// Expand returns constraints that fill whatever the parent offers.
// They are tight at infinity and only make sense as an argument to Enforce.
func Expand() BoxConstraints {
	inf := math.Inf(1)
	return BoxConstraints{MinWidth: inf, MaxWidth: inf, MinHeight: inf, MaxHeight: inf}
}

// TightFor returns constraints tight on each axis whose value is non-negative.
// A negative value leaves that axis unconstrained.
func TightFor(width, height float64) BoxConstraints {
	c := Unbounded()
	if width >= 0 {
		c.MinWidth, c.MaxWidth = width, width
	}
	if height >= 0 {
		c.MinHeight, c.MaxHeight = height, height
	}
	return c
}

// Protocol returns Box.
func (c BoxConstraints) Protocol() Protocol { return Box }

// IsTight reports whether min equals max on both axes.
func (c BoxConstraints) IsTight() bool {
	return c.HasTightWidth() && c.HasTightHeight()
}

// HasTightWidth reports whether the width is fixed.
func (c BoxConstraints) HasTightWidth() bool { return c.MinWidth >= c.MaxWidth }

// HasTightHeight reports whether the height is fixed.
func (c BoxConstraints) HasTightHeight() bool { return c.MinHeight >= c.MaxHeight }

// HasBoundedWidth reports whether the maximum width is finite.
func (c BoxConstraints) HasBoundedWidth() bool { return !math.IsInf(c.MaxWidth, 1) }

// HasBoundedHeight reports whether the maximum height is finite.
func (c BoxConstraints) HasBoundedHeight() bool { return !math.IsInf(c.MaxHeight, 1) }

// IsNormalized reports whether all bounds are non-negative and ordered.
func (c BoxConstraints) IsNormalized() bool {
	return c.MinWidth >= 0 && c.MinWidth <= c.MaxWidth &&
		c.MinHeight >= 0 && c.MinHeight <= c.MaxHeight
}

// Validate rejects NaN bounds, negative or infinite minimums, and min > max.
func (c BoxConstraints) Validate() error {
	for _, v := range [...]float64{c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight} {
		if math.IsNaN(v) {
			return fmt.Errorf("invalid %v: NaN bound", c)
		}
	}
	if c.MinWidth < 0 || c.MinHeight < 0 {
		return fmt.Errorf("invalid %v: negative minimum", c)
	}
	if math.IsInf(c.MinWidth, 1) || math.IsInf(c.MinHeight, 1) {
		return fmt.Errorf("invalid %v: infinite minimum", c)
	}
	if c.MinWidth > c.MaxWidth || c.MinHeight > c.MaxHeight {
		return fmt.Errorf("invalid %v: minimum exceeds maximum", c)
	}
	return nil
}

// ConstrainWidth clamps width into [MinWidth, MaxWidth].
func (c BoxConstraints) ConstrainWidth(width float64) float64 {
	return math.Max(c.MinWidth, math.Min(c.MaxWidth, width))
}

// ConstrainHeight clamps height into [MinHeight, MaxHeight].
func (c BoxConstraints) ConstrainHeight(height float64) float64 {
	return math.Max(c.MinHeight, math.Min(c.MaxHeight, height))
}

// Constrain clamps a size to fit within the constraints.
func (c BoxConstraints) Constrain(size graphics.Size) graphics.Size {
	return graphics.Size{
		Width:  c.ConstrainWidth(size.Width),
		Height: c.ConstrainHeight(size.Height),
	}
}

// Biggest returns the largest size that satisfies the constraints.
// Unbounded axes stay infinite.
func (c BoxConstraints) Biggest() graphics.Size {
	return c.Constrain(graphics.Size{Width: math.Inf(1), Height: math.Inf(1)})
}

// Smallest returns the smallest size that satisfies the constraints.
func (c BoxConstraints) Smallest() graphics.Size {
	return c.Constrain(graphics.Size{})
}

// Loosen drops the minimums to zero.
func (c BoxConstraints) Loosen() BoxConstraints {
	return BoxConstraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// Enforce clamps c into other so the result satisfies both.
func (c BoxConstraints) Enforce(other BoxConstraints) BoxConstraints {
	clamp := func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
	return BoxConstraints{
		MinWidth:  clamp(c.MinWidth, other.MinWidth, other.MaxWidth),
		MaxWidth:  clamp(c.MaxWidth, other.MinWidth, other.MaxWidth),
		MinHeight: clamp(c.MinHeight, other.MinHeight, other.MaxHeight),
		MaxHeight: clamp(c.MaxHeight, other.MinHeight, other.MaxHeight),
	}
}

// Deflate shrinks the constraints by the insets, never below zero.
func (c BoxConstraints) Deflate(insets EdgeInsets) BoxConstraints {
	h := insets.Horizontal()
	v := insets.Vertical()
	minW := math.Max(0, c.MinWidth-h)
	minH := math.Max(0, c.MinHeight-v)
	return BoxConstraints{
		MinWidth:  minW,
		MaxWidth:  math.Max(minW, c.MaxWidth-h),
		MinHeight: minH,
		MaxHeight: math.Max(minH, c.MaxHeight-v),
	}
}

// IsSatisfiedBy reports whether size lies within the constraints, allowing
// graphics.Epsilon of floating-point slack.
func (c BoxConstraints) IsSatisfiedBy(size graphics.Size) bool {
	const eps = graphics.Epsilon
	return size.Width >= c.MinWidth-eps && size.Width <= c.MaxWidth+eps &&
		size.Height >= c.MinHeight-eps && size.Height <= c.MaxHeight+eps
}

func (c BoxConstraints) String() string {
	if c.IsTight() {
		return fmt.Sprintf("BoxConstraints(tight %gx%g)", c.MinWidth, c.MinHeight)
	}
	return fmt.Sprintf("BoxConstraints(%g<=w<=%g, %g<=h<=%g)", c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight)
}

// BoxGeometry is the result of a Box-protocol layout.
type BoxGeometry struct {
	Size graphics.Size
}

// Protocol returns Box.
func (g BoxGeometry) Protocol() Protocol { return Box }

// Validate checks that the size is finite and satisfies c.
func (g BoxGeometry) Validate(c Constraints) error {
	bc, err := AsBox(c)
	if err != nil {
		return err
	}
	if !g.Size.IsFinite() {
		return fmt.Errorf("size %vx%v is not finite", g.Size.Width, g.Size.Height)
	}
	if !bc.IsSatisfiedBy(g.Size) {
		return fmt.Errorf("size %vx%v does not satisfy %v", g.Size.Width, g.Size.Height, bc)
	}
	return nil
}

// EdgeInsets represents padding on four sides.
type EdgeInsets struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// EdgeInsetsAll returns equal insets on all sides.
func EdgeInsetsAll(v float64) EdgeInsets {
	return EdgeInsets{Left: v, Top: v, Right: v, Bottom: v}
}

// Horizontal returns the sum of the left and right insets.
func (e EdgeInsets) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns the sum of the top and bottom insets.
func (e EdgeInsets) Vertical() float64 { return e.Top + e.Bottom }
