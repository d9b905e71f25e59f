package layout

import (
	"fmt"
	"math"

	"github.com/go-drift/rendertree/pkg/graphics"
)

// Axis is a two-dimensional direction without sign.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// AxisDirection is a signed axis.
type AxisDirection int

const (
	AxisDown AxisDirection = iota
	AxisUp
	AxisRight
	AxisLeft
)

// Axis returns the unsigned axis of d.
func (d AxisDirection) Axis() Axis {
	if d == AxisLeft || d == AxisRight {
		return Horizontal
	}
	return Vertical
}

// IsReversed reports whether d points towards the origin.
func (d AxisDirection) IsReversed() bool {
	return d == AxisUp || d == AxisLeft
}

// GrowthDirection is the direction content is added relative to the axis.
type GrowthDirection int

const (
	GrowthForward GrowthDirection = iota
	GrowthReverse
)

// ScrollDirection is the direction the user is currently scrolling.
type ScrollDirection int

const (
	ScrollIdle ScrollDirection = iota
	ScrollForward
	ScrollReverse
)

// SliverConstraints describe the part of a scrollable viewport available to
// one sliver.
type SliverConstraints struct {
	AxisDirection          AxisDirection
	GrowthDirection        GrowthDirection
	UserScrollDirection    ScrollDirection
	ScrollOffset           float64
	PrecedingScrollExtent  float64
	Overlap                float64
	RemainingPaintExtent   float64
	CrossAxisExtent        float64
	CrossAxisDirection     AxisDirection
	ViewportMainAxisExtent float64
	RemainingCacheExtent   float64
	CacheOrigin            float64
}

// Protocol returns Sliver.
func (c SliverConstraints) Protocol() Protocol { return Sliver }

// IsTight is always false: a sliver chooses its own extents.
func (c SliverConstraints) IsTight() bool { return false }

// Axis returns the scroll axis.
func (c SliverConstraints) Axis() Axis { return c.AxisDirection.Axis() }

// Validate rejects NaN values and negative extents.
func (c SliverConstraints) Validate() error {
	for _, v := range [...]float64{c.ScrollOffset, c.PrecedingScrollExtent, c.Overlap, c.RemainingPaintExtent,
		c.CrossAxisExtent, c.ViewportMainAxisExtent, c.RemainingCacheExtent, c.CacheOrigin} {
		if math.IsNaN(v) {
			return fmt.Errorf("invalid %v: NaN value", c)
		}
	}
	if c.ScrollOffset < 0 {
		return fmt.Errorf("invalid %v: negative scroll offset", c)
	}
	if c.RemainingPaintExtent < 0 || c.CrossAxisExtent < 0 || c.RemainingCacheExtent < 0 {
		return fmt.Errorf("invalid %v: negative extent", c)
	}
	if c.CacheOrigin > 0 {
		return fmt.Errorf("invalid %v: positive cache origin", c)
	}
	return nil
}

// AsBoxConstraints returns box constraints for a box child of a sliver:
// tight in the cross axis and [minExtent, maxExtent] along the main axis.
func (c SliverConstraints) AsBoxConstraints(minExtent, maxExtent, crossAxisExtent float64) BoxConstraints {
	if c.Axis() == Horizontal {
		return BoxConstraints{
			MinWidth:  minExtent,
			MaxWidth:  maxExtent,
			MinHeight: crossAxisExtent,
			MaxHeight: crossAxisExtent,
		}
	}
	return BoxConstraints{
		MinWidth:  crossAxisExtent,
		MaxWidth:  crossAxisExtent,
		MinHeight: minExtent,
		MaxHeight: maxExtent,
	}
}

// Normalize rounds finite values to hundredths so near-identical constraints
// compare equal.
func (c SliverConstraints) Normalize() SliverConstraints {
	c.ScrollOffset = roundHundredths(c.ScrollOffset)
	c.PrecedingScrollExtent = roundHundredths(c.PrecedingScrollExtent)
	c.Overlap = roundHundredths(c.Overlap)
	c.RemainingPaintExtent = roundHundredths(c.RemainingPaintExtent)
	c.CrossAxisExtent = roundHundredths(c.CrossAxisExtent)
	c.ViewportMainAxisExtent = roundHundredths(c.ViewportMainAxisExtent)
	c.RemainingCacheExtent = roundHundredths(c.RemainingCacheExtent)
	c.CacheOrigin = roundHundredths(c.CacheOrigin)
	return c
}

// IsScrolledOutOfView reports whether the sliver starts past the visible area.
func (c SliverConstraints) IsScrolledOutOfView() bool {
	return c.ScrollOffset >= c.RemainingPaintExtent
}

func (c SliverConstraints) String() string {
	return fmt.Sprintf("SliverConstraints(offset %g, remaining %g, cross %g)",
		c.ScrollOffset, c.RemainingPaintExtent, c.CrossAxisExtent)
}

func roundHundredths(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}

// SliverGeometry is the result of a Sliver-protocol layout.
type SliverGeometry struct {
	ScrollExtent               float64
	PaintExtent                float64
	PaintOrigin                float64
	LayoutExtent               float64
	MaxPaintExtent             float64
	MaxScrollObstructionExtent float64
	HitTestExtent              float64
	CacheExtent                float64
	Visible                    bool
	HasVisualOverflow          bool

	// CrossAxisExtent overrides the constraints' cross axis extent when non-zero.
	CrossAxisExtent float64

	// ScrollOffsetCorrection asks the viewport to adjust its scroll offset and
	// lay out again. It is only meaningful when HasCorrection is set.
	ScrollOffsetCorrection float64
	HasCorrection          bool
}


// NewSliverGeometry returns geometry whose layout, max paint, hit test and
// cache extents default to paintExtent.
func NewSliverGeometry(scrollExtent, paintExtent, paintOrigin float64) SliverGeometry {
	return SliverGeometry{
		ScrollExtent:   scrollExtent,
		PaintExtent:    paintExtent,
		PaintOrigin:    paintOrigin,
		LayoutExtent:   paintExtent,
		MaxPaintExtent: paintExtent,
		HitTestExtent:  paintExtent,
		Visible:        paintExtent > 0,
		CacheExtent:    paintExtent,
	}
}

// ZeroSliverGeometry returns geometry for a sliver that occupies no space.
func ZeroSliverGeometry() SliverGeometry {
	return SliverGeometry{}
}

// Protocol returns Sliver.
func (g SliverGeometry) Protocol() Protocol { return Sliver }

// IsVisible reports whether the sliver paints anything.
func (g SliverGeometry) IsVisible() bool {
	return g.Visible && g.PaintExtent > 0
}

// IsHitTestable reports whether the sliver can receive hits.
func (g SliverGeometry) IsHitTestable() bool {
	return g.Visible && g.HitTestExtent > 0
}

// PaintBounds returns the painted range along the main axis.
func (g SliverGeometry) PaintBounds() (start, end float64) {
	return g.PaintOrigin, g.PaintOrigin + g.PaintExtent
}

// HitSize returns the hit-test area in local coordinates for constraints c:
// the hit test extent along the main axis and the cross axis extent across it.
func (g SliverGeometry) HitSize(c SliverConstraints) graphics.Size {
	cross := c.CrossAxisExtent
	if g.CrossAxisExtent > 0 {
		cross = g.CrossAxisExtent
	}
	if c.Axis() == Horizontal {
		return graphics.Size{Width: g.HitTestExtent, Height: cross}
	}
	return graphics.Size{Width: cross, Height: g.HitTestExtent}
}

// Validate checks internal consistency and that the paint extent fits in the
// remaining paint extent of c.
func (g SliverGeometry) Validate(c Constraints) error {
	sc, err := AsSliver(c)
	if err != nil {
		return err
	}
	const eps = graphics.Epsilon
	extents := [...]struct {
		name string
		v    float64
	}{
		{"scroll extent", g.ScrollExtent},
		{"paint extent", g.PaintExtent},
		{"layout extent", g.LayoutExtent},
		{"max paint extent", g.MaxPaintExtent},
		{"hit test extent", g.HitTestExtent},
		{"cache extent", g.CacheExtent},
	}
	for _, e := range extents {
		if math.IsNaN(e.v) || e.v < 0 {
			return fmt.Errorf("%s %v must be a non-negative number", e.name, e.v)
		}
	}
	if g.LayoutExtent > g.PaintExtent+eps {
		return fmt.Errorf("layout extent %v exceeds paint extent %v", g.LayoutExtent, g.PaintExtent)
	}
	if g.PaintExtent > g.MaxPaintExtent+eps {
		return fmt.Errorf("paint extent %v exceeds max paint extent %v", g.PaintExtent, g.MaxPaintExtent)
	}
	if g.PaintExtent > sc.RemainingPaintExtent+eps {
		return fmt.Errorf("paint extent %v exceeds remaining paint extent %v", g.PaintExtent, sc.RemainingPaintExtent)
	}
	if g.HasCorrection && g.ScrollOffsetCorrection == 0 {
		return fmt.Errorf("scroll offset correction must not be zero")
	}
	return nil
}
