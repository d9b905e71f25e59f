package layout

import (
	"testing"

	"github.com/go-drift/rendertree/pkg/graphics"
)

func viewportConstraints(remaining float64) SliverConstraints {
	return SliverConstraints{
		AxisDirection:          AxisDown,
		CrossAxisDirection:     AxisRight,
		RemainingPaintExtent:   remaining,
		CrossAxisExtent:        300,
		ViewportMainAxisExtent: remaining,
		RemainingCacheExtent:   remaining,
	}
}

func TestSliverGeometryValidate(t *testing.T) {
	c := viewportConstraints(100)
	tests := []struct {
		name    string
		g       SliverGeometry
		wantErr bool
	}{
		{"fits", NewSliverGeometry(500, 100, 0), false},
		{"zero", ZeroSliverGeometry(), false},
		{"exceeds remaining", NewSliverGeometry(500, 150, 0), true},
		{"layout exceeds paint", SliverGeometry{PaintExtent: 10, MaxPaintExtent: 10, LayoutExtent: 20}, true},
		{"paint exceeds max", SliverGeometry{PaintExtent: 10, LayoutExtent: 10}, true},
		{"negative", SliverGeometry{ScrollExtent: -1}, true},
		{"zero correction", SliverGeometry{HasCorrection: true}, true},
		{"correction", SliverGeometry{HasCorrection: true, ScrollOffsetCorrection: -20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSliverHitSize(t *testing.T) {
	g := NewSliverGeometry(200, 80, 0)
	if got := g.HitSize(viewportConstraints(100)); got != (graphics.Size{Width: 300, Height: 80}) {
		t.Errorf("vertical HitSize() = %v", got)
	}
	c := viewportConstraints(100)
	c.AxisDirection = AxisRight
	if got := g.HitSize(c); got != (graphics.Size{Width: 80, Height: 300}) {
		t.Errorf("horizontal HitSize() = %v", got)
	}
	if !g.IsHitTestable() || !g.IsVisible() {
		t.Error("geometry with paint extent should be visible and hit testable")
	}
	if ZeroSliverGeometry().IsHitTestable() {
		t.Error("zero geometry should not be hit testable")
	}
}

func TestAsBoxConstraints(t *testing.T) {
	c := viewportConstraints(100)
	got := c.AsBoxConstraints(0, 50, c.CrossAxisExtent)
	want := BoxConstraints{MinWidth: 300, MaxWidth: 300, MinHeight: 0, MaxHeight: 50}
	if got != want {
		t.Errorf("AsBoxConstraints() = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	c := viewportConstraints(100.004)
	c.ScrollOffset = 12.3456
	n := c.Normalize()
	if n.RemainingPaintExtent != 100 || n.ScrollOffset != 12.35 {
		t.Errorf("Normalize() = %+v", n)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
