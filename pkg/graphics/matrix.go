package graphics

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transform stored row-major as
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//
// so that a point (x, y) maps to (m[0]x + m[1]y + m[2], m[3]x + m[4]y + m[5]).
type Matrix f64.Aff3

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0}
}

// TranslationMatrix returns a transform that moves points by (dx, dy).
func TranslationMatrix(dx, dy float64) Matrix {
	return Matrix{1, 0, dx, 0, 1, dy}
}

// ScaleMatrix returns a transform that scales about the origin.
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, 0, sy, 0}
}

// RotationMatrix returns a transform that rotates about the origin.
func RotationMatrix(radians float64) Matrix {
	sin, cos := math.Sincos(radians)
	return Matrix{cos, -sin, 0, sin, cos, 0}
}

// Aff3 returns the transform in the x/image representation.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}

// Multiply returns m × n: the resulting transform applies n first, then m.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Translate returns m with a translation applied before it.
func (m Matrix) Translate(dx, dy float64) Matrix {
	return m.Multiply(TranslationMatrix(dx, dy))
}

// Apply maps a point through the transform.
func (m Matrix) Apply(p Offset) Offset {
	return Offset{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// Invert returns the inverse transform. The second result is false when the
// matrix is singular (for example a zero scale).
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if det == 0 || !isFinite(det) {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		m[4] * inv,
		-m[1] * inv,
		(m[1]*m[5] - m[4]*m[2]) * inv,
		-m[3] * inv,
		m[0] * inv,
		(m[3]*m[2] - m[0]*m[5]) * inv,
	}, true
}

// IsIdentity reports whether the transform leaves every point unchanged.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsFinite reports whether every coefficient is a finite number.
func (m Matrix) IsFinite() bool {
	for _, v := range m {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// Translation returns the translation part and whether the transform is a
// pure translation.
func (m Matrix) Translation() (Offset, bool) {
	return Offset{X: m[2], Y: m[5]}, m[0] == 1 && m[1] == 0 && m[3] == 0 && m[4] == 1
}

func (m Matrix) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g]", m[0], m[1], m[2], m[3], m[4], m[5])
}
