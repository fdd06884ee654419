package geom

import (
	"errors"
	"fmt"
	"math"

	"gioui.org/f32"
)

// ErrSingular is returned when a transform has no inverse.
var ErrSingular = errors.New("singular transform")

// Transform is a 2D affine transform. The zero value is the identity.
//
// Builder methods append an operation: t.Offset(p) is t followed by a
// translation by p.
type Transform struct {
	a f32.Affine2D
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{}
}

// NewTransform returns the transform
//
//	| sx hx ox |
//	| hy sy oy |
func NewTransform(sx, hx, ox, hy, sy, oy float32) Transform {
	return Transform{f32.NewAffine2D(sx, hx, ox, hy, sy, oy)}
}

// Offset returns t followed by a translation by d.
func (t Transform) Offset(d Point) Transform {
	return Transform{t.a.Offset(d.toF32())}
}

// Scale returns t followed by a scale by factor about origin.
func (t Transform) Scale(origin, factor Point) Transform {
	return Transform{t.a.Scale(origin.toF32(), factor.toF32())}
}

// Rotate returns t followed by a rotation of radians about origin.
func (t Transform) Rotate(origin Point, radians float32) Transform {
	return Transform{t.a.Rotate(origin.toF32(), radians)}
}

// Then returns t followed by u.
func (t Transform) Then(u Transform) Transform {
	return Transform{u.a.Mul(t.a)}
}

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	return fromF32(t.a.Transform(p.toF32()))
}

// Elems returns the matrix coefficients, in NewTransform order.
func (t Transform) Elems() (sx, hx, ox, hy, sy, oy float32) {
	return t.a.Elems()
}

// Det returns the determinant of the linear part of t.
func (t Transform) Det() float32 {
	sx, hx, _, hy, sy, _ := t.a.Elems()
	return sx*sy - hx*hy
}

// Invert returns the inverse of t, or ErrSingular when t collapses
// the plane.
func (t Transform) Invert() (Transform, error) {
	det := float64(t.Det())
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Transform{}, fmt.Errorf("invert %v: %w", t, ErrSingular)
	}
	return Transform{t.a.Invert()}, nil
}

// IsIdentity reports whether t leaves every point unchanged.
func (t Transform) IsIdentity() bool {
	return t.a == f32.Affine2D{}
}

func (t Transform) String() string {
	sx, hx, ox, hy, sy, oy := t.a.Elems()
	return fmt.Sprintf("[[%g %g %g] [%g %g %g]]", sx, hx, ox, hy, sy, oy)
}
