// Package geom holds the float geometry shared by surfaces and the
// pointer bridge: points, rectangles and affine transforms.
package geom

import "gioui.org/f32"

// Point is a location in either device or surface space.
type Point struct {
	X, Y float32
}

// ZP is the zero point.
var ZP Point

// Pt returns the point (x, y).
func Pt(x, y float32) Point {
	return Point{x, y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float32) Point {
	return Point{p.X * k, p.Y * k}
}

// Div returns p divided by k.
func (p Point) Div(k float32) Point {
	return Point{p.X / k, p.Y / k}
}

// Eq reports whether p and q are equal.
func (p Point) Eq(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

// In reports whether p is in r, edges included.
func (p Point) In(r Rectangle) bool {
	return r.Min.X <= p.X && p.X <= r.Max.X &&
		r.Min.Y <= p.Y && p.Y <= r.Max.Y
}

func (p Point) toF32() f32.Point {
	return f32.Pt(p.X, p.Y)
}

func fromF32(p f32.Point) Point {
	return Point{p.X, p.Y}
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	Min, Max Point
}

// ZR is the zero rectangle.
var ZR Rectangle

// Rect returns the rectangle with corners (x0, y0) and (x1, y1).
// The result is canonicalized.
func Rect(x0, y0, x1, y1 float32) Rectangle {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rectangle{Point{x0, y0}, Point{x1, y1}}
}

// XYWH returns the rectangle at (x, y) with the given width and height.
func XYWH(x, y, w, h float32) Rectangle {
	return Rect(x, y, x+w, y+h)
}

// Dx returns the width of r.
func (r Rectangle) Dx() float32 {
	return r.Max.X - r.Min.X
}

// Dy returns the height of r.
func (r Rectangle) Dy() float32 {
	return r.Max.Y - r.Min.Y
}

// Size returns the width and height of r as a point.
func (r Rectangle) Size() Point {
	return Point{r.Dx(), r.Dy()}
}

// Add returns r translated by p.
func (r Rectangle) Add(p Point) Rectangle {
	return Rectangle{r.Min.Add(p), r.Max.Add(p)}
}

// Empty reports whether r has no area.
func (r Rectangle) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Eq reports whether r and s are equal.
func (r Rectangle) Eq(s Rectangle) bool {
	return r.Min.Eq(s.Min) && r.Max.Eq(s.Max)
}
