// Package geometry provides the 2D point type shared by the ergonomics engine.
// Points are either photo pixels or real millimetres depending on the caller;
// the two are never mixed inside one calculation.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D is an immutable 2D coordinate.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for building a point.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Ref returns a pointer to a copy of p, for optional marker fields.
func Ref(x, y float64) *Point2D {
	p := Point2D{X: x, Y: y}
	return &p
}

// Vec converts the point to a gonum vector.
func (p Point2D) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector back to a point.
func FromVec(v r2.Vec) Point2D {
	return Point2D{X: v.X, Y: v.Y}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return FromVec(r2.Add(p.Vec(), q.Vec()))
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return FromVec(r2.Sub(p.Vec(), q.Vec()))
}

// Scale returns p scaled by f about the origin.
func (p Point2D) Scale(f float64) Point2D {
	return FromVec(r2.Scale(f, p.Vec()))
}

// Lerp returns the point a fraction t of the way from p to q.
func (p Point2D) Lerp(q Point2D, t float64) Point2D {
	return p.Add(q.Sub(p).Scale(t))
}

// Distance returns the Euclidean distance to q.
func (p Point2D) Distance(q Point2D) float64 {
	return r2.Norm(r2.Sub(p.Vec(), q.Vec()))
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return finite(p.X) && finite(p.Y)
}

// Distance returns the distance between two optional points, or 0 when either
// is missing.
func Distance(a, b *Point2D) float64 {
	if a == nil || b == nil {
		return 0
	}
	return a.Distance(*b)
}

// AngleBetween returns the angle in degrees between two vectors. Both are
// normalised before the dot product so large coordinates cannot overflow.
// ok is false when either vector has zero length or a non-finite component.
func AngleBetween(u, v r2.Vec) (deg float64, ok bool) {
	uu, ok := unit(u)
	if !ok {
		return 0, false
	}
	vv, ok := unit(v)
	if !ok {
		return 0, false
	}
	return Degrees(math.Acos(Clamp(r2.Dot(uu, vv), -1, 1))), true
}

// unit returns v at length 1. v is first divided by its largest component so
// the norm stays finite.
func unit(v r2.Vec) (r2.Vec, bool) {
	if !finite(v.X) || !finite(v.Y) {
		return r2.Vec{}, false
	}
	m := math.Max(math.Abs(v.X), math.Abs(v.Y))
	if m == 0 {
		return r2.Vec{}, false
	}
	return r2.Unit(r2.Vec{X: v.X / m, Y: v.Y / m}), true
}

// LawOfCosines returns the angle in degrees opposite side c of a triangle with
// sides a, b, c. Sides are rescaled by the longest one and the cosine is
// clamped, so flat triangles give exactly 0° or 180°. ok is false unless a and
// b are positive, c is non-negative and all three are finite.
func LawOfCosines(a, b, c float64) (deg float64, ok bool) {
	if !finite(a) || !finite(b) || !finite(c) || a <= 0 || b <= 0 || c < 0 {
		return 0, false
	}
	m := math.Max(a, math.Max(b, c))
	a, b, c = a/m, b/m, c/m
	cos := (a*a + b*b - c*c) / (2 * a * b)
	if math.IsNaN(cos) {
		return 0, false
	}
	return Degrees(math.Acos(Clamp(cos, -1, 1))), true
}

// Clamp limits v to [lo, hi]. NaN is returned unchanged.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
