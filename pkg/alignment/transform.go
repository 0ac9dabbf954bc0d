// Package alignment overlays a secondary bike photo onto the primary one.
//
// Both photos are calibrated independently, so the secondary photo is scaled
// by the ratio of the two px/mm values and then translated so its rear axle
// lands on the primary axle. The primary photo is the fixed frame.
package alignment

import (
	"math"

	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
)

// Transform maps secondary-photo pixels into primary-photo pixels as
// scale*p + translation.
type Transform struct {
	Scale       float64          `json:"scale"`
	Translation geometry.Point2D `json:"translation"`
}

// Identity is the transform of the primary photo onto itself.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps p from the secondary frame into the primary frame.
func (t Transform) Apply(p geometry.Point2D) geometry.Point2D {
	return p.Scale(t.Scale).Add(t.Translation)
}

// IsIdentity reports whether t leaves every point in place.
func (t Transform) IsIdentity() bool {
	return t.Scale == 1 && t.Translation == (geometry.Point2D{})
}

// CalculateScale returns pxPerMMA / pxPerMMB. Until both photos are
// calibrated it returns 1 so the overlay is left untouched.
func CalculateScale(pxPerMMA, pxPerMMB float64) float64 {
	if !(pxPerMMA > 0) || !(pxPerMMB > 0) {
		return 1
	}
	s := pxPerMMA / pxPerMMB
	if math.IsInf(s, 0) || math.IsNaN(s) || s == 0 {
		return 1
	}
	return s
}

// CalculateTranslation returns the offset that moves axle B, after scaling,
// onto axle A. It is zero when either axle is missing.
func CalculateTranslation(axleA, axleB *geometry.Point2D, scale float64) geometry.Point2D {
	if axleA == nil || axleB == nil {
		return geometry.Point2D{}
	}
	return axleA.Sub(axleB.Scale(scale))
}

// Calculate builds the full transform for the secondary photo.
func Calculate(pxPerMMA, pxPerMMB float64, axleA, axleB *geometry.Point2D) Transform {
	scale := CalculateScale(pxPerMMA, pxPerMMB)
	return Transform{
		Scale:       scale,
		Translation: CalculateTranslation(axleA, axleB, scale),
	}
}
