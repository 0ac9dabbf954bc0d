package ergonomics

import (
	"math"

	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
)

// DistanceInMM converts the pixel distance between a and b to millimetres.
// It returns 0 when the photo is uncalibrated, a point is missing or the
// result does not fit in a float64.
func DistanceInMM(a, b *geometry.Point2D, pxPerMM float64) float64 {
	if !positive(pxPerMM) {
		return 0
	}
	d := geometry.Distance(a, b) / pxPerMM
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// GetDistances returns the three rider-triangle sides in millimetres.
func GetDistances(m *MarkerSet, pxPerMM float64) Distances {
	if m == nil {
		return Distances{}
	}
	return Distances{
		SeatPeg: DistanceInMM(m.Seat, m.Peg, pxPerMM),
		SeatBar: DistanceInMM(m.Seat, m.Bar, pxPerMM),
		PegBar:  DistanceInMM(m.Peg, m.Bar, pxPerMM),
	}
}
