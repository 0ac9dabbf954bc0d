// Package ergonomics computes rider-triangle distances and joint angles.
//
// All functions are pure and total: missing input yields a sentinel (0 for
// distances, nil for angles), geometrically impossible input resolves through
// a named fallback, and nothing panics. Identical inputs always produce
// identical outputs, so results can be memoised and shared across goroutines.
package ergonomics

import "github.com/teslashibe/go-moto-ergo/pkg/geometry"

// MarkerSet holds the three rider-triangle anchors in one photo's pixel space.
type MarkerSet struct {
	Seat *geometry.Point2D `json:"seat"`
	Peg  *geometry.Point2D `json:"peg"`
	Bar  *geometry.Point2D `json:"bar"`
}

// Complete reports whether all three anchors are placed.
func (m *MarkerSet) Complete() bool {
	return m != nil && m.Seat != nil && m.Peg != nil && m.Bar != nil
}

// RiderSegments are body segment lengths in millimetres.
type RiderSegments struct {
	Thigh    float64 `json:"thigh"`
	LowerLeg float64 `json:"lower_leg"`
	Torso    float64 `json:"torso"`
	UpperArm float64 `json:"upper_arm"`
	Forearm  float64 `json:"forearm"`
}

// Distances are the rider-triangle side lengths in millimetres.
// A side is 0 when either of its markers is missing.
type Distances struct {
	SeatPeg float64 `json:"seat_peg"`
	SeatBar float64 `json:"seat_bar"`
	PegBar  float64 `json:"peg_bar"`
}

// AngleResult holds joint angles in degrees. A nil field means the angle
// could not be computed; 0 is a valid angle and never used as a sentinel.
type AngleResult struct {
	Knee *float64 `json:"knee"`
	Hip  *float64 `json:"hip"`
	Back *float64 `json:"back"`
	Arm  *float64 `json:"arm"`
}

// Count returns how many angles are defined.
func (a AngleResult) Count() int {
	n := 0
	for _, v := range []*float64{a.Knee, a.Hip, a.Back, a.Arm} {
		if v != nil {
			n++
		}
	}
	return n
}

// ManualMeasurements are tape-measured offsets from the seat reference point,
// used instead of a calibrated photo. Forward is toward the front wheel.
type ManualMeasurements struct {
	PegForward float64 `json:"peg_forward"` // Peg ahead of the seat point (negative = behind)
	PegDrop    float64 `json:"peg_drop"`    // Peg below the seat point
	BarForward float64 `json:"bar_forward"` // Bar ahead of the seat point
	BarRise    float64 `json:"bar_rise"`    // Bar above the seat point (negative = below)
}

// toPeg returns the seat→peg vector in screen orientation (+x forward, +y down).
func (m ManualMeasurements) toPeg() geometry.Point2D {
	return geometry.Pt(m.PegForward, m.PegDrop)
}

// toBar returns the seat→bar vector in screen orientation.
func (m ManualMeasurements) toBar() geometry.Point2D {
	return geometry.Pt(m.BarForward, -m.BarRise)
}

// Distances derives the rider-triangle sides from the offsets.
func (m ManualMeasurements) Distances() Distances {
	origin := geometry.Point2D{}
	peg, bar := m.toPeg(), m.toBar()
	return Distances{
		SeatPeg: origin.Distance(peg),
		SeatBar: origin.Distance(bar),
		PegBar:  peg.Distance(bar),
	}
}

func ptr(v float64) *float64 {
	return &v
}
