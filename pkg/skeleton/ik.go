// Package skeleton reconstructs an approximate rider skeleton from the three
// rider-triangle anchors for overlay drawing.
//
// Hinge joints (knee, elbow) are solved by intersecting two circles centred
// on the limb endpoints. The result is a visual aid, not a measurement: every
// degenerate case resolves to a stable position instead of failing.
// Photo space has +y pointing down and bikes facing right.
package skeleton

import (
	"math"

	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
)

// Bend selects which side of the endpoint axis a hinge joint is placed on.
// The side is fixed so the drawn limb never flips between frames.
type Bend int

const (
	// BendLeft places the joint left of the a→b direction as seen on screen.
	// For a hip-above-foot leg on a right-facing bike this is forward.
	BendLeft Bend = iota
	// BendRight places the joint right of the a→b direction as seen on screen.
	// For a shoulder-to-grip arm this is below the line.
	BendRight
)

// SolveJoint returns the hinge position between endpoints a and b for
// segments of length segA (from a) and segB (from b).
//
//   - out of reach: the joint sits on the straight line, split in proportion
//     to the segment lengths (fully extended limb)
//   - closer than |segA-segB|, or coincident endpoints: the midpoint
//   - otherwise: the exact circle intersection on the chosen side
func SolveJoint(a, b geometry.Point2D, segA, segB float64, bend Bend) geometry.Point2D {
	dist := a.Distance(b)
	if dist < 1e-9 || segA+segB <= 0 {
		return a.Lerp(b, 0.5)
	}
	if dist > segA+segB {
		return a.Lerp(b, segA/(segA+segB))
	}
	if dist < math.Abs(segA-segB) {
		return a.Lerp(b, 0.5)
	}

	// Distance along a→b to the chord, then half-chord height.
	along := (segA*segA - segB*segB + dist*dist) / (2 * dist)
	h := math.Sqrt(math.Max(0, segA*segA-along*along))

	ux := (b.X - a.X) / dist
	uy := (b.Y - a.Y) / dist

	var nx, ny float64
	switch bend {
	case BendLeft:
		nx, ny = uy, -ux
	default:
		nx, ny = -uy, ux
	}

	return geometry.Pt(
		a.X+ux*along+nx*h,
		a.Y+uy*along+ny*h,
	)
}

// KneePosition places the knee between hip and foot, bent toward the front of
// the bike.
func KneePosition(hip, foot geometry.Point2D, thighPx, lowerLegPx float64) geometry.Point2D {
	return SolveJoint(hip, foot, thighPx, lowerLegPx, BendLeft)
}

// ElbowPosition places the elbow between shoulder and hand, bent downward.
func ElbowPosition(shoulder, hand geometry.Point2D, upperArmPx, forearmPx float64) geometry.Point2D {
	return SolveJoint(shoulder, hand, upperArmPx, forearmPx, BendRight)
}

// Shoulder placement: a fraction of torso length toward the hands
// horizontally and a fraction straight up. Nothing anchors the shoulder
// independently, so this is an approximation rather than a solve.
const (
	ShoulderLeanFraction = 0.70
	ShoulderRiseFraction = 0.85
)

// ShoulderPosition approximates the shoulder from the hip, the hand and the
// torso length in pixels.
func ShoulderPosition(hip, hand geometry.Point2D, torsoPx float64) geometry.Point2D {
	var dirX float64
	if d := hip.Distance(hand); d > 0 {
		dirX = (hand.X - hip.X) / d
	}
	return geometry.Pt(
		hip.X+dirX*torsoPx*ShoulderLeanFraction,
		hip.Y-torsoPx*ShoulderRiseFraction,
	)
}

// HeadRadiusFraction sizes the head circle relative to the torso.
const HeadRadiusFraction = 0.2

// HeadPosition returns a head circle resting on the shoulder.
func HeadPosition(shoulder geometry.Point2D, torsoPx float64) Head {
	r := torsoPx * HeadRadiusFraction
	return Head{
		Center: geometry.Pt(shoulder.X, shoulder.Y-r*1.2),
		Radius: r,
	}
}
