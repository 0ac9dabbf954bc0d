package skeleton

import (
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
)

// Head is drawn as a circle.
type Head struct {
	Center geometry.Point2D `json:"center"`
	Radius float64          `json:"radius"`
}

// Joints is a full rider skeleton in the markers' pixel space.
type Joints struct {
	Hip      geometry.Point2D `json:"hip"`
	Knee     geometry.Point2D `json:"knee"`
	Foot     geometry.Point2D `json:"foot"`
	Shoulder geometry.Point2D `json:"shoulder"`
	Elbow    geometry.Point2D `json:"elbow"`
	Hand     geometry.Point2D `json:"hand"`
	Head     Head             `json:"head"`
}

// Bones returns the line segments to draw, in chain order.
func (j *Joints) Bones() [][2]geometry.Point2D {
	return [][2]geometry.Point2D{
		{j.Hip, j.Knee},
		{j.Knee, j.Foot},
		{j.Hip, j.Shoulder},
		{j.Shoulder, j.Elbow},
		{j.Elbow, j.Hand},
	}
}

// Transform returns a copy with every joint passed through f. The head radius is
// scaled by how f stretches a unit horizontal step at the head centre.
func (j *Joints) Transform(f func(geometry.Point2D) geometry.Point2D) *Joints {
	c := f(j.Head.Center)
	edge := f(j.Head.Center.Add(geometry.Pt(j.Head.Radius, 0)))
	return &Joints{
		Hip:      f(j.Hip),
		Knee:     f(j.Knee),
		Foot:     f(j.Foot),
		Shoulder: f(j.Shoulder),
		Elbow:    f(j.Elbow),
		Hand:     f(j.Hand),
		Head:     Head{Center: c, Radius: c.Distance(edge)},
	}
}

// Calculate builds the skeleton for a marker set. Segment lengths are
// converted to pixels with pxPerMM so all solving happens in photo space.
// It returns nil when any anchor marker (or the rider) is missing; missing
// joints are never invented.
func Calculate(m *ergonomics.MarkerSet, segs *ergonomics.RiderSegments, pxPerMM float64) *Joints {
	if !m.Complete() || segs == nil {
		return nil
	}
	if pxPerMM < 0 {
		pxPerMM = 0
	}

	thigh := segs.Thigh * pxPerMM
	lowerLeg := segs.LowerLeg * pxPerMM
	torso := segs.Torso * pxPerMM
	upperArm := segs.UpperArm * pxPerMM
	forearm := segs.Forearm * pxPerMM

	hip, foot, hand := *m.Seat, *m.Peg, *m.Bar
	shoulder := ShoulderPosition(hip, hand, torso)

	return &Joints{
		Hip:      hip,
		Knee:     KneePosition(hip, foot, thigh, lowerLeg),
		Foot:     foot,
		Shoulder: shoulder,
		Elbow:    ElbowPosition(shoulder, hand, upperArm, forearm),
		Hand:     hand,
		Head:     HeadPosition(shoulder, torso),
	}
}
