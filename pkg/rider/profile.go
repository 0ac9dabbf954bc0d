// Package rider estimates body segment lengths from standing height.
package rider

import "github.com/teslashibe/go-moto-ergo/pkg/ergonomics"

// Segment lengths as a fraction of standing height (Drillis & Contini).
// Torso is hip joint to shoulder joint.
const (
	ThighRatio    = 0.245
	LowerLegRatio = 0.246
	TorsoRatio    = 0.30
	UpperArmRatio = 0.186
	ForearmRatio  = 0.146
)

// DefaultHeightMM is used when a profile has no height.
const DefaultHeightMM = 1750

// EstimateSegments returns segment lengths in millimetres for a standing
// height in millimetres. Non-positive heights give zero segments.
func EstimateSegments(heightMM float64) ergonomics.RiderSegments {
	if heightMM <= 0 {
		return ergonomics.RiderSegments{}
	}
	return ergonomics.RiderSegments{
		Thigh:    heightMM * ThighRatio,
		LowerLeg: heightMM * LowerLegRatio,
		Torso:    heightMM * TorsoRatio,
		UpperArm: heightMM * UpperArmRatio,
		Forearm:  heightMM * ForearmRatio,
	}
}

// Profile describes a rider: a height plus any measured segments that should
// replace the estimate.
type Profile struct {
	HeightMM  float64                   `json:"height_mm"`
	Overrides *ergonomics.RiderSegments `json:"overrides,omitempty"`
}

// Segments returns the estimated segments with positive overrides applied.
func (p Profile) Segments() ergonomics.RiderSegments {
	h := p.HeightMM
	if h <= 0 {
		h = DefaultHeightMM
	}
	s := EstimateSegments(h)
	if o := p.Overrides; o != nil {
		override(&s.Thigh, o.Thigh)
		override(&s.LowerLeg, o.LowerLeg)
		override(&s.Torso, o.Torso)
		override(&s.UpperArm, o.UpperArm)
		override(&s.Forearm, o.Forearm)
	}
	return s
}

func override(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
