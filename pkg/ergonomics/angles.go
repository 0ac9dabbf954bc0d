package ergonomics

import (
	"errors"
	"fmt"
	"math"

	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
)

// MinArmAngle is reported when the effective reach is shorter than the
// difference between upper arm and forearm. Short reach is common on
// upright bikes, so unlike the knee it is not treated as invalid input.
const MinArmAngle = 45.0

// ExtendedAngle is reported for a limb that cannot reach its target.
const ExtendedAngle = 180.0

// DefaultShoulderOffsetRatio is the fraction of torso length subtracted from
// the seat-bar distance to approximate shoulder-to-grip reach.
const DefaultShoulderOffsetRatio = 0.3

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid angle config")

// Config holds tunable parameters for angle estimation.
type Config struct {
	ShoulderOffsetRatio float64 `json:"shoulder_offset_ratio"`
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{ShoulderOffsetRatio: DefaultShoulderOffsetRatio}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ShoulderOffsetRatio < 0 || c.ShoulderOffsetRatio > 1 || math.IsNaN(c.ShoulderOffsetRatio) {
		return fmt.Errorf("%w: shoulder offset ratio %v out of range [0, 1]", ErrInvalidConfig, c.ShoulderOffsetRatio)
	}
	return nil
}

// ShoulderOffset returns the shoulder offset in millimetres for a torso length.
func (c Config) ShoulderOffset(torsoMM float64) float64 {
	if torsoMM <= 0 {
		return 0
	}
	return torsoMM * c.ShoulderOffsetRatio
}

// KneeAngle returns the interior knee angle for a seat-peg distance and leg
// segment lengths (all mm), using the seat-peg line as the side opposite the
// knee. A leg that cannot reach the peg is reported fully extended (180°).
// ok is false for missing input or a distance shorter than |thigh-lowerLeg|,
// which no bent leg can produce.
func KneeAngle(seatPeg, thigh, lowerLeg float64) (deg float64, ok bool) {
	if !positive(seatPeg) || !positive(thigh) || !positive(lowerLeg) {
		return 0, false
	}
	if seatPeg > thigh+lowerLeg {
		return ExtendedAngle, true
	}
	if seatPeg < math.Abs(thigh-lowerLeg) {
		return 0, false
	}
	return geometry.LawOfCosines(thigh, lowerLeg, seatPeg)
}

// ArmAngle returns the elbow angle for a seat-bar distance, arm segment
// lengths and shoulder offset (all mm). The effective reach is
// max(0, seatBar-shoulderOffset). Over-reach gives 180°, short reach gives
// MinArmAngle.
func ArmAngle(seatBar, upperArm, forearm, shoulderOffset float64) (deg float64, ok bool) {
	if !positive(seatBar) || !positive(upperArm) || !positive(forearm) || math.IsNaN(shoulderOffset) || math.IsInf(shoulderOffset, 0) {
		return 0, false
	}
	reach := math.Max(0, seatBar-math.Max(0, shoulderOffset))
	if reach > upperArm+forearm {
		return ExtendedAngle, true
	}
	if reach <= math.Abs(upperArm-forearm) {
		return MinArmAngle, true
	}
	return geometry.LawOfCosines(upperArm, forearm, reach)
}

// positive reports whether v is a finite number greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// HipAngle returns the angle at the seat between the seat→peg and seat→bar
// directions. The bar direction stands in for the torso since no shoulder
// marker is placed.
func HipAngle(seat, peg, bar *geometry.Point2D) (deg float64, ok bool) {
	if seat == nil || peg == nil || bar == nil {
		return 0, false
	}
	return hipAngle(peg.Sub(*seat), bar.Sub(*seat))
}

// BackAngle returns the forward lean of the seat→bar line from vertical, in
// screen space (+y down). 0° is bar straight above the seat, 90° is level.
func BackAngle(seat, bar *geometry.Point2D) (deg float64, ok bool) {
	if seat == nil || bar == nil {
		return 0, false
	}
	return backAngle(bar.Sub(*seat))
}

func hipAngle(toPeg, toBar geometry.Point2D) (float64, bool) {
	return geometry.AngleBetween(toPeg.Vec(), toBar.Vec())
}

func backAngle(toBar geometry.Point2D) (float64, bool) {
	if toBar == (geometry.Point2D{}) || !toBar.IsFinite() {
		return 0, false
	}
	dx := math.Abs(toBar.X)
	dy := toBar.Y

	var deg float64
	if dy > 0 {
		// Bar below the seat: measure from straight down and supplement.
		down := geometry.Degrees(math.Atan2(dx, dy))
		deg = 90 + (90 - down)
	} else {
		deg = geometry.Degrees(math.Atan2(dx, -dy))
	}
	return geometry.Clamp(math.Abs(deg), 0, 180), true
}

// Calculator computes all four angles with a fixed configuration.
// It is stateless after construction and safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator returns a Calculator, rejecting an invalid config.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg}, nil
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// FromMarkers computes angles from pixel-space markers. Hip and back only
// need marker positions; knee and arm also need a calibrated photo and
// rider segments.
func (c *Calculator) FromMarkers(m *MarkerSet, segs *RiderSegments, pxPerMM float64) AngleResult {
	if m == nil {
		return AngleResult{}
	}

	var res AngleResult
	if deg, ok := HipAngle(m.Seat, m.Peg, m.Bar); ok {
		res.Hip = ptr(deg)
	}
	if deg, ok := BackAngle(m.Seat, m.Bar); ok {
		res.Back = ptr(deg)
	}
	c.limbAngles(&res, GetDistances(m, pxPerMM), segs)
	return res
}

// FromDistances computes angles from measured distances and offsets, for
// riders who enter tape measurements instead of calibrating a photo. Knee and
// arm use the distances; hip and back use the offset directions directly.
func (c *Calculator) FromDistances(d Distances, manual *ManualMeasurements, segs *RiderSegments) AngleResult {
	var res AngleResult
	if manual != nil {
		if deg, ok := hipAngle(manual.toPeg(), manual.toBar()); ok {
			res.Hip = ptr(deg)
		}
		if deg, ok := backAngle(manual.toBar()); ok {
			res.Back = ptr(deg)
		}
	}
	c.limbAngles(&res, d, segs)
	return res
}

// FromManual is FromDistances with the distances derived from the offsets.
func (c *Calculator) FromManual(manual ManualMeasurements, segs *RiderSegments) AngleResult {
	return c.FromDistances(manual.Distances(), &manual, segs)
}

func (c *Calculator) limbAngles(res *AngleResult, d Distances, segs *RiderSegments) {
	if segs == nil {
		return
	}
	if deg, ok := KneeAngle(d.SeatPeg, segs.Thigh, segs.LowerLeg); ok {
		res.Knee = ptr(deg)
	}
	if deg, ok := ArmAngle(d.SeatBar, segs.UpperArm, segs.Forearm, c.cfg.ShoulderOffset(segs.Torso)); ok {
		res.Arm = ptr(deg)
	}
}

var defaultCalculator = &Calculator{cfg: DefaultConfig()}

// CalculateAllAngles computes angles from markers with the default config.
func CalculateAllAngles(m *MarkerSet, segs *RiderSegments, pxPerMM float64) AngleResult {
	return defaultCalculator.FromMarkers(m, segs, pxPerMM)
}

// CalculateAllAnglesFromDistances computes angles from manual measurements
// with the default config.
func CalculateAllAnglesFromDistances(d Distances, manual *ManualMeasurements, segs *RiderSegments) AngleResult {
	return defaultCalculator.FromDistances(d, manual, segs)
}
