// Package analysis runs the ergonomics engine over one or two bikes and
// packages the results for display, export and overlay rendering.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/teslashibe/go-moto-ergo/pkg/alignment"
	"github.com/teslashibe/go-moto-ergo/pkg/calibration"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
	"github.com/teslashibe/go-moto-ergo/pkg/rider"
	"github.com/teslashibe/go-moto-ergo/pkg/skeleton"
)

// Mode selects how rider-triangle distances are obtained.
type Mode string

const (
	ModePhoto  Mode = "photo"  // Calibrated photo with placed markers
	ModeManual Mode = "manual" // Tape-measured offsets
)

// ErrInvalidInput is returned by Input.Validate.
var ErrInvalidInput = errors.New("invalid analysis input")

// MaxMagnitude bounds every coordinate and measurement in an Input, in px or mm.
const MaxMagnitude = 1e7

// Bike is everything known about one motorcycle.
type Bike struct {
	Label       string                         `json:"label"`
	TireSpec    string                         `json:"tire_spec"`
	Calibration calibration.CalibrationPoints  `json:"calibration"`
	Axle        *geometry.Point2D              `json:"axle,omitempty"`
	Markers     ergonomics.MarkerSet           `json:"markers"`
	Manual      *ergonomics.ManualMeasurements `json:"manual,omitempty"`
}

// Input is one comparison: a rider, a riding style and up to two bikes.
type Input struct {
	Mode        Mode                `json:"mode"`
	RidingStyle comfort.RidingStyle `json:"riding_style"`
	Rider       rider.Profile       `json:"rider"`
	Primary     Bike                `json:"primary"`
	Secondary   *Bike               `json:"secondary,omitempty"`
}

// Validate rejects unknown enum values. Missing data is not an error; it
// shows up as guidance in the report.
func (in Input) Validate() error {
	switch in.Mode {
	case "", ModePhoto, ModeManual:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, in.Mode)
	}
	if in.RidingStyle != "" {
		if _, ok := comfort.ParseRidingStyle(string(in.RidingStyle)); !ok {
			return fmt.Errorf("%w: unknown riding style %q", ErrInvalidInput, in.RidingStyle)
		}
	}
	if in.Rider.HeightMM < 0 {
		return fmt.Errorf("%w: negative rider height", ErrInvalidInput)
	}
	if err := checkMagnitude("rider", riderValues(in.Rider)...); err != nil {
		return err
	}
	if err := in.Primary.validate("primary"); err != nil {
		return err
	}
	if in.Secondary != nil {
		return in.Secondary.validate("secondary")
	}
	return nil
}

func (b Bike) validate(name string) error {
	vals := points(b.Calibration.Top, b.Calibration.Bot, b.Axle, b.Markers.Seat, b.Markers.Peg, b.Markers.Bar)
	if m := b.Manual; m != nil {
		vals = append(vals, m.PegForward, m.PegDrop, m.BarForward, m.BarRise)
	}
	return checkMagnitude(name, vals...)
}

func riderValues(p rider.Profile) []float64 {
	vals := []float64{p.HeightMM}
	if o := p.Overrides; o != nil {
		vals = append(vals, o.Thigh, o.LowerLeg, o.Torso, o.UpperArm, o.Forearm)
	}
	return vals
}

func points(pts ...*geometry.Point2D) []float64 {
	var vals []float64
	for _, p := range pts {
		if p != nil {
			vals = append(vals, p.X, p.Y)
		}
	}
	return vals
}

func checkMagnitude(name string, vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.Abs(v) > MaxMagnitude {
			return fmt.Errorf("%w: %s value %v outside ±%g", ErrInvalidInput, name, v, float64(MaxMagnitude))
		}
	}
	return nil
}

// BikeReport is the engine output for one bike.
type BikeReport struct {
	Label           string                 `json:"label"`
	Tire            *calibration.TireSpec  `json:"tire,omitempty"`
	OuterDiameterMM float64                `json:"outer_diameter_mm"`
	PxPerMM         float64                `json:"px_per_mm"`
	Markers         ergonomics.MarkerSet   `json:"markers"`
	Axle            *geometry.Point2D      `json:"axle,omitempty"`
	Distances       ergonomics.Distances   `json:"distances"`
	Angles          ergonomics.AngleResult `json:"angles"`
	Skeleton        *skeleton.Joints       `json:"skeleton"`
	Comfort         comfort.Summary        `json:"comfort"`
	Alignment       alignment.Transform    `json:"alignment"`
	Guidance        []string               `json:"guidance,omitempty"`
}

// Report is the full comparison result.
type Report struct {
	Mode        Mode                     `json:"mode"`
	RidingStyle comfort.RidingStyle      `json:"riding_style"`
	Segments    ergonomics.RiderSegments `json:"segments"`
	Primary     BikeReport               `json:"primary"`
	Secondary   *BikeReport              `json:"secondary,omitempty"`
	Deltas      *ergonomics.AngleResult  `json:"deltas,omitempty"`
}

// Analyzer combines an angle calculator with a comfort table. It holds no
// mutable state, so one Analyzer can serve concurrent requests.
type Analyzer struct {
	angles *ergonomics.Calculator
	zones  *comfort.Table
}

// New returns an Analyzer. nil arguments select the built-in defaults.
func New(angles *ergonomics.Calculator, zones *comfort.Table) *Analyzer {
	if angles == nil {
		angles, _ = ergonomics.NewCalculator(ergonomics.DefaultConfig())
	}
	if zones == nil {
		zones = comfort.Default()
	}
	return &Analyzer{angles: angles, zones: zones}
}

// Zones returns the comfort table in use.
func (a *Analyzer) Zones() *comfort.Table {
	return a.zones
}

// Analyze computes the report for in. It never fails: incomplete input
// yields nil angles and guidance messages.
func (a *Analyzer) Analyze(in Input) Report {
	mode := in.Mode
	if mode != ModeManual {
		mode = ModePhoto
	}
	style, ok := comfort.ParseRidingStyle(string(in.RidingStyle))
	if !ok {
		style = comfort.DefaultStyle
	}
	segs := in.Rider.Segments()

	r := Report{
		Mode:        mode,
		RidingStyle: style,
		Segments:    segs,
		Primary:     a.bike(in.Primary, mode, style, &segs, "primary bike"),
	}
	r.Primary.Alignment = alignment.Identity()

	if in.Secondary != nil {
		sec := a.bike(*in.Secondary, mode, style, &segs, "secondary bike")
		sec.Alignment = alignment.Identity()
		if mode == ModePhoto {
			sec.Alignment = alignment.Calculate(r.Primary.PxPerMM, sec.PxPerMM, in.Primary.Axle, in.Secondary.Axle)
			if in.Primary.Axle == nil || in.Secondary.Axle == nil {
				sec.Guidance = append(sec.Guidance, "Mark the rear axle on both photos to align the overlay")
			}
		}
		r.Secondary = &sec
		r.Deltas = deltas(r.Primary.Angles, sec.Angles)
	}
	return r
}

func (a *Analyzer) bike(b Bike, mode Mode, style comfort.RidingStyle, segs *ergonomics.RiderSegments, fallbackLabel string) BikeReport {
	label := b.Label
	if label == "" {
		label = fallbackLabel
	}
	br := BikeReport{Label: label, Markers: b.Markers, Axle: b.Axle}

	if t, ok := calibration.ParseTireSpec(b.TireSpec); ok {
		br.Tire = &t
		br.OuterDiameterMM = t.OuterDiameterMM()
	}

	switch mode {
	case ModeManual:
		if b.Manual == nil {
			br.Guidance = append(br.Guidance, fmt.Sprintf("Enter seat-to-peg and seat-to-bar measurements for %s", label))
			break
		}
		br.Distances = b.Manual.Distances()
		br.Angles = a.angles.FromDistances(br.Distances, b.Manual, segs)
	default:
		br.PxPerMM = calibration.CalculatePxPerMM(b.Calibration, br.OuterDiameterMM)
		if br.Tire == nil {
			br.Guidance = append(br.Guidance, fmt.Sprintf("Enter tire specs for %s (e.g. 190/50 ZR17)", label))
		}
		if !b.Calibration.Complete() {
			br.Guidance = append(br.Guidance, fmt.Sprintf("Place both calibration points on the %s rear tire", label))
		}
		if !b.Markers.Complete() {
			br.Guidance = append(br.Guidance, fmt.Sprintf("Place seat, peg and bar markers on %s", label))
		}
		br.Distances = ergonomics.GetDistances(&b.Markers, br.PxPerMM)
		br.Angles = a.angles.FromMarkers(&b.Markers, segs, br.PxPerMM)
		if br.PxPerMM > 0 {
			br.Skeleton = skeleton.Calculate(&b.Markers, segs, br.PxPerMM)
		}
	}

	br.Comfort = a.zones.Summary(br.Angles, style)
	return br
}

// deltas returns secondary minus primary for each angle defined on both.
func deltas(primary, secondary ergonomics.AngleResult) *ergonomics.AngleResult {
	diff := func(p, s *float64) *float64 {
		if p == nil || s == nil {
			return nil
		}
		d := *s - *p
		return &d
	}
	return &ergonomics.AngleResult{
		Knee: diff(primary.Knee, secondary.Knee),
		Hip:  diff(primary.Hip, secondary.Hip),
		Back: diff(primary.Back, secondary.Back),
		Arm:  diff(primary.Arm, secondary.Arm),
	}
}
