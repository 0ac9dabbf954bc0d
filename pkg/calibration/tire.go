// Package calibration turns a tire size into a real-world scale for a photo.
//
// The rear wheel is the reference object: its outer diameter is derived from
// the manufacturer size string, and two user-placed points spanning the
// visible tire give the pixel length of that diameter.
package calibration

import (
	"math"
	"regexp"
	"strconv"

	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
)

// MMPerInch converts rim sizes to millimetres.
const MMPerInch = 25.4

// TireSpec is a parsed metric tire size such as 190/50 ZR17.
type TireSpec struct {
	Width     float64 `json:"width"`      // Section width in mm
	Aspect    float64 `json:"aspect"`     // Sidewall height as % of width
	RimInches float64 `json:"rim_inches"` // Rim diameter in inches
}

// Width, aspect, optional construction code (R, ZR, B, -) and rim.
// Trailing load index, speed rating and M/C markings are ignored.
var tireSpecPattern = regexp.MustCompile(`(\d{2,3})\s*/\s*(\d{2,3})\s*(?:[A-Za-z]{1,2}\s*)?-?\s*(\d{2,3})`)

// ParseTireSpec extracts width, aspect ratio and rim size from a tire size
// string. ok is false when the string does not look like a metric tire size.
func ParseTireSpec(spec string) (TireSpec, bool) {
	m := tireSpecPattern.FindStringSubmatch(spec)
	if m == nil {
		return TireSpec{}, false
	}

	var vals [3]float64
	for i := range vals {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v <= 0 {
			return TireSpec{}, false
		}
		vals[i] = float64(v)
	}

	return TireSpec{Width: vals[0], Aspect: vals[1], RimInches: vals[2]}, true
}

// SidewallMM returns the sidewall height in millimetres.
func (t TireSpec) SidewallMM() float64 {
	return t.Width * t.Aspect / 100
}

// OuterDiameterMM returns the unloaded outer diameter of the wheel and tire.
func (t TireSpec) OuterDiameterMM() float64 {
	return t.RimInches*MMPerInch + 2*t.SidewallMM()
}

// OuterDiameterMM parses spec and returns its outer diameter in millimetres.
func OuterDiameterMM(spec string) (float64, bool) {
	t, ok := ParseTireSpec(spec)
	if !ok {
		return 0, false
	}
	return t.OuterDiameterMM(), true
}

// CalibrationPoints span the visible outer diameter of the reference wheel.
type CalibrationPoints struct {
	Top *geometry.Point2D `json:"top"`
	Bot *geometry.Point2D `json:"bot"`
}

// Complete reports whether both points are placed.
func (c CalibrationPoints) Complete() bool {
	return c.Top != nil && c.Bot != nil
}

// CalculatePxPerMM returns the photo scale in pixels per millimetre.
// It returns 0 when calibration is incomplete: a missing point, coincident
// points or a non-positive diameter. Callers must check for 0 before dividing.
func CalculatePxPerMM(pts CalibrationPoints, diameterMM float64) float64 {
	if !pts.Complete() || !(diameterMM > 0) {
		return 0
	}
	v := geometry.Distance(pts.Top, pts.Bot) / diameterMM
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PxPerMMForSpec is CalculatePxPerMM with the diameter taken from a tire size.
func PxPerMMForSpec(pts CalibrationPoints, spec string) float64 {
	d, ok := OuterDiameterMM(spec)
	if !ok {
		return 0
	}
	return CalculatePxPerMM(pts, d)
}
