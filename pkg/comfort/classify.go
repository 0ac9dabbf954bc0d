package comfort

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
)

type hint struct {
	low, high string
}

var hints = map[AngleType]hint{
	Knee: {
		low:  "knee is tightly bent; a taller seat or lower pegs open it up",
		high: "leg is nearly straight; pegs sit low or far forward",
	},
	Hip: {
		low:  "hip is closed; the torso folds toward the thighs",
		high: "hip is very open; the reach stretches the rider forward",
	},
	Back: {
		low:  "very upright; wind load rests on the chest",
		high: "strong forward lean; weight moves onto the wrists",
	},
	Arm: {
		low:  "elbows are tightly bent; bars are close to the rider",
		high: "arms are locked out; bars are a long reach away",
	},
}

// Zone classifies an angle value. nil or NaN values are unknown.
func (t *Table) Zone(angle AngleType, value *float64, style RidingStyle) Result {
	if value == nil || math.IsNaN(*value) {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("%s angle not measured", angle)}
	}
	b, ok := t.Band(angle, style)
	if !ok {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("unknown angle type %q", angle)}
	}

	v := *value
	h := hints[angle]
	switch {
	case b.Comfort.Contains(v):
		return Result{
			Status:  StatusComfort,
			Message: fmt.Sprintf("%s %.0f° is within the comfort range (%.0f-%.0f°)", angle, v, b.Comfort.Min, b.Comfort.Max),
		}
	case b.Warning.Contains(v) && v < b.Comfort.Min:
		return Result{
			Status:  StatusWarning,
			Message: fmt.Sprintf("%s %.0f° is below the comfort range (%.0f°): %s", angle, v, b.Comfort.Min, h.low),
		}
	case b.Warning.Contains(v):
		return Result{
			Status:  StatusWarning,
			Message: fmt.Sprintf("%s %.0f° is above the comfort range (%.0f°): %s", angle, v, b.Comfort.Max, h.high),
		}
	case v < b.Warning.Min:
		return Result{
			Status:  StatusExtreme,
			Message: fmt.Sprintf("%s %.0f° is far below the comfort range: %s", angle, v, h.low),
		}
	default:
		return Result{
			Status:  StatusExtreme,
			Message: fmt.Sprintf("%s %.0f° is far above the comfort range: %s", angle, v, h.high),
		}
	}
}

// Summary classifies all four angles. Overall is the worst known status
// (extreme > warning > comfort) and unknown only when nothing is known.
func (t *Table) Summary(angles ergonomics.AngleResult, style RidingStyle) Summary {
	s := Summary{
		Knee: t.Zone(Knee, angles.Knee, style),
		Hip:  t.Zone(Hip, angles.Hip, style),
		Back: t.Zone(Back, angles.Back, style),
		Arm:  t.Zone(Arm, angles.Arm, style),
	}

	s.Overall = StatusUnknown
	for _, r := range []Result{s.Knee, s.Hip, s.Back, s.Arm} {
		if r.Status.severity() > s.Overall.severity() {
			s.Overall = r.Status
		}
	}
	return s
}

// GetAngleZone classifies with the built-in table.
func GetAngleZone(angle AngleType, value *float64, style RidingStyle) Result {
	return defaultTable.Zone(angle, value, style)
}

// GetAnglesSummary summarises with the built-in table.
func GetAnglesSummary(angles ergonomics.AngleResult, style RidingStyle) Summary {
	return defaultTable.Summary(angles, style)
}
