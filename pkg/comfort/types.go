// Package comfort classifies joint angles against comfort bands that depend
// on riding style.
package comfort

import "errors"

// AngleType names one of the four ergonomic angles.
type AngleType string

const (
	Knee AngleType = "knee"
	Hip  AngleType = "hip"
	Back AngleType = "back"
	Arm  AngleType = "arm"
)

// AngleTypes lists every angle type in display order.
var AngleTypes = []AngleType{Knee, Hip, Back, Arm}

// RidingStyle is a named preset that shifts comfort bands.
type RidingStyle string

const (
	Touring   RidingStyle = "touring"
	Sport     RidingStyle = "sport"
	Adventure RidingStyle = "adventure"
	Commute   RidingStyle = "commute"
)

// DefaultStyle is used when no riding style is chosen.
const DefaultStyle = Commute

// RidingStyles lists every riding style.
var RidingStyles = []RidingStyle{Touring, Sport, Adventure, Commute}

// ParseRidingStyle validates a riding style name.
func ParseRidingStyle(s string) (RidingStyle, bool) {
	for _, rs := range RidingStyles {
		if string(rs) == s {
			return rs, true
		}
	}
	return "", false
}

func validAngleType(s string) bool {
	for _, a := range AngleTypes {
		if string(a) == s {
			return true
		}
	}
	return false
}

// Status is a qualitative zone.
type Status string

const (
	StatusComfort Status = "comfort"
	StatusWarning Status = "warning"
	StatusExtreme Status = "extreme"
	StatusUnknown Status = "unknown"
)

// severity orders statuses for worst-case aggregation.
func (s Status) severity() int {
	switch s {
	case StatusExtreme:
		return 3
	case StatusWarning:
		return 2
	case StatusComfort:
		return 1
	default:
		return 0
	}
}

// Range is an inclusive interval in degrees.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the range, inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Band is the comfort range and the wider warning range for one angle.
type Band struct {
	Comfort Range `json:"comfort"`
	Warning Range `json:"warning"`
}

// Result is the classification of one angle.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Summary classifies all four angles with a worst-case overall status.
type Summary struct {
	Knee    Result `json:"knee"`
	Hip     Result `json:"hip"`
	Back    Result `json:"back"`
	Arm     Result `json:"arm"`
	Overall Status `json:"overall"`
}

var (
	// ErrInvalidTable is returned when a zone table fails validation.
	ErrInvalidTable = errors.New("invalid comfort zone table")
)
