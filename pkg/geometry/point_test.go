package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b *Point2D
		want float64
	}{
		{"3-4-5 triangle", Ref(0, 0), Ref(3, 4), 5},
		{"same point", Ref(7, 7), Ref(7, 7), 0},
		{"missing a", nil, Ref(3, 4), 0},
		{"missing b", Ref(3, 4), nil, 0},
		{"both missing", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Pt(2, 3)
	q := Pt(5, -1)

	if got := p.Add(q); got != Pt(7, 2) {
		t.Errorf("Add = %v", got)
	}
	if got := q.Sub(p); got != Pt(3, -4) {
		t.Errorf("Sub = %v", got)
	}
	if got := p.Scale(2); got != Pt(4, 6) {
		t.Errorf("Scale = %v", got)
	}
	if got := p.Lerp(q, 0.5); got != Pt(3.5, 1) {
		t.Errorf("Lerp = %v", got)
	}
}

func TestAngleBetween(t *testing.T) {
	deg, ok := AngleBetween(r2.Vec{X: 1}, r2.Vec{Y: 1})
	if !ok || math.Abs(deg-90) > 1e-9 {
		t.Errorf("AngleBetween(x, y) = %v, %v; want 90, true", deg, ok)
	}

	deg, ok = AngleBetween(r2.Vec{X: 1}, r2.Vec{X: -3})
	if !ok || math.Abs(deg-180) > 1e-9 {
		t.Errorf("AngleBetween(opposite) = %v, %v; want 180, true", deg, ok)
	}

	if _, ok := AngleBetween(r2.Vec{}, r2.Vec{X: 1}); ok {
		t.Error("zero vector should not be computable")
	}
}

func TestLawOfCosinesClamps(t *testing.T) {
	// Degenerate flat triangles sit exactly on the acos domain edge.
	if got, ok := LawOfCosines(3, 4, 7); !ok || math.Abs(got-180) > 1e-6 {
		t.Errorf("flat triangle = %v, %v; want 180", got, ok)
	}
	if got, ok := LawOfCosines(3, 4, 1); !ok || math.Abs(got) > 1e-6 {
		t.Errorf("folded triangle = %v, %v; want 0", got, ok)
	}
	if got, ok := LawOfCosines(3, 4, 5); !ok || math.Abs(got-90) > 1e-9 {
		t.Errorf("right triangle = %v, %v; want 90", got, ok)
	}
}

func TestLawOfCosinesExtremeSides(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c float64
		want    float64
		wantOK  bool
	}{
		{"huge right triangle", 3e200, 4e200, 5e200, 90, true},
		{"near max float", 1e308, 1e308, 1e308, 60, true},
		{"tiny sides", 3e-200, 4e-200, 5e-200, 90, true},
		{"NaN side", math.NaN(), 4, 5, 0, false},
		{"infinite side", math.Inf(1), 4, 5, 0, false},
		{"zero side", 0, 4, 5, 0, false},
		{"negative opposite", 3, 4, -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LawOfCosines(tt.a, tt.b, tt.c)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("LawOfCosines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleBetweenExtremeVectors(t *testing.T) {
	tests := []struct {
		name   string
		u, v   r2.Vec
		want   float64
		wantOK bool
	}{
		{"huge components", r2.Vec{Y: 1e200}, r2.Vec{X: 1e200, Y: -1e200}, 135, true},
		{"max float", r2.Vec{X: math.MaxFloat64}, r2.Vec{X: math.MaxFloat64, Y: math.MaxFloat64}, 45, true},
		{"subnormal", r2.Vec{X: 5e-324}, r2.Vec{Y: 5e-324}, 90, true},
		{"NaN component", r2.Vec{X: math.NaN()}, r2.Vec{X: 1}, 0, false},
		{"infinite component", r2.Vec{X: math.Inf(-1)}, r2.Vec{X: 1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AngleBetween(tt.u, tt.v)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleBetween = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDegreesRadiansConversion(t *testing.T) {
	back := Degrees(Radians(45))
	if math.Abs(back-45) > 1e-12 {
		t.Errorf("round trip 45° = %v", back)
	}
}
