// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1, 1e-6},
		{"end returns y2", 0, 1, 2, 3, 1, 2, 1e-6},
		{"linear ramp stays linear", 1, 2, 3, 4, 0.25, 2.25, 1e-6},
		{"constant stays constant", 0.5, 0.5, 0.5, 0.5, 0.7, 0.5, 1e-6},
		{"symmetric step crosses zero", -1, -0.5, 0.5, 1, 0.5, 0, 1e-6},
		// Catmull-Rom overshoots a local peak.
		{"peak", 0, 1, 1, 0, 0.5, 1.125, 1e-6},
		{"mix scale", -8388608, 0, 8388607, 0, 0.5, 5242879.4375, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > float64(tt.tolerance) {
				t.Errorf("CubicInterpolate(%v, %v, %v, %v, %v) = %v, want %v",
					tt.y0, tt.y1, tt.y2, tt.y3, tt.x, got, tt.want)
			}
		})
	}
}

func TestCubicCoefficients(t *testing.T) {
	t.Parallel()

	// A linear ramp has no curvature terms.
	a0, a1, a2 := CubicCoefficients(1, 2, 3, 4)
	if a0 != 0 || a1 != 0 || a2 != 1 {
		t.Errorf("CubicCoefficients(ramp) = %v, %v, %v, want 0, 0, 1", a0, a1, a2)
	}
}

func TestCubicEval_MatchesInterpolate(t *testing.T) {
	t.Parallel()

	y := [4]float32{0.1, -0.4, 0.8, 0.3}
	a0, a1, a2 := CubicCoefficients(y[0], y[1], y[2], y[3])
	for i := range 16 {
		x := float32(i) / 16
		got := CubicEval(a0, a1, a2, y[1], x)
		want := CubicInterpolate(y[0], y[1], y[2], y[3], x)
		if got != want {
			t.Fatalf("CubicEval(x=%v) = %v, CubicInterpolate = %v", x, got, want)
		}
	}
}

func TestCubicInterpolate_Monotonic(t *testing.T) {
	t.Parallel()

	prev := float32(math.Inf(-1))
	for i := range 101 {
		got := CubicInterpolate(0, 1, 2, 3, float32(i)/100)
		if got < prev {
			t.Fatalf("step %d: %v < %v on a rising ramp", i, got, prev)
		}
		prev = got
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = CubicInterpolate(0.1, 0.5, 0.9, 0.3, 0.5)
	})
	if allocs != 0 {
		t.Errorf("CubicInterpolate allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var sink float32
	b.ReportAllocs()
	for b.Loop() {
		sink = CubicInterpolate(0.1, 0.5, 0.9, 0.3, 0.5)
	}
	_ = sink
}

func BenchmarkCubicEval(b *testing.B) {
	a0, a1, a2 := CubicCoefficients(0.1, 0.5, 0.9, 0.3)
	var sink float32
	b.ReportAllocs()
	for b.Loop() {
		sink = CubicEval(a0, a1, a2, 0.5, 0.5)
	}
	_ = sink
}
