// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToMix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int32
	}{
		{name: "zero", input: 0, want: 0},
		{name: "max positive", input: 1.0, want: MixMax},
		{name: "max negative", input: -1.0, want: -MixMax},
		{name: "half positive", input: 0.5, want: 4194303},
		{name: "half negative", input: -0.5, want: -4194303},
		{name: "clamp over max", input: 1.5, want: MixMax},
		{name: "clamp under min", input: -3, want: -MixMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Float32ToMix(tt.input)
			diff := math.Abs(float64(got - tt.want))

			if diff > 1 {
				t.Errorf("Float32ToMix(%v) = %v, want %v (diff %v)", tt.input, got, tt.want, diff)
			}
		})
	}
}

func TestMixToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input int32
		want  int16
	}{
		{name: "zero", input: 0, want: 0},
		{name: "full scale", input: MixMax, want: math.MaxInt16},
		{name: "negative full scale", input: MixMin, want: math.MinInt16},
		{name: "clip positive", input: MixMax * 4, want: math.MaxInt16},
		{name: "clip negative", input: MixMin * 4, want: math.MinInt16},
		{name: "one lsb", input: 256, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MixToInt16(tt.input); got != tt.want {
				t.Errorf("MixToInt16(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInt16RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []int16{math.MinInt16, -1234, -1, 0, 1, 4321, math.MaxInt16} {
		if got := MixToInt16(Int16ToMix(v)); got != v {
			t.Errorf("MixToInt16(Int16ToMix(%v)) = %v", v, got)
		}
	}
}

// TestMixToFloat32Monotonic tests that the conversion preserves ordering
func TestMixToFloat32Monotonic(t *testing.T) {
	t.Parallel()

	prev := MixToFloat32(MixMin)
	for s := MixMin + 4096; s < MixMax; s += 4096 {
		curr := MixToFloat32(s)
		if curr < prev {
			t.Errorf("MixToFloat32 not monotonic at %v: %v < %v", s, curr, prev)
		}
		prev = curr
	}
}

func BenchmarkFloat32ToMix(b *testing.B) {
	samples := make([]float32, 8000)
	out := make([]int32, 8000)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		for j := range samples {
			out[j] = Float32ToMix(samples[j])
		}
	}
}

// TestMixToInt16_ZeroAllocs verifies no heap allocations
func TestMixToInt16_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = MixToInt16(123456)
	})

	if allocs > 0 {
		t.Errorf("MixToInt16 allocated %v times, want 0", allocs)
	}
}
