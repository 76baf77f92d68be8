// SPDX-License-Identifier: EPL-2.0

package batch

import "math"

// MultiplyAccumulate adds src scaled by a linearly ramped gain into dst.
// The gain starts at v and grows by vstep after every sample; each product is
// truncated to int32 before it is added. len(dst) samples are processed.
func MultiplyAccumulate(dst, src []int32, v, vstep float32) {
	src = src[:len(dst)]
	if vstep == 0 {
		for i, s := range src {
			dst[i] += int32(float32(s) * v)
		}
		return
	}

	for i, s := range src {
		dst[i] += int32(float32(s) * v)
		v += vstep
	}
}

// Add accumulates src into dst without scaling.
func Add(dst, src []int32) {
	src = src[:len(dst)]
	for i, s := range src {
		dst[i] += s
	}
}

// Clear zeroes dst.
func Clear(dst []int32) {
	clear(dst)
}

// AverageAndPeak returns the RMS level and the absolute peak of samples in
// mixing units.
func AverageAndPeak(samples []int32) (rms, peak float32) {
	if len(samples) == 0 {
		return 0, 0
	}

	var sum float64
	var pk int64
	for _, s := range samples {
		v := int64(s)
		sum += float64(v * v)
		if v < 0 {
			v = -v
		}
		if v > pk {
			pk = v
		}
	}

	return float32(math.Sqrt(sum / float64(len(samples)))), float32(pk)
}
