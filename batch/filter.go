// SPDX-License-Identifier: EPL-2.0

package batch

import "math"

// LowPassCoefficient returns the one-pole smoothing factor for a cutoff
// frequency at the given sample rate.
func LowPassCoefficient(cutoff, rate float32) float32 {
	if cutoff <= 0 || rate <= 0 {
		return 0
	}
	if cutoff >= rate/2 {
		return 1
	}

	return float32(1 - math.Exp(-2*math.Pi*float64(cutoff)/float64(rate)))
}

// LowPass2 runs samples in place through two cascaded one-pole low-pass
// stages. hist carries the output of each stage between blocks. k == 1
// passes the signal unchanged.
func LowPass2(samples []int32, hist *[2]float32, k float32) {
	if k >= 1 {
		if n := len(samples); n > 0 {
			hist[0] = float32(samples[n-1])
			hist[1] = hist[0]
		}
		return
	}

	h0, h1 := hist[0], hist[1]
	for i, s := range samples {
		h0 += k * (float32(s) - h0)
		h1 += k * (h0 - h1)
		samples[i] = int32(h1)
	}
	hist[0], hist[1] = h0, h1
}
