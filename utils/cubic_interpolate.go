// SPDX-License-Identifier: EPL-2.0

package utils

// CubicCoefficients returns the Catmull-Rom polynomial coefficients for four
// consecutive samples. The constant term is y1 and is not returned.
//
// Callers that walk a sample stream keep the coefficients between output
// samples and only recompute them when a new source sample is consumed.
func CubicCoefficients(y0, y1, y2, y3 float32) (a0, a1, a2 float32) {
	a0 = -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 = y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 = -0.5*y0 + 0.5*y2

	return a0, a1, a2
}

// CubicEval evaluates a Catmull-Rom segment at x (0 <= x < 1).
func CubicEval(a0, a1, a2, y1, x float32) float32 {
	x2 := x * x

	return a0*x*x2 + a1*x2 + a2*x + y1
}

// CubicInterpolate performs cubic interpolation
// x is the fractional position between y1 and y2 (0 <= x <= 1)
// y0, y1, y2, y3 are four consecutive samples
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0, a1, a2 := CubicCoefficients(y0, y1, y2, y3)

	return CubicEval(a0, a1, a2, y1, x)
}
