// SPDX-License-Identifier: EPL-2.0

// Package resample converts a voice's source samples, read at a continuously
// varying rate, into a run of samples at the mixer frequency.
//
// The interpolation order is picked from the frequency factor (source samples
// consumed per output sample):
//
//	fact <  Cubic           four-tap Catmull-Rom (strong upsampling)
//	fact <  Nearest         two-tap linear
//	fact <= 1               nearest sample (a plain copy at exactly 1)
//	fact >  1               skip: advance floor(mu) samples, interpolate rest
//
// The thresholds are configuration; DefaultThresholds holds the tuned
// values. Interpolation runs in float32 and results are truncated to the
// mixing format.
//
// A Resampler always produces exactly len(dst) samples and returns the
// position to continue from on the next block.
package resample
