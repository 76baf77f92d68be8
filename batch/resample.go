// SPDX-License-Identifier: EPL-2.0

package batch

import "github.com/ik5/audmix/utils"

// ResampleNearest picks the nearest source sample for every output sample.
// With fact == 1 and smu == 0 it is a plain copy.
func ResampleNearest(dst, src []int32, smu, fact float32) (int, float32) {
	if fact == 1 && smu == 0 {
		copy(dst, src[:len(dst)])
		return len(dst), 0
	}

	pos := 0
	for i := range dst {
		j := pos
		if smu >= 0.5 {
			j++
		}
		dst[i] = src[j]

		smu += fact
		for smu >= 1 {
			smu--
			pos++
		}
	}

	return pos, smu
}

// ResampleLinear interpolates between two consecutive source samples. It is
// meant for fact < 1, where at most one source sample is consumed per output.
func ResampleLinear(dst, src []int32, smu, fact float32) (int, float32) {
	pos := 0
	samp := float32(src[0])
	dsamp := float32(src[1]) - samp

	for i := range dst {
		dst[i] = int32(samp + dsamp*smu)

		smu += fact
		if smu >= 1 {
			smu--
			pos++
			samp = float32(src[pos])
			dsamp = float32(src[pos+1]) - samp
		}
	}

	return pos, smu
}

// ResampleSkip handles fact >= 1: the source pointer advances by floor(smu)
// samples per output and the remainder is linearly interpolated.
func ResampleSkip(dst, src []int32, smu, fact float32) (int, float32) {
	pos := 0
	samp := float32(src[0])
	dsamp := float32(src[1]) - samp

	for i := range dst {
		dst[i] = int32(samp + dsamp*smu)

		smu += fact
		step := int(smu)
		smu -= float32(step)
		if step > 0 {
			pos += step
			samp = float32(src[pos])
			dsamp = float32(src[pos+1]) - samp
		}
	}

	return pos, smu
}

// ResampleCubic is the four-tap Catmull-Rom kernel. src[0] is the sample one
// before the current position, so src must hold one sample of history and
// two of look-ahead beyond the consumed range. The polynomial coefficients
// are only recomputed when a source sample is consumed.
func ResampleCubic(dst, src []int32, smu, fact float32) (int, float32) {
	pos := 0
	y0 := float32(src[0])
	y1 := float32(src[1])
	y2 := float32(src[2])
	y3 := float32(src[3])
	a0, a1, a2 := utils.CubicCoefficients(y0, y1, y2, y3)

	for i := range dst {
		dst[i] = int32(utils.CubicEval(a0, a1, a2, y1, smu))

		smu += fact
		if smu >= 1 {
			for smu >= 1 {
				smu--
				pos++
			}
			y0 = float32(src[pos])
			y1 = float32(src[pos+1])
			y2 = float32(src[pos+2])
			y3 = float32(src[pos+3])
			a0, a1, a2 = utils.CubicCoefficients(y0, y1, y2, y3)
		}
	}

	return pos, smu
}
