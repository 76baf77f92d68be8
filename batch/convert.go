// SPDX-License-Identifier: EPL-2.0

package batch

import "github.com/ik5/audmix/utils"

// ConvertFromInt8 widens signed 8-bit samples to the mixing format.
func ConvertFromInt8(dst []int32, src []int8) {
	for i, s := range src[:len(dst)] {
		dst[i] = int32(s) << 16
	}
}

// ConvertFromInt16 widens 16-bit samples to the mixing format.
func ConvertFromInt16(dst []int32, src []int16) {
	for i, s := range src[:len(dst)] {
		dst[i] = utils.Int16ToMix(s)
	}
}

// ConvertFromInt32 narrows full 32-bit samples to 24 bits.
func ConvertFromInt32(dst []int32, src []int32) {
	for i, s := range src[:len(dst)] {
		dst[i] = s >> 8
	}
}

// ConvertFromFloat32 scales normalized float samples to the mixing format.
func ConvertFromFloat32(dst []int32, src []float32) {
	for i, s := range src[:len(dst)] {
		dst[i] = utils.Float32ToMix(s)
	}
}

// ConvertToInt16 clips and narrows mixing samples to 16-bit PCM.
func ConvertToInt16(dst []int16, src []int32) {
	for i, s := range src[:len(dst)] {
		dst[i] = utils.MixToInt16(s)
	}
}

// ConvertToFloat32 converts mixing samples to normalized floats, clipping at
// full scale.
func ConvertToFloat32(dst []float32, src []int32) {
	for i, s := range src[:len(dst)] {
		if s > utils.MixMax {
			s = utils.MixMax
		} else if s < utils.MixMin {
			s = utils.MixMin
		}
		dst[i] = utils.MixToFloat32(s)
	}
}
