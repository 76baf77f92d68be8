// SPDX-License-Identifier: EPL-2.0

package utils

// The mixing format is signed 24-bit audio carried in an int32.
const (
	MixMax int32 = 8388607
	MixMin int32 = -8388608

	// MixScale converts a normalized [-1,1] float into the mixing range.
	MixScale float32 = 8388607.0
)

// Float32ToMix converts a normalized sample to the 24-bit mixing format.
// The conversion truncates toward zero.
func Float32ToMix(x float32) int32 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int32(x * MixScale)
}

// MixToFloat32 converts a mixing sample back to a normalized float.
func MixToFloat32(s int32) float32 {
	return float32(s) / MixScale
}

// MixToInt16 clamps a mixing sample to 24 bits and drops the low byte.
func MixToInt16(s int32) int16 {
	if s > MixMax {
		s = MixMax
	} else if s < MixMin {
		s = MixMin
	}

	return int16(s >> 8)
}

// Int16ToMix positions a 16-bit sample in the upper bits of the 24-bit range.
func Int16ToMix(s int16) int32 {
	return int32(s) << 8
}
