// SPDX-License-Identifier: EPL-2.0

package ringbuffer

// Format records the sample format a buffer's data originally had. Samples
// are always stored in the 24-bit mixing format; Format is metadata used by
// backends and converters.
type Format uint8

const (
	FormatPCM16 Format = iota
	FormatPCM8
	FormatPCM24
	FormatPCM32
	FormatFloat32
)

// BitsPerSample returns the width of one sample in the original format.
func (f Format) BitsPerSample() int {
	switch f {
	case FormatPCM8:
		return 8
	case FormatPCM24:
		return 24
	case FormatPCM32, FormatFloat32:
		return 32
	default:
		return 16
	}
}

// BytesPerSample returns BitsPerSample in bytes.
func (f Format) BytesPerSample() int {
	return f.BitsPerSample() / 8
}

func (f Format) String() string {
	switch f {
	case FormatPCM8:
		return "pcm8"
	case FormatPCM16:
		return "pcm16"
	case FormatPCM24:
		return "pcm24"
	case FormatPCM32:
		return "pcm32"
	case FormatFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

// FormatForBits maps a PCM bit depth to a Format.
func FormatForBits(bits int) Format {
	switch bits {
	case 8:
		return FormatPCM8
	case 24:
		return FormatPCM24
	case 32:
		return FormatPCM32
	default:
		return FormatPCM16
	}
}
