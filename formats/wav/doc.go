// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE files with github.com/go-audio/wav.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported, with any channel count
// and sample rate:
//
//	f, _ := os.Open("loop.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	buf, err := audio.LoadBuffer(src, 0)
//
// Readers that cannot seek are buffered into memory first.
package wav
