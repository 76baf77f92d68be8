// SPDX-License-Identifier: EPL-2.0

package ringbuffer

import (
	"fmt"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audmix/utils"
)

// IntBuffer interleaves the active window into a go-audio IntBuffer with the
// requested bit depth (8, 16, 24 or 32). Samples are clipped to the mixing
// range first.
func (b *Buffer) IntBuffer(bitDepth int) *goaudio.IntBuffer {
	tracks := b.Tracks()
	data := make([]int, tracks*b.noSamples)
	shift := 24 - bitDepth

	for t := range tracks {
		for i, s := range b.Track(t) {
			s = min(max(s, utils.MixMin), utils.MixMax)
			var v int
			if shift >= 0 {
				v = int(s >> shift)
			} else {
				v = int(s) << -shift
			}
			data[i*tracks+t] = v
		}
	}

	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: tracks,
			SampleRate:  int(b.frequency),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

// FromIntBuffer deinterleaves a go-audio IntBuffer into a new Buffer with dde
// history samples. SourceBitDepth defaults to 16 when unset.
func FromIntBuffer(buf *goaudio.IntBuffer, dde int) (*Buffer, error) {
	if buf == nil || buf.Format == nil {
		return nil, ErrMissingFormat
	}

	tracks := buf.Format.NumChannels
	if tracks < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTracks, tracks)
	}

	bits := buf.SourceBitDepth
	if bits == 0 {
		bits = 16
	}

	b, err := New(Config{
		Tracks:     tracks,
		Samples:    len(buf.Data) / tracks,
		DDESamples: dde,
		Frequency:  float64(buf.Format.SampleRate),
		Format:     FormatForBits(bits),
	})
	if err != nil {
		return nil, err
	}

	shift := 24 - bits
	for t := range tracks {
		win := b.Track(t)
		for i := range win {
			v := buf.Data[i*tracks+t]
			if shift >= 0 {
				win[i] = int32(v << shift)
			} else {
				win[i] = int32(v >> -shift)
			}
		}
	}

	return b, nil
}
