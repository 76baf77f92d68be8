// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"math"

	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/utils"
)

// AudioBackend is a sink, and optionally a source, of mixed audio.
type AudioBackend interface {
	// Frequency is the device sample rate in Hz.
	Frequency() float64
	// Tracks is the number of interleaved channels the device takes.
	Tracks() int
	// Capture writes frames input samples per track into
	// scratch[t][offset:offset+frames] and returns how many were real input.
	// The remainder is zeroed.
	Capture(offset, frames int, scratch [][]int32) (int, error)
	// Playback consumes the active window of buf, scaled by gain and
	// stepped by pitch, and returns the bytes still queued for output.
	Playback(buf *ringbuffer.Buffer, pitch, gain float32) (int, error)
	Close() error
}

// CheckPlayback validates the arguments every Playback implementation needs.
func CheckPlayback(b AudioBackend, buf *ringbuffer.Buffer, pitch float32) error {
	if buf.Tracks() != b.Tracks() {
		return fmt.Errorf("%w: %d != %d", ErrTrackMismatch, buf.Tracks(), b.Tracks())
	}
	if !(pitch > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPitch, pitch)
	}
	return nil
}

// CheckCapture validates a capture range against scratch.
func CheckCapture(offset, frames int, scratch [][]int32) error {
	if offset < 0 || frames < 0 {
		return fmt.Errorf("%w: offset %d, frames %d", ErrCaptureRange, offset, frames)
	}
	for t, s := range scratch {
		if offset+frames > len(s) {
			return fmt.Errorf("%w: track %d holds %d samples", ErrCaptureRange, t, len(s))
		}
	}
	return nil
}

// Frames is the number of output frames Playback produces for buf at pitch.
func Frames(buf *ringbuffer.Buffer, pitch float32) int {
	if pitch == 1 {
		return buf.Samples()
	}
	return max(1, int(math.Round(float64(buf.Samples())/float64(pitch))))
}

// Interleave writes the window of buf into dst frame by frame, applying gain
// and nearest-sample pitch stepping, and clips to the mixing range. dst is
// grown when it is too short; the filled slice is returned.
func Interleave(dst []int32, buf *ringbuffer.Buffer, pitch, gain float32) []int32 {
	tracks := buf.Tracks()
	frames := Frames(buf, pitch)
	if cap(dst) < frames*tracks {
		dst = make([]int32, frames*tracks)
	}
	dst = dst[:frames*tracks]

	last := buf.Samples() - 1
	for t := range tracks {
		src := buf.Track(t)
		for i := range frames {
			j := i
			if pitch != 1 {
				j = min(int(float32(i)*pitch), last)
			}
			s := src[j]
			if gain != 1 {
				s = int32(float32(s) * gain)
			}
			dst[i*tracks+t] = min(max(s, utils.MixMin), utils.MixMax)
		}
	}
	return dst
}
