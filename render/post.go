// SPDX-License-Identifier: EPL-2.0

package render

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/utils"
)

// MasterGain scales every track and, with Limit set, hard-clips it to the
// 24-bit mixing range.
type MasterGain struct {
	Gain  float32
	Limit bool
}

func (g MasterGain) ProcessFrame(dst *ringbuffer.Buffer, track int) {
	s := dst.Track(track)
	if g.Gain != 1 {
		for i, v := range s {
			s[i] = int32(float32(v) * g.Gain)
		}
	}
	if !g.Limit {
		return
	}
	for i, v := range s {
		s[i] = min(max(v, utils.MixMin), utils.MixMax)
	}
}

var ErrNoTaps = errors.New("fir convolver needs at least one tap")

// FIRConvolver applies a direct-form FIR filter to every track. Each track
// keeps its own input history, so consecutive blocks convolve seamlessly
// and tracks can be processed concurrently.
type FIRConvolver struct {
	taps []float32
	hist [][]int32
	work [][]int32
}

func NewFIRConvolver(taps []float32, tracks int) (*FIRConvolver, error) {
	if len(taps) == 0 {
		return nil, ErrNoTaps
	}
	if tracks < 1 || tracks > ringbuffer.MaxTracks {
		return nil, fmt.Errorf("%w: %d", ringbuffer.ErrInvalidTracks, tracks)
	}

	c := &FIRConvolver{
		taps: append([]float32(nil), taps...),
		hist: make([][]int32, tracks),
		work: make([][]int32, tracks),
	}
	for t := range c.hist {
		c.hist[t] = make([]int32, len(taps)-1)
	}

	return c, nil
}

func (c *FIRConvolver) Convolve(dst *ringbuffer.Buffer, track int) error {
	if track >= len(c.hist) {
		return fmt.Errorf("%w: track %d of %d", ringbuffer.ErrInvalidTracks, track, len(c.hist))
	}

	s := dst.Track(track)
	h := len(c.taps) - 1
	need := h + len(s)
	if cap(c.work[track]) < need {
		c.work[track] = make([]int32, need)
	}
	x := c.work[track][:need]
	copy(x, c.hist[track])
	copy(x[h:], s)

	for i := range s {
		var acc float32
		for k, tap := range c.taps {
			acc += tap * float32(x[h+i-k])
		}
		s[i] = int32(acc)
	}
	copy(c.hist[track], x[len(s):])

	return nil
}
