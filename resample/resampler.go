// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"github.com/ik5/audmix/batch"
	"github.com/ik5/audmix/ringbuffer"
)

// CubicHistory is the number of samples fetched in front of the current
// position. The cubic kernel reads one of them; the rest is headroom for
// callers that offset the position backwards.
const CubicHistory = 3

// lookahead covers the two-sample reach of the linear kernel plus the extra
// tap the cubic kernel needs past the last consumed sample.
const lookahead = 4

// Position is a fractional read position in a source buffer.
type Position struct {
	Offset int
	Mu     float32
}

// Resampler holds the scratch window used to gather source samples. It is not
// safe for concurrent use; each mixing goroutine owns one.
type Resampler struct {
	th     Thresholds
	window []int32
}

// NewResampler creates a Resampler with the given thresholds. Invalid
// thresholds fall back to DefaultThresholds.
func NewResampler(th Thresholds) *Resampler {
	if th.Validate() != nil {
		th = DefaultThresholds
	}

	return &Resampler{th: th}
}

// Thresholds returns the thresholds in use.
func (r *Resampler) Thresholds() Thresholds { return r.th }

// SourceSamples estimates how many source samples a block of n outputs at
// fact reads from pos, excluding the history in front of it.
func SourceSamples(n int, mu, fact float32) int {
	return int(float64(mu)+float64(n)*float64(fact)) + lookahead
}

// Process fills dst with len(dst) samples of track t of src, starting at pos
// and stepping fact source samples per output. It returns the position to
// continue from and the interpolation order used. src is not modified.
func (r *Resampler) Process(dst []int32, src *ringbuffer.Buffer, t int, pos Position, fact float32) (Position, Method) {
	m := r.th.Select(fact)
	if len(dst) == 0 {
		return pos, m
	}

	need := CubicHistory + SourceSamples(len(dst), pos.Mu, fact)
	if cap(r.window) < need {
		r.window = make([]int32, need)
	}
	w := r.window[:need]
	src.Fetch(w, t, pos.Offset-CubicHistory)

	cur := w[CubicHistory:]
	var consumed int
	var mu float32
	switch m {
	case MethodCubic:
		consumed, mu = batch.ResampleCubic(dst, w[CubicHistory-1:], pos.Mu, fact)
	case MethodLinear:
		consumed, mu = batch.ResampleLinear(dst, cur, pos.Mu, fact)
	case MethodNearest:
		consumed, mu = batch.ResampleNearest(dst, cur, pos.Mu, fact)
	default:
		consumed, mu = batch.ResampleSkip(dst, cur, pos.Mu, fact)
	}

	return Position{Offset: pos.Offset + consumed, Mu: mu}, m
}
