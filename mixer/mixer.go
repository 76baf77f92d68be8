// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"

	"github.com/ik5/audmix/batch"
	"github.com/ik5/audmix/resample"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/voice"
)

// Status is the outcome of mixing one voice into the destination.
type Status uint8

const (
	// StatusSilent: every ramp was below the level floor, nothing was added.
	StatusSilent Status = iota
	StatusMixed
	// StatusRetire: the voice is done and must be removed by the caller.
	StatusRetire
)

func (s Status) String() string {
	switch s {
	case StatusSilent:
		return "silent"
	case StatusMixed:
		return "mixed"
	case StatusRetire:
		return "retire"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MixParams describe one block of a resampled voice. Src is the voice's
// scratch buffer; its window holds the block and its history the blocks
// before. Svol applies to the first block only, later blocks ramp from the
// previous end gain. Evol is the end-of-block volume.
type MixParams struct {
	Src  *ringbuffer.Buffer
	Svol float32
	Evol float32
}

type Mixer struct {
	setup Setup
	rs    *resample.Resampler
	dde   int
}

// New validates s and returns a Mixer for it.
func New(s Setup) (*Mixer, error) {
	if err := s.Validate(0); err != nil {
		return nil, fmt.Errorf("mixer setup: %w", err)
	}
	sp := make([]Speaker, len(s.Speakers))
	copy(sp, s.Speakers)
	s.Speakers = sp
	if s.Routing != nil {
		s.Routing = append([]int(nil), s.Routing...)
	}

	return &Mixer{
		setup: s,
		rs:    resample.NewResampler(s.Thresholds),
		dde:   s.DDESamples(),
	}, nil
}

func (m *Mixer) Setup() Setup { return m.setup }

// DDESamples is the scratch history voices need for this mixer.
func (m *Mixer) DDESamples() int { return m.dde }

// Mix1N mixes track srcTrack of p.Src into every logical destination track,
// scaled by the voice gain and the per-track factor.
func (m *Mixer) Mix1N(dst *ringbuffer.Buffer, p MixParams, props *voice.Props2D, srcTrack int) Status {
	st := StatusSilent
	for t := range m.setup.Speakers {
		if m.mixTrack(dst, p, props, t, srcTrack) {
			st = StatusMixed
		}
	}
	props.Primed = true

	return st
}

// MixMN mixes a multi-track source: destination track t takes source track
// t modulo the number of source tracks.
func (m *Mixer) MixMN(dst *ringbuffer.Buffer, p MixParams, props *voice.Props2D) Status {
	srcTracks := p.Src.Tracks()
	st := StatusSilent
	for t := range m.setup.Speakers {
		if m.mixTrack(dst, p, props, t, t%srcTracks) {
			st = StatusMixed
		}
	}
	props.Primed = true

	return st
}

// mixTrack ramps srcTrack into logical track t and reports whether anything
// was added.
func (m *Mixer) mixTrack(dst *ringbuffer.Buffer, p MixParams, props *voice.Props2D, t, srcTrack int) bool {
	spk := &m.setup.Speakers[t]
	gain := props.FinalGain * props.Factor[t]

	vstart := props.PrevGain[t]
	if !props.Primed {
		vstart = p.Svol * gain
	}
	vend := p.Evol * gain
	props.PrevGain[t] = vend

	floor := m.setup.LevelFloor
	if abs(vstart) < floor && abs(vend) < floor {
		return false
	}

	out := dst.Track(m.setup.Route(t))
	n := len(out)
	vstep := (vend - vstart) / float32(n)

	if !m.setup.Mode.Spatial() || !props.Spatial || spk.LFE {
		batch.MultiplyAccumulate(out, p.Src.Track(srcTrack), vstart, vstep)
		return true
	}

	hist := p.Src.History(srcTrack)
	dde := p.Src.DDESamples()
	for j, w := range props.AxisWeight {
		if w == 0 {
			continue
		}
		tap := min(max(int(props.HRTFDelay[t][j]), -n), dde)
		if tap >= 0 {
			off := dde - tap
			batch.MultiplyAccumulate(out, hist[off:off+n], vstart*w, vstep*w)
			continue
		}
		// Negative taps read ahead; the tail of the block has no source.
		k := -tap
		batch.MultiplyAccumulate(out[:n-k], hist[dde+k:dde+n], vstart*w, vstep*w)
	}

	return true
}
