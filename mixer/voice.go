// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/batch"
	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/resample"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/voice"
)

// MixVoice runs the whole per-block pipeline of v and adds the result to
// dst: stop handling, positional preparation, modulators, resampling into
// the voice scratch, distance filtering and the gain-ramped mix.
//
// StatusRetire is returned with the reason once the voice is done; the
// block that exhausted a source is still mixed. Voices that have not been
// played yet are skipped.
func (m *Mixer) MixVoice(dst *ringbuffer.Buffer, v *voice.Voice, l *voice.Listener) (Status, voice.Reason) {
	src := v.Buffer
	if src == nil {
		return StatusRetire, voice.ReasonExhausted
	}
	state := v.State()
	if state == voice.StateInitial {
		return StatusSilent, voice.ReasonNone
	}
	if l == nil {
		l = voice.NewListener()
	}

	n := dst.Samples()
	if err := v.EnsureScratch(n, m.dde, m.setup.Frequency); err != nil {
		return StatusRetire, voice.ReasonExhausted
	}

	stopped := state == voice.StateStopped
	if v.Is3D() {
		m.Prepare3D(v, l)
	}
	// A stopped 2D voice without an envelope ramps to silence over one
	// last block.
	fadeOut := false
	switch {
	case !stopped || v.VolumeEnvelope != nil:
	case !v.Is3D():
		if !v.Primed {
			return StatusRetire, voice.ReasonStopped
		}
		fadeOut = true
	default:
		v.ArmStopTimer(v.Props3D.DelaySeconds)
		if v.TickStopTimer(float32(float64(n) / m.setup.Frequency)) {
			return StatusRetire, voice.ReasonStopped
		}
	}

	pitch := v.Pitch * l.Pitch
	gain := v.Gain * l.Gain
	if p3 := v.Props3D; p3 != nil {
		pitch *= p3.Doppler
		gain *= p3.DistGain
	}
	if v.PitchLFO != nil {
		pitch *= v.PitchLFO.Get(nil, 0, 0)
	}
	if e := v.PitchEnvelope; e != nil {
		pe, _ := e.Get(stopped, 1)
		pitch *= pe
	}
	pitch = min(max(pitch, m.setup.MinPitch), m.setup.MaxPitch)

	if v.GainLFO != nil {
		gain *= v.GainLFO.Get(nil, 0, 0)
	}
	if e := v.VolumeEnvelope; e != nil {
		ve, st := e.Get(stopped, pitch)
		switch st {
		case envelope.StatusTerminated:
			return StatusRetire, voice.ReasonEnvelopeTerminated
		case envelope.StatusFinished:
			if stopped {
				return StatusRetire, voice.ReasonStopped
			}
			return StatusRetire, voice.ReasonExhausted
		}
		gain *= ve
	}

	exhausted := m.resample(v, pitch*float32(src.Frequency()/m.setup.Frequency))

	scratch := v.Scratch
	if p3 := v.Props3D; p3 != nil && p3.FilterK < 1 {
		for t := range scratch.Tracks() {
			batch.LowPass2(scratch.Track(t), &p3.FilterHist[t], p3.FilterK)
		}
	}
	if v.DynamicGain != nil {
		gain *= v.DynamicGain.Get(scratch.Track(0), 0, n)
	}

	props := &v.Props2D
	props.FinalPitch = pitch
	props.FinalGain = gain

	p := MixParams{Src: scratch, Svol: 1, Evol: 1}
	if v.FadeIn {
		p.Svol = 0
	}
	if fadeOut {
		p.Evol = 0
	}

	var st Status
	if scratch.Tracks() == 1 {
		st = m.Mix1N(dst, p, props, 0)
	} else {
		st = m.MixMN(dst, p, props)
	}

	if fadeOut {
		return StatusRetire, voice.ReasonStopped
	}
	if exhausted {
		return StatusRetire, voice.ReasonExhausted
	}

	return st, voice.ReasonNone
}

// resample rotates the voice scratch and fills its window from the source
// at fact, then moves the source position. It reports whether a non-looping
// source ran out.
func (m *Mixer) resample(v *voice.Voice, fact float32) bool {
	src, scratch := v.Buffer, v.Scratch
	scratch.Rotate()

	pos := resample.Position{Offset: src.Offset(), Mu: src.Fraction()}
	next := pos
	for t := range scratch.Tracks() {
		next, _ = m.rs.Process(scratch.Track(t), src, t, pos, fact)
	}

	exhausted := src.Advance(next.Offset - pos.Offset)
	src.SetPosition(src.Offset(), next.Mu)

	return exhausted
}
