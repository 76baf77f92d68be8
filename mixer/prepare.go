// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/batch"
	"github.com/ik5/audmix/distance"
	"github.com/ik5/audmix/voice"
)

// Prepare3D derives the per-block positional values of a 3D voice: its
// listener-relative direction and distance, the distance gain, the Doppler
// pitch, the propagation delay, the low-pass coefficient and, for every
// logical track, the direction factor and the per-axis delays. Voices
// without Props3D are left untouched.
func (m *Mixer) Prepare3D(v *voice.Voice, l *voice.Listener) {
	p3 := v.Props3D
	if p3 == nil {
		return
	}
	if l == nil {
		l = voice.NewListener()
	}

	var rel, toListener voice.Vec3
	var vs, vl float32
	if p3.Relative {
		rel = p3.Position
		toListener, _ = rel.Scale(-1).Normalize()
		vs = p3.Velocity.Dot(toListener)
	} else {
		rel = l.Relative(p3.Position)
		toListener, _ = l.Position.Sub(p3.Position).Normalize()
		vs = p3.Velocity.Dot(toListener)
		vl = l.Velocity.Dot(toListener)
	}

	dir, dist := rel.Normalize()
	if dist < distance.Epsilon {
		dir = voice.Vec3{0, 0, -1}
	}
	p3.Dist = dist
	p3.Dir = dir

	params := p3.Distance
	if c := p3.Cone; !c.Facing.IsZero() {
		facing, _ := c.Facing.Normalize()
		params.Directivity *= distance.ConeGain(facing.Dot(toListener), c.InnerCos, c.OuterCos, c.OuterGain)
	}
	p3.DistGain = distance.Gain(p3.Model, dist, params)
	p3.Doppler = distance.Doppler(vs, vl, params.SoundVelocity, params.DopplerFactor)
	p3.DelaySeconds = distance.Delay(dist, params.SoundVelocity)

	p3.FilterK = 1
	if m.setup.DistanceFilter {
		p3.FilterK = batch.LowPassCoefficient(distance.FilterCutoff(dist, params), float32(m.setup.Frequency))
	}

	props := &v.Props2D
	freq := float32(m.setup.Frequency)
	spatial := m.setup.Mode.Spatial()
	props.Spatial = spatial
	for j := range props.AxisWeight {
		props.AxisWeight[j] = dir[j] * dir[j]
	}

	for t, spk := range m.setup.Speakers {
		props.Factor[t] = m.directionFactor(spk, dir)
		if !spatial {
			continue
		}
		h := m.setup.Head
		for j := range props.HRTFDelay[t] {
			props.HRTFDelay[t][j] = (h.Offset[j] - h.Factor[j]*spk.Dir[j]*dir[j]) * freq
		}
	}
}

// directionFactor is the share of a voice coming from dir that speaker spk
// receives.
func (m *Mixer) directionFactor(spk Speaker, dir voice.Vec3) float32 {
	if spk.LFE {
		if m.setup.Mode == ModeSurround || m.setup.Mode == ModeSpatialSurround {
			return spk.Gain * m.setup.LFEGain
		}
		return 0
	}

	dot := dir.Dot(spk.Dir)
	switch m.setup.Mode {
	case ModeMono:
		return spk.Gain
	case ModeHRTF:
		// Head shadow, at most 6dB towards the far ear.
		return spk.Gain * (0.75 + 0.25*dot)
	default:
		return spk.Gain * min(max(0.5+dot, 0), 1)
	}
}
