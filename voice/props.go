// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"github.com/ik5/audmix/distance"
	"github.com/ik5/audmix/ringbuffer"
)

// Props2D are the final mixing properties of a voice. FinalPitch and
// FinalGain are recomputed every block from the voice settings; PrevGain
// is written only by the mixer and holds the end-of-block gain of the
// previous mix of each destination track.
type Props2D struct {
	FinalPitch float32
	FinalGain  float32

	PrevGain [ringbuffer.MaxTracks]float32
	// Primed is false until the first block has been mixed.
	Primed bool

	// Factor scales each destination track. It is computed for 3D voices
	// and is 1 on every track otherwise.
	Factor [ringbuffer.MaxTracks]float32

	// HRTFDelay is the per-axis delay in samples of each destination track
	// and AxisWeight the share of each axis, used by the spatial modes.
	// Spatial is set once they hold positional data; without it the voice
	// is mixed straight onto each track.
	HRTFDelay  [ringbuffer.MaxTracks][3]float32
	AxisWeight [3]float32
	Spatial    bool
}

func (p *Props2D) init() {
	p.FinalPitch, p.FinalGain = 1, 1
	for t := range p.Factor {
		p.Factor[t] = 1
	}
}

// SetPan sets the left and right factors of a stereo destination. pan runs
// from -0.5 (hard left) through 0 to 0.5 (hard right); values beyond that
// are clamped by the panning law.
func (p *Props2D) SetPan(pan float32) {
	p.Factor[0] = min(max(0.5-pan, 0), 1)
	p.Factor[1] = min(max(0.5+pan, 0), 1)
}

// Unprime forgets the gain history so the next block ramps from the start
// volume again.
func (p *Props2D) Unprime() {
	p.PrevGain = [ringbuffer.MaxTracks]float32{}
	p.Primed = false
}

// Cone describes a directional emitter. Facing is the direction the emitter
// points to; a zero Facing is omnidirectional.
type Cone struct {
	Facing    Vec3
	InnerCos  float32
	OuterCos  float32
	OuterGain float32
}

// Props3D are the positional settings of a 3D voice and the values the
// mixer derives from them each block.
type Props3D struct {
	Position Vec3
	Velocity Vec3
	// Relative positions are head-locked: already in the listener frame.
	Relative bool
	Cone     Cone

	Model    distance.Model
	Distance distance.Params

	// Computed by the mixer.
	Dist         float32
	Dir          Vec3
	DistGain     float32
	Doppler      float32
	FilterK      float32
	DelaySeconds float32
	FilterHist   [ringbuffer.MaxTracks][2]float32
}

func newProps3D(pos Vec3) *Props3D {
	return &Props3D{
		Position: pos,
		Model:    distance.ModelInverseExponential,
		Distance: distance.DefaultParams(),
		DistGain: 1,
		Doppler:  1,
		FilterK:  1,
	}
}
