// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"math"

	"github.com/ik5/audmix/batch"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/utils"
)

// Compressor ratio bounds.
const (
	MinRatio = 1
	MaxRatio = 1000
)

// LFO is a low frequency oscillator or level follower. Configure the exported
// fields, call Init once with the mixer block rate, then call Get once per
// block for every track that uses it.
//
// Periodic shapes run at Frequency Hz. For envelope-follow Frequency is the
// smoothing rate: zero follows the block level instantly, higher values
// track it faster. The compressor smooths with Attack and Release (seconds)
// and reduces gain above Threshold by Ratio; a non-zero GateThreshold closes
// the gain to zero below that level over GatePeriod seconds. Levels are
// normalized to [0,1].
type LFO struct {
	Shape     Shape
	Min, Max  float32
	Frequency float32

	// Inverse mirrors the output inside [Min,Max].
	Inverse bool
	// StereoLink makes every track follow the level detected on track 0.
	StereoLink bool
	// Delay holds the initial output for that many seconds, rounded to
	// whole blocks.
	Delay float32

	Attack, Release float32
	Threshold       float32
	Ratio           float32
	GateThreshold   float32
	GatePeriod      float32

	value [ringbuffer.MaxTracks]float32
	step  [ringbuffer.MaxTracks]float32
	level [ringbuffer.MaxTracks]float32
	gate  [ringbuffer.MaxTracks]float32
	out   [ringbuffer.MaxTracks]float32
	wait  [ringbuffer.MaxTracks]int

	delayBlocks     int
	fact            float32
	attack, release float32
	gateRate        float32
	ratio           float32
	ready           bool
}

// Init validates the configuration and derives per-block steps.
func (l *LFO) Init(blockRate float32) error {
	if !(blockRate > 0) {
		return ErrInvalidBlockRate
	}
	if l.Min > l.Max {
		return ErrInvalidRange
	}
	if int(l.Shape) >= len(shapeNames) {
		return ErrUnknownShape
	}

	rng := l.Max - l.Min
	var step float32
	switch l.Shape {
	case ShapeTriangle, ShapeSine, ShapeSquare:
		step = 2 * rng * l.Frequency / blockRate
	case ShapeSawtooth:
		step = rng * l.Frequency / blockRate
	}
	if step < 0 {
		step = -step
	}

	l.fact = 0
	if l.Frequency > 0 {
		l.fact = float32(math.Exp(-2 * math.Pi * float64(l.Frequency) / float64(blockRate)))
	}
	l.attack = smoothing(l.Attack, blockRate)
	l.release = smoothing(l.Release, blockRate)
	l.gateRate = smoothing(l.GatePeriod, blockRate)
	l.ratio = min(max(l.Ratio, MinRatio), MaxRatio)

	l.delayBlocks = 0
	if l.Delay > 0 {
		l.delayBlocks = int(math.Round(float64(l.Delay) * float64(blockRate)))
	}

	for t := range l.value {
		l.step[t] = step
	}
	l.ready = true
	l.Reset()

	return nil
}

// smoothing returns the single-pole coefficient reaching ~63% of a step
// in seconds at rate updates per second. Zero time is instantaneous.
func smoothing(seconds, rate float32) float32 {
	if seconds <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/float64(seconds*rate)))
}

// Reset rewinds every track to its initial state.
func (l *LFO) Reset() {
	start := l.Min
	switch l.Shape {
	case ShapeEnvelopeFollow:
		start = 0
	case ShapeCompressor:
		start = 1
	}

	for t := range l.value {
		l.value[t] = start
		if l.step[t] < 0 {
			l.step[t] = -l.step[t]
		}
		l.level[t] = 0
		l.gate[t] = 1
		l.wait[t] = l.delayBlocks
		l.out[t] = l.shapeOutput(t)
	}
}

// Value returns the output produced by the last Get on track t.
func (l *LFO) Value(t int) float32 { return l.out[t] }

// Get advances track t by one block and returns its output. samples holds
// the source block used by the level followers; only the first blockLen
// samples are inspected. Periodic shapes ignore it.
func (l *LFO) Get(samples []int32, t, blockLen int) float32 {
	if !l.ready {
		return l.Max
	}
	if l.wait[t] > 0 {
		l.wait[t]--
		return l.out[t]
	}

	switch l.Shape {
	case ShapeFixed:
	case ShapeTriangle, ShapeSine, ShapeSquare:
		l.bounce(t)
	case ShapeSawtooth:
		l.value[t] += l.step[t]
		if l.value[t] > l.Max {
			l.value[t] = l.Min + (l.value[t] - l.Max)
			if l.value[t] > l.Max {
				l.value[t] = l.Min
			}
		}
	case ShapeEnvelopeFollow:
		if l.StereoLink && t > 0 {
			l.value[t] = l.value[0]
			break
		}
		lvl := blockLevel(samples, blockLen)
		l.value[t] = l.fact*l.value[t] + (1-l.fact)*lvl
	case ShapeCompressor:
		if l.StereoLink && t > 0 {
			l.value[t] = l.value[0]
			break
		}
		l.value[t] = l.compress(t, blockLevel(samples, blockLen))
	}

	l.out[t] = l.shapeOutput(t)

	return l.out[t]
}

func (l *LFO) bounce(t int) {
	v := l.value[t] + l.step[t]
	switch {
	case v >= l.Max:
		v = l.Max
		l.step[t] = -l.step[t]
	case v <= l.Min:
		v = l.Min
		l.step[t] = -l.step[t]
	}
	l.value[t] = v
}

func (l *LFO) compress(t int, lvl float32) float32 {
	k := l.release
	if lvl > l.level[t] {
		k = l.attack
	}
	l.level[t] += k * (lvl - l.level[t])
	avg := l.level[t]

	gain := float32(1)
	if avg > l.Threshold && avg > 0 {
		gain = (l.Threshold + (avg-l.Threshold)/l.ratio) / avg
	}

	if l.GateThreshold > 0 {
		target := float32(1)
		if avg < l.GateThreshold {
			target = 0
		}
		l.gate[t] += l.gateRate * (target - l.gate[t])
		gain *= l.gate[t]
	}

	return min(max(gain, 0), 1)
}

func blockLevel(samples []int32, n int) float32 {
	if n > len(samples) {
		n = len(samples)
	}
	if n <= 0 {
		return 0
	}
	rms, _ := batch.AverageAndPeak(samples[:n])

	return min(rms/utils.MixScale, 1)
}

// shapeOutput maps the internal state of track t to the output range.
func (l *LFO) shapeOutput(t int) float32 {
	var out float32
	switch l.Shape {
	case ShapeFixed:
		out = l.Max
	case ShapeTriangle, ShapeSawtooth:
		out = l.value[t]
	case ShapeSquare:
		out = l.Min
		if l.step[t] < 0 || l.Min == l.Max {
			out = l.Max
		}
	case ShapeSine:
		x := l.unit(l.value[t])
		if x < 0.5 {
			x = 2 * x * x
		} else {
			x = 1 - 2*(1-x)*(1-x)
		}
		out = l.scale(x)
	case ShapeEnvelopeFollow, ShapeCompressor:
		out = l.scale(l.value[t])
	}

	return l.mirror(out)
}

func (l *LFO) unit(v float32) float32 {
	if l.Max == l.Min {
		return 1
	}
	return (v - l.Min) / (l.Max - l.Min)
}

func (l *LFO) scale(x float32) float32 {
	v := l.Min + (l.Max-l.Min)*x
	return min(max(v, l.Min), l.Max)
}

func (l *LFO) mirror(v float32) float32 {
	if !l.Inverse {
		return v
	}
	return min(max(l.Max+l.Min-v, l.Min), l.Max)
}
