// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"math"
	"strings"

	"github.com/ik5/audmix/voice"
)

type Mode uint8

const (
	ModeMono Mode = iota
	ModeStereo
	ModeSurround
	ModeSpatial
	ModeSpatialSurround
	ModeHRTF
)

var modeNames = [...]string{
	ModeMono:            "mono",
	ModeStereo:          "stereo",
	ModeSurround:        "surround",
	ModeSpatial:         "spatial",
	ModeSpatialSurround: "spatial-surround",
	ModeHRTF:            "hrtf",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Spatial reports whether the mode mixes through the per-axis delay taps.
func (m Mode) Spatial() bool {
	return m == ModeSpatial || m == ModeSpatialSurround || m == ModeHRTF
}

func ParseMode(name string) (Mode, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range modeNames {
		if s == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Speaker is one logical destination track. Dir is the unit vector from the
// listener to the speaker (or ear). LFE speakers take an unpanned share of
// every voice. Gain scales the speaker; the layout helpers set it to 1.
type Speaker struct {
	Dir  voice.Vec3
	LFE  bool
	Gain float32
}

const invSqrt2 = float32(1 / math.Sqrt2)

func MonoSpeakers() []Speaker {
	return []Speaker{{Dir: voice.Vec3{0, 0, -1}, Gain: 1}}
}

func StereoSpeakers() []Speaker {
	return []Speaker{
		{Dir: voice.Vec3{-1, 0, 0}, Gain: 1},
		{Dir: voice.Vec3{1, 0, 0}, Gain: 1},
	}
}

// QuadSpeakers is front left, front right, rear left, rear right.
func QuadSpeakers() []Speaker {
	return []Speaker{
		{Dir: voice.Vec3{-invSqrt2, 0, -invSqrt2}, Gain: 1},
		{Dir: voice.Vec3{invSqrt2, 0, -invSqrt2}, Gain: 1},
		{Dir: voice.Vec3{-invSqrt2, 0, invSqrt2}, Gain: 1},
		{Dir: voice.Vec3{invSqrt2, 0, invSqrt2}, Gain: 1},
	}
}

// Surround51Speakers uses the common FL, FR, C, LFE, RL, RR order.
func Surround51Speakers() []Speaker {
	q := QuadSpeakers()
	return []Speaker{
		q[0], q[1],
		{Dir: voice.Vec3{0, 0, -1}, Gain: 1},
		{LFE: true, Gain: 1},
		q[2], q[3],
	}
}

// HeadphoneSpeakers are the two ears, for ModeHRTF.
func HeadphoneSpeakers() []Speaker {
	return StereoSpeakers()
}

// HeadModel gives the interaural delay in seconds along each axis:
// delay = Offset - Factor*speaker*direction, per axis.
type HeadModel struct {
	Offset voice.Vec3
	Factor voice.Vec3
}

// DefaultHead models the ~0.6ms maximum interaural time difference of an
// average head on the left/right axis only.
var DefaultHead = HeadModel{
	Offset: voice.Vec3{0.00029, 0, 0},
	Factor: voice.Vec3{0.00029, 0, 0},
}

// MaxDelay returns the longest delay in seconds the model can produce.
func (h HeadModel) MaxDelay() float32 {
	var d float32
	for j := range h.Offset {
		d = max(d, abs(h.Offset[j])+abs(h.Factor[j]))
	}
	return d
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
