// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"math"

	"github.com/ik5/audmix/resample"
	"github.com/ik5/audmix/ringbuffer"
)

// DefaultLevelFloor is two steps of the 24-bit mixing range, about -132 dB.
const DefaultLevelFloor = 2.0 / 8388607

const (
	DefaultMinPitch = 0.01
	DefaultMaxPitch = 16
)

// Setup configures a Mixer.
type Setup struct {
	Mode Mode
	// Frequency is the destination sample rate.
	Frequency float64
	// Speakers are the logical destination tracks.
	Speakers []Speaker
	// Routing maps logical track t to physical destination track
	// Routing[t]. A nil table is the identity.
	Routing []int
	// LevelFloor is the gain below which a ramp is not mixed.
	LevelFloor float32
	// LFEGain scales the share of every voice sent to LFE speakers.
	LFEGain float32
	Head    HeadModel
	// DistanceFilter enables the distance-dependent low-pass of 3D voices.
	DistanceFilter bool

	Thresholds         resample.Thresholds
	MinPitch, MaxPitch float32
}

// DefaultSetup returns the usual configuration of mode at freq: the matching
// speaker layout, identity routing and default thresholds. ModeHRTF and
// ModeSpatial use the stereo layout, the surround modes 5.1.
func DefaultSetup(mode Mode, freq float64) Setup {
	var spk []Speaker
	switch mode {
	case ModeMono:
		spk = MonoSpeakers()
	case ModeSurround, ModeSpatialSurround:
		spk = Surround51Speakers()
	case ModeHRTF:
		spk = HeadphoneSpeakers()
	default:
		spk = StereoSpeakers()
	}

	return Setup{
		Mode:           mode,
		Frequency:      freq,
		Speakers:       spk,
		LevelFloor:     DefaultLevelFloor,
		LFEGain:        0.5,
		Head:           DefaultHead,
		DistanceFilter: true,
		Thresholds:     resample.DefaultThresholds,
		MinPitch:       DefaultMinPitch,
		MaxPitch:       DefaultMaxPitch,
	}
}

// Tracks is the number of logical tracks.
func (s Setup) Tracks() int { return len(s.Speakers) }

// Route returns the physical track of logical track t.
func (s Setup) Route(t int) int {
	if t < len(s.Routing) {
		return s.Routing[t]
	}
	return t
}

// DDESamples is the history the spatial modes need in front of each
// voice's scratch block.
func (s Setup) DDESamples() int {
	if !s.Mode.Spatial() {
		return 0
	}
	return int(math.Ceil(float64(s.Head.MaxDelay())*s.Frequency)) + 1
}

// Validate checks the setup against a destination with tracks tracks. A
// non-positive tracks skips the routing bounds check.
func (s Setup) Validate(tracks int) error {
	if int(s.Mode) >= len(modeNames) {
		return fmt.Errorf("%w: %d", ErrUnknownMode, s.Mode)
	}
	if !(s.Frequency > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, s.Frequency)
	}
	if len(s.Speakers) == 0 {
		return ErrNoSpeakers
	}
	if len(s.Speakers) > ringbuffer.MaxTracks {
		return fmt.Errorf("%w: %d", ErrTooManySpeakers, len(s.Speakers))
	}
	if s.LevelFloor < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLevelFloor, s.LevelFloor)
	}
	if !(s.MinPitch > 0) || s.MaxPitch < s.MinPitch {
		return fmt.Errorf("%w: [%v,%v]", ErrInvalidPitchRange, s.MinPitch, s.MaxPitch)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}

	limit := ringbuffer.MaxTracks
	if tracks > 0 {
		limit = tracks
	}
	for t := range s.Speakers {
		if r := s.Route(t); r < 0 || r >= limit {
			return fmt.Errorf("%w: logical %d -> %d of %d", ErrInvalidRoute, t, r, limit)
		}
	}

	return nil
}
