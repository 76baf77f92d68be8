// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"fmt"
	"log"
	"time"

	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/distance"
	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/render"
	"github.com/ik5/audmix/session"
	"github.com/ik5/audmix/voice"
)

const (
	DefaultFrequency   = 48000
	DefaultToneSeconds = 1
)

// Scene is a loaded script.
type Scene struct {
	Name      string
	Dir       string // files are resolved against it
	Frequency float64
	Mode      mixer.Mode
	// Tracks picks a speaker layout for the mode; zero uses the default.
	Tracks     int
	Renderer   render.Kind
	Workers    int
	Duration   time.Duration
	Refresh    float64
	MasterGain float32
	Limit      bool

	Listener voice.Listener
	Emitters []Emitter
}

// LFO mirrors envelope.LFO settings as written in a script.
type LFO struct {
	Shape     envelope.Shape
	Min, Max  float32
	Frequency float32
	Inverse   bool
	Attack    float32
	Release   float32
	Threshold float32
	Ratio     float32
}

func (l *LFO) build() *envelope.LFO {
	if l == nil {
		return nil
	}
	return &envelope.LFO{
		Shape:     l.Shape,
		Min:       l.Min,
		Max:       l.Max,
		Frequency: l.Frequency,
		Inverse:   l.Inverse,
		Attack:    l.Attack,
		Release:   l.Release,
		Threshold: l.Threshold,
		Ratio:     l.Ratio,
	}
}

type Emitter struct {
	Name string
	File string
	// Tone is a sine frequency used when File is empty.
	Tone        float64
	ToneSeconds float64

	Gain, Pitch float32
	Pan         float32
	FadeIn      bool
	Loop        bool
	LoopCount   int
	// Start and Stop are offsets from the beginning of the scene. A zero
	// Stop never stops the emitter.
	Start, Stop time.Duration

	Spatial  bool
	Position voice.Vec3
	Velocity voice.Vec3
	Relative bool
	Model    distance.Model
	Distance distance.Params
	Cone     voice.Cone

	Envelope      []envelope.Breakpoint
	Sustain       bool
	PitchEnvelope []envelope.Breakpoint

	Tremolo *LFO
	Vibrato *LFO
	Dynamic *LFO
}

func newEmitter() Emitter {
	return Emitter{
		Gain:        1,
		Pitch:       1,
		ToneSeconds: DefaultToneSeconds,
		Model:       distance.ModelInverseExponential,
		Distance:    distance.DefaultParams(),
	}
}

// Setup returns the mixer setup for the scene's mode and track count.
func (sc *Scene) Setup() (mixer.Setup, error) {
	if !(sc.Frequency > 0) {
		return mixer.Setup{}, fmt.Errorf("%w: %v", ErrInvalidRate, sc.Frequency)
	}
	s := mixer.DefaultSetup(sc.Mode, sc.Frequency)
	if sc.Tracks == 0 || sc.Tracks == s.Tracks() {
		return s, nil
	}
	if sc.Mode == mixer.ModeHRTF {
		return mixer.Setup{}, fmt.Errorf("%w: hrtf needs 2, got %d", ErrTracks, sc.Tracks)
	}

	switch sc.Tracks {
	case 1:
		s.Speakers = mixer.MonoSpeakers()
	case 2:
		s.Speakers = mixer.StereoSpeakers()
	case 4:
		s.Speakers = mixer.QuadSpeakers()
	case 6:
		s.Speakers = mixer.Surround51Speakers()
	default:
		return mixer.Setup{}, fmt.Errorf("%w: %d", ErrTracks, sc.Tracks)
	}
	return s, nil
}

// SessionConfig builds a session configuration playing to out.
func (sc *Scene) SessionConfig(out backend.AudioBackend, logger *log.Logger) (session.Config, error) {
	setup, err := sc.Setup()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Setup:   setup,
		Backend: out,
		Render: render.Config{
			Kind:    sc.Renderer,
			Workers: sc.Workers,
		},
		Refresh:    sc.Refresh,
		MasterGain: sc.MasterGain,
		Limit:      sc.Limit,
		Logger:     logger,
	}, nil
}
