// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/ringbuffer"
)

type State int32

const (
	StateInitial State = iota
	StatePlaying
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Reason says why a voice was retired.
type Reason uint8

const (
	ReasonNone Reason = iota
	// ReasonExhausted: a non-looping source ran out of samples or its
	// envelope ended.
	ReasonExhausted
	// ReasonEnvelopeTerminated: the volume envelope hit a zero-time stage.
	ReasonEnvelopeTerminated
	// ReasonStopped: the voice was stopped and has drained.
	ReasonStopped
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExhausted:
		return "exhausted"
	case ReasonEnvelopeTerminated:
		return "envelope-terminated"
	case ReasonStopped:
		return "stopped"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// Voice is one emitter: a source buffer played at Pitch and Gain through
// optional modulators. Voices with Props3D set are positioned relative to
// the listener and must carry a single track.
type Voice struct {
	ID     uuid.UUID
	Buffer *ringbuffer.Buffer
	// Scratch receives the resampled block; its history is the previous
	// blocks, read by the spatial delay taps.
	Scratch *ringbuffer.Buffer

	Pitch float32
	Gain  float32
	// FadeIn ramps the first block from silence.
	FadeIn bool

	PitchLFO       *envelope.LFO // vibrato
	GainLFO        *envelope.LFO // tremolo
	DynamicGain    *envelope.LFO // auto-gain or compressor
	PitchEnvelope  *envelope.Timed
	VolumeEnvelope *envelope.Timed

	Props2D
	Props3D *Props3D

	state     atomic.Int32
	stopTimer float32
	stopArmed bool
}

// New returns a stereo (2D) voice for buf.
func New(buf *ringbuffer.Buffer) *Voice {
	v := &Voice{
		ID:     uuid.New(),
		Buffer: buf,
		Pitch:  1,
		Gain:   1,
	}
	v.Props2D.init()

	return v
}

// New3D returns a positional voice for a single track buffer.
func New3D(buf *ringbuffer.Buffer, pos Vec3) (*Voice, error) {
	if buf == nil {
		return nil, ErrNoBuffer
	}
	if buf.Tracks() != 1 {
		return nil, fmt.Errorf("%w: %d tracks", ErrNotMono, buf.Tracks())
	}
	v := New(buf)
	v.Props3D = newProps3D(pos)

	return v, nil
}

func (v *Voice) Is3D() bool { return v.Props3D != nil }

// Play starts or resumes the voice.
func (v *Voice) Play() {
	v.state.Store(int32(StatePlaying))
	if v.Buffer != nil {
		v.Buffer.Start()
	}
}

// Stop asks the voice to stop. The mixer releases its envelope and lets
// in-flight distance delay drain before retiring it.
func (v *Voice) Stop() {
	v.state.Store(int32(StateStopped))
}

func (v *Voice) State() State    { return State(v.state.Load()) }
func (v *Voice) IsPlaying() bool { return v.State() == StatePlaying }
func (v *Voice) IsStopped() bool { return v.State() == StateStopped }

// Tracks is the number of tracks the voice is resampled into.
func (v *Voice) Tracks() int {
	if v.Buffer == nil {
		return 0
	}
	return v.Buffer.Tracks()
}

// EnsureScratch (re)allocates the scratch buffer for blocks of samples at
// freq with dde samples of history. It is a no-op when the geometry already
// matches.
func (v *Voice) EnsureScratch(samples, dde int, freq float64) error {
	if v.Buffer == nil {
		return ErrNoBuffer
	}
	if s := v.Scratch; s != nil && s.Samples() == samples && s.DDESamples() == dde &&
		s.Tracks() == v.Tracks() && s.Frequency() == freq {
		return nil
	}

	s, err := ringbuffer.New(ringbuffer.Config{
		Tracks:     v.Tracks(),
		Samples:    samples,
		DDESamples: dde,
		Frequency:  freq,
		Format:     ringbuffer.FormatPCM24,
	})
	if err != nil {
		return fmt.Errorf("voice scratch: %w", err)
	}
	v.Scratch = s

	return nil
}

// ArmStopTimer starts the drain countdown of a stopped voice once; later
// calls keep the running timer.
func (v *Voice) ArmStopTimer(seconds float32) {
	if v.stopArmed {
		return
	}
	v.stopArmed = true
	v.stopTimer = seconds
}

// TickStopTimer counts dt seconds off the drain timer and reports whether
// it has expired.
func (v *Voice) TickStopTimer(dt float32) bool {
	v.stopTimer -= dt
	return v.stopTimer <= 0
}

// Rewind restarts the source, envelopes and modulators and forgets the
// gain history. The playback state is unchanged.
func (v *Voice) Rewind() {
	if v.Buffer != nil {
		v.Buffer.Rewind()
	}
	if v.Scratch != nil {
		v.Scratch.Clear()
	}
	for _, l := range []*envelope.LFO{v.PitchLFO, v.GainLFO, v.DynamicGain} {
		if l != nil {
			l.Reset()
		}
	}
	for _, e := range []*envelope.Timed{v.PitchEnvelope, v.VolumeEnvelope} {
		if e != nil {
			e.Reset()
		}
	}
	if v.Props3D != nil {
		v.Props3D.FilterHist = [ringbuffer.MaxTracks][2]float32{}
	}
	v.Unprime()
	v.stopArmed = false
	v.stopTimer = 0
}
