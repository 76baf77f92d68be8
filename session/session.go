// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/render"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/voice"
)

// DefaultRefresh is the number of render cycles per second when neither
// BlockSize nor Refresh is set.
const DefaultRefresh = 50

type Config struct {
	Setup mixer.Setup
	// Backend receives every block. A Null backend matching Setup is used
	// when it is nil.
	Backend backend.AudioBackend
	Render  render.Config

	// BlockSize is the number of frames per cycle. When zero it is derived
	// from Refresh.
	BlockSize int
	Refresh   float64

	// MasterGain scales the mix before it reaches the backend; zero means 1.
	MasterGain float32
	Limit      bool
	Convolvers []render.Convolver

	// CaptureInput adds a stereo voice fed by Backend.Capture every cycle.
	CaptureInput bool

	Logger *log.Logger
	// Debug logs every retirement.
	Debug bool
	// OnRetire is called with the session locked; it must not call back
	// into the session.
	OnRetire func(id uuid.UUID, reason voice.Reason)
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	cfg       Config
	setup     mixer.Setup
	log       *log.Logger
	dst       *ringbuffer.Buffer
	renderer  render.Renderer
	out       backend.AudioBackend
	blockRate float32

	listener voice.Listener
	voices   map[uuid.UUID]*voice.Voice
	order    []*voice.Voice
	input    *voice.Voice
	capture  [][]int32

	cycle  render.Cycle
	cycles int64
	closed bool
}

// New builds the destination buffer and renderer for cfg.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	setup := cfg.Setup
	out := cfg.Backend
	if out == nil {
		out = backend.NewNull(setup.Frequency, setup.Tracks())
	}
	if setup.Frequency == 0 {
		setup.Frequency = out.Frequency()
	}
	if out.Tracks() != setup.Tracks() || out.Frequency() != setup.Frequency {
		return nil, fmt.Errorf("%w: backend %d tracks @ %v Hz, setup %d tracks @ %v Hz",
			ErrBackendMismatch, out.Tracks(), out.Frequency(), setup.Tracks(), setup.Frequency)
	}

	block := cfg.BlockSize
	if block == 0 {
		refresh := cfg.Refresh
		if refresh <= 0 {
			refresh = DefaultRefresh
		}
		block = int(math.Round(setup.Frequency / refresh))
	}
	if block <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlock, block)
	}

	dst, err := ringbuffer.New(ringbuffer.Config{
		Tracks:    setup.Tracks(),
		Samples:   block,
		Frequency: setup.Frequency,
		Format:    ringbuffer.FormatPCM24,
	})
	if err != nil {
		return nil, fmt.Errorf("session destination: %w", err)
	}

	cfg.Render.Logger = logger
	r, err := render.New(cfg.Render, dst, setup)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		setup:     setup,
		log:       logger,
		dst:       dst,
		renderer:  r,
		out:       out,
		blockRate: float32(setup.Frequency / float64(block)),
		listener:  *voice.NewListener(),
		voices:    make(map[uuid.UUID]*voice.Voice),
	}

	gain := cfg.MasterGain
	if gain == 0 {
		gain = 1
	}
	if gain != 1 || cfg.Limit {
		s.cycle.Frames = []render.FrameProcessor{render.MasterGain{Gain: gain, Limit: cfg.Limit}}
	}
	s.cycle.Convolvers = cfg.Convolvers
	s.cycle.Listener = &s.listener

	if cfg.CaptureInput {
		if err := s.addInput(); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	logger.Printf("session: %s renderer, %s, %d tracks @ %.0f Hz, %d frames per block",
		r.Name(), setup.Mode, setup.Tracks(), setup.Frequency, block)
	return s, nil
}

// addInput registers a looping voice whose window is refilled by Capture.
func (s *Session) addInput() error {
	buf, err := ringbuffer.New(ringbuffer.Config{
		Tracks:    s.out.Tracks(),
		Samples:   s.dst.Samples(),
		Frequency: s.setup.Frequency,
		Format:    ringbuffer.FormatPCM24,
	})
	if err != nil {
		return fmt.Errorf("capture buffer: %w", err)
	}
	buf.SetStreaming(true)
	buf.SetLooping(true)

	v := voice.New(buf)
	v.Play()
	s.input = v
	s.capture = make([][]int32, buf.Tracks())
	for t := range s.capture {
		s.capture[t] = buf.Track(t)
	}
	s.register(v)
	return nil
}

func (s *Session) register(v *voice.Voice) {
	s.voices[v.ID] = v
	s.order = append(s.order, v)
}

// BlockSize is the number of frames rendered per cycle.
func (s *Session) BlockSize() int { return s.dst.Samples() }

// Setup returns the mixer setup in use.
func (s *Session) Setup() mixer.Setup { return s.setup }

// Renderer reports the kind of renderer selected.
func (s *Session) Renderer() string { return s.renderer.Name() }

// InputVoice returns the id of the capture voice, if CaptureInput is set.
func (s *Session) InputVoice() (uuid.UUID, bool) {
	if s.input == nil {
		return uuid.Nil, false
	}
	return s.input.ID, true
}

// Destination exposes the mixed block of the last cycle. It is only valid
// until the next RenderCycle.
func (s *Session) Destination() *ringbuffer.Buffer { return s.dst }

// Cycles returns the number of cycles rendered.
func (s *Session) Cycles() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cycles
}

// Len returns the number of registered voices.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.voices)
}

// AddVoice registers v and initializes its modulators for the session block
// rate. The voice stays silent until Play.
func (s *Session) AddVoice(v *voice.Voice) (uuid.UUID, error) {
	if v.Buffer == nil {
		return uuid.Nil, voice.ErrNoBuffer
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if err := s.initModulators(v); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return uuid.Nil, ErrClosed
	}
	if _, ok := s.voices[v.ID]; ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrDuplicateVoice, v.ID)
	}
	s.register(v)
	return v.ID, nil
}

func (s *Session) initModulators(v *voice.Voice) error {
	for _, l := range []*envelope.LFO{v.PitchLFO, v.GainLFO, v.DynamicGain} {
		if l == nil {
			continue
		}
		if err := l.Init(s.blockRate); err != nil {
			return fmt.Errorf("voice %s lfo: %w", v.ID, err)
		}
	}
	for _, e := range []*envelope.Timed{v.PitchEnvelope, v.VolumeEnvelope} {
		if e == nil {
			continue
		}
		if err := e.Init(s.blockRate); err != nil {
			return fmt.Errorf("voice %s envelope: %w", v.ID, err)
		}
	}
	return nil
}

// with runs fn on the voice id under the session lock.
func (s *Session) with(id uuid.UUID, fn func(v *voice.Voice) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.voices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVoice, id)
	}
	return fn(v)
}

func (s *Session) Play(id uuid.UUID) error {
	return s.with(id, func(v *voice.Voice) error {
		v.Play()
		return nil
	})
}

// Stop starts the voice's release. It is retired once its envelope, or
// for 3D voices the sound already in flight, has finished.
func (s *Session) Stop(id uuid.UUID) error {
	return s.with(id, func(v *voice.Voice) error {
		v.Stop()
		return nil
	})
}

// RetireVoice removes the voice immediately.
func (s *Session) RetireVoice(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.voices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVoice, id)
	}
	s.remove(v)
	if v == s.input {
		s.input = nil
	}
	return nil
}

func (s *Session) remove(v *voice.Voice) {
	delete(s.voices, v.ID)
	for i, o := range s.order {
		if o == v {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Session) SetPitch(id uuid.UUID, pitch float32) error {
	return s.with(id, func(v *voice.Voice) error {
		v.Pitch = pitch
		return nil
	})
}

func (s *Session) SetGain(id uuid.UUID, gain float32) error {
	return s.with(id, func(v *voice.Voice) error {
		v.Gain = gain
		return nil
	})
}

// SetPan positions a stereo voice between the left (-0.5) and right (0.5)
// speakers.
func (s *Session) SetPan(id uuid.UUID, pan float32) error {
	return s.with(id, func(v *voice.Voice) error {
		if v.Is3D() {
			return fmt.Errorf("pan on 3D voice %s: %w", id, ErrNot3D)
		}
		v.SetPan(pan)
		return nil
	})
}

func (s *Session) SetPosition(id uuid.UUID, pos voice.Vec3) error {
	return s.with(id, func(v *voice.Voice) error {
		if !v.Is3D() {
			return fmt.Errorf("%w: %s", ErrNot3D, id)
		}
		v.Props3D.Position = pos
		return nil
	})
}

func (s *Session) SetVelocity(id uuid.UUID, vel voice.Vec3) error {
	return s.with(id, func(v *voice.Voice) error {
		if !v.Is3D() {
			return fmt.Errorf("%w: %s", ErrNot3D, id)
		}
		v.Props3D.Velocity = vel
		return nil
	})
}

// Target selects the parameter a modulator drives.
type Target uint8

const (
	TargetPitch Target = iota
	TargetGain
	// TargetDynamic is the signal-following gain stage; only LFOs apply.
	TargetDynamic
)

// SetEnvelope replaces the pitch or gain envelope of a voice; nil removes
// it.
func (s *Session) SetEnvelope(id uuid.UUID, target Target, e *envelope.Timed) error {
	if e != nil {
		if err := e.Init(s.blockRate); err != nil {
			return fmt.Errorf("envelope: %w", err)
		}
	}
	return s.with(id, func(v *voice.Voice) error {
		switch target {
		case TargetPitch:
			v.PitchEnvelope = e
		case TargetGain:
			v.VolumeEnvelope = e
		default:
			return fmt.Errorf("%w: %d", ErrUnknownTarget, target)
		}
		return nil
	})
}

// SetLFO replaces a modulator of a voice; nil removes it.
func (s *Session) SetLFO(id uuid.UUID, target Target, l *envelope.LFO) error {
	if l != nil {
		if err := l.Init(s.blockRate); err != nil {
			return fmt.Errorf("lfo: %w", err)
		}
	}
	return s.with(id, func(v *voice.Voice) error {
		switch target {
		case TargetPitch:
			v.PitchLFO = l
		case TargetGain:
			v.GainLFO = l
		case TargetDynamic:
			v.DynamicGain = l
		default:
			return fmt.Errorf("%w: %d", ErrUnknownTarget, target)
		}
		return nil
	})
}

// Listener returns a copy of the listener.
func (s *Session) Listener() voice.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listener
}

// SetListener replaces the listener for the following cycles.
func (s *Session) SetListener(l voice.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listener = l
}

// RenderCycle captures input if configured, renders one block and plays it.
// A playback failure is returned with the render result.
func (s *Session) RenderCycle(ctx context.Context) (render.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return render.ResultFatal, ErrClosed
	}

	if s.input != nil {
		if _, err := s.out.Capture(0, s.dst.Samples(), s.capture); err != nil {
			s.log.Printf("session: capture failed: %v", err)
		}
	}

	c := &s.cycle
	c.Emitters3D = c.Emitters3D[:0]
	c.Stereo = c.Stereo[:0]
	c.Retired = c.Retired[:0]
	for _, v := range s.order {
		if v.Is3D() {
			c.Emitters3D = append(c.Emitters3D, v)
		} else {
			c.Stereo = append(c.Stereo, v)
		}
	}

	res, err := s.renderer.Process(ctx, c)
	if res == render.ResultFatal {
		return res, err
	}
	s.cycles++

	for _, rt := range c.Retired {
		s.remove(rt.Voice)
		if rt.Voice == s.input {
			s.input = nil
		}
		if s.cfg.Debug {
			s.log.Printf("session: voice %s retired: %s", rt.Voice.ID, rt.Reason)
		}
		if s.cfg.OnRetire != nil {
			s.cfg.OnRetire(rt.Voice.ID, rt.Reason)
		}
	}

	if _, perr := s.out.Playback(s.dst, 1, 1); perr != nil {
		return render.ResultPartial, errors.Join(err, fmt.Errorf("playback: %w", perr))
	}
	return res, err
}

// Run renders cycles until ctx is done, an error is fatal, or, with
// cycles <= 0, no voices remain. A positive cycles renders exactly that
// many blocks.
func (s *Session) Run(ctx context.Context, cycles int) error {
	start := time.Now()
	n := 0
	for cycles <= 0 || n < cycles {
		if cycles <= 0 && s.Len() == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := s.RenderCycle(ctx)
		if res == render.ResultFatal {
			return fmt.Errorf("render cycle %d: %w", n, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Printf("session: cycle %d: %v", n, err)
		}
		n++
	}

	if s.cfg.Debug {
		s.log.Printf("session: rendered %d cycles in %v", n, time.Since(start))
	}
	return nil
}

// Close shuts down the renderer and the backend.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return errors.Join(s.renderer.Close(), s.out.Close())
}
