// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/render"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/session"
	"github.com/ik5/audmix/voice"
)

type cue struct {
	em      *Emitter
	id      uuid.UUID
	pos     voice.Vec3
	started bool
	stopped bool
}

// Timeline starts, stops and moves the emitters of a scene as the session
// renders.
type Timeline struct {
	s     *session.Session
	cues  []*cue
	block time.Duration
	dt    float32
	total int
	cycle int
}

// Bind loads every emitter's source, adds its voice to s and returns the
// timeline that plays them. Voices added before a failure are retired.
func Bind(sc *Scene, s *session.Session, reg *audio.Registry) (*Timeline, error) {
	freq := s.Setup().Frequency
	n := s.BlockSize()
	tl := &Timeline{
		s:     s,
		block: time.Duration(float64(n) / freq * float64(time.Second)),
		dt:    float32(float64(n) / freq),
	}
	if sc.Duration > 0 {
		tl.total = int(math.Ceil(sc.Duration.Seconds() * freq / float64(n)))
	}

	s.SetListener(sc.Listener)
	for i := range sc.Emitters {
		em := &sc.Emitters[i]
		id, err := addEmitter(sc, s, reg, em)
		if err != nil {
			for _, c := range tl.cues {
				_ = s.RetireVoice(c.id)
			}
			return nil, fmt.Errorf("emitter %s: %w", label(em, i), err)
		}
		tl.cues = append(tl.cues, &cue{em: em, id: id, pos: em.Position})
	}
	return tl, nil
}

func label(em *Emitter, i int) string {
	switch {
	case em.Name != "":
		return em.Name
	case em.File != "":
		return em.File
	}
	return fmt.Sprintf("#%d", i+1)
}

func addEmitter(sc *Scene, s *session.Session, reg *audio.Registry, em *Emitter) (uuid.UUID, error) {
	buf, err := loadSource(sc, reg, em, s.Setup().Frequency)
	if err != nil {
		return uuid.Nil, err
	}

	var v *voice.Voice
	if em.Spatial {
		if v, err = voice.New3D(buf, em.Position); err != nil {
			return uuid.Nil, err
		}
		p := v.Props3D
		p.Velocity = em.Velocity
		p.Relative = em.Relative
		p.Model = em.Model
		p.Distance = em.Distance
		p.Cone = em.Cone
	} else {
		v = voice.New(buf)
		if em.Pan != 0 {
			v.SetPan(em.Pan)
		}
	}
	v.Gain = em.Gain
	v.Pitch = em.Pitch
	v.FadeIn = em.FadeIn

	if em.Loop {
		buf.SetLooping(true)
		buf.SetLoopCount(em.LoopCount)
	}
	if len(em.Envelope) > 0 {
		v.VolumeEnvelope = &envelope.Timed{Points: em.Envelope, Sustain: em.Sustain}
	}
	if len(em.PitchEnvelope) > 0 {
		v.PitchEnvelope = &envelope.Timed{Points: em.PitchEnvelope}
	}
	v.GainLFO = em.Tremolo.build()
	v.PitchLFO = em.Vibrato.build()
	v.DynamicGain = em.Dynamic.build()

	return s.AddVoice(v)
}

func loadSource(sc *Scene, reg *audio.Registry, em *Emitter, freq float64) (*ringbuffer.Buffer, error) {
	var src audio.Source
	switch {
	case em.File != "":
		path := em.File
		if !filepath.IsAbs(path) && sc.Dir != "" {
			path = filepath.Join(sc.Dir, path)
		}
		f, err := reg.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	case em.Tone > 0:
		channels := 2
		if em.Spatial {
			channels = 1
		}
		d := time.Duration(em.ToneSeconds * float64(time.Second))
		t, err := audio.NewToneSource(int(freq), channels, em.Tone, 1, d)
		if err != nil {
			return nil, err
		}
		src = t
	default:
		return nil, ErrNoSource
	}

	if em.Spatial {
		return audio.LoadMono(src, 0)
	}
	return audio.LoadBuffer(src, 0)
}

// Cycles is the number of blocks the scene lasts; zero runs until every
// emitter has been retired.
func (tl *Timeline) Cycles() int { return tl.total }

// Elapsed is the scene time of the next block.
func (tl *Timeline) Elapsed() time.Duration { return time.Duration(tl.cycle) * tl.block }

// Done reports whether every emitter has started and been retired.
func (tl *Timeline) Done() bool {
	if tl.total > 0 {
		return tl.cycle >= tl.total
	}
	for _, c := range tl.cues {
		if !c.started {
			return false
		}
	}
	return tl.s.Len() == 0
}

// Step applies the cues due at the current scene time and renders one
// block.
func (tl *Timeline) Step(ctx context.Context) (render.Result, error) {
	now := tl.Elapsed()
	for _, c := range tl.cues {
		if err := tl.apply(c, now); err != nil {
			return render.ResultFatal, err
		}
	}

	res, err := tl.s.RenderCycle(ctx)
	tl.cycle++
	return res, err
}

func (tl *Timeline) apply(c *cue, now time.Duration) error {
	em := c.em
	if !c.started && em.Start <= now {
		c.started = true
		if err := ignoreRetired(tl.s.Play(c.id)); err != nil {
			return err
		}
	}
	if !c.started {
		return nil
	}
	if !c.stopped && em.Stop > 0 && em.Stop <= now {
		c.stopped = true
		if err := ignoreRetired(tl.s.Stop(c.id)); err != nil {
			return err
		}
	}

	if !em.Spatial || em.Velocity.IsZero() {
		return nil
	}
	c.pos = c.pos.Add(em.Velocity.Scale(tl.dt))
	return ignoreRetired(tl.s.SetPosition(c.id, c.pos))
}

// ignoreRetired drops the error of a cue whose voice has already finished.
func ignoreRetired(err error) error {
	if errors.Is(err, session.ErrUnknownVoice) {
		return nil
	}
	return err
}

// Run steps the timeline until it is done or ctx is cancelled. progress,
// when set, is called after every block with the blocks rendered and
// Cycles.
func (tl *Timeline) Run(ctx context.Context, progress func(cycle, total int)) error {
	for !tl.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := tl.Step(ctx)
		if res == render.ResultFatal {
			return fmt.Errorf("scene at %v: %w", tl.Elapsed(), err)
		}
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if progress != nil {
			progress(tl.cycle, tl.total)
		}
	}
	return nil
}
