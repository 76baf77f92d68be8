// SPDX-License-Identifier: EPL-2.0

package render

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/voice"
)

// Phase is a step of a render cycle. Phases always run in this order.
type Phase uint8

const (
	PhaseMix3D Phase = iota
	PhaseMixStereo
	PhaseFrames
	PhaseConvolution
)

func (p Phase) String() string {
	switch p {
	case PhaseMix3D:
		return "mix-3d"
	case PhaseMixStereo:
		return "mix-stereo"
	case PhaseFrames:
		return "frames"
	case PhaseConvolution:
		return "convolution"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

type Result uint8

const (
	ResultSuccess Result = iota
	// ResultPartial: the cycle completed but voices were retired or a
	// post-processing step failed; see Cycle.Retired and the error.
	ResultPartial
	// ResultFatal: nothing was rendered and the renderer is disabled.
	ResultFatal
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultPartial:
		return "partial"
	case ResultFatal:
		return "fatal"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// FrameProcessor post-processes one track of the mixed destination. Calls
// for different tracks may run concurrently.
type FrameProcessor interface {
	ProcessFrame(dst *ringbuffer.Buffer, track int)
}

// Convolver runs last, on one track at a time. Calls for different tracks
// may run concurrently.
type Convolver interface {
	Convolve(dst *ringbuffer.Buffer, track int) error
}

// Retired is a voice the cycle finished with.
type Retired struct {
	Voice  *voice.Voice
	Reason voice.Reason
}

// Cycle is the work of one render call. The renderer appends to Retired;
// the caller removes those voices before the next cycle.
type Cycle struct {
	Emitters3D []*voice.Voice
	Stereo     []*voice.Voice
	Listener   *voice.Listener

	Frames     []FrameProcessor
	Convolvers []Convolver

	Retired []Retired
}

// Renderer mixes cycles into the destination bound by Setup.
type Renderer interface {
	// Detect reports whether the renderer can run on this machine.
	Detect() bool
	Setup(dst *ringbuffer.Buffer, s mixer.Setup) error
	// Process clears the destination window and renders c into it. ctx is
	// checked before the cycle starts; a running cycle is not interrupted.
	Process(ctx context.Context, c *Cycle) (Result, error)
	Close() error
	Name() string
}

type Kind uint8

const (
	// KindAuto picks the thread pool when it is available.
	KindAuto Kind = iota
	KindMonolithic
	KindThreadPool
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindMonolithic:
		return "monolithic"
	case KindThreadPool:
		return "threadpool"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return KindAuto, nil
	case "monolithic", "single":
		return KindMonolithic, nil
	case "threadpool", "thread-pool", "pool":
		return KindThreadPool, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MaxWorkers caps the thread pool size.
const MaxWorkers = 32

// DefaultMinEmittersPerWorker is the batch size workers claim emitters in.
const DefaultMinEmittersPerWorker = 8

type Config struct {
	Kind Kind
	// Workers is the pool size; zero uses min(NumCPU, MaxWorkers).
	Workers              int
	MinEmittersPerWorker int
	Logger               *log.Logger
	// OnMix, when set, is called after every voice is mixed with the index
	// of the worker that mixed it (0 for the monolithic renderer). It is
	// called concurrently by the thread pool.
	OnMix func(worker int, v *voice.Voice)
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

func (c Config) batch() int {
	if c.MinEmittersPerWorker > 0 {
		return c.MinEmittersPerWorker
	}
	return DefaultMinEmittersPerWorker
}

func (c Config) workers() int {
	n := c.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(n, MaxWorkers)
}

// New returns a renderer bound to dst. The thread pool is used when the
// configuration allows it and Detect succeeds; if its setup fails the
// failure is logged and the monolithic renderer is used instead.
func New(cfg Config, dst *ringbuffer.Buffer, s mixer.Setup) (Renderer, error) {
	if cfg.Kind > KindThreadPool {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, cfg.Kind)
	}

	if cfg.Kind != KindMonolithic {
		pool := NewThreadPool(cfg)
		if pool.Detect() {
			err := pool.Setup(dst, s)
			if err == nil {
				return pool, nil
			}
			_ = pool.Close()
			cfg.logger().Printf("render: thread pool unavailable, falling back to monolithic: %v", err)
		}
	}

	mono := NewMonolithic(cfg)
	if err := mono.Setup(dst, s); err != nil {
		return nil, err
	}

	return mono, nil
}

// bind validates s against dst and builds a mixer for it.
func bind(dst *ringbuffer.Buffer, s mixer.Setup) (*mixer.Mixer, error) {
	if dst == nil {
		return nil, ErrNotSetup
	}
	if err := s.Validate(dst.Tracks()); err != nil {
		return nil, fmt.Errorf("render setup: %w", err)
	}
	if s.Frequency != dst.Frequency() {
		s.Frequency = dst.Frequency()
	}

	return mixer.New(s)
}

// mixOne mixes v and reports a retirement through retire.
func mixOne(m *mixer.Mixer, dst *ringbuffer.Buffer, v *voice.Voice, l *voice.Listener,
	worker int, cfg *Config, retire func(Retired)) mixer.Status {
	st, reason := m.MixVoice(dst, v, l)
	if cfg.OnMix != nil {
		cfg.OnMix(worker, v)
	}
	if st == mixer.StatusRetire {
		retire(Retired{Voice: v, Reason: reason})
	}

	return st
}

func result(c *Cycle, err error) Result {
	if err != nil || len(c.Retired) > 0 {
		return ResultPartial
	}
	return ResultSuccess
}
