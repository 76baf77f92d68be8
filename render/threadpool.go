// SPDX-License-Identifier: EPL-2.0

package render

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/voice"
)

// ThreadPool renders with a fixed set of persistent workers.
//
// For a mixing phase the dispatcher publishes the emitter list, sets busy
// to the number of workers it wakes and posts that many tokens on start.
// Workers claim emitters in batches from an atomically decremented counter
// and mix them into their own arena buffer, which they merge into the
// destination under dataMix before dropping busy. The worker that brings
// busy to zero signals ready. Frame and convolution phases claim whole
// tracks instead and write the destination directly, one worker per track.
type ThreadPool struct {
	cfg     Config
	dst     *ringbuffer.Buffer
	arena   *ringbuffer.Arena
	workers []*worker

	start chan struct{}
	ready chan struct{}
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	busy      atomic.Int32
	remaining atomic.Int64
	nextTrack atomic.Int64

	// dataMix guards the destination during merges.
	dataMix sync.Mutex

	// Current phase, written by the dispatcher before workers are woken.
	phase    Phase
	list     []*voice.Voice
	listener *voice.Listener
	cycle    *Cycle

	mu     sync.Mutex // guards cycle.Retired and err
	err    error
	closed bool

	disabled bool
}

type worker struct {
	id  int
	mix *mixer.Mixer
}

func NewThreadPool(cfg Config) *ThreadPool {
	return &ThreadPool{cfg: cfg}
}

func (p *ThreadPool) Name() string { return KindThreadPool.String() }

// Detect reports whether more than one CPU is available or an explicit
// worker count was configured.
func (p *ThreadPool) Detect() bool {
	return p.cfg.Workers > 0 || runtime.NumCPU() > 1
}

// Workers returns the pool size.
func (p *ThreadPool) Workers() int { return len(p.workers) }

// Setup allocates one private destination copy per worker and starts the
// workers.
func (p *ThreadPool) Setup(dst *ringbuffer.Buffer, s mixer.Setup) error {
	if p.closed {
		return ErrPoolClosed
	}
	if len(p.workers) > 0 {
		return ErrAlreadySetup
	}
	if _, err := bind(dst, s); err != nil {
		return err
	}
	s.Frequency = dst.Frequency()

	n := p.cfg.workers()
	cfg := dst.Config()
	cfg.DDESamples = 0
	arena, err := ringbuffer.NewArena(n, cfg)
	if err != nil {
		return fmt.Errorf("thread pool arena: %w", err)
	}

	workers := make([]*worker, n)
	for i := range workers {
		m, err := mixer.New(s)
		if err != nil {
			return err
		}
		workers[i] = &worker{id: i, mix: m}
	}

	p.dst = dst
	p.arena = arena
	p.workers = workers
	p.start = make(chan struct{}, n)
	p.ready = make(chan struct{}, 1)
	p.quit = make(chan struct{})

	p.wg.Add(n)
	for _, w := range workers {
		go p.run(w)
	}

	return nil
}

func (p *ThreadPool) run(w *worker) {
	defer p.wg.Done()

	// Keep each worker on its own OS thread for the lifetime of the pool.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-p.quit:
			return
		case <-p.start:
		}

		switch p.phase {
		case PhaseMix3D, PhaseMixStereo:
			p.mixEmitters(w)
		case PhaseFrames:
			p.processFrames()
		case PhaseConvolution:
			p.convolveTracks()
		}

		if p.busy.Add(-1) == 0 {
			p.ready <- struct{}{}
		}
	}
}

func (p *ThreadPool) retire(rt Retired) {
	p.mu.Lock()
	p.cycle.Retired = append(p.cycle.Retired, rt)
	p.mu.Unlock()
}

func (p *ThreadPool) mixEmitters(w *worker) {
	buf := p.arena.Get(w.id)
	buf.ClearWindow()

	batch := int64(p.cfg.batch())
	mixed := false
	for {
		lo := p.remaining.Add(-batch)
		hi := lo + batch
		if hi <= 0 {
			break
		}
		for i := max(lo, 0); i < hi; i++ {
			if mixOne(w.mix, buf, p.list[i], p.listener, w.id, &p.cfg, p.retire) != mixer.StatusSilent {
				mixed = true
			}
		}
	}

	if !mixed {
		return
	}
	p.dataMix.Lock()
	_ = p.dst.Add(buf)
	p.dataMix.Unlock()
}

func (p *ThreadPool) claimTrack() (int, bool) {
	t := int(p.nextTrack.Add(1) - 1)
	return t, t < p.dst.Tracks()
}

func (p *ThreadPool) processFrames() {
	for t, ok := p.claimTrack(); ok; t, ok = p.claimTrack() {
		for _, f := range p.cycle.Frames {
			f.ProcessFrame(p.dst, t)
		}
	}
}

func (p *ThreadPool) convolveTracks() {
	for t, ok := p.claimTrack(); ok; t, ok = p.claimTrack() {
		for _, cv := range p.cycle.Convolvers {
			if err := cv.Convolve(p.dst, t); err != nil {
				p.mu.Lock()
				if p.err == nil {
					p.err = fmt.Errorf("convolve track %d: %w", t, err)
				}
				p.mu.Unlock()
				break
			}
		}
	}
}

// dispatch runs phase over n units of work and waits for it to finish.
func (p *ThreadPool) dispatch(phase Phase, n int) {
	if n == 0 {
		return
	}

	var wake int
	switch phase {
	case PhaseMix3D, PhaseMixStereo:
		wake = 1 + n/p.cfg.batch()
		p.remaining.Store(int64(n))
	default:
		wake = n
		p.nextTrack.Store(0)
	}
	wake = min(wake, len(p.workers))

	p.phase = phase
	p.busy.Store(int32(wake))
	for range wake {
		p.start <- struct{}{}
	}
	<-p.ready
}

func (p *ThreadPool) Process(ctx context.Context, c *Cycle) (Result, error) {
	if p.disabled || p.closed {
		return ResultFatal, ErrRendererDisabled
	}
	if p.dst == nil || p.arena == nil {
		p.disabled = true
		return ResultFatal, ErrNotSetup
	}
	if err := ctx.Err(); err != nil {
		return ResultPartial, err
	}

	p.dst.ClearWindow()
	p.cycle = c
	p.listener = c.Listener
	p.err = nil

	p.list = c.Emitters3D
	p.dispatch(PhaseMix3D, len(c.Emitters3D))
	p.list = c.Stereo
	p.dispatch(PhaseMixStereo, len(c.Stereo))
	p.list = nil

	if len(c.Frames) > 0 {
		p.dispatch(PhaseFrames, p.dst.Tracks())
	}
	if len(c.Convolvers) > 0 {
		p.dispatch(PhaseConvolution, p.dst.Tracks())
	}

	p.cycle = nil
	err := p.err

	return result(c, err), err
}

// Close stops the workers. It is safe to call more than once.
func (p *ThreadPool) Close() error {
	p.once.Do(func() {
		p.closed = true
		if p.quit != nil {
			close(p.quit)
			p.wg.Wait()
		}
	})
	return nil
}
