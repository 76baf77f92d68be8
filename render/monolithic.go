// SPDX-License-Identifier: EPL-2.0

package render

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/ringbuffer"
)

// Monolithic renders on the calling goroutine. Only the convolution phase
// fans out, one goroutine per track.
type Monolithic struct {
	cfg      Config
	mix      *mixer.Mixer
	dst      *ringbuffer.Buffer
	disabled bool
}

func NewMonolithic(cfg Config) *Monolithic {
	return &Monolithic{cfg: cfg}
}

func (r *Monolithic) Name() string { return KindMonolithic.String() }

// Detect always succeeds.
func (r *Monolithic) Detect() bool { return true }

func (r *Monolithic) Setup(dst *ringbuffer.Buffer, s mixer.Setup) error {
	m, err := bind(dst, s)
	if err != nil {
		return err
	}
	r.mix = m
	r.dst = dst
	r.disabled = false

	return nil
}

func (r *Monolithic) Process(ctx context.Context, c *Cycle) (Result, error) {
	if r.disabled {
		return ResultFatal, ErrRendererDisabled
	}
	if r.dst == nil {
		r.disabled = true
		return ResultFatal, ErrNotSetup
	}
	if err := ctx.Err(); err != nil {
		return ResultPartial, err
	}

	dst := r.dst
	dst.ClearWindow()
	retire := func(rt Retired) { c.Retired = append(c.Retired, rt) }

	for _, v := range c.Emitters3D {
		mixOne(r.mix, dst, v, c.Listener, 0, &r.cfg, retire)
	}
	for _, v := range c.Stereo {
		mixOne(r.mix, dst, v, c.Listener, 0, &r.cfg, retire)
	}

	for t := range dst.Tracks() {
		for _, f := range c.Frames {
			f.ProcessFrame(dst, t)
		}
	}

	err := convolve(dst, c.Convolvers)

	return result(c, err), err
}

func convolve(dst *ringbuffer.Buffer, cs []Convolver) error {
	if len(cs) == 0 {
		return nil
	}

	var g errgroup.Group
	for t := range dst.Tracks() {
		g.Go(func() error {
			for _, cv := range cs {
				if err := cv.Convolve(dst, t); err != nil {
					return fmt.Errorf("convolve track %d: %w", t, err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (r *Monolithic) Close() error {
	r.disabled = true
	return nil
}
