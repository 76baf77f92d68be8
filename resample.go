// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/render"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/session"
	"github.com/ik5/audmix/utils"
	"github.com/ik5/audmix/voice"
)

// ResampleToMono16 renders src as a single mono voice at targetRate and
// returns the result as 16-bit PCM.
//
// The source is drained and folded to mono, then mixed block by block,
// blockSize frames at a time, through a mono session exactly as a live
// voice would be. The output is trimmed to the source length at the new
// rate. An empty source yields no samples and no error.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm16, rate, err := audmix.ResampleToMono16(src, 8000, 4096)
//	if err != nil {
//	    panic(err)
//	}
func ResampleToMono16(src audio.Source, targetRate int, blockSize int) ([]int16, int, error) {
	if targetRate <= 0 || blockSize <= 0 {
		return nil, targetRate, fmt.Errorf("%w: %d Hz, %d frames", ErrInvalidTarget, targetRate, blockSize)
	}

	buf, err := audio.LoadMono(src, 0)
	if errors.Is(err, audio.ErrEmptySource) {
		return nil, targetRate, nil
	}
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}

	want := int(math.Round(float64(buf.Samples()) * float64(targetRate) / buf.Frequency()))
	sink := &pcmSink{
		frequency: float64(targetRate),
		pcm:       make([]int16, 0, want+blockSize),
	}

	s, err := session.New(session.Config{
		Setup:     mixer.DefaultSetup(mixer.ModeMono, float64(targetRate)),
		Backend:   sink,
		BlockSize: blockSize,
		Render:    render.Config{Kind: render.KindMonolithic},
		Logger:    log.New(io.Discard, "", 0),
	})
	if err != nil {
		return nil, targetRate, err
	}
	defer s.Close()

	v := voice.New(buf)
	id, err := s.AddVoice(v)
	if err != nil {
		return nil, targetRate, err
	}
	if err := s.Play(id); err != nil {
		return nil, targetRate, err
	}

	if err := s.Run(context.Background(), 0); err != nil {
		return nil, targetRate, err
	}

	pcm := sink.pcm
	if len(pcm) > want {
		pcm = pcm[:want]
	}
	return pcm, targetRate, nil
}

// pcmSink is a mono backend that keeps every block as 16-bit samples.
type pcmSink struct {
	frequency float64
	pcm       []int16
}

func (p *pcmSink) Frequency() float64 { return p.frequency }
func (p *pcmSink) Tracks() int        { return 1 }
func (p *pcmSink) Close() error       { return nil }

func (p *pcmSink) Capture(_, _ int, _ [][]int32) (int, error) { return 0, nil }

func (p *pcmSink) Playback(buf *ringbuffer.Buffer, _, _ float32) (int, error) {
	for _, s := range buf.Track(0) {
		p.pcm = append(p.pcm, utils.MixToInt16(s))
	}
	return buf.Samples(), nil
}
