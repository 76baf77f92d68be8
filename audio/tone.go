// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"time"
)

// ToneSource generates a sine wave of fixed length on every channel.
type ToneSource struct {
	rate      int
	channels  int
	freq      float64
	amplitude float32
	total     int
	pos       int
}

// NewToneSource returns a sine tone of frequency freq lasting d.
func NewToneSource(rate, channels int, freq float64, amplitude float32, d time.Duration) (*ToneSource, error) {
	total := int(math.Round(d.Seconds() * float64(rate)))
	if rate <= 0 || channels < 1 || total < 1 {
		return nil, ErrInvalidTone
	}
	return &ToneSource{
		rate:      rate,
		channels:  channels,
		freq:      freq,
		amplitude: amplitude,
		total:     total,
	}, nil
}

func (s *ToneSource) SampleRate() int { return s.rate }
func (s *ToneSource) Channels() int   { return s.channels }
func (s *ToneSource) BufSize() int    { return 4096 }
func (s *ToneSource) Close() error    { return nil }

func (s *ToneSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= s.total {
		return 0, io.EOF
	}

	frames := min(len(dst)/s.channels, s.total-s.pos)
	w := 2 * math.Pi * s.freq / float64(s.rate)
	for f := range frames {
		v := s.amplitude * float32(math.Sin(w*float64(s.pos+f)))
		for c := range s.channels {
			dst[f*s.channels+c] = v
		}
	}
	s.pos += frames

	if s.pos >= s.total {
		return frames * s.channels, io.EOF
	}
	return frames * s.channels, nil
}
