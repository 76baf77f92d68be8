// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/ik5/audmix/audio"
)

// frameReader is the part of flac.Stream the source uses.
type frameReader interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream     frameReader
	sampleRate int
	channels   int
	scale      float32

	pending []float32 // interleaved samples of the current frame
	pos     int
	eof     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) next() error {
	f, err := s.stream.ParseNext()
	if err != nil {
		return err
	}
	if len(f.Subframes) != s.channels {
		return fmt.Errorf("%w: %d != %d", ErrChannelMismatch, len(f.Subframes), s.channels)
	}

	frames := len(f.Subframes[0].Samples)
	if cap(s.pending) < frames*s.channels {
		s.pending = make([]float32, frames*s.channels)
	}
	s.pending = s.pending[:frames*s.channels]
	for ch, sub := range f.Subframes {
		for i, v := range sub.Samples[:frames] {
			s.pending[i*s.channels+ch] = float32(v) * s.scale
		}
	}
	s.pos = 0
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if s.pos == len(s.pending) {
			if s.eof {
				break
			}
			if err := s.next(); err != nil {
				if errors.Is(err, io.EOF) {
					s.eof = true
					break
				}
				return written, fmt.Errorf("decoding flac frame: %w", err)
			}
		}
		n := copy(dst[written:], s.pending[s.pos:])
		s.pos += n
		written += n
	}

	if s.eof && s.pos == len(s.pending) {
		return written, io.EOF
	}
	return written, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	info := stream.Info
	return newSource(stream, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample))
}

func newSource(stream frameReader, rate, channels, bits int) (*source, error) {
	if channels < 1 {
		_ = stream.Close()
		return nil, ErrNoChannels
	}
	if bits < 4 || bits > 32 {
		_ = stream.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	return &source{
		stream:     stream,
		sampleRate: rate,
		channels:   channels,
		scale:      1 / float32(int64(1)<<(bits-1)),
	}, nil
}
