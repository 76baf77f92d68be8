// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"

	goaudio "github.com/go-audio/audio"
)

// PCMReader is the part of the go-audio wav and aiff decoders IntSource uses.
type PCMReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// IntSource adapts a go-audio PCM decoder to Source.
type IntSource struct {
	dec        PCMReader
	sampleRate int
	channels   int
	scale      float32
	bias       int
	intBuf     *goaudio.IntBuffer
}

// NewIntSource wraps dec. unsigned8 marks 8-bit data stored without sign, as
// WAV does.
func NewIntSource(dec PCMReader, sampleRate, channels, bitDepth int, unsigned8 bool) *IntSource {
	s := &IntSource{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      1 / IntScale(bitDepth),
	}
	if bitDepth == 8 && unsigned8 {
		s.bias = 128
	}
	return s
}

// IntScale is the magnitude of full scale for a signed PCM bit depth.
func IntScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

func (s *IntSource) SampleRate() int { return s.sampleRate }
func (s *IntSource) Channels() int   { return s.channels }
func (s *IntSource) Close() error    { return nil }

func (s *IntSource) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *IntSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v-s.bias) * s.scale
	}

	// The go-audio decoders fill the whole buffer unless the data chunk ended.
	if n < len(dst) && err == nil {
		return n, io.EOF
	}
	return n, err
}
