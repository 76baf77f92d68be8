// SPDX-License-Identifier: EPL-2.0

package wavfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/utils"
)

var (
	ErrBitDepth    = errors.New("wav output supports 8, 16, 24 or 32 bits")
	ErrInputFormat = errors.New("capture input does not match backend frequency")
)

const wavPCM = 1

// Writer encodes every played block into a WAV stream.
type Writer struct {
	mu sync.Mutex

	frequency float64
	tracks    int
	bits      int

	enc    *wav.Encoder
	closer io.Closer
	frames int64
	closed bool

	mixed []int32
	ints  []int

	input audio.Source
	inBuf []float32
}

// NewWriter encodes to w. The header is finalized on Close, which is why w
// must be seekable.
func NewWriter(w io.WriteSeeker, frequency float64, tracks, bits int) (*Writer, error) {
	switch bits {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bits)
	}
	if tracks < 1 || tracks > ringbuffer.MaxTracks {
		return nil, fmt.Errorf("%w: %d", ringbuffer.ErrInvalidTracks, tracks)
	}

	return &Writer{
		frequency: frequency,
		tracks:    tracks,
		bits:      bits,
		enc:       wav.NewEncoder(w, int(frequency), bits, tracks, wavPCM),
	}, nil
}

// Create opens path for writing and returns a Writer that owns the file.
func Create(path string, frequency float64, tracks, bits int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	w, err := NewWriter(f, frequency, tracks, bits)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	w.closer = f
	return w, nil
}

// SetInput makes Capture read from src. src must run at the writer's
// frequency; its channels are spread over the capture tracks modulo their
// count.
func (w *Writer) SetInput(src audio.Source) error {
	if float64(src.SampleRate()) != w.frequency {
		return fmt.Errorf("%w: %d Hz", ErrInputFormat, src.SampleRate())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.input = src
	return nil
}

func (w *Writer) Frequency() float64 { return w.frequency }
func (w *Writer) Tracks() int        { return w.tracks }

// Frames is the number of frames encoded so far.
func (w *Writer) Frames() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.frames
}

func (w *Writer) Capture(offset, frames int, scratch [][]int32) (int, error) {
	if err := backend.CheckCapture(offset, frames, scratch); err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, backend.ErrClosed
	}
	for _, s := range scratch {
		clear(s[offset : offset+frames])
	}
	if w.input == nil || frames == 0 {
		return 0, nil
	}

	channels := w.input.Channels()
	if cap(w.inBuf) < frames*channels {
		w.inBuf = make([]float32, frames*channels)
	}

	got := 0
	for got < frames {
		n, err := w.input.ReadSamples(w.inBuf[:(frames-got)*channels])
		for i := range n / channels {
			for t, s := range scratch {
				s[offset+got+i] = utils.Float32ToMix(w.inBuf[i*channels+t%channels])
			}
		}
		got += n / channels

		if errors.Is(err, io.EOF) {
			w.input = nil
			break
		}
		if err != nil {
			return got, fmt.Errorf("capturing input: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return got, nil
}

func (w *Writer) Playback(buf *ringbuffer.Buffer, pitch, gain float32) (int, error) {
	if err := backend.CheckPlayback(w, buf, pitch); err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, backend.ErrClosed
	}

	w.mixed = backend.Interleave(w.mixed, buf, pitch, gain)
	if cap(w.ints) < len(w.mixed) {
		w.ints = make([]int, len(w.mixed))
	}
	w.ints = w.ints[:len(w.mixed)]

	shift := 24 - w.bits
	bias := 0
	if w.bits == 8 {
		// 8-bit WAV is unsigned.
		bias = 128
	}
	for i, s := range w.mixed {
		if shift >= 0 {
			w.ints[i] = int(s>>shift) + bias
		} else {
			w.ints[i] = int(s) << -shift
		}
	}

	err := w.enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: w.tracks, SampleRate: int(w.frequency)},
		Data:           w.ints,
		SourceBitDepth: w.bits,
	})
	if err != nil {
		return 0, fmt.Errorf("encoding block: %w", err)
	}
	w.frames += int64(len(w.mixed) / w.tracks)
	return 0, nil
}

// Close finalizes the WAV header and closes the file when the writer owns
// it. Calling Close again is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.enc.Close()
	if err != nil {
		err = fmt.Errorf("finalizing wav: %w", err)
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w", cerr)
		}
	}
	return err
}

var _ backend.AudioBackend = (*Writer)(nil)
