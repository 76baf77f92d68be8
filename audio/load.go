// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/batch"
	"github.com/ik5/audmix/ringbuffer"
)

// LoadBuffer drains src into a new ring buffer with dde history samples in
// front of each track. The source is not closed.
func LoadBuffer(src Source, dde int) (*ringbuffer.Buffer, error) {
	channels := src.Channels()
	rate := src.SampleRate()
	if channels < 1 || rate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidSource, rate, channels)
	}

	chunk := src.BufSize()
	if chunk < channels {
		chunk = 4096
	}
	chunk -= chunk % channels
	buf := make([]float32, chunk)

	tracks := make([][]float32, channels)
	var carry []float32
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			data := buf[:n]
			if len(carry) > 0 {
				data = append(carry[:len(carry):len(carry)], data...)
				carry = carry[:0]
			}
			whole := len(data) - len(data)%channels
			for i := 0; i < whole; i += channels {
				for c := range channels {
					tracks[c] = append(tracks[c], data[i+c])
				}
			}
			carry = append(carry, data[whole:]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		if n == 0 {
			break
		}
	}

	if len(tracks[0]) == 0 {
		return nil, ErrEmptySource
	}

	b, err := ringbuffer.New(ringbuffer.Config{
		Tracks:     channels,
		Samples:    len(tracks[0]),
		DDESamples: dde,
		Frequency:  float64(rate),
		Format:     ringbuffer.FormatFloat32,
	})
	if err != nil {
		return nil, err
	}
	for t, data := range tracks {
		batch.ConvertFromFloat32(b.Track(t), data)
	}
	return b, nil
}

// LoadMono folds src to one channel and loads it, as 3D emitters require.
func LoadMono(src Source, dde int) (*ringbuffer.Buffer, error) {
	return LoadBuffer(NewMonoMixer(src), dde)
}
