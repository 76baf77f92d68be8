// SPDX-License-Identifier: EPL-2.0

package ringbuffer

import (
	"fmt"
	"time"

	"github.com/ik5/audmix/batch"
)

// MaxTracks is the largest number of tracks a buffer may carry.
const MaxTracks = 8

// Config describes the geometry of a Buffer.
type Config struct {
	Tracks     int
	Samples    int // active window length per track
	DDESamples int // history samples kept in front of the window
	Frequency  float64
	Format     Format
}

type Buffer struct {
	tracks    [][]int32
	frequency float64
	format    Format
	noSamples int
	dde       int

	offset   int
	fraction float32

	playing   bool
	stopped   bool
	streaming bool

	looping   bool
	loopStart int
	loopEnd   int
	loopCount int
	loopMax   int
}

// New allocates a zeroed buffer. All tracks share one backing array.
func New(cfg Config) (*Buffer, error) {
	if cfg.Tracks < 1 || cfg.Tracks > MaxTracks {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTracks, cfg.Tracks)
	}
	if cfg.Samples < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSamples, cfg.Samples)
	}
	if cfg.DDESamples < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHistory, cfg.DDESamples)
	}
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, cfg.Frequency)
	}

	stride := cfg.DDESamples + cfg.Samples
	backing := make([]int32, cfg.Tracks*stride)
	tracks := make([][]int32, cfg.Tracks)
	for t := range tracks {
		tracks[t] = backing[t*stride : (t+1)*stride : (t+1)*stride]
	}

	return &Buffer{
		tracks:    tracks,
		frequency: cfg.Frequency,
		format:    cfg.Format,
		noSamples: cfg.Samples,
		dde:       cfg.DDESamples,
		stopped:   true,
		loopEnd:   cfg.Samples,
	}, nil
}

// Config returns the geometry the buffer was created with.
func (b *Buffer) Config() Config {
	return Config{
		Tracks:     len(b.tracks),
		Samples:    b.noSamples,
		DDESamples: b.dde,
		Frequency:  b.frequency,
		Format:     b.format,
	}
}

func (b *Buffer) Tracks() int         { return len(b.tracks) }
func (b *Buffer) Samples() int        { return b.noSamples }
func (b *Buffer) DDESamples() int     { return b.dde }
func (b *Buffer) Frequency() float64  { return b.frequency }
func (b *Buffer) Format() Format      { return b.format }
func (b *Buffer) SetFormat(f Format)  { b.format = f }
func (b *Buffer) SetFrequency(f float64) {
	if f > 0 {
		b.frequency = f
	}
}

// Duration is the playing time of the active window.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(b.noSamples) * float64(time.Second) / b.frequency)
}

// Track returns the active window of track t.
func (b *Buffer) Track(t int) []int32 {
	return b.tracks[t][b.dde:]
}

// History returns track t including its history prefix. The active window
// starts at index DDESamples().
func (b *Buffer) History(t int) []int32 {
	return b.tracks[t]
}

// WriteAt copies samples into the window of track t starting at offset and
// returns how many were written.
func (b *Buffer) WriteAt(t, offset int, samples []int32) int {
	if offset < 0 || offset >= b.noSamples {
		return 0
	}

	return copy(b.tracks[t][b.dde+offset:], samples)
}

// Offset is the integer playback position inside the window.
func (b *Buffer) Offset() int { return b.offset }

// Fraction is the sub-sample playback position in [0,1).
func (b *Buffer) Fraction() float32 { return b.fraction }

func (b *Buffer) SetOffset(offset int) error {
	if offset < 0 || offset > b.noSamples {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrOffsetOutOfRange, offset, b.noSamples)
	}
	b.offset = offset
	b.fraction = 0

	return nil
}

// SetPosition stores a continuation position as reported by the resampler.
func (b *Buffer) SetPosition(offset int, fraction float32) {
	b.offset = min(max(offset, 0), b.noSamples)
	b.fraction = fraction
}

func (b *Buffer) Start() {
	b.playing = true
	b.stopped = false
}

func (b *Buffer) Stop() {
	b.playing = false
	b.stopped = true
}

// Rewind resets the playback position and the loop counter.
func (b *Buffer) Rewind() {
	b.offset = 0
	b.fraction = 0
	b.loopCount = 0
}

func (b *Buffer) IsPlaying() bool { return b.playing }
func (b *Buffer) IsStopped() bool { return b.stopped }

// SetStreaming marks the buffer as fed by a producer. Streaming buffers wrap
// around their whole window and never report exhaustion.
func (b *Buffer) SetStreaming(on bool) { b.streaming = on }
func (b *Buffer) IsStreaming() bool    { return b.streaming }

// SetLoop enables looping between start (inclusive) and end (exclusive).
func (b *Buffer) SetLoop(start, end int) error {
	if start < 0 || start >= end || end > b.noSamples {
		return fmt.Errorf("%w: [%d,%d) of %d", ErrInvalidLoop, start, end, b.noSamples)
	}
	b.loopStart = start
	b.loopEnd = end
	b.looping = true

	return nil
}

// SetLooping toggles looping over the current loop bounds (the whole window
// unless SetLoop was called).
func (b *Buffer) SetLooping(on bool) { b.looping = on }

// SetLoopCount limits looping to max passes; 0 loops forever.
func (b *Buffer) SetLoopCount(max int) {
	b.loopMax = max
	b.loopCount = 0
}

func (b *Buffer) IsLooping() bool { return b.looping }
func (b *Buffer) LoopCount() int  { return b.loopCount }

// Loop returns the loop bounds.
func (b *Buffer) Loop() (start, end int) { return b.loopStart, b.loopEnd }

func (b *Buffer) wrap() (start, end int, ok bool) {
	switch {
	case b.looping:
		return b.loopStart, b.loopEnd, true
	case b.streaming:
		return 0, b.noSamples, true
	default:
		return 0, 0, false
	}
}

// Advance moves the playback position forward by n source samples, honouring
// loop bounds and the loop counter. It reports true once a non-looping,
// non-streaming buffer has run out of samples.
func (b *Buffer) Advance(n int) bool {
	b.offset += n
	for {
		start, end, ok := b.wrap()
		if !ok || b.offset < end {
			break
		}
		b.offset -= end - start
		if b.looping {
			b.loopCount++
			if b.loopMax > 0 && b.loopCount >= b.loopMax {
				b.looping = false
			}
		}
	}

	if b.offset >= b.noSamples {
		b.offset = b.noSamples
		return true
	}

	return false
}

// Fetch fills dst with track t samples starting at the virtual position pos.
// Negative positions read the history prefix and zeros before it; positions
// past the end wrap inside the loop bounds or read as silence.
func (b *Buffer) Fetch(dst []int32, t, pos int) {
	data := b.tracks[t]
	start, end, wraps := b.wrap()
	if !wraps {
		end = b.noSamples
	}

	for i := 0; i < len(dst); {
		p := pos + i
		switch {
		case p < -b.dde:
			n := min(len(dst)-i, -b.dde-p)
			clear(dst[i : i+n])
			i += n
		case p < end:
			i += copy(dst[i:], data[b.dde+p:b.dde+end])
		case wraps:
			p = start + (p-start)%(end-start)
			i += copy(dst[i:], data[b.dde+p:b.dde+end])
		default:
			clear(dst[i:])
			return
		}
	}
}

// Rotate copies the last DDESamples() of every window into the history
// prefix.
func (b *Buffer) Rotate() {
	if b.dde == 0 {
		return
	}
	for _, data := range b.tracks {
		copy(data[:b.dde], data[b.noSamples:])
	}
}

// Clear zeroes all tracks, history included.
func (b *Buffer) Clear() {
	for _, data := range b.tracks {
		batch.Clear(data)
	}
}

// ClearWindow zeroes the active windows and keeps the history.
func (b *Buffer) ClearWindow() {
	for _, data := range b.tracks {
		batch.Clear(data[b.dde:])
	}
}

// Duplicate returns a zeroed buffer with the same geometry and metadata.
func (b *Buffer) Duplicate() *Buffer {
	d, _ := New(b.Config())

	return d
}

// Add accumulates the active windows of src into b.
func (b *Buffer) Add(src *Buffer) error {
	if src.Tracks() != b.Tracks() || src.noSamples != b.noSamples {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrGeometryMismatch,
			src.Tracks(), src.noSamples, b.Tracks(), b.noSamples)
	}
	for t := range b.tracks {
		batch.Add(b.Track(t), src.Track(t))
	}

	return nil
}
