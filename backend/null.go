// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"sync/atomic"

	"github.com/ik5/audmix/ringbuffer"
)

// Null discards playback and captures silence. It counts what passed through
// so tests and dry runs can check progress.
type Null struct {
	frequency float64
	tracks    int

	cycles atomic.Int64
	frames atomic.Int64
	closed atomic.Bool
}

func NewNull(frequency float64, tracks int) *Null {
	return &Null{frequency: frequency, tracks: tracks}
}

func (n *Null) Frequency() float64 { return n.frequency }
func (n *Null) Tracks() int        { return n.tracks }

// Cycles is the number of Playback calls accepted so far.
func (n *Null) Cycles() int64 { return n.cycles.Load() }

// Frames is the number of frames played so far.
func (n *Null) Frames() int64 { return n.frames.Load() }

func (n *Null) Capture(offset, frames int, scratch [][]int32) (int, error) {
	if n.closed.Load() {
		return 0, ErrClosed
	}
	if err := CheckCapture(offset, frames, scratch); err != nil {
		return 0, err
	}
	for _, s := range scratch {
		clear(s[offset : offset+frames])
	}
	return 0, nil
}

func (n *Null) Playback(buf *ringbuffer.Buffer, pitch, _ float32) (int, error) {
	if n.closed.Load() {
		return 0, ErrClosed
	}
	if err := CheckPlayback(n, buf, pitch); err != nil {
		return 0, err
	}
	n.cycles.Add(1)
	n.frames.Add(int64(Frames(buf, pitch)))
	return 0, nil
}

func (n *Null) Close() error {
	n.closed.Store(true)
	return nil
}

var _ AudioBackend = (*Null)(nil)
