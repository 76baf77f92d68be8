// SPDX-License-Identifier: EPL-2.0

package ringbuffer

import "fmt"

// Arena is a fixed set of identically shaped buffers allocated up front.
type Arena struct {
	bufs []*Buffer
}

// NewArena allocates n buffers with geometry cfg.
func NewArena(n int, cfg Config) (*Arena, error) {
	if n < 1 {
		return nil, ErrEmptyArena
	}

	a := &Arena{bufs: make([]*Buffer, n)}
	for i := range a.bufs {
		b, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("arena buffer %d: %w", i, err)
		}
		a.bufs[i] = b
	}

	return a, nil
}

// Len is the number of buffers in the arena.
func (a *Arena) Len() int { return len(a.bufs) }

// Get returns buffer i. It panics when i is out of range.
func (a *Arena) Get(i int) *Buffer {
	if i < 0 || i >= len(a.bufs) {
		panic(fmt.Sprintf("ringbuffer: arena index %d out of range [0,%d)", i, len(a.bufs)))
	}

	return a.bufs[i]
}

// ClearAll zeroes the windows of every buffer.
func (a *Arena) ClearAll() {
	for _, b := range a.bufs {
		b.ClearWindow()
	}
}
