// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"sync"

	"github.com/ik5/audmix/utils"
)

// queue is the pull buffer between Playback and the oto player.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	limit  int
	closed bool

	underruns int
}

func newQueue(limit int) *queue {
	q := &queue{limit: limit}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Read implements io.Reader for oto. It never blocks.
func (q *queue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(p, q.data)
	q.data = q.data[:copy(q.data, q.data[n:])]
	if n < len(p) {
		clear(p[n:])
		if !q.closed {
			q.underruns++
		}
	}
	q.cond.Broadcast()
	return len(p), nil
}

// push appends samples as signed 16-bit little endian, waiting while the
// queue is above its limit. It returns the bytes queued afterwards.
func (q *queue) push(samples []int32) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.data) >= q.limit && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return 0, false
	}

	for _, s := range samples {
		q.data = binary.LittleEndian.AppendUint16(q.data, uint16(utils.MixToInt16(s)))
	}
	return len(q.data), true
}

func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *queue) stats() (queued, underruns int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.data), q.underruns
}
