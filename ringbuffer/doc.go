// SPDX-License-Identifier: EPL-2.0

// Package ringbuffer provides the multi-track sample store used for voice
// sources, per-voice resampling scratch space and the final mix destination.
//
// A Buffer holds one []int32 per track. Every track is laid out as
//
//	[ dde history | active window (Samples()) ]
//
// where the history prefix lets delay taps and interpolation kernels read
// "into the past" of the active window without bounds checks. Rotate moves
// the tail of the window into the history region so the next block sees the
// previous block as its past.
//
// Playback state (offset, playing/stopped/streaming flags and loop bounds)
// travels with the Buffer. A Buffer is not safe for concurrent mutation; the
// render scheduler guarantees a single writer per buffer at a time.
//
// # Arena
//
// Arena allocates a fixed number of identically shaped buffers once, at
// session setup. Workers address their scratch buffer by index. Get panics on
// an out-of-range index.
package ringbuffer
