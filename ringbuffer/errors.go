// SPDX-License-Identifier: EPL-2.0

package ringbuffer

import "errors"

var (
	ErrInvalidTracks    = errors.New("track count must be between 1 and MaxTracks")
	ErrInvalidSamples   = errors.New("sample count must be positive")
	ErrInvalidHistory   = errors.New("history samples must not be negative")
	ErrInvalidFrequency = errors.New("frequency must be positive")
	ErrOffsetOutOfRange = errors.New("offset outside of buffer")
	ErrInvalidLoop      = errors.New("loop bounds must satisfy 0 <= start < end <= samples")
	ErrGeometryMismatch = errors.New("buffers differ in track or sample count")
	ErrEmptyArena       = errors.New("arena must hold at least one buffer")
	ErrMissingFormat    = errors.New("int buffer has no format")
)
