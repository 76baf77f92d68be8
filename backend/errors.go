// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	ErrClosed        = errors.New("backend is closed")
	ErrTrackMismatch = errors.New("buffer track count differs from backend")
	ErrInvalidPitch  = errors.New("playback pitch must be positive")
	ErrCaptureRange  = errors.New("capture range exceeds scratch buffer")
)
