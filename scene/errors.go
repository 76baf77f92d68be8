// SPDX-License-Identifier: EPL-2.0

package scene

import "errors"

var (
	ErrScript        = errors.New("scene script failed")
	ErrField         = errors.New("invalid scene field")
	ErrNoSource      = errors.New("emitter needs a file or a tone")
	ErrTracks        = errors.New("no speaker layout for track count")
	ErrNoEmitters    = errors.New("scene has no emitters")
	ErrInvalidRate   = errors.New("frequency must be positive")
	ErrInvalidLength = errors.New("duration must not be negative")
)
