// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrNoSpeakers        = errors.New("mixer needs at least one speaker")
	ErrTooManySpeakers   = errors.New("more speakers than the maximum number of tracks")
	ErrInvalidRoute      = errors.New("routing entry outside the destination tracks")
	ErrInvalidFrequency  = errors.New("mixer frequency must be positive")
	ErrInvalidLevelFloor = errors.New("level floor must not be negative")
	ErrInvalidPitchRange = errors.New("pitch range must be positive and ordered")
	ErrUnknownMode       = errors.New("unknown mixing mode")
	ErrBlockMismatch     = errors.New("scratch and destination block sizes differ")
)
