// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("no decoder registered for extension")
	ErrEmptySource    = errors.New("source produced no samples")
	ErrInvalidSource  = errors.New("source reports invalid rate or channel count")
	ErrInvalidTone    = errors.New("tone needs positive rate, channels and duration")
)
