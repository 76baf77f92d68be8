// SPDX-License-Identifier: EPL-2.0

package envelope

import "errors"

var (
	ErrInvalidRange     = errors.New("lfo min must not exceed max")
	ErrInvalidBlockRate = errors.New("block rate must be positive")
	ErrUnknownShape     = errors.New("unknown lfo shape")
	ErrInvalidStages    = errors.New("envelope needs between 1 and MaxStages breakpoints")
	ErrNegativeTime     = errors.New("envelope stage time must not be negative")
)
