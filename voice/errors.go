// SPDX-License-Identifier: EPL-2.0

package voice

import "errors"

var (
	ErrNoBuffer = errors.New("voice has no source buffer")
	ErrNotMono  = errors.New("3D voices need a single track source")
)
