// SPDX-License-Identifier: EPL-2.0

package render

import "errors"

var (
	// ErrRendererDisabled is returned by every Process call after a fatal
	// cycle.
	ErrRendererDisabled = errors.New("renderer disabled")
	ErrNotSetup         = errors.New("renderer has no destination")
	ErrPoolClosed       = errors.New("thread pool closed")
	ErrAlreadySetup     = errors.New("thread pool already set up")
	ErrUnknownKind      = errors.New("unknown renderer kind")
)
