// SPDX-License-Identifier: EPL-2.0

package session

import "errors"

var (
	ErrUnknownVoice    = errors.New("no voice with that id")
	ErrDuplicateVoice  = errors.New("voice already added")
	ErrNot3D           = errors.New("voice has no positional properties")
	ErrBackendMismatch = errors.New("backend does not match the mixer setup")
	ErrInvalidBlock    = errors.New("block size must be positive")
	ErrClosed          = errors.New("session is closed")
	ErrUnknownTarget   = errors.New("unknown modulation target")
)
