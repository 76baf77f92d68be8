// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Vorbis decodes to float natively, so samples reach the ring buffer
// without an integer round trip:
//
//	src, err := vorbis.Decoder{}.Decode(f)
//	buf, err := audio.LoadBuffer(src, dde)
package vorbis
