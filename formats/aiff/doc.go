// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Big-endian signed PCM at 8, 16, 24 and 32 bits is supported:
//
//	src, err := aiff.Decoder{}.Decode(f)
//
// The decoder needs an io.ReadSeeker; other readers are buffered into
// memory.
package aiff
