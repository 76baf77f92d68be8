// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III files with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so every Source from this package
// has two channels regardless of the file's mode. Positional emitters fold
// it to mono with audio.LoadMono.
//
//	src, err := mp3.Decoder{}.Decode(f)
package mp3
