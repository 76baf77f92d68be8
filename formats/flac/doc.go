// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams with github.com/mewkiz/flac.
//
// Frames are decoded one at a time and interleaved on demand, so large
// files are never held twice in memory. Any bit depth between 4 and 32 is
// normalized to [-1, 1].
package flac
