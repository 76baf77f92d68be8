// SPDX-License-Identifier: EPL-2.0

// Package batch implements the primitive array operations the mixer is built
// on: sample width conversion, linearly ramped multiply-accumulate, block
// level detection, the four resampling kernels and the 2-tap distance filter.
//
// Every function here is the scalar reference for its numeric contract. A
// vectorized implementation may replace any of them as long as results stay
// within the truncation behaviour documented on each function; the mixer
// never depends on vector width.
//
// # Sample Format
//
// Mixing samples are signed 24-bit values carried in int32 (see
// utils.MixMax). Accumulation into a destination does not clip; clipping is
// applied when converting back to 16-bit PCM or float.
//
// # Resampling Contract
//
// The Resample* functions fill every element of dst. src[0] is the sample at
// the current integer source position (for ResampleCubic src[0] is the sample
// one before it). smu is the fractional position in [0,1) and fact is the
// source-to-destination step. Each returns how many source samples were
// consumed and the fractional position to continue from. The caller must
// provide enough source samples; the kernels do not check.
package batch
