// SPDX-License-Identifier: EPL-2.0

// Package envelope produces the time-varying scalars the mixer multiplies
// into a voice's pitch and gain: periodic LFOs (tremolo, vibrato),
// level-following generators (auto-gain, compressor, noise gate) and timed
// break-point envelopes (ADSR and friends).
//
// Generators advance once per mix block. Rates given in Hz or seconds are
// converted to per-block steps by Init, which takes the mixer's block rate
// (blocks per second).
//
// The sine shape uses a parabolic approximation rather than math.Sin; its
// output is smooth and bounded but not a pure sinusoid.
package envelope
