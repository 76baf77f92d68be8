// SPDX-License-Identifier: EPL-2.0

// Package distance holds the physical models used for positional audio:
// distance attenuation, Doppler pitch shift, propagation delay and the
// distance-dependent low-pass cutoff.
//
// Every function is pure and safe for concurrent use. Distances and
// velocities are floored at Epsilon before any division so the results are
// always finite.
package distance
