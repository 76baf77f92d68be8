// SPDX-License-Identifier: EPL-2.0

// Package mixer combines resampled voices into a destination buffer.
//
// Every destination track gets a linear gain ramp per block, starting where
// the previous block of the same voice ended, so gain changes never click.
// Ramps whose ends are both below the audibility floor are skipped. In the
// spatial modes the voice is additionally mixed through three delay taps,
// one per axis, which model the interaural time difference; the delays read
// the history kept in front of the voice's scratch buffer.
//
// A Mixer owns resampling scratch and is not safe for concurrent use; give
// each worker its own.
package mixer
