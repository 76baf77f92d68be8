// SPDX-License-Identifier: EPL-2.0

// Package device plays mixed blocks on the system sound device through
// github.com/ebitengine/oto/v3.
//
// oto pulls audio through an io.Reader. Playback appends 16-bit PCM to a
// bounded queue and blocks while the queue is full, which paces the
// renderer to real time. Underruns are filled with silence.
package device
