// SPDX-License-Identifier: EPL-2.0

// Package voice holds the per-emitter state the mixer works on: the source
// buffer, the resampled scratch, positional properties and modulators, and
// the listener those properties are computed against.
//
// A Voice is owned by whoever mixes it. The only methods safe to call
// concurrently with mixing are Play, Stop and State.
package voice
