// SPDX-License-Identifier: EPL-2.0

// Package wavfile is an AudioBackend that renders to a WAV file through the
// go-audio/wav encoder. It can also capture from a decoded input source, so
// a file can be fed through the engine offline.
package wavfile
