// SPDX-License-Identifier: EPL-2.0

// Package audio connects decoded PCM streams to the mixing engine.
//
// # Source Interface
//
// Every decoder under formats/ yields a Source of interleaved float32
// samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF once the stream is finished; n may be non-zero
// on the same call.
//
// # Format Registry
//
// Decoders are registered by file extension:
//
//	registry := audio.NewRegistry()
//	formats.RegisterAll(registry)
//	src, err := registry.Open("loop.ogg")
//
// # Loading
//
// LoadBuffer drains a Source into a ringbuffer.Buffer, converting samples
// to the 24-bit mixing format and reserving history samples in front of
// each track for spatial delay taps:
//
//	buf, err := audio.LoadBuffer(src, setup.DDESamples())
//
// Positional (3D) emitters must be mono. LoadMono folds a multichannel
// source through MonoMixer before loading it.
//
// # Synthetic Sources
//
// ToneSource produces a sine wave, which scenes use when no file is given.
package audio
