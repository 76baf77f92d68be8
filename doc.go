// SPDX-License-Identifier: EPL-2.0

// Package audmix is a real-time software mixer for game and simulation
// audio.
//
// Voices play sample buffers at any pitch and gain, optionally positioned
// in 3D around a listener with distance attenuation, Doppler shift and
// HRTF style delays. Every render cycle mixes one block of all voices into
// a destination buffer that an output backend plays.
//
// # Packages
//
//   - batch: vectorizable sample kernels (gain ramps, resampling, filters)
//   - ringbuffer: multi-track sample buffers with history and looping
//   - resample: pitch dependent interpolation over ring buffers
//   - envelope: break-point envelopes and LFOs
//   - distance: attenuation models and Doppler
//   - voice, mixer: voice state and the 1:N and M:N mixing paths
//   - render: monolithic and thread-pool schedulers
//   - session: voices, listener and backend tied into a render loop
//   - backend: null, WAV file and sound card outputs
//   - audio, formats: decoding wav, mp3, ogg, aiff and flac sources
//   - scene: Lua described mixes
//
// # Quick Start
//
//	reg := formats.NewRegistry()
//	src, _ := reg.Open("shot.wav")
//	buf, _ := audio.LoadMono(src, 0)
//
//	s, _ := session.New(session.Config{
//	    Setup: mixer.DefaultSetup(mixer.ModeSpatial, 48000),
//	})
//	v, _ := voice.New3D(buf, voice.Vec3{2, 0, -5})
//	id, _ := s.AddVoice(v)
//	_ = s.Play(id)
//	_ = s.Run(ctx, 0)
//
// For one-shot conversions ResampleToMono16 runs a source through a mono
// session and returns 16-bit PCM.
package audmix
