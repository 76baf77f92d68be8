// SPDX-License-Identifier: EPL-2.0

// Package render schedules a mixing cycle: 3D emitters, then stereo
// emitters, then per-track frame processing, then convolution.
//
// Two renderers implement the same contract. Monolithic runs the mixing
// phases on the calling goroutine. ThreadPool keeps a fixed set of
// workers, each mixing its share of the emitters into a private copy of the
// destination and merging it back once per phase under a single mutex.
// Because mixing accumulates integers, both produce identical output.
//
//	r, err := render.New(render.Config{}, dst, mixer.DefaultSetup(mixer.ModeStereo, 48000))
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	res, err := r.Process(ctx, &render.Cycle{Stereo: voices})
package render
