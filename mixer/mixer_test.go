// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/ringbuffer"
	"github.com/ik5/audmix/voice"
)

func newBuf(t testing.TB, tracks, samples, dde int) *ringbuffer.Buffer {
	t.Helper()

	b, err := ringbuffer.New(ringbuffer.Config{
		Tracks:     tracks,
		Samples:    samples,
		DDESamples: dde,
		Frequency:  48000,
		Format:     ringbuffer.FormatPCM24,
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func fill(b *ringbuffer.Buffer, t int, v int32) {
	s := b.Track(t)
	for i := range s {
		s[i] = v
	}
}

func newMixer(t testing.TB, s Setup) *Mixer {
	t.Helper()

	m, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// A mono voice panned hard left fades in linearly on the left track and
// leaves the right track silent.
func TestMix1N_HardLeftFadeIn(t *testing.T) {
	t.Parallel()

	const n = 1024
	m := newMixer(t, DefaultSetup(ModeStereo, 48000))
	dst := newBuf(t, 2, n, 0)
	src := newBuf(t, 1, n, 0)
	fill(src, 0, 1<<20)

	v := voice.New(nil)
	v.SetPan(-0.5)
	if v.Factor[0] != 1 || v.Factor[1] != 0 {
		t.Fatalf("pan factors = %v/%v", v.Factor[0], v.Factor[1])
	}

	st := m.Mix1N(dst, MixParams{Src: src, Svol: 0, Evol: 1}, &v.Props2D, 0)
	if st != StatusMixed {
		t.Fatalf("Mix1N() = %v, want mixed", st)
	}

	left, right := dst.Track(0), dst.Track(1)
	for i := range n {
		if want := int32(1024 * i); left[i] != want {
			t.Fatalf("left[%d] = %d, want %d", i, left[i], want)
		}
		if right[i] != 0 {
			t.Fatalf("right[%d] = %d, want 0", i, right[i])
		}
	}
	if v.PrevGain[0] != 1 || v.PrevGain[1] != 0 || !v.Primed {
		t.Errorf("PrevGain = %v, primed %v", v.PrevGain[:2], v.Primed)
	}
}

func TestMix1N_RampContinuity(t *testing.T) {
	t.Parallel()

	const n, amp = 256, 1 << 22
	m := newMixer(t, DefaultSetup(ModeMono, 48000))
	dst := newBuf(t, 1, n, 0)
	src := newBuf(t, 1, n, 0)
	fill(src, 0, amp)

	v := voice.New(nil)
	gains := []float32{0.2, 0.9, 0.1, 0.1, 1, 0}

	// The boundary jump equals one step of the previous ramp, plus float
	// accumulation error over the block.
	var prev int32
	for b, g := range gains {
		dst.Clear()
		v.FinalGain = g
		m.Mix1N(dst, MixParams{Src: src, Svol: 0, Evol: 1}, &v.Props2D, 0)
		if v.PrevGain[0] != g {
			t.Fatalf("block %d: PrevGain = %v, want %v", b, v.PrevGain[0], g)
		}

		out := dst.Track(0)
		if b > 0 {
			var before float32
			if b > 1 {
				before = gains[b-2]
			}
			step := math.Abs(float64(gains[b-1]-before)) / n * amp
			if d := math.Abs(float64(out[0] - prev)); d > step*1.01+amp*1e-4 {
				t.Errorf("block %d: jump %v at the boundary, ramp step %v", b, d, step)
			}
		}
		prev = out[n-1]
	}
}

func TestMix1N_LevelFloor(t *testing.T) {
	t.Parallel()

	m := newMixer(t, DefaultSetup(ModeMono, 48000))
	dst := newBuf(t, 1, 64, 0)
	src := newBuf(t, 1, 64, 0)
	fill(src, 0, 1<<20)

	v := voice.New(nil)
	v.FinalGain = 1e-9
	if st := m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0); st != StatusSilent {
		t.Errorf("inaudible Mix1N() = %v, want silent", st)
	}
	if v.PrevGain[0] != 1e-9 {
		t.Errorf("PrevGain after skip = %v, want 1e-9", v.PrevGain[0])
	}
	for i, s := range dst.Track(0) {
		if s != 0 {
			t.Fatalf("dst[%d] = %d after a skipped mix", i, s)
		}
	}

	// Ramping up from below the floor is audible.
	v.FinalGain = 1
	if st := m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0); st != StatusMixed {
		t.Errorf("ramp-up Mix1N() = %v, want mixed", st)
	}
}

func TestMixMN_SourceTrackModulo(t *testing.T) {
	t.Parallel()

	s := DefaultSetup(ModeStereo, 48000)
	s.Speakers = QuadSpeakers()
	m := newMixer(t, s)

	dst := newBuf(t, 4, 32, 0)
	src := newBuf(t, 2, 32, 0)
	fill(src, 0, 1000)
	fill(src, 1, -2000)

	v := voice.New(nil)
	if st := m.MixMN(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D); st != StatusMixed {
		t.Fatalf("MixMN() = %v", st)
	}
	want := []int32{1000, -2000, 1000, -2000}
	for tr, w := range want {
		if got := dst.Track(tr)[7]; got != w {
			t.Errorf("track %d = %d, want %d", tr, got, w)
		}
	}
}

func TestMix1N_Routing(t *testing.T) {
	t.Parallel()

	s := DefaultSetup(ModeStereo, 48000)
	s.Routing = []int{1, 0}
	m := newMixer(t, s)

	dst := newBuf(t, 2, 16, 0)
	src := newBuf(t, 1, 16, 0)
	fill(src, 0, 500)

	v := voice.New(nil)
	v.SetPan(-0.5)
	m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0)

	if dst.Track(0)[0] != 0 || dst.Track(1)[0] != 500 {
		t.Errorf("routed left = %d/%d, want 0/500", dst.Track(0)[0], dst.Track(1)[0])
	}
}

func TestMix1N_DelayTaps(t *testing.T) {
	t.Parallel()

	const n, dde = 32, 8
	m := newMixer(t, DefaultSetup(ModeHRTF, 48000))
	dst := newBuf(t, 2, n, 0)
	src := newBuf(t, 1, n, dde)
	src.Track(0)[4] = 1000

	v := voice.New(nil)
	v.Spatial = true
	v.AxisWeight = [3]float32{1, 0, 0}
	v.HRTFDelay[0][0] = 5
	v.HRTFDelay[1][0] = -3

	m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0)

	for i, s := range dst.Track(0) {
		want := int32(0)
		if i == 9 {
			want = 1000
		}
		if s != want {
			t.Errorf("left[%d] = %d, want %d", i, s, want)
		}
	}
	for i, s := range dst.Track(1) {
		want := int32(0)
		if i == 1 {
			want = 1000
		}
		if s != want {
			t.Errorf("right[%d] = %d, want %d", i, s, want)
		}
	}

	// Taps are clamped to the history.
	dst.Clear()
	v.HRTFDelay[0][0] = 1000
	src.History(0)[0] = 77
	m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0)
	if got := dst.Track(0)[0]; got != 77 {
		t.Errorf("clamped tap read %d, want 77", got)
	}
}

func TestPrepare3D(t *testing.T) {
	t.Parallel()

	buf := newBuf(t, 1, 64, 0)
	l := voice.NewListener()

	t.Run("stereo panning", func(t *testing.T) {
		t.Parallel()

		m := newMixer(t, DefaultSetup(ModeStereo, 48000))
		v, err := voice.New3D(buf.Duplicate(), voice.Vec3{1, 0, 0})
		if err != nil {
			t.Fatal(err)
		}
		m.Prepare3D(v, l)

		p3 := v.Props3D
		if p3.Dist != 1 || p3.Dir != (voice.Vec3{1, 0, 0}) || p3.DistGain != 1 || p3.Doppler != 1 {
			t.Errorf("props = %+v", p3)
		}
		if v.Factor[0] != 0 || v.Factor[1] != 1 {
			t.Errorf("factors = %v/%v, want 0/1", v.Factor[0], v.Factor[1])
		}
	})

	t.Run("hrtf delays", func(t *testing.T) {
		t.Parallel()

		m := newMixer(t, DefaultSetup(ModeHRTF, 48000))
		v, err := voice.New3D(buf.Duplicate(), voice.Vec3{2, 0, 0})
		if err != nil {
			t.Fatal(err)
		}
		m.Prepare3D(v, l)

		if got := v.HRTFDelay[0][0]; math.Abs(float64(got)-27.84) > 0.01 {
			t.Errorf("far ear delay = %v, want 27.84", got)
		}
		if got := v.HRTFDelay[1][0]; got != 0 {
			t.Errorf("near ear delay = %v, want 0", got)
		}
		if v.AxisWeight != [3]float32{1, 0, 0} {
			t.Errorf("axis weights = %v", v.AxisWeight)
		}
		if v.Factor[0] != 0.5 || v.Factor[1] != 1 {
			t.Errorf("head shadow = %v/%v, want 0.5/1", v.Factor[0], v.Factor[1])
		}
		if int(v.HRTFDelay[0][0]) > m.DDESamples() {
			t.Errorf("delay %v exceeds history %d", v.HRTFDelay[0][0], m.DDESamples())
		}
	})

	t.Run("doppler", func(t *testing.T) {
		t.Parallel()

		m := newMixer(t, DefaultSetup(ModeStereo, 48000))
		v, err := voice.New3D(buf.Duplicate(), voice.Vec3{0, 0, -10})
		if err != nil {
			t.Fatal(err)
		}
		v.Props3D.Velocity = voice.Vec3{0, 0, 20} // towards the listener
		m.Prepare3D(v, l)
		if v.Props3D.Doppler <= 1 {
			t.Errorf("approaching doppler = %v, want > 1", v.Props3D.Doppler)
		}
		if v.Props3D.FilterK >= 1 {
			t.Errorf("filter coefficient at 10m = %v, want < 1", v.Props3D.FilterK)
		}
	})

	t.Run("surround lfe", func(t *testing.T) {
		t.Parallel()

		m := newMixer(t, DefaultSetup(ModeSurround, 48000))
		v, err := voice.New3D(buf.Duplicate(), voice.Vec3{-5, 0, 0})
		if err != nil {
			t.Fatal(err)
		}
		m.Prepare3D(v, l)
		if v.Factor[3] != 0.5 {
			t.Errorf("lfe factor = %v, want 0.5", v.Factor[3])
		}
		if v.Factor[0] <= v.Factor[1] {
			t.Errorf("left voice: FL %v, FR %v", v.Factor[0], v.Factor[1])
		}
	})
}

func TestMixVoice_PlaysAndExhausts(t *testing.T) {
	t.Parallel()

	m := newMixer(t, DefaultSetup(ModeMono, 48000))
	dst := newBuf(t, 1, 64, 0)
	buf := newBuf(t, 1, 100, 0)
	for i := range buf.Track(0) {
		buf.Track(0)[i] = int32(i + 1)
	}

	v := voice.New(buf)
	if st, _ := m.MixVoice(dst, v, nil); st != StatusSilent {
		t.Fatalf("unplayed voice = %v, want silent", st)
	}

	v.Play()
	st, reason := m.MixVoice(dst, v, nil)
	if st != StatusMixed || reason != voice.ReasonNone {
		t.Fatalf("first block = %v/%v", st, reason)
	}
	for i, s := range dst.Track(0) {
		if s != int32(i+1) {
			t.Fatalf("dst[%d] = %d, want %d", i, s, i+1)
		}
	}

	dst.Clear()
	st, reason = m.MixVoice(dst, v, nil)
	if st != StatusRetire || reason != voice.ReasonExhausted {
		t.Fatalf("second block = %v/%v, want retire/exhausted", st, reason)
	}
	out := dst.Track(0)
	if out[0] != 65 || out[35] != 100 || out[36] != 0 {
		t.Errorf("tail block = %d %d %d", out[0], out[35], out[36])
	}
}

func TestMixVoice_Stop(t *testing.T) {
	t.Parallel()

	m := newMixer(t, DefaultSetup(ModeStereo, 48000))
	dst := newBuf(t, 2, 64, 0)

	flat := voice.New(newBuf(t, 1, 4096, 0))
	flat.Play()
	flat.Stop()
	if st, r := m.MixVoice(dst, flat, nil); st != StatusRetire || r != voice.ReasonStopped {
		t.Errorf("stopped 2D voice = %v/%v", st, r)
	}

	// Once heard, a stopped voice ramps down over one more block.
	src := newBuf(t, 1, 4096, 0)
	fill(src, 0, 1<<16)
	played := voice.New(src)
	played.Play()
	if st, _ := m.MixVoice(dst, played, nil); st != StatusMixed {
		t.Fatalf("first block = %v, want mixed", st)
	}
	dst.Clear()
	played.Stop()
	if st, r := m.MixVoice(dst, played, nil); st != StatusRetire || r != voice.ReasonStopped {
		t.Errorf("fading 2D voice = %v/%v, want retire/stopped", st, r)
	}
	left := dst.Track(0)
	if left[0] != 1<<16 {
		t.Errorf("fade starts at %d, want %d", left[0], 1<<16)
	}
	if last := left[len(left)-1]; last <= 0 || last > 1<<16/32 {
		t.Errorf("fade ends at %d, want one ramp step above silence", last)
	}
	for i := 1; i < len(left); i++ {
		if left[i] > left[i-1] {
			t.Fatalf("fade rises at %d: %d > %d", i, left[i], left[i-1])
		}
	}

	// 3.433m is 10ms of flight: about 7.5 blocks of 64 samples.
	v, err := voice.New3D(newBuf(t, 1, 1<<16, 0), voice.Vec3{0, 0, -3.433})
	if err != nil {
		t.Fatal(err)
	}
	v.Play()
	v.Stop()
	blocks := 0
	for {
		st, r := m.MixVoice(dst, v, nil)
		if st == StatusRetire {
			if r != voice.ReasonStopped {
				t.Fatalf("retired with %v", r)
			}
			break
		}
		blocks++
		if blocks > 20 {
			t.Fatal("stopped 3D voice never retired")
		}
	}
	if blocks < 6 || blocks > 8 {
		t.Errorf("drained for %d blocks, want 7", blocks)
	}
}

func TestMixVoice_EnvelopeTerminated(t *testing.T) {
	t.Parallel()

	m := newMixer(t, DefaultSetup(ModeMono, 48000))
	dst := newBuf(t, 1, 64, 0)

	v := voice.New(newBuf(t, 1, 4096, 0))
	v.VolumeEnvelope = &envelope.Timed{Points: []envelope.Breakpoint{
		{Level: 1, Time: 0.001},
		{Level: 0.5, Time: 0},
		{Level: 0, Time: 0.1},
	}}
	if err := v.VolumeEnvelope.Init(48000.0 / 64); err != nil {
		t.Fatal(err)
	}
	v.Play()

	if st, _ := m.MixVoice(dst, v, nil); st == StatusRetire {
		t.Fatal("retired on the first block")
	}
	if st, r := m.MixVoice(dst, v, nil); st != StatusRetire || r != voice.ReasonEnvelopeTerminated {
		t.Errorf("second block = %v/%v, want retire/envelope-terminated", st, r)
	}
}

// Stereo voices carry no positional data and are mixed straight onto the
// speakers in every mode.
func TestMixVoice_StereoInSpatialModes(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeStereo, ModeSpatial, ModeHRTF, ModeSpatialSurround} {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			s := DefaultSetup(mode, 48000)
			m := newMixer(t, s)
			dst := newBuf(t, s.Tracks(), 64, 0)
			src := newBuf(t, 2, 4096, 0)
			fill(src, 0, 10000)
			fill(src, 1, 10000)

			v := voice.New(src)
			v.Play()
			if st, _ := m.MixVoice(dst, v, nil); st != StatusMixed {
				t.Fatalf("MixVoice() = %v, want mixed", st)
			}
			for tr := range s.Tracks() {
				if s.Speakers[tr].LFE {
					continue
				}
				if got := dst.Track(s.Route(tr))[10]; got != 10000 {
					t.Errorf("track %d [10] = %d, want 10000", tr, got)
				}
			}
		})
	}
}

func TestSetup_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mod    func(*Setup)
		tracks int
		want   error
	}{
		{"default", func(*Setup) {}, 2, nil},
		{"no speakers", func(s *Setup) { s.Speakers = nil }, 2, ErrNoSpeakers},
		{"too many speakers", func(s *Setup) { s.Speakers = make([]Speaker, 9) }, 0, ErrTooManySpeakers},
		{"bad route", func(s *Setup) { s.Routing = []int{0, 2} }, 2, ErrInvalidRoute},
		{"more speakers than tracks", func(s *Setup) { s.Speakers = QuadSpeakers() }, 2, ErrInvalidRoute},
		{"zero frequency", func(s *Setup) { s.Frequency = 0 }, 2, ErrInvalidFrequency},
		{"negative floor", func(s *Setup) { s.LevelFloor = -1 }, 2, ErrInvalidLevelFloor},
		{"pitch range", func(s *Setup) { s.MaxPitch = 0.001 }, 2, ErrInvalidPitchRange},
		{"mode", func(s *Setup) { s.Mode = 99 }, 2, ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultSetup(ModeStereo, 48000)
			tt.mod(&s)
			err := s.Validate(tt.tracks)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for m := ModeMono; m <= ModeHRTF; m++ {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("ambisonic"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(ambisonic) error = %v", err)
	}
}

func BenchmarkMix1N_Stereo(b *testing.B) {
	m := newMixer(b, DefaultSetup(ModeStereo, 48000))
	dst := newBuf(b, 2, 1024, 0)
	src := newBuf(b, 1, 1024, 0)
	fill(src, 0, 1<<20)
	v := voice.New(nil)

	b.ReportAllocs()
	for b.Loop() {
		m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0)
	}
}

func TestMix1N_NoAllocs(t *testing.T) {
	m := newMixer(t, DefaultSetup(ModeHRTF, 48000))
	dst := newBuf(t, 2, 256, 0)
	src := newBuf(t, 1, 256, m.DDESamples())
	v := voice.New(nil)
	v.AxisWeight = [3]float32{0.5, 0.5, 0}

	allocs := testing.AllocsPerRun(100, func() {
		m.Mix1N(dst, MixParams{Src: src, Svol: 1, Evol: 1}, &v.Props2D, 0)
	})
	if allocs != 0 {
		t.Errorf("Mix1N allocates %v times per call", allocs)
	}
}
