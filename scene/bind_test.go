// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/session"
	"github.com/ik5/audmix/voice"
)

var quiet = log.New(io.Discard, "", 0)

func loadScene(t *testing.T, script string) *Scene {
	t.Helper()

	sc, err := LoadString(context.Background(), script, t.Name())
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	return sc
}

func newSession(t *testing.T, sc *Scene, edit func(*session.Config)) (*session.Session, *backend.Null) {
	t.Helper()

	setup, err := sc.Setup()
	if err != nil {
		t.Fatal(err)
	}
	out := backend.NewNull(setup.Frequency, setup.Tracks())
	cfg, err := sc.SessionConfig(out, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if edit != nil {
		edit(&cfg)
	}
	s, err := session.New(cfg)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, out
}

func TestScene_Setup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mode   mixer.Mode
		freq   float64
		tracks int
		want   int
		err    error
	}{
		{"default stereo", mixer.ModeStereo, 48000, 0, 2, nil},
		{"stereo as 5.1", mixer.ModeStereo, 48000, 6, 6, nil},
		{"spatial as quad", mixer.ModeSpatial, 48000, 4, 4, nil},
		{"mono", mixer.ModeMono, 48000, 1, 1, nil},
		{"no layout", mixer.ModeStereo, 48000, 3, 0, ErrTracks},
		{"hrtf needs two", mixer.ModeHRTF, 48000, 6, 0, ErrTracks},
		{"no rate", mixer.ModeStereo, 0, 0, 0, ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sc := &Scene{Mode: tt.mode, Frequency: tt.freq, Tracks: tt.tracks}
			s, err := sc.Setup()
			if !errors.Is(err, tt.err) {
				t.Fatalf("Setup() error = %v, want %v", err, tt.err)
			}
			if err == nil && (s.Tracks() != tt.want || s.Mode != tt.mode) {
				t.Errorf("Setup() = %d tracks %v, want %d", s.Tracks(), s.Mode, tt.want)
			}
		})
	}
}

func TestTimeline_RunsUntilRetired(t *testing.T) {
	t.Parallel()

	sc := loadScene(t, `
refresh = 50
emitter { tone = 440, tone_seconds = 0.1 }
emitter { tone = 660, tone_seconds = 0.1, start = 0.05 }
`)
	s, out := newSession(t, sc, nil)
	tl, err := Bind(sc, s, formats.NewRegistry())
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if s.Len() != 2 || tl.Cycles() != 0 {
		t.Fatalf("Len() = %d, Cycles() = %d", s.Len(), tl.Cycles())
	}

	calls := 0
	if err := tl.Run(context.Background(), func(cycle, total int) {
		calls++
		if cycle != calls || total != 0 {
			t.Errorf("progress(%d, %d) on call %d", cycle, total, calls)
		}
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !tl.Done() || s.Len() != 0 {
		t.Errorf("Done() = %v, Len() = %d", tl.Done(), s.Len())
	}
	// The second tone starts at block 3 and lasts five blocks.
	if out.Cycles() < 8 || int(out.Cycles()) != calls {
		t.Errorf("backend cycles = %d, progress calls = %d", out.Cycles(), calls)
	}
}

func TestTimeline_Duration(t *testing.T) {
	t.Parallel()

	sc := loadScene(t, `
refresh  = 50
duration = 0.1
emitter { tone = 440, loop = true }
`)
	s, out := newSession(t, sc, nil)
	tl, err := Bind(sc, s, formats.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if tl.Cycles() != 5 {
		t.Fatalf("Cycles() = %d, want 5", tl.Cycles())
	}

	if err := tl.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Cycles() != 5 || s.Len() != 1 {
		t.Errorf("backend cycles = %d, Len() = %d", out.Cycles(), s.Len())
	}
	if out.Frames() != 5*960 {
		t.Errorf("backend frames = %d, want %d", out.Frames(), 5*960)
	}
}

func TestTimeline_StopCue(t *testing.T) {
	t.Parallel()

	sc := loadScene(t, `
refresh = 50
emitter { tone = 440, loop = true, stop = 0.05 }
`)
	var reasons []voice.Reason
	s, out := newSession(t, sc, func(cfg *session.Config) {
		cfg.OnRetire = func(_ uuid.UUID, r voice.Reason) { reasons = append(reasons, r) }
	})
	tl, err := Bind(sc, s, formats.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}

	if err := tl.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Cycles() != 4 {
		t.Errorf("backend cycles = %d, want 4", out.Cycles())
	}
	if len(reasons) != 1 || reasons[0] != voice.ReasonStopped {
		t.Errorf("retired with %v, want [stopped]", reasons)
	}
}

func TestTimeline_MovesEmitters(t *testing.T) {
	t.Parallel()

	sc := loadScene(t, `
refresh  = 50
duration = 0.1
emitter { tone = 440, loop = true, position = {0, 0, -1}, velocity = {10, 0, 0} }
`)
	s, _ := newSession(t, sc, nil)
	tl, err := Bind(sc, s, formats.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if err := tl.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Five blocks of 20 ms at 10 units per second.
	pos := tl.cues[0].pos
	if math.Abs(float64(pos[0])-1) > 1e-4 || pos[2] != -1 {
		t.Errorf("position = %v, want [1 0 -1]", pos)
	}
}

func TestTimeline_Cancelled(t *testing.T) {
	t.Parallel()

	sc := loadScene(t, `emitter { tone = 440, loop = true }`)
	s, _ := newSession(t, sc, nil)
	tl, err := Bind(sc, s, formats.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tl.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func writeWav(t *testing.T, dir string) {
	t.Helper()

	f, err := os.Create(filepath.Join(dir, "click.wav"))
	if err != nil {
		t.Fatal(err)
	}
	data := make([]int, 2*1000)
	for i := range data {
		data[i] = 1000
	}
	enc := wav.NewEncoder(f, 48000, 16, 2, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: 48000},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestBind_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWav(t, dir)

	sc := loadScene(t, `
emitter { file = "click.wav" }
emitter { file = "click.wav", position = {1, 0, 0} }
`)
	sc.Dir = dir
	s, _ := newSession(t, sc, nil)
	if _, err := Bind(sc, s, formats.NewRegistry()); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestBind_MissingFileRetiresVoices(t *testing.T) {
	t.Parallel()

	sc := loadScene(t, `
emitter { tone = 440 }
emitter { name = "gone", file = "missing.wav" }
`)
	sc.Dir = t.TempDir()
	s, _ := newSession(t, sc, nil)

	_, err := Bind(sc, s, formats.NewRegistry())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Bind() error = %v, want ErrNotExist", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after failed Bind", s.Len())
	}
}
