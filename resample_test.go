// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/audmix/internal/audiotest"
)

func TestResampleToMono16_Basic(t *testing.T) {
	t.Parallel()

	// One second of stereo audio at 44.1kHz.
	src := audiotest.NewSineSource(44100, 2, 44100, 440.0)

	pcm16, rate, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if rate != 8000 {
		t.Errorf("ResampleToMono16() rate = %d, want 8000", rate)
	}
	if len(pcm16) != 8000 {
		t.Errorf("ResampleToMono16() got %d samples, want 8000", len(pcm16))
	}

	var peak int16
	for _, s := range pcm16 {
		peak = max(peak, s)
	}
	if peak < 30000 {
		t.Errorf("peak = %d, want a full scale sine", peak)
	}
}

func TestResampleToMono16_Constant(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(16000, 1, 16000, 0.5)

	pcm16, _, err := ResampleToMono16(src, 8000, 480)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if len(pcm16) != 8000 {
		t.Fatalf("ResampleToMono16() got %d samples, want 8000", len(pcm16))
	}

	// The edges interpolate against silence.
	for i, s := range pcm16[4 : len(pcm16)-4] {
		if math.Abs(float64(s)-16383) > 64 {
			t.Fatalf("pcm16[%d] = %d, want ≈16383", i+4, s)
		}
	}
}

func TestResampleToMono16_Silence(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(48000, 2, 4800)

	pcm16, _, err := ResampleToMono16(src, 48000, 960)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if len(pcm16) != 4800 {
		t.Errorf("ResampleToMono16() got %d samples, want 4800", len(pcm16))
	}
	for i, s := range pcm16 {
		if s != 0 {
			t.Fatalf("pcm16[%d] = %d, want 0", i, s)
		}
	}
}

func TestResampleToMono16_EmptySource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 2, 0)

	pcm16, rate, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if rate != 8000 || len(pcm16) != 0 {
		t.Errorf("ResampleToMono16() = %d samples at %d Hz, want none at 8000", len(pcm16), rate)
	}
}

func TestResampleToMono16_VariousRates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		srcRate int
		dstRate int
	}{
		{"44.1kHz to 8kHz", 44100, 8000},
		{"48kHz to 16kHz", 48000, 16000},
		{"8kHz to 48kHz", 8000, 48000},
		{"22.05kHz to 44.1kHz", 22050, 44100},
		{"same rate", 48000, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.srcRate, 2, tt.srcRate/2, 220)
			pcm16, rate, err := ResampleToMono16(src, tt.dstRate, 1024)
			if err != nil {
				t.Fatalf("ResampleToMono16() error = %v", err)
			}
			if rate != tt.dstRate {
				t.Errorf("rate = %d, want %d", rate, tt.dstRate)
			}
			if want := tt.dstRate / 2; len(pcm16) != want {
				t.Errorf("got %d samples, want %d", len(pcm16), want)
			}
		})
	}
}

func TestResampleToMono16_Errors(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 1, 100)
	if _, _, err := ResampleToMono16(src, 0, 4096); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("zero rate error = %v, want ErrInvalidTarget", err)
	}
	if _, _, err := ResampleToMono16(src, 8000, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("zero block error = %v, want ErrInvalidTarget", err)
	}

	failing := audiotest.NewSilentSource(8000, 1, 100).FailAt(50, errors.New("disk"))
	if _, _, err := ResampleToMono16(failing, 8000, 64); err == nil {
		t.Error("ResampleToMono16() ignored a source error")
	}
}

func BenchmarkResampleToMono16(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		src := audiotest.NewSineSource(44100, 2, 44100, 440.0)
		_, _, _ = ResampleToMono16(src, 8000, 4096)
	}
}

func BenchmarkResampleToMono16_Upsample(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		src := audiotest.NewSineSource(8000, 1, 8000, 440.0)
		_, _, _ = ResampleToMono16(src, 48000, 960)
	}
}
