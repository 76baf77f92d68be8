// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

func writeFixture(t *testing.T, rate, bits, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.aiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := aiff.NewEncoder(f, rate, bits, channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecoder_PCM16Stereo(t *testing.T) {
	t.Parallel()

	f, err := os.Open(writeFixture(t, 44100, 16, 2, []int{16384, -16384, 0, 32767}))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Fatalf("source = %d ch @ %d Hz", src.Channels(), src.SampleRate())
	}

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	want := []float32{0.5, -0.5, 0, 32767.0 / 32768}
	if n != len(want) {
		t.Fatalf("n = %d, want %d", n, len(want))
	}
	for i, w := range want {
		if math.Abs(float64(dst[i]-w)) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, dst[i], w)
		}
	}
}

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"empty":   {},
		"garbage": []byte("FORM....not really an aiff stream"),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := (Decoder{}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}
