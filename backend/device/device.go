// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/ringbuffer"
)

// DefaultLatency is the queued audio Playback allows before blocking.
const DefaultLatency = 100 * time.Millisecond

type Config struct {
	Frequency float64
	Tracks    int
	// Latency bounds the queue between the renderer and the device.
	Latency time.Duration
	Logger  *log.Logger
}

// Device is an AudioBackend bound to the default output device.
type Device struct {
	cfg    Config
	ctx    *oto.Context
	player *oto.Player
	q      *queue
	mixed  []int32
	once   sync.Once
}

// Open creates the oto context and starts a player reading from the queue.
// oto allows a single context per process.
func Open(cfg Config) (*Device, error) {
	if cfg.Tracks < 1 || cfg.Tracks > ringbuffer.MaxTracks {
		return nil, fmt.Errorf("%w: %d", ringbuffer.ErrInvalidTracks, cfg.Tracks)
	}
	if cfg.Latency <= 0 {
		cfg.Latency = DefaultLatency
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.Frequency),
		ChannelCount: cfg.Tracks,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.Latency / 2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	d := &Device{
		cfg: cfg,
		ctx: ctx,
		q:   newQueue(queueLimit(cfg)),
	}
	d.player = ctx.NewPlayer(d.q)
	d.player.Play()

	cfg.Logger.Printf("audio device opened: %.0fHz, %d channels, %v latency", cfg.Frequency, cfg.Tracks, cfg.Latency)
	return d, nil
}

func queueLimit(cfg Config) int {
	frames := int(cfg.Latency.Seconds() * cfg.Frequency)
	return max(1, frames) * cfg.Tracks * 2
}

func (d *Device) Frequency() float64 { return d.cfg.Frequency }
func (d *Device) Tracks() int        { return d.cfg.Tracks }

// Capture yields silence; oto has no input path.
func (d *Device) Capture(offset, frames int, scratch [][]int32) (int, error) {
	if err := backend.CheckCapture(offset, frames, scratch); err != nil {
		return 0, err
	}
	for _, s := range scratch {
		clear(s[offset : offset+frames])
	}
	return 0, nil
}

func (d *Device) Playback(buf *ringbuffer.Buffer, pitch, gain float32) (int, error) {
	if err := backend.CheckPlayback(d, buf, pitch); err != nil {
		return 0, err
	}

	d.mixed = backend.Interleave(d.mixed, buf, pitch, gain)
	queued, ok := d.q.push(d.mixed)
	if !ok {
		return 0, backend.ErrClosed
	}
	return queued, nil
}

// Close stops the player and suspends the context.
func (d *Device) Close() error {
	var err error
	d.once.Do(func() {
		d.q.close()
		if cerr := d.player.Close(); cerr != nil {
			err = fmt.Errorf("closing player: %w", cerr)
		}
		if serr := d.ctx.Suspend(); serr != nil && err == nil {
			err = fmt.Errorf("suspending context: %w", serr)
		}
		_, underruns := d.q.stats()
		d.cfg.Logger.Printf("audio device closed, %d underruns", underruns)
	})
	return err
}

var _ backend.AudioBackend = (*Device)(nil)
