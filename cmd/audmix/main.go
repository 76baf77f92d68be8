// SPDX-License-Identifier: EPL-2.0

// Command audmix plays a Lua scene on the sound card or renders it to a WAV
// file.
//
//	audmix [flags] scene.lua
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/backend/device"
	"github.com/ik5/audmix/backend/wavfile"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/render"
	"github.com/ik5/audmix/scene"
	"github.com/ik5/audmix/session"
)

type options struct {
	out      string
	bits     int
	input    string
	renderer string
	workers  int
	duration time.Duration
	latency  time.Duration
	null     bool
	verbose  bool
}

func main() {
	var opt options
	flag.StringVar(&opt.out, "out", "", "write the mix to this WAV file instead of the sound card")
	flag.IntVar(&opt.bits, "bits", 16, "WAV bit depth (8, 16, 24 or 32)")
	flag.StringVar(&opt.input, "input", "", "audio file fed to the scene as capture input (with -out)")
	flag.StringVar(&opt.renderer, "renderer", "", "override the scene renderer (monolithic, threadpool)")
	flag.IntVar(&opt.workers, "workers", 0, "override the thread pool size")
	flag.DurationVar(&opt.duration, "duration", 0, "override the scene duration")
	flag.DurationVar(&opt.latency, "latency", device.DefaultLatency, "sound card queue length")
	flag.BoolVar(&opt.null, "null", false, "render without any output, for timing")
	flag.BoolVar(&opt.verbose, "v", false, "log session details")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scene.lua\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0), opt); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "audmix: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, opt options) error {
	logger := log.New(io.Discard, "", 0)
	if opt.verbose {
		logger = log.New(os.Stderr, "audmix: ", log.LstdFlags)
	}

	sc, err := scene.Load(ctx, path)
	if err != nil {
		return err
	}
	if err := applyOverrides(sc, opt); err != nil {
		return err
	}

	setup, err := sc.Setup()
	if err != nil {
		return err
	}
	reg := formats.NewRegistry()

	out, err := openBackend(opt, reg, setup.Frequency, setup.Tracks(), logger)
	if err != nil {
		return err
	}

	cfg, err := sc.SessionConfig(out, logger)
	if err != nil {
		_ = out.Close()
		return err
	}
	cfg.Debug = opt.verbose
	cfg.CaptureInput = opt.input != ""

	s, err := session.New(cfg)
	if err != nil {
		_ = out.Close()
		return err
	}

	tl, err := scene.Bind(sc, s, reg)
	if err != nil {
		return errors.Join(err, s.Close())
	}

	start := time.Now()
	err = tl.Run(ctx, progress(sc.Name, tl.Cycles()))
	err = errors.Join(err, s.Close())

	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintln(os.Stderr)
	}
	logger.Printf("%s: %v of audio in %v", sc.Name, tl.Elapsed(), time.Since(start).Round(time.Millisecond))
	return err
}

func applyOverrides(sc *scene.Scene, opt options) error {
	if opt.renderer != "" {
		kind, err := render.ParseKind(opt.renderer)
		if err != nil {
			return err
		}
		sc.Renderer = kind
	}
	if opt.workers > 0 {
		sc.Workers = opt.workers
	}
	if opt.duration > 0 {
		sc.Duration = opt.duration
	}
	return nil
}

func openBackend(opt options, reg *audio.Registry, freq float64, tracks int, logger *log.Logger) (backend.AudioBackend, error) {
	switch {
	case opt.null:
		return backend.NewNull(freq, tracks), nil
	case opt.out == "":
		if opt.input != "" {
			return nil, errors.New("-input needs -out")
		}
		return device.Open(device.Config{
			Frequency: freq,
			Tracks:    tracks,
			Latency:   opt.latency,
			Logger:    logger,
		})
	}

	w, err := wavfile.Create(opt.out, freq, tracks, opt.bits)
	if err != nil {
		return nil, err
	}
	if opt.input == "" {
		return w, nil
	}

	src, err := reg.Open(opt.input)
	if err != nil {
		return nil, errors.Join(err, w.Close())
	}
	if err := w.SetInput(src); err != nil {
		return nil, errors.Join(err, src.Close(), w.Close())
	}
	return w, nil
}

// progress reports the rendered time on an interactive stderr.
func progress(name string, total int) func(cycle, total int) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	last := time.Now()
	return func(cycle, _ int) {
		if time.Since(last) < 100*time.Millisecond {
			return
		}
		last = time.Now()
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\r%s: %3d%%", name, cycle*100/total)
			return
		}
		fmt.Fprintf(os.Stderr, "\r%s: block %d", name, cycle)
	}
}
