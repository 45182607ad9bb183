package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/auralloop/entrain/src/audio"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const spectrumSize = 4096

var (
	presetDir   = flag.String("presets", "presets", "preset directory")
	presetName  = flag.String("preset", "", "preset to load")
	scriptPath  = flag.String("script", "", "lua session script to run")
	listPresets = flag.Bool("list", false, "list presets and exit")
	sampleRate  = flag.Float64("sr", audio.DefaultSampleRate, "sample rate")
	seconds     = flag.Float64("seconds", 0, "stop after this many seconds (0 = run until interrupted)")
	withMidi    = flag.Bool("midi", false, "apply MIDI input to the layer set")
	report      = flag.Bool("report", false, "log levels once per second")
	spectrum    = flag.Bool("spectrum", false, "include the dominant frequency in reports")
	windowName  = flag.String("window", "han", "spectrum window: han, hamming or blackman")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	if *listPresets {
		names, err := audio.NewPresetManager(*presetDir).List()
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg := audio.DefaultEngineConfig()
	cfg.SampleRate = *sampleRate
	cfg.OnCriticalError = func(err error) {
		log.Printf("engine stopped itself: %v\n", err)
	}

	layers := defaultLayers()
	var session *audio.Session
	var scripted *audio.ScriptedSession

	if *presetName != "" {
		p, err := audio.NewPresetManager(*presetDir).Load(*presetName)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		cfg = p.EngineConfig(cfg)
		layers = p.Layers
	}
	if *scriptPath != "" {
		s, err := audio.LoadSessionScript(*scriptPath)
		if err == nil {
			session = s
			if len(s.Segments) > 0 {
				layers = s.Segments[0].Layers
			}
		} else {
			sc, scErr := audio.OpenScriptedSession(*scriptPath)
			if scErr != nil {
				log.Fatalf("error: %v (alternatively %v)\n", scErr, err)
			}
			scripted = sc
			defer sc.Close()
			first, stepErr := sc.Step(0)
			if stepErr != nil {
				log.Fatalf("error: %v\n", stepErr)
			}
			layers = first
		}
	}

	engine := audio.NewEngine(cfg)
	if err := engine.SetSpectrumWindow(*windowName); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if err := engine.Initialize(layers); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer engine.Dispose()

	out, err := audio.NewOutput(engine)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer out.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	if *seconds > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, time.Duration(*seconds*float64(time.Second)))
		defer cancelTimeout()
	}

	if err := engine.Start(); err != nil {
		log.Fatalf("error: %v\n", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return out.Start(ctx)
	})
	if session != nil {
		g.Go(func() error {
			defer cancel()
			return session.Run(ctx, engine, nil)
		})
	}
	if scripted != nil {
		g.Go(func() error {
			defer cancel()
			return scripted.Run(ctx, engine)
		})
	}
	if *withMidi {
		g.Go(func() error {
			return audio.RunMidiControl(ctx, engine)
		})
	}
	if *report {
		g.Go(func() error {
			return sendReports(ctx, engine)
		})
	}
	g.Go(func() error {
		return handleKeys(ctx, cancel, engine)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func defaultLayers() []audio.LayerConfig {
	return []audio.LayerConfig{
		{CarrierFreq: 210, ModFreq: 6, ModShape: "square", ModDepth: 1, Weight: 0.7, Active: true, Description: "theta isochronic"},
		{CarrierFreq: 320, ModFreq: 10, ModDepth: 0.8, Weight: 0.5, Active: true, Description: "alpha tremolo"},
	}
}

func sendReports(ctx context.Context, engine *audio.Engine) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			return nil
		case <-t.C:
			configs := engine.Configs()
			parts := make([]string, 0, len(configs)+2)
			parts = append(parts, fmt.Sprintf("peak=%.3f", engine.PeakLevel()))
			for i := range configs {
				parts = append(parts, fmt.Sprintf("env%d=%.3f", i, engine.GetLayerEnvelopeValue(i)))
			}
			if *spectrum {
				if mags, err := engine.Spectrum(spectrumSize); err == nil {
					bin := 0
					for i, m := range mags {
						if m > mags[bin] {
							bin = i
						}
					}
					parts = append(parts, fmt.Sprintf("dominant=%.1fHz", float64(bin)*engine.Config().SampleRate/spectrumSize))
				}
			}
			log.Println(strings.Join(parts, " "))
		}
	}
}

func handleKeys(ctx context.Context, cancel context.CancelFunc, engine *audio.Engine) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		<-ctx.Done()
		return nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)
	log.Println("keys: space=start/stop 1-8=toggle layer r=reset q=quit")

	keyCh := make(chan byte, 16)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keyCh)
				return
			}
			if n > 0 {
				keyCh <- buf[0]
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keyCh:
			if !ok {
				return nil
			}
			if err := applyKey(key, cancel, engine); err != nil {
				log.Printf("%v\n", err)
			}
		}
	}
}

func applyKey(key byte, cancel context.CancelFunc, engine *audio.Engine) error {
	switch {
	case key == ' ':
		if engine.IsPlaying() {
			return engine.Stop()
		}
		return engine.Start()
	case key == 'r':
		return engine.Reset()
	case key == 'q' || key == 3: // ctrl-c in raw mode
		cancel()
	case key >= '1' && key <= '8':
		i := int(key - '1')
		configs := engine.Configs()
		if i >= len(configs) {
			return nil
		}
		configs[i].Active = !configs[i].Active
		return engine.UpdateConfigs(configs)
	}
	return nil
}
