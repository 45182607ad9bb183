package audio

import (
	"context"
	"log"
	"math"

	"gitlab.com/gomidi/rtmididrv"
)

// ----- MIDI ----- //

// ListenToMidiIn opens the first MIDI input and forwards raw messages until
// ctx is cancelled.
func ListenToMidiIn(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			ch <- data
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		defer close(ch)
		<-ctx.Done()
	}()
	return ch
}

// ----- MIDI Control ----- //

// Mapping: notes retune layer 0's carrier, CC 70..77 set per-layer weights,
// and the mod wheel sets every layer's modulation depth.
const (
	midiCCModWheel    = 1
	midiCCLayerWeight = 70

	midiBaseFreq = 440.0
)

func noteToFreq(note int) float64 {
	return midiBaseFreq * math.Pow(2, float64(note-69)/12)
}

// RunMidiControl applies incoming MIDI to the engine's layer set until ctx
// is cancelled. Best effort: messages that target a missing layer or an
// out-of-range frequency are dropped.
func RunMidiControl(ctx context.Context, e *Engine) error {
	ch := ListenToMidiIn(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			if err := applyMidi(e, data); err != nil {
				log.Printf("failed to apply MIDI message: %v\n", err)
			}
		}
	}
}

func applyMidi(e *Engine, data []byte) error {
	if len(data) < 3 {
		return nil
	}
	configs := e.Configs()
	if len(configs) == 0 {
		return nil
	}
	switch data[0] >> 4 {
	case 9: // note on
		if data[2] == 0 {
			return nil
		}
		freq := noteToFreq(int(data[1]))
		if freq < minCarrierFreq || freq > e.Config().SampleRate/2 {
			return nil
		}
		configs[0].CarrierFreq = freq
	case 11: // control change
		cc, value := int(data[1]), float64(data[2])/127
		switch {
		case cc == midiCCModWheel:
			for i := range configs {
				configs[i].ModDepth = value
			}
		case cc >= midiCCLayerWeight && cc < midiCCLayerWeight+MaxLayers:
			i := cc - midiCCLayerWeight
			if i >= len(configs) {
				return nil
			}
			configs[i].Weight = value
		default:
			return nil
		}
	default:
		return nil
	}
	return e.UpdateConfigs(configs)
}
