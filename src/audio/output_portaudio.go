//go:build portaudio

package audio

import (
	"context"
	"log"

	"github.com/gordonklaus/portaudio"
)

// ----- Output (PortAudio) ----- //

const outputBufferFrames = 1024

// Output plays an Engine through PortAudio's default mono stream. The
// hardware thread calls straight into FillBuffer, so everything on that path
// keeps to the render-context rules.
type Output struct {
	engine  *Engine
	stream  *portaudio.Stream
	samples []float64
}

// NewOutput ...
func NewOutput(e *Engine) (*Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	o := &Output{
		engine:  e,
		samples: make([]float64, outputBufferFrames),
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, e.Config().SampleRate, outputBufferFrames, o.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	o.stream = stream
	return o, nil
}

func (o *Output) callback(out []float32) {
	if len(o.samples) < len(out) {
		o.samples = make([]float64, len(out))
	}
	samples := o.samples[:len(out)]
	o.engine.FillBuffer(samples)
	for i, v := range samples {
		out[i] = float32(v)
	}
}

// Start blocks until ctx is cancelled, then stops the stream.
func (o *Output) Start(ctx context.Context) error {
	if err := o.stream.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	if err := o.stream.Stop(); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// Close ...
func (o *Output) Close() error {
	err := o.stream.Close()
	portaudio.Terminate()
	return err
}
