//go:build !portaudio

package audio

import (
	"context"
	"io"
	"log"

	"github.com/hajimehoshi/oto"
)

// ----- Output ----- //

const (
	outputChannelNum      = 2
	outputBitDepthInBytes = 2
	outputBufferFrames    = 1024
)

const outputBytesPerFrame = outputChannelNum * outputBitDepthInBytes

// Output plays an Engine through the default audio device. This build pulls
// samples through oto; build with -tags portaudio for the callback backend.
type Output struct {
	engine     *Engine
	otoContext *oto.Context
	ctx        context.Context
	samples    []float64
}

var _ io.Reader = (*Output)(nil)

// NewOutput opens the playback device at the engine's sample rate.
func NewOutput(e *Engine) (*Output, error) {
	otoContext, err := oto.NewContext(int(e.Config().SampleRate), outputChannelNum, outputBitDepthInBytes, outputBufferFrames*outputBytesPerFrame)
	if err != nil {
		return nil, err
	}
	return &Output{
		engine:     e,
		otoContext: otoContext,
		ctx:        context.Background(),
		samples:    make([]float64, outputBufferFrames),
	}, nil
}

// Read pulls one block from the engine and interleaves it into both int16
// channels. The engine renders one logical channel; duplication happens
// here, never in the mixer.
func (o *Output) Read(buf []byte) (int, error) {
	select {
	case <-o.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	frames := len(buf) / outputBytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if len(o.samples) < frames {
		o.samples = make([]float64, frames)
	}
	samples := o.samples[:frames]
	o.engine.FillBuffer(samples)
	for i, v := range samples {
		s := int16(v * 32767)
		for ch := 0; ch < outputChannelNum; ch++ {
			buf[outputBytesPerFrame*i+2*ch] = byte(s)
			buf[outputBytesPerFrame*i+2*ch+1] = byte(s >> 8)
		}
	}
	return frames * outputBytesPerFrame, nil
}

// Start blocks, feeding the device until ctx is cancelled.
func (o *Output) Start(ctx context.Context) error {
	p := o.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	o.ctx = ctx
	if _, err := io.CopyBuffer(p, o, make([]byte, outputBufferFrames*outputBytesPerFrame)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// Close ...
func (o *Output) Close() error {
	return o.otoContext.Close()
}
