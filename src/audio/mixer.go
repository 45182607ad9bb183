package audio

import (
	"fmt"
	"math"
)

// ----- Mixer ----- //

const (
	mixHeadroom       = 0.8
	softClipThreshold = 0.95
)

// mixer owns a fixed pool of layers, sums them into the output buffer, and
// keeps the composite signal inside [-1, 1]. The pool and scratch buffers
// belong to the render context after initialize.
type mixer struct {
	layers  []*layer
	scratch []float64
}

func newMixer() *mixer {
	return &mixer{}
}

// initialize builds and configures the pool once, so rendering allocates
// nothing afterwards.
func (m *mixer) initialize(layerCount int, sampleRate, attackSeconds, releaseSeconds float64) error {
	if layerCount < 1 || layerCount > MaxLayers {
		return &ConfigError{
			Layer:  -1,
			Field:  "layers",
			Reason: fmt.Sprintf("%d is outside [1, %d]", layerCount, MaxLayers),
		}
	}
	m.layers = make([]*layer, layerCount)
	for i := range m.layers {
		l := newLayer()
		l.env.configure(attackSeconds, releaseSeconds, sampleRate)
		m.layers[i] = l
	}
	return nil
}

// render sums every configured layer into out through a reusable scratch
// buffer, then applies the loudness-safety chain: headroom scaling, tanh
// soft saturation above a threshold, and a hard clamp as the last resort.
func (m *mixer) render(out []float64, sampleRate float64, configs []LayerConfig, gate bool) {
	zeroBuffer(out)
	if len(m.scratch) < len(out) {
		m.scratch = make([]float64, len(out))
	}
	scratch := m.scratch[:len(out)]
	n := len(m.layers)
	if len(configs) < n {
		n = len(configs)
	}
	for i := 0; i < n; i++ {
		m.layers[i].updateAndProcess(scratch, sampleRate, configs[i], gate)
		for j := range out {
			out[j] += scratch[j]
		}
	}
	for i, v := range out {
		out[i] = hardClamp(softClip(v * mixHeadroom))
	}
}

// softClip passes samples below the threshold through untouched and
// compresses the excess with tanh so the result never exceeds full scale.
func softClip(v float64) float64 {
	abs := math.Abs(v)
	if abs <= softClipThreshold {
		return v
	}
	span := 1 - softClipThreshold
	clipped := softClipThreshold + span*math.Tanh((abs-softClipThreshold)/span)
	if v < 0 {
		return -clipped
	}
	return clipped
}

func hardClamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// envelopeValue is bounds checked; an out-of-range index reads as 0 so
// metering code never fails.
func (m *mixer) envelopeValue(index int) float64 {
	if index < 0 || index >= len(m.layers) {
		return 0
	}
	return m.layers[index].envelopeValue()
}

func (m *mixer) triggerReleaseAll() {
	for _, l := range m.layers {
		l.triggerRelease()
	}
}

func (m *mixer) reset() {
	for _, l := range m.layers {
		l.reset()
	}
}
