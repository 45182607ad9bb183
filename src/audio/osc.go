package audio

import (
	"math"
)

// ----- Wave Kind ----- //

//go:generate go run ../gen/main.go -- wave_kind.gen.go
/*
generate-enum waveKind

waveSine sine
waveTriangle triangle
waveSquare square

EOF
*/

// ----- OSC ----- //

// osc is a phase-accumulator oscillator. phase stays in [0,1); it is wrapped
// every cycle so it never grows, which keeps long sessions numerically exact.
// setFreq may be called from any goroutine that owns the osc; process and
// reset belong to the render context.
type osc struct {
	kind  int
	freq  float64
	duty  float64 // fraction of the period a square wave stays high
	phase float64 // [0, 1)
	inc   float64 // phase advance per sample
}

const (
	minDuty     = 0.1
	maxDuty     = 0.9
	defaultDuty = 0.5
)

func newOsc(kind int) *osc {
	return &osc{kind: kind, duty: defaultDuty}
}

func (o *osc) setFreq(freq float64, sampleRate float64) {
	o.freq = freq
	o.inc = freq / sampleRate
}

// setDuty clamps into [minDuty, maxDuty] and keeps the clamped value.
func (o *osc) setDuty(duty float64) {
	if duty < minDuty {
		duty = minDuty
	}
	if duty > maxDuty {
		duty = maxDuty
	}
	o.duty = duty
}

func (o *osc) sample() float64 {
	switch o.kind {
	case waveSine:
		return math.Sin(2.0 * math.Pi * o.phase)
	case waveTriangle:
		if o.phase < 0.5 {
			return o.phase*4 - 1
		}
		return o.phase*(-4) + 3
	case waveSquare:
		if o.phase < o.duty {
			return 1
		}
		return -1
	}
	return 0
}

// process writes one sample per slot and advances the phase. The increment
// never reaches 1 (freq is below Nyquist), so a single wrap test is enough.
func (o *osc) process(out []float64) {
	for i := range out {
		out[i] = o.sample()
		o.phase += o.inc
		if o.phase >= 1 {
			o.phase--
		}
	}
}

func (o *osc) reset() {
	o.phase = 0
}
